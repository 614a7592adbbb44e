package model

import (
	"errors"
	"fmt"
)

// ConfigError reports a station table, topology or input shape problem.
// These are fatal for the station's cascade and never defaulted.
type ConfigError struct {
	Station string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Station == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: station %s: %s", e.Station, e.Reason)
}

// IntegrityError reports a numeric anomaly the recurrence should never produce
// from valid inputs. Hour is -1 for anomalies found in raw weekly input.
type IntegrityError struct {
	Station string
	Hour    int
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.Hour < 0 {
		return fmt.Sprintf("integrity: station %s: %s", e.Station, e.Reason)
	}
	return fmt.Sprintf("integrity: station %s hour %d: %s", e.Station, e.Hour, e.Reason)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
