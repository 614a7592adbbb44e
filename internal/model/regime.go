package model

// Regime is a human-friendly operating mode for an hour of routing.
// Keep these values stable; they are intended for CSV output.
type Regime string

const (
	RegimeDraining Regime = "DRAINING"
	RegimePassing  Regime = "PASSING"
	RegimeSpilling Regime = "SPILLING"
)

// RegimeOf classifies a step: spilling wins over draining.
func RegimeOf(res StepResult, maxOutflow float64) Regime {
	switch {
	case res.Spillage > 0:
		return RegimeSpilling
	case res.Outflow >= maxOutflow:
		return RegimeDraining
	default:
		return RegimePassing
	}
}
