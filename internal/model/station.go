package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Station is a node of the cascade.
// Units:
// - MaxOutflow: m³/s (Qmax), clip value and normalizer divisor
// - StorageCapacity: m³, 0 for run-of-river / pass-through nodes
type Station struct {
	ID              string
	MaxOutflow      float64
	StorageCapacity float64
}

// Bottleneck reports whether the station runs the reservoir recurrence.
func (s Station) Bottleneck() bool {
	return s.StorageCapacity > 0
}

func (s Station) Params() ReservoirParams {
	return ReservoirParams{
		MaxOutflow:      s.MaxOutflow,
		StorageCapacity: s.StorageCapacity,
	}
}

func (s Station) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return &ConfigError{Reason: "station id is required"}
	}
	if math.IsNaN(s.StorageCapacity) || s.StorageCapacity < 0 {
		return &ConfigError{Station: s.ID, Reason: "storage capacity must be >= 0"}
	}
	if s.Bottleneck() && !(s.MaxOutflow > 0) {
		return &ConfigError{Station: s.ID, Reason: "storage node requires max outflow > 0"}
	}
	return nil
}

// LinkKind describes how much of an upstream station's output reaches the
// receiving station.
type LinkKind string

const (
	// LinkFull passes the upstream combined series (or reservoir outflow) unmodified.
	LinkFull LinkKind = "full"
	// LinkClipped passes min(upstream, Qmax of the clip station).
	LinkClipped LinkKind = "clipped-to-source-qmax"
	// LinkOverflow passes the excess a clipped link could not carry.
	LinkOverflow LinkKind = "overflow"
	// LinkSpillage passes the reservoir spillage of a storage node.
	LinkSpillage LinkKind = "spillage-only"
	// LinkAnnualMean passes the calendar-year mean of the upstream combined series.
	LinkAnnualMean LinkKind = "annual-mean"
)

var linkKindAliases = map[string]LinkKind{
	"full":                   LinkFull,
	"clipped":                LinkClipped,
	"clipped-to-source-qmax": LinkClipped,
	"overflow":               LinkOverflow,
	"excess":                 LinkOverflow,
	"spillage":               LinkSpillage,
	"spillage-only":          LinkSpillage,
	"annual-mean":            LinkAnnualMean,
}

// LinkKinds lists the canonical kinds in a stable order.
func LinkKinds() []LinkKind {
	return []LinkKind{LinkFull, LinkClipped, LinkOverflow, LinkSpillage, LinkAnnualMean}
}

// Aliases returns the alternate spellings ParseLinkKind accepts for k, sorted.
func (k LinkKind) Aliases() []string {
	var out []string
	for name, kind := range linkKindAliases {
		if kind == k && name != string(k) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func ParseLinkKind(s string) (LinkKind, error) {
	k, ok := linkKindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", &ConfigError{Reason: fmt.Sprintf("unknown link kind %q", s)}
	}
	return k, nil
}

// Main reports whether the link carries the source's main delivery, as
// opposed to the overflow or spillage side channels.
func (k LinkKind) Main() bool {
	switch k {
	case LinkFull, LinkClipped, LinkAnnualMean:
		return true
	default:
		return false
	}
}

// Link is one inbound edge of the topology table: Station receives from Upstream.
type Link struct {
	Station     string
	Upstream    string
	Kind        LinkKind
	ClipStation string // optional, defaults to Upstream
}

// ClipAt returns the station whose Qmax bounds a clipped/overflow link.
func (l Link) ClipAt() string {
	if l.ClipStation != "" {
		return l.ClipStation
	}
	return l.Upstream
}

func (l Link) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", l.Upstream, l.Kind, l.Station)
}
