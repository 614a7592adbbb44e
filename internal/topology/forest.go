// Package topology realizes the station/link tables as a small directed
// forest and orders it for routing.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"cascade-router/internal/model"
)

// Node is a station with its inbound and outbound links in table order.
type Node struct {
	Station  model.Station
	Inbound  []model.Link
	Outbound []model.Link
}

// Downstream returns the receiver of the station's main delivery, or "" for a
// terminal station.
func (n *Node) Downstream() string {
	for _, l := range n.Outbound {
		if l.Kind.Main() {
			return l.Station
		}
	}
	return ""
}

// Terminal reports whether nothing downstream receives from the node.
func (n *Node) Terminal() bool {
	return len(n.Outbound) == 0
}

// Cascade is one connected component, listed upstream before downstream.
type Cascade struct {
	ID    string
	Order []string
}

// Unrouted names a clipped link whose excess has no overflow receiver.
type Unrouted struct {
	Link model.Link
}

// Options controls validation strictness.
type Options struct {
	// StrictOverflow turns a clipped link without an overflow receiver into a
	// configuration error instead of an Unrouted entry.
	StrictOverflow bool
}

// Forest is the validated topology.
type Forest struct {
	nodes    map[string]*Node
	ids      []string
	order    []string
	cascades []Cascade
	unrouted []Unrouted
	errs     map[string]error
}

// Build validates stations and links and computes the routing order.
//
// Only problems that leave no usable forest are returned: an empty or
// duplicate station id, a self link, a link between two unknown stations, a
// second downstream target and a cycle. Problems local to one station are
// collected in Errors and fail that station's cascade at routing time.
func Build(stations []model.Station, links []model.Link, opts Options) (*Forest, error) {
	f := &Forest{
		nodes: make(map[string]*Node, len(stations)),
		errs:  map[string]error{},
	}
	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		if strings.TrimSpace(s.ID) == "" {
			return nil, &model.ConfigError{Reason: "station id is required"}
		}
		if _, dup := f.nodes[s.ID]; dup {
			return nil, &model.ConfigError{Station: s.ID, Reason: "duplicate station"}
		}
		f.nodes[s.ID] = &Node{Station: s}
		ids = append(ids, s.ID)
		if err := s.Validate(); err != nil {
			f.fail(s.ID, err)
		}
	}

	f.ids = ids

	for _, l := range links {
		if err := f.addLink(l); err != nil {
			return nil, err
		}
	}
	f.checkSideChannels(opts)

	order, err := f.topoSort(ids)
	if err != nil {
		return nil, err
	}
	f.order = order
	f.cascades = f.partition()
	return f, nil
}

// fail keeps the first error recorded for a station.
func (f *Forest) fail(id string, err error) {
	if _, ok := f.errs[id]; !ok {
		f.errs[id] = err
	}
}

func (f *Forest) addLink(l model.Link) error {
	if l.Station == l.Upstream {
		return &model.ConfigError{Station: l.Station, Reason: "station cannot receive from itself"}
	}
	dst, dok := f.nodes[l.Station]
	src, sok := f.nodes[l.Upstream]
	switch {
	case !dok && !sok:
		return &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("unresolved stations in link %s", l)}
	case !dok:
		f.fail(l.Upstream, &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("unresolved station in link %s", l)})
		return nil
	case !sok:
		f.fail(l.Station, &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("unresolved upstream station in link %s", l)})
		return nil
	}

	if err := f.checkKind(l, src); err != nil {
		f.fail(l.Upstream, err)
	}
	if l.Kind.Main() && src.Downstream() != "" {
		return &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("more than one downstream target (%s and %s)", src.Downstream(), l.Station)}
	}
	for _, existing := range src.Outbound {
		if existing.Station == l.Station && existing.Kind == l.Kind {
			f.fail(l.Upstream, &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("duplicate link %s", l)})
			return nil
		}
	}
	dst.Inbound = append(dst.Inbound, l)
	src.Outbound = append(src.Outbound, l)
	return nil
}

// checkKind validates the link against its kind. The link is still added so
// the failure stays inside its cascade.
func (f *Forest) checkKind(l model.Link, src *Node) error {
	switch l.Kind {
	case model.LinkFull, model.LinkAnnualMean:
		if l.ClipStation != "" {
			return &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("clip station is only valid on clipped/overflow links: %s", l)}
		}
	case model.LinkClipped, model.LinkOverflow:
		clip, ok := f.nodes[l.ClipAt()]
		if !ok {
			return &model.ConfigError{Station: l.ClipAt(), Reason: fmt.Sprintf("unresolved clip station in link %s", l)}
		}
		if !(clip.Station.MaxOutflow > 0) {
			return &model.ConfigError{Station: clip.Station.ID, Reason: fmt.Sprintf("missing or zero Qmax for clip in link %s", l)}
		}
	case model.LinkSpillage:
		if !src.Station.Bottleneck() {
			return &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("spillage link from a station without storage: %s", l)}
		}
	default:
		return &model.ConfigError{Station: l.Station, Reason: fmt.Sprintf("unknown link kind %q", l.Kind)}
	}
	return nil
}

// checkSideChannels pairs every overflow link with a clipped link of the same
// source and clip station.
func (f *Forest) checkSideChannels(opts Options) {
	for _, id := range f.ids {
		n := f.nodes[id]
		for _, l := range n.Outbound {
			switch l.Kind {
			case model.LinkOverflow:
				if findOutbound(n, model.LinkClipped, l.ClipAt()) == nil {
					f.fail(id, &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("overflow link without a clipped link at the same Qmax: %s", l)})
				}
			case model.LinkClipped:
				if findOutbound(n, model.LinkOverflow, l.ClipAt()) != nil || n.Station.Bottleneck() && l.ClipAt() == l.Upstream {
					continue
				}
				if opts.StrictOverflow {
					f.fail(id, &model.ConfigError{Station: l.Upstream, Reason: fmt.Sprintf("clipped link has no overflow receiver: %s", l)})
					continue
				}
				f.unrouted = append(f.unrouted, Unrouted{Link: l})
			}
		}
	}
}

func findOutbound(n *Node, kind model.LinkKind, clipAt string) *model.Link {
	for i, l := range n.Outbound {
		if l.Kind == kind && l.ClipAt() == clipAt {
			return &n.Outbound[i]
		}
	}
	return nil
}

// topoSort is Kahn's algorithm; ties resolve in station table order.
func (f *Forest) topoSort(ids []string) ([]string, error) {
	pending := make(map[string]int, len(ids))
	for _, id := range ids {
		pending[id] = len(f.nodes[id].Inbound)
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	var ready []string
	for _, id := range ids {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, l := range f.nodes[id].Outbound {
			pending[l.Station]--
			if pending[l.Station] == 0 {
				ready = append(ready, l.Station)
				sort.SliceStable(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
			}
		}
	}
	if len(order) != len(ids) {
		var stuck []string
		for _, id := range ids {
			if pending[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, &model.ConfigError{Reason: fmt.Sprintf("topology has a cycle through %v", stuck)}
	}
	return order, nil
}

// partition groups stations into connected components (links taken as
// undirected). A cascade is named after its most downstream station.
func (f *Forest) partition() []Cascade {
	parent := make(map[string]string, len(f.nodes))
	var find func(string) string
	find = func(x string) string {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, id := range f.ids {
		parent[id] = id
	}
	for _, id := range f.ids {
		for _, l := range f.nodes[id].Outbound {
			a, b := find(l.Upstream), find(l.Station)
			if a != b {
				parent[a] = b
			}
		}
	}

	byRoot := map[string]*Cascade{}
	var roots []string
	for _, id := range f.order {
		r := find(id)
		c, ok := byRoot[r]
		if !ok {
			c = &Cascade{}
			byRoot[r] = c
			roots = append(roots, r)
		}
		c.Order = append(c.Order, id)
	}
	out := make([]Cascade, 0, len(roots))
	for _, r := range roots {
		c := byRoot[r]
		c.ID = c.Order[len(c.Order)-1]
		out = append(out, *c)
	}
	return out
}

// Node returns the station node, or nil.
func (f *Forest) Node(id string) *Node {
	return f.nodes[id]
}

// Order is the global upstream-first routing order.
func (f *Forest) Order() []string {
	return f.order
}

func (f *Forest) Cascades() []Cascade {
	return f.cascades
}

// Errors maps a station to the configuration error that keeps its cascade
// from being routed.
func (f *Forest) Errors() map[string]error {
	return f.errs
}

// Unrouted lists clipped links whose excess leaves the model.
func (f *Forest) Unrouted() []Unrouted {
	return f.unrouted
}

// Stations returns the stations in routing order.
func (f *Forest) Stations() []model.Station {
	out := make([]model.Station, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.nodes[id].Station)
	}
	return out
}
