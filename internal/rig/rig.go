// Package rig resolves parameter values into per-node transform deltas
// and per-vertex deform offsets, once per animation tick.
package rig

import (
	"inp-rig-runtime/internal/mathutil"
	"inp-rig-runtime/internal/puppet"
)

// Session holds the current value of every parameter of one puppet.
// The node graph is exclusively owned by the document for the session's
// lifetime; renderers read derived state between ticks only.
type Session struct {
	doc    *puppet.Puppet
	values map[uint32]mathutil.Vec2
}

// NewSession creates a session with every parameter at its default value.
func NewSession(doc *puppet.Puppet) *Session {
	s := &Session{doc: doc, values: make(map[uint32]mathutil.Vec2, len(doc.Params))}
	for _, p := range doc.Params {
		s.values[p.UUID] = p.Defaults
	}
	return s
}

// Puppet returns the document this session drives.
func (s *Session) Puppet() *puppet.Puppet { return s.doc }

// Set assigns a parameter value by name. The value is clamped into the
// parameter's range at tick time, not here. Returns false for unknown
// names. The second component is ignored for 1-DOF parameters.
func (s *Session) Set(name string, x, y float32) bool {
	p := s.doc.FindParam(name)
	if p == nil {
		return false
	}
	s.values[p.UUID] = mathutil.Vec2{x, y}
	return true
}

// Value returns the current value of a parameter by name.
func (s *Session) Value(name string) (mathutil.Vec2, bool) {
	p := s.doc.FindParam(name)
	if p == nil {
		return mathutil.Vec2{}, false
	}
	return s.values[p.UUID], true
}

// Tick resolves all parameters into node state: drive offsets and deform
// buffers are reset, every parameter is applied, then the document
// commits (world transforms recomputed, deformed vertex buffers rebuilt).
// Application never fails; out-of-range values clamp and bindings to
// nonexistent nodes are skipped. Single-threaded by design.
func (s *Session) Tick() {
	s.doc.ResetDrive()
	for _, p := range s.doc.Params {
		s.apply(p, s.values[p.UUID])
	}
	s.doc.Commit()
}

func (s *Session) apply(p *puppet.Param, v mathutil.Vec2) {
	nx := normalize(v[0], p.Min[0], p.Max[0])
	ny := 0.0
	if p.IsVec2 {
		ny = normalize(v[1], p.Min[1], p.Max[1])
	}

	ix, tx := locateCell(p.AxisPoints[0], nx)
	iy, ty := locateCell(p.AxisPoints[1], ny)

	for _, b := range p.Bindings {
		n := s.doc.FindNode(b.NodeUUID)
		if n == nil {
			// Authoring tools may keep bindings to nodes pruned post-export.
			continue
		}
		applyBinding(n, b, ix, iy, tx, ty)
	}
}

// normalize clamps v into [lo, hi] and maps it to [0, 1].
func normalize(v, lo, hi float32) float64 {
	c := mathutil.Clamp(float64(v), float64(lo), float64(hi))
	return mathutil.InvLerp(float64(lo), float64(hi), c)
}

// locateCell finds the bracketing pair (i, i+1) in a strictly increasing
// break-point sequence such that points[i] <= t <= points[i+1], clamping
// out-of-range values to the first or last bracket. Returns the lower
// index and the fractional position within the bracket.
func locateCell(points []float64, t float64) (int, float64) {
	if len(points) < 2 {
		return 0, 0
	}
	last := len(points) - 1
	if t <= points[0] {
		return 0, 0
	}
	if t >= points[last] {
		return last - 1, 1
	}
	for i := 0; i < last; i++ {
		if t <= points[i+1] {
			return i, (t - points[i]) / (points[i+1] - points[i])
		}
	}
	return last - 1, 1
}

// ease shapes the fractional cell position per the binding's mode.
func ease(mode puppet.InterpolateMode, t float64) float64 {
	switch mode {
	case puppet.InterpolateSmoothstep:
		return t * t * (3 - 2*t)
	case puppet.InterpolateSmootherstep:
		return t * t * t * (t*(6*t-15) + 10)
	}
	return t
}

// gridCell pairs a control-grid coordinate with its blending weight.
type gridCell struct {
	ix, iy int
	w      float64
}

// surroundingCells returns the four control-grid cells around the eased
// position with bilinear weights. For degenerate axes (single column or
// row) duplicate cells appear with their weights split; summation folds
// them back together.
func surroundingCells(b *puppet.Binding, ix, iy int, tx, ty float64) [4]gridCell {
	ex := ease(b.Mode, tx)
	ey := ease(b.Mode, ty)

	cols := len(b.IsSet)
	rows := 1
	if cols > 0 {
		rows = len(b.IsSet[0])
	}
	x1 := ix + 1
	if x1 > cols-1 {
		x1 = cols - 1
	}
	y1 := iy + 1
	if y1 > rows-1 {
		y1 = rows - 1
	}

	return [4]gridCell{
		{ix, iy, (1 - ex) * (1 - ey)},
		{x1, iy, ex * (1 - ey)},
		{ix, y1, (1 - ex) * ey},
		{x1, y1, ex * ey},
	}
}

// applyBinding blends the surrounding control cells and dispatches the
// result to the node's target channel. Unset cells carry no weight and
// the remaining weights are renormalized; a fully-unset neighborhood
// leaves the channel untouched.
func applyBinding(n *puppet.Node, b *puppet.Binding, ix, iy int, tx, ty float64) {
	cells := surroundingCells(b, ix, iy, tx, ty)

	sumW := 0.0
	for _, c := range cells {
		if b.IsSet[c.ix][c.iy] {
			sumW += c.w
		}
	}
	if sumW <= 0 {
		return
	}

	if b.Channel == puppet.ChannelDeform {
		if len(n.Deform) == 0 {
			return
		}
		for _, c := range cells {
			if !b.IsSet[c.ix][c.iy] || c.w == 0 {
				continue
			}
			w := float32(c.w / sumW)
			offs := b.Deform[c.ix][c.iy]
			// Offsets apply over the common prefix: grids regenerated at a
			// different resolution may disagree with the binding length.
			limit := len(offs)
			if len(n.Deform) < limit {
				limit = len(n.Deform)
			}
			for k := 0; k < limit; k++ {
				n.Deform[k] = n.Deform[k].Add(offs[k].Scale(w))
			}
		}
		return
	}

	sumV := 0.0
	for _, c := range cells {
		if b.IsSet[c.ix][c.iy] {
			sumV += c.w * b.Values[c.ix][c.iy]
		}
	}
	dispatch(n, b.Channel, float32(sumV/sumW))
}

// dispatch folds one blended scalar into the node's drive state.
// Translation, rotation, and zsort add; scale multiplies, so bindings
// from multiple parameters compose on the same channel.
func dispatch(n *puppet.Node, ch puppet.Channel, v float32) {
	switch ch {
	case puppet.ChannelZSort:
		n.Drive.ZSort += v
	case puppet.ChannelTX:
		n.Drive.Translation[0] += v
	case puppet.ChannelTY:
		n.Drive.Translation[1] += v
	case puppet.ChannelSX:
		n.Drive.Scale[0] *= v
	case puppet.ChannelSY:
		n.Drive.Scale[1] *= v
	case puppet.ChannelRX:
		n.Drive.Rotation[0] += v
	case puppet.ChannelRY:
		n.Drive.Rotation[1] += v
	case puppet.ChannelRZ:
		n.Drive.Rotation[2] += v
	}
}
