package puppet

import (
	"encoding/json"
	"fmt"

	"inp-rig-runtime/internal/mathutil"
)

// InterpolateMode is the easing applied to the fractional cell position
// before control values are blended. Per-binding, not per-parameter.
type InterpolateMode uint8

const (
	InterpolateLinear InterpolateMode = iota
	InterpolateSmoothstep
	InterpolateSmootherstep
)

func parseInterpolateMode(s string) InterpolateMode {
	switch s {
	case "Smoothstep":
		return InterpolateSmoothstep
	case "Smootherstep":
		return InterpolateSmootherstep
	}
	return InterpolateLinear
}

// Channel identifies the node property a binding drives.
type Channel uint8

const (
	ChannelZSort Channel = iota
	ChannelTX
	ChannelTY
	ChannelSX
	ChannelSY
	ChannelRX
	ChannelRY
	ChannelRZ
	ChannelDeform
)

var channelNames = map[string]Channel{
	"zSort":         ChannelZSort,
	"transform.t.x": ChannelTX,
	"transform.t.y": ChannelTY,
	"transform.s.x": ChannelSX,
	"transform.s.y": ChannelSY,
	"transform.r.x": ChannelRX,
	"transform.r.y": ChannelRY,
	"transform.r.z": ChannelRZ,
	"deform":        ChannelDeform,
}

func (c Channel) String() string {
	for name, ch := range channelNames {
		if ch == c {
			return name
		}
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// Binding is one parameter-driven control grid targeting a single node
// channel. Values has shape (len(AxisPoints[0]), len(AxisPoints[1]));
// IsSet marks which cells were authored — unset cells carry no blending
// weight. Immutable after load.
type Binding struct {
	NodeUUID uint32
	Channel  Channel
	Mode     InterpolateMode

	Values [][]float64          // scalar channels, indexed [ix][iy]
	Deform [][][]mathutil.Vec2  // deform channel: per-vertex offsets per cell
	IsSet  [][]bool
}

// Param is an axis-indexed control surface with one or two degrees of
// freedom. AxisPoints hold strictly increasing normalized break-point
// positions in [0, 1] per axis; 1-DOF parameters carry a single-point
// second axis. Immutable after load.
type Param struct {
	UUID     uint32
	Name     string
	IsVec2   bool
	Min      mathutil.Vec2
	Max      mathutil.Vec2
	Defaults mathutil.Vec2

	AxisPoints [2][]float64
	Bindings   []*Binding
}

type wireParam struct {
	UUID       uint32             `json:"uuid"`
	Name       string             `json:"name"`
	IsVec2     bool               `json:"is_vec2"`
	Min        []float32          `json:"min"`
	Max        []float32          `json:"max"`
	Defaults   []float32          `json:"defaults"`
	AxisPoints [][]float64        `json:"axis_points"`
	Bindings   []wireBinding      `json:"bindings"`
}

type wireBinding struct {
	Node            uint32          `json:"node"`
	ParamName       string          `json:"param_name"`
	Values          json.RawMessage `json:"values"`
	IsSet           [][]bool        `json:"isSet"`
	InterpolateMode string          `json:"interpolate_mode"`
}

func buildParam(raw json.RawMessage) (*Param, error) {
	var w wireParam
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	p := &Param{
		UUID:     w.UUID,
		Name:     w.Name,
		IsVec2:   w.IsVec2,
		Min:      pair(w.Min, 0),
		Max:      pair(w.Max, 1),
		Defaults: pair(w.Defaults, 0),
	}

	if len(w.AxisPoints) > 0 {
		p.AxisPoints[0] = w.AxisPoints[0]
	}
	if len(w.AxisPoints) > 1 {
		p.AxisPoints[1] = w.AxisPoints[1]
	}
	if len(p.AxisPoints[0]) == 0 {
		p.AxisPoints[0] = []float64{0, 1}
	}
	if len(p.AxisPoints[1]) == 0 {
		// 1-DOF parameters use a degenerate single-point second axis.
		p.AxisPoints[1] = []float64{0}
	}
	for axis := 0; axis < 2; axis++ {
		pts := p.AxisPoints[axis]
		for i := range pts {
			if pts[i] < 0 || pts[i] > 1 || (i > 0 && pts[i] <= pts[i-1]) {
				return nil, fmt.Errorf("%w: %q axis %d points not strictly increasing in [0,1]", ErrInvalidParam, w.Name, axis)
			}
		}
	}

	for _, wb := range w.Bindings {
		b, err := buildBinding(p, wb)
		if err != nil {
			return nil, err
		}
		p.Bindings = append(p.Bindings, b)
	}
	return p, nil
}

func buildBinding(p *Param, w wireBinding) (*Binding, error) {
	ch, ok := channelNames[w.ParamName]
	if !ok {
		return nil, fmt.Errorf("%w: %q binds unknown channel %q", ErrInvalidParam, p.Name, w.ParamName)
	}

	b := &Binding{
		NodeUUID: w.Node,
		Channel:  ch,
		Mode:     parseInterpolateMode(w.InterpolateMode),
		IsSet:    w.IsSet,
	}

	cols := len(p.AxisPoints[0])
	rows := len(p.AxisPoints[1])

	if ch == ChannelDeform {
		var cells [][][][]float32 // [ix][iy][vertex][2]
		if err := json.Unmarshal(w.Values, &cells); err != nil {
			return nil, fmt.Errorf("%w: %q deform values: %v", ErrInvalidParam, p.Name, err)
		}
		if len(cells) != cols {
			return nil, fmt.Errorf("%w: %q deform grid is %d columns, want %d", ErrInvalidParam, p.Name, len(cells), cols)
		}
		b.Deform = make([][][]mathutil.Vec2, cols)
		for ix := range cells {
			if len(cells[ix]) != rows {
				return nil, fmt.Errorf("%w: %q deform column %d has %d rows, want %d", ErrInvalidParam, p.Name, ix, len(cells[ix]), rows)
			}
			b.Deform[ix] = make([][]mathutil.Vec2, rows)
			for iy := range cells[ix] {
				offs := make([]mathutil.Vec2, 0, len(cells[ix][iy]))
				for _, pt := range cells[ix][iy] {
					if len(pt) < 2 {
						return nil, fmt.Errorf("%w: %q deform offset needs 2 components", ErrInvalidParam, p.Name)
					}
					offs = append(offs, mathutil.Vec2{pt[0], pt[1]})
				}
				b.Deform[ix][iy] = offs
			}
		}
	} else {
		var cells [][]float64
		if err := json.Unmarshal(w.Values, &cells); err != nil {
			return nil, fmt.Errorf("%w: %q values: %v", ErrInvalidParam, p.Name, err)
		}
		if len(cells) != cols {
			return nil, fmt.Errorf("%w: %q grid is %d columns, want %d", ErrInvalidParam, p.Name, len(cells), cols)
		}
		for ix := range cells {
			if len(cells[ix]) != rows {
				return nil, fmt.Errorf("%w: %q column %d has %d rows, want %d", ErrInvalidParam, p.Name, ix, len(cells[ix]), rows)
			}
		}
		b.Values = cells
	}

	// Missing isSet means every cell was authored.
	if b.IsSet == nil {
		b.IsSet = make([][]bool, cols)
		for ix := range b.IsSet {
			b.IsSet[ix] = make([]bool, rows)
			for iy := range b.IsSet[ix] {
				b.IsSet[ix][iy] = true
			}
		}
	}
	if len(b.IsSet) != cols {
		return nil, fmt.Errorf("%w: %q isSet grid is %d columns, want %d", ErrInvalidParam, p.Name, len(b.IsSet), cols)
	}
	for ix := range b.IsSet {
		if len(b.IsSet[ix]) != rows {
			return nil, fmt.Errorf("%w: %q isSet column %d has %d rows, want %d", ErrInvalidParam, p.Name, ix, len(b.IsSet[ix]), rows)
		}
	}

	return b, nil
}

func pair(v []float32, fill float32) mathutil.Vec2 {
	out := mathutil.Vec2{fill, fill}
	if len(v) > 0 {
		out[0] = v[0]
	}
	if len(v) > 1 {
		out[1] = v[1]
	}
	return out
}
