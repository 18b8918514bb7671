package mesh

import (
	"encoding/json"
	"fmt"

	"inp-rig-runtime/internal/mathutil"
)

// wireMesh matches the scene JSON mesh schema: point lists are flattened
// float pairs, grid axes are two coordinate arrays (X then Y).
type wireMesh struct {
	Verts    []float32   `json:"verts"`
	UVs      []float32   `json:"uvs,omitempty"`
	Indices  []uint16    `json:"indices"`
	Origin   []float32   `json:"origin,omitempty"`
	GridAxes [][]float32 `json:"grid_axes,omitempty"`
}

// MarshalJSON encodes the mesh in the scene JSON schema.
func (d *Data) MarshalJSON() ([]byte, error) {
	w := wireMesh{
		Verts:   flatten(d.Vertices),
		UVs:     flatten(d.UVs),
		Indices: d.Indices,
		Origin:  []float32{d.Origin[0], d.Origin[1]},
	}
	if w.Indices == nil {
		w.Indices = []uint16{}
	}
	if len(d.AxisX) > 0 || len(d.AxisY) > 0 {
		w.GridAxes = [][]float32{d.AxisX, d.AxisY}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the scene JSON mesh schema and validates the
// topology invariants: paired coordinates, UV count matching the vertex
// count, and index triples referencing existing vertices.
func (d *Data) UnmarshalJSON(b []byte) error {
	var w wireMesh
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("mesh: %w", err)
	}

	verts, err := unflatten(w.Verts, "verts")
	if err != nil {
		return err
	}
	uvs, err := unflatten(w.UVs, "uvs")
	if err != nil {
		return err
	}
	if uvs != nil && len(uvs) != len(verts) {
		return fmt.Errorf("mesh: %d uvs for %d vertices", len(uvs), len(verts))
	}

	if len(w.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d is not a multiple of 3", len(w.Indices))
	}
	for _, idx := range w.Indices {
		if int(idx) >= len(verts) {
			return fmt.Errorf("mesh: index %d out of range (%d vertices)", idx, len(verts))
		}
	}

	*d = Data{Vertices: verts, UVs: uvs, Indices: w.Indices}
	if len(w.Origin) >= 2 {
		d.Origin = mathutil.Vec2{w.Origin[0], w.Origin[1]}
	}
	if len(w.GridAxes) >= 2 {
		d.AxisX = w.GridAxes[0]
		d.AxisY = w.GridAxes[1]
	}
	return nil
}

func flatten(points []mathutil.Vec2) []float32 {
	if points == nil {
		return nil
	}
	out := make([]float32, 0, len(points)*2)
	for _, p := range points {
		out = append(out, p[0], p[1])
	}
	return out
}

func unflatten(flat []float32, field string) ([]mathutil.Vec2, error) {
	if flat == nil {
		return nil, nil
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("mesh: odd %s length %d", field, len(flat))
	}
	out := make([]mathutil.Vec2, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, mathutil.Vec2{flat[i], flat[i+1]})
	}
	return out, nil
}
