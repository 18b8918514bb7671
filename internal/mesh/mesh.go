package mesh

import (
	"inp-rig-runtime/internal/mathutil"
)

// Data holds the triangle topology for one drawable: vertex positions,
// optional UVs, triangle indices, and a render-time origin offset that is
// never baked into the vertices themselves.
//
// Meshes generated as regular grids additionally retain their axis
// coordinate arrays (AxisX, AxisY). The cross product of the two arrays
// reproduces Vertices in row-major order, which allows the grid to be
// regenerated at a different resolution while deformation bindings stay
// keyed by grid position.
type Data struct {
	Vertices []mathutil.Vec2
	UVs      []mathutil.Vec2 // same length as Vertices when present
	Indices  []uint16
	Origin   mathutil.Vec2

	// Grid axis coordinates; empty for free-form meshes.
	AxisX []float32
	AxisY []float32
}

// NewQuad builds a regular grid mesh spanning size with cutsX×cutsY cells.
// uvBounds is (u0, v0, u1, v1); UVs are interpolated linearly across it.
// Cuts below 2 on either axis are raised to 2.
func NewQuad(size mathutil.Vec2, uvBounds [4]float32, cutsX, cutsY int, origin mathutil.Vec2) *Data {
	if cutsX < 2 {
		cutsX = 2
	}
	if cutsY < 2 {
		cutsY = 2
	}

	d := &Data{
		Origin: origin,
		AxisX:  make([]float32, cutsX+1),
		AxisY:  make([]float32, cutsY+1),
	}
	for i := 0; i <= cutsX; i++ {
		d.AxisX[i] = size[0] * float32(i) / float32(cutsX)
	}
	for i := 0; i <= cutsY; i++ {
		d.AxisY[i] = size[1] * float32(i) / float32(cutsY)
	}

	d.buildFromAxes(uvBounds)
	return d
}

// RegenerateGrid rebuilds vertices, UVs, and indices purely from the
// retained axis arrays. Used after the axis coordinates were edited
// directly. UVs are recomputed by normalizing each axis coordinate into
// its [min, max] span. No-op unless IsGrid reports true.
func (d *Data) RegenerateGrid() {
	if !d.IsGrid() {
		return
	}
	d.buildFromAxes([4]float32{0, 0, 1, 1})
}

// buildFromAxes fills Vertices, UVs, and Indices from AxisX/AxisY.
// Each grid cell is split into two triangles along an alternating
// diagonal chosen by the cell's position relative to the grid center,
// which spreads distortion symmetrically under non-uniform deformation.
func (d *Data) buildFromAxes(uvBounds [4]float32) {
	cols := len(d.AxisX)
	rows := len(d.AxisY)
	cellsX := cols - 1
	cellsY := rows - 1

	minX, maxX := d.AxisX[0], d.AxisX[cols-1]
	minY, maxY := d.AxisY[0], d.AxisY[rows-1]

	d.Vertices = make([]mathutil.Vec2, 0, cols*rows)
	d.UVs = make([]mathutil.Vec2, 0, cols*rows)
	for iy := 0; iy < rows; iy++ {
		for ix := 0; ix < cols; ix++ {
			x := d.AxisX[ix]
			y := d.AxisY[iy]
			d.Vertices = append(d.Vertices, mathutil.Vec2{x, y})

			u := uvBounds[0] + (uvBounds[2]-uvBounds[0])*float32(mathutil.InvLerp(float64(minX), float64(maxX), float64(x)))
			v := uvBounds[1] + (uvBounds[3]-uvBounds[1])*float32(mathutil.InvLerp(float64(minY), float64(maxY), float64(y)))
			d.UVs = append(d.UVs, mathutil.Vec2{u, v})
		}
	}

	centerX := cellsX / 2
	centerY := cellsY / 2

	d.Indices = make([]uint16, 0, cellsX*cellsY*6)
	for cy := 0; cy < cellsY; cy++ {
		for cx := 0; cx < cellsX; cx++ {
			tl := uint16(cy*cols + cx)
			tr := tl + 1
			bl := uint16((cy+1)*cols + cx)
			br := bl + 1

			if (cx < centerX && cy < centerY) || (cx >= centerX && cy >= centerY) {
				// Diagonal tl-br
				d.Indices = append(d.Indices, tl, tr, br, tl, br, bl)
			} else {
				// Diagonal tr-bl
				d.Indices = append(d.Indices, tl, tr, bl, tr, br, bl)
			}
		}
	}
}

// IsGrid reports whether the mesh can be regenerated from axis arrays.
// A single-cell grid (2 coordinates per axis) does not count.
func (d *Data) IsGrid() bool {
	return len(d.AxisX) > 2 && len(d.AxisY) > 2
}

// ClearGridIsDirty checks whether Vertices diverged from the retained axis
// arrays (count mismatch or any reconstructed grid point differing from
// the stored vertex at the same row-major index). If so, the axis arrays
// are cleared — ad-hoc vertex edits invalidate the regeneration shortcut —
// and true is returned.
func (d *Data) ClearGridIsDirty() bool {
	if len(d.AxisX) == 0 || len(d.AxisY) == 0 {
		return false
	}

	dirty := len(d.Vertices) != len(d.AxisX)*len(d.AxisY)
	if !dirty {
	scan:
		for iy := range d.AxisY {
			for ix := range d.AxisX {
				v := d.Vertices[iy*len(d.AxisX)+ix]
				if v[0] != d.AxisX[ix] || v[1] != d.AxisY[iy] {
					dirty = true
					break scan
				}
			}
		}
	}

	if dirty {
		d.AxisX = nil
		d.AxisY = nil
	}
	return dirty
}

// IsReady reports whether Indices describes a whole number of triangles.
func (d *Data) IsReady() bool {
	return len(d.Indices) > 0 && len(d.Indices)%3 == 0
}

// FixWinding forces counter-clockwise winding (Y-up convention) on every
// triangle by swapping the second and third index where the signed area
// (B-A)×(C-A) is negative. No-op unless IsReady reports true.
func (d *Data) FixWinding() {
	if !d.IsReady() {
		return
	}
	for i := 0; i+2 < len(d.Indices); i += 3 {
		a := d.Vertices[d.Indices[i]]
		b := d.Vertices[d.Indices[i+1]]
		c := d.Vertices[d.Indices[i+2]]
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			d.Indices[i+1], d.Indices[i+2] = d.Indices[i+2], d.Indices[i+1]
		}
	}
}

// Find returns the index of the first vertex equal to v, or -1.
// Used when merging or connecting externally supplied points.
func (d *Data) Find(v mathutil.Vec2) int {
	for i, p := range d.Vertices {
		if p == v {
			return i
		}
	}
	return -1
}
