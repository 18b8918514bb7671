package mesh

import (
	"encoding/json"
	"testing"

	"inp-rig-runtime/internal/mathutil"
)

func quad33(t *testing.T) *Data {
	t.Helper()
	return NewQuad(mathutil.Vec2{10, 10}, [4]float32{0, 0, 1, 1}, 2, 2, mathutil.Vec2{})
}

func signedArea(d *Data, tri int) float32 {
	a := d.Vertices[d.Indices[tri*3]]
	b := d.Vertices[d.Indices[tri*3+1]]
	c := d.Vertices[d.Indices[tri*3+2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// --- NewQuad ---

func TestNewQuadCounts(t *testing.T) {
	d := quad33(t)
	if len(d.Vertices) != 9 {
		t.Errorf("vertices = %d, want 9", len(d.Vertices))
	}
	if len(d.UVs) != 9 {
		t.Errorf("uvs = %d, want 9", len(d.UVs))
	}
	if len(d.Indices) != 24 {
		t.Errorf("indices = %d, want 24 (2x2 cells, 2 triangles each)", len(d.Indices))
	}
	if !d.IsGrid() {
		t.Error("3x3 vertex grid should be regenerable")
	}
	if !d.IsReady() {
		t.Error("quad mesh should be ready")
	}
}

func TestNewQuadClampsCuts(t *testing.T) {
	d := NewQuad(mathutil.Vec2{4, 4}, [4]float32{0, 0, 1, 1}, 0, 1, mathutil.Vec2{})
	if len(d.AxisX) != 3 || len(d.AxisY) != 3 {
		t.Errorf("axes = %dx%d, want 3x3 (cuts clamped to 2)", len(d.AxisX), len(d.AxisY))
	}
}

func TestNewQuadUVSpan(t *testing.T) {
	d := NewQuad(mathutil.Vec2{10, 20}, [4]float32{0.5, 0, 1, 0.5}, 2, 2, mathutil.Vec2{})
	// Center vertex (index 4) sits halfway along both axes.
	uv := d.UVs[4]
	if uv[0] != 0.75 || uv[1] != 0.25 {
		t.Errorf("center uv = (%g, %g), want (0.75, 0.25)", uv[0], uv[1])
	}
}

func TestNewQuadOriginNotBaked(t *testing.T) {
	d := NewQuad(mathutil.Vec2{10, 10}, [4]float32{0, 0, 1, 1}, 2, 2, mathutil.Vec2{5, 5})
	if d.Origin != (mathutil.Vec2{5, 5}) {
		t.Errorf("origin = %v, want (5, 5)", d.Origin)
	}
	if d.Vertices[0] != (mathutil.Vec2{0, 0}) {
		t.Errorf("first vertex = %v, origin must not offset vertices", d.Vertices[0])
	}
}

// --- Winding ---

func TestQuadWindingAlreadyConsistent(t *testing.T) {
	d := quad33(t)
	before := make([]uint16, len(d.Indices))
	copy(before, d.Indices)

	d.FixWinding()

	for i := range before {
		if d.Indices[i] != before[i] {
			t.Fatalf("FixWinding changed index %d: %d -> %d", i, before[i], d.Indices[i])
		}
	}
}

func TestQuadSignedAreasNonNegative(t *testing.T) {
	d := quad33(t)
	d.FixWinding()
	for tri := 0; tri < len(d.Indices)/3; tri++ {
		if area := signedArea(d, tri); area < 0 {
			t.Errorf("triangle %d has negative signed area %g", tri, area)
		}
	}
}

func TestFixWindingRepairsClockwise(t *testing.T) {
	d := &Data{
		Vertices: []mathutil.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:  []uint16{0, 2, 1}, // clockwise
	}
	if signedArea(d, 0) >= 0 {
		t.Fatal("fixture should start clockwise")
	}
	d.FixWinding()
	if area := signedArea(d, 0); area < 0 {
		t.Errorf("signed area after FixWinding = %g, want >= 0", area)
	}
}

func TestFixWindingNotReadyIsNoop(t *testing.T) {
	d := &Data{
		Vertices: []mathutil.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:  []uint16{0, 2}, // not a whole triangle
	}
	d.FixWinding()
	if d.Indices[0] != 0 || d.Indices[1] != 2 {
		t.Error("FixWinding must not touch a non-multiple-of-3 index list")
	}
}

// --- Grid dirty detection ---

func TestClearGridIsDirtyCleanAfterGenerate(t *testing.T) {
	d := quad33(t)
	if d.ClearGridIsDirty() {
		t.Error("fresh quad mesh reported dirty")
	}
	d.RegenerateGrid()
	if d.ClearGridIsDirty() {
		t.Error("regenerated mesh reported dirty")
	}
}

func TestClearGridIsDirtyAfterVertexEdit(t *testing.T) {
	d := quad33(t)
	d.Vertices[4][0] += 0.5

	if !d.ClearGridIsDirty() {
		t.Fatal("moved vertex not detected")
	}
	if len(d.AxisX) != 0 || len(d.AxisY) != 0 {
		t.Error("axis arrays must be cleared once vertices diverge")
	}
	if d.IsGrid() {
		t.Error("mesh must stop being a grid after divergence")
	}
	// A second call has nothing left to check.
	if d.ClearGridIsDirty() {
		t.Error("dirty reported twice")
	}
}

func TestClearGridIsDirtyCountMismatch(t *testing.T) {
	d := quad33(t)
	d.Vertices = d.Vertices[:8]
	if !d.ClearGridIsDirty() {
		t.Error("vertex count mismatch not detected")
	}
}

// --- Regeneration ---

func TestRegenerateGridFromEditedAxes(t *testing.T) {
	d := quad33(t)
	d.AxisX = []float32{0, 2.5, 5, 10}
	d.RegenerateGrid()

	if len(d.Vertices) != 4*3 {
		t.Fatalf("vertices = %d, want 12", len(d.Vertices))
	}
	if len(d.Indices) != 3*2*6 {
		t.Errorf("indices = %d, want 36", len(d.Indices))
	}
	if d.ClearGridIsDirty() {
		t.Error("regenerated mesh reported dirty")
	}
	// UVs renormalize into the axis span.
	if d.UVs[1][0] != 0.25 {
		t.Errorf("uv.x at axis coord 2.5 = %g, want 0.25", d.UVs[1][0])
	}
}

func TestRegenerateGridNonGridIsNoop(t *testing.T) {
	d := &Data{Vertices: []mathutil.Vec2{{1, 2}}}
	d.RegenerateGrid()
	if len(d.Vertices) != 1 {
		t.Error("RegenerateGrid must not touch a free-form mesh")
	}
}

// --- Find ---

func TestFind(t *testing.T) {
	d := quad33(t)
	if got := d.Find(mathutil.Vec2{5, 5}); got != 4 {
		t.Errorf("Find(center) = %d, want 4", got)
	}
	if got := d.Find(mathutil.Vec2{-1, -1}); got != -1 {
		t.Errorf("Find(absent) = %d, want -1", got)
	}
}

// --- JSON round trip ---

func TestJSONRoundTrip(t *testing.T) {
	src := NewQuad(mathutil.Vec2{7.5, 3.25}, [4]float32{0.1, 0.2, 0.9, 0.8}, 3, 2, mathutil.Vec2{1.5, -2.25})

	blob, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Data
	if err := json.Unmarshal(blob, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(got.Vertices) != len(src.Vertices) {
		t.Fatalf("vertices = %d, want %d", len(got.Vertices), len(src.Vertices))
	}
	for i := range src.Vertices {
		if got.Vertices[i] != src.Vertices[i] {
			t.Errorf("vertex %d = %v, want %v (must be bit-identical)", i, got.Vertices[i], src.Vertices[i])
		}
		if got.UVs[i] != src.UVs[i] {
			t.Errorf("uv %d = %v, want %v", i, got.UVs[i], src.UVs[i])
		}
	}
	for i := range src.Indices {
		if got.Indices[i] != src.Indices[i] {
			t.Errorf("index %d = %d, want %d", i, got.Indices[i], src.Indices[i])
		}
	}
	if got.Origin != src.Origin {
		t.Errorf("origin = %v, want %v", got.Origin, src.Origin)
	}
	if len(got.AxisX) != len(src.AxisX) || len(got.AxisY) != len(src.AxisY) {
		t.Errorf("axes = %dx%d, want %dx%d", len(got.AxisX), len(got.AxisY), len(src.AxisX), len(src.AxisY))
	}
}

func TestJSONRoundTripEmpty(t *testing.T) {
	src := &Data{}
	blob, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Data
	if err := json.Unmarshal(blob, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Vertices) != 0 || len(got.Indices) != 0 {
		t.Errorf("empty mesh round-tripped to %d verts, %d indices", len(got.Vertices), len(got.Indices))
	}
}

func TestUnmarshalRejectsBadTopology(t *testing.T) {
	cases := []struct {
		name string
		blob string
	}{
		{"odd verts", `{"verts":[0,0,1],"indices":[]}`},
		{"partial triangle", `{"verts":[0,0,1,0,0,1],"indices":[0,1]}`},
		{"index out of range", `{"verts":[0,0,1,0,0,1],"indices":[0,1,3]}`},
		{"uv count mismatch", `{"verts":[0,0,1,0,0,1],"uvs":[0,0],"indices":[0,1,2]}`},
	}
	for _, tc := range cases {
		var d Data
		if err := json.Unmarshal([]byte(tc.blob), &d); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

// --- Benchmarks ---

func BenchmarkFixWinding(b *testing.B) {
	d := NewQuad(mathutil.Vec2{100, 100}, [4]float32{0, 0, 1, 1}, 20, 20, mathutil.Vec2{})
	b.ReportAllocs()
	for b.Loop() {
		d.FixWinding()
	}
}
