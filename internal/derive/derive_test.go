package derive

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// createTestCanvas builds a canvas whose pixels are set by fn.
func createTestCanvas(t *testing.T, ch canvas.Channel, size int, fn func(x, y int) canvas.RGBA) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(ch, size, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Modify(func(img *image.NRGBA64) image.Rectangle {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				canvas.Set(img, x, y, fn(x, y))
			}
		}
		return img.Bounds()
	})
	return c
}

var (
	red   = canvas.RGBA{R: 1, A: 1}
	black = canvas.RGBA{A: 1}
)

func TestNavGridAllUnwalkable(t *testing.T) {
	walk := createTestCanvas(t, canvas.Walkability, 256, func(x, y int) canvas.RGBA { return red })

	records, err := GenerateNavGrid(walk, 8, DefaultUnwalkableThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1024 {
		t.Fatalf("records = %d, want 1024", len(records))
	}
	for i, r := range records {
		if r.Walkable {
			t.Fatalf("record %d walkable", i)
		}
		if r.Row != i/32 || r.Col != i%32 {
			t.Fatalf("record %d at (%d,%d), want row-major order", i, r.Row, r.Col)
		}
	}

	var buf bytes.Buffer
	if err := WriteNavCSV(&buf, records); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1025 {
		t.Fatalf("csv lines = %d, want 1025", len(lines))
	}
	if lines[0] != "row,col,walkable" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[33] != "1,0,0" {
		t.Errorf("line 33 = %q, want 1,0,0", lines[33])
	}
}

func TestNavGridCellClassification(t *testing.T) {
	tests := []struct {
		name     string
		blocked  func(x, y int) bool
		walkable bool
	}{
		{"empty", func(x, y int) bool { return false }, true},
		{"exact half is unwalkable", func(x, y int) bool { return x < 4 }, false},
		{"just under half", func(x, y int) bool { return x < 4 && !(x == 0 && y == 0) }, true},
		{"full", func(x, y int) bool { return true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walk := createTestCanvas(t, canvas.Walkability, 8, func(x, y int) canvas.RGBA {
				if tt.blocked(x, y) {
					return red
				}
				return black
			})
			records, err := GenerateNavGrid(walk, 8, DefaultUnwalkableThreshold)
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != 1 || records[0].Walkable != tt.walkable {
				t.Errorf("records = %+v, want walkable=%v", records, tt.walkable)
			}
		})
	}
}

func TestNavGridPartialCells(t *testing.T) {
	walk := createTestCanvas(t, canvas.Walkability, 16, func(x, y int) canvas.RGBA {
		if x == 15 {
			return red
		}
		return black
	})
	records, err := GenerateNavGrid(walk, 5, DefaultUnwalkableThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 16 {
		t.Fatalf("records = %d, want 4x4", len(records))
	}
	// Column 3 holds only x == 15, which is fully blocked.
	for _, r := range records {
		if want := r.Col != 3; r.Walkable != want {
			t.Errorf("cell (%d,%d) walkable = %v, want %v", r.Row, r.Col, r.Walkable, want)
		}
	}
}

func TestNavGridThreshold(t *testing.T) {
	walk := createTestCanvas(t, canvas.Walkability, 8, func(x, y int) canvas.RGBA {
		return canvas.RGBA{R: 0.4, A: 1}
	})
	records, _ := GenerateNavGrid(walk, 8, 0.5)
	if !records[0].Walkable {
		t.Error("red 0.4 should be walkable at threshold 0.5")
	}
	records, _ = GenerateNavGrid(walk, 8, 0.3)
	if records[0].Walkable {
		t.Error("red 0.4 should block at threshold 0.3")
	}
}

func TestNavGridBadCellSize(t *testing.T) {
	walk := createTestCanvas(t, canvas.Walkability, 8, func(x, y int) canvas.RGBA { return black })
	if _, err := GenerateNavGrid(walk, 0, 0.5); err == nil {
		t.Error("expected error for zero cell size")
	}
}

func TestReadNavCSV(t *testing.T) {
	in := []NavRecord{{0, 0, true}, {0, 1, false}, {1, 0, false}, {1, 1, true}}
	var buf bytes.Buffer
	if err := WriteNavCSV(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadNavCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("read %d records, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("record %d = %+v, want %+v", i, out[i], in[i])
		}
	}

	if _, err := ReadNavCSV(strings.NewReader("a,b,c\n")); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh for bad header, got %v", err)
	}
}

func TestParseOBJ(t *testing.T) {
	src := `# test mesh
o plane
v 0 0 0
v 10 0 0
v 10 10 0
v 0 10 0
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
f -4 -3 -2
`
	topo, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(topo.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(topo.Vertices))
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 1, 2}}
	if len(topo.Faces) != len(want) {
		t.Fatalf("faces = %v, want %v", topo.Faces, want)
	}
	for i := range want {
		if topo.Faces[i] != want[i] {
			t.Errorf("face %d = %v, want %v", i, topo.Faces[i], want[i])
		}
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 9\n"},
		{"bad coordinate", "v zero 0 0\n"},
		{"no faces", "v 0 0 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src)); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func TestLoadTopologyMissing(t *testing.T) {
	_, err := LoadTopology(filepath.Join(t.TempDir(), "collision.obj"))
	if !errors.Is(err, ErrMissingAsset) {
		t.Errorf("expected ErrMissingAsset, got %v", err)
	}
}

func TestGridTopology(t *testing.T) {
	topo := GridTopology(4, 64)
	if len(topo.Vertices) != 25 {
		t.Errorf("vertices = %d, want 25", len(topo.Vertices))
	}
	if len(topo.Faces) != 32 {
		t.Errorf("faces = %d, want 32", len(topo.Faces))
	}
	last := topo.Vertices[len(topo.Vertices)-1]
	if last.X != 64 || last.Y != 64 {
		t.Errorf("last vertex = %v, want (64,64)", last)
	}
}

func TestCollisionMeshSamplesHeight(t *testing.T) {
	height := createTestCanvas(t, canvas.Height, 8, func(x, y int) canvas.RGBA {
		return canvas.Gray(float32(x) / 7)
	})
	topo := &Topology{Faces: [][3]int{{0, 1, 2}}}
	m := canvas.Mapping{Extent: 8}
	// Pixel centres of columns 0, 3 and 7 on row 2.
	for _, x := range []float32{0.5, 3.5, 7.5} {
		topo.Vertices = append(topo.Vertices, topoVertex(x, 2.5))
	}

	mesh, err := GenerateCollisionMesh(topo, height, m, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float32{0, 30.0 / 7, 10} {
		if got := mesh.Vertices[i].Z; math32.Abs(got-want) > 1e-3 {
			t.Errorf("vertex %d z = %v, want %v", i, got, want)
		}
	}
	if mesh.Faces[0] != topo.Faces[0] {
		t.Error("faces must be copied verbatim")
	}
}

func TestCollisionExportDeterministic(t *testing.T) {
	dir := t.TempDir()
	height := createTestCanvas(t, canvas.Height, 64, func(x, y int) canvas.RGBA {
		return canvas.Gray(float32(x*y%64) / 64)
	})
	d := &Deriver{Mapping: canvas.Mapping{Extent: 64}, HeightScale: 25, Topology: GridTopology(16, 64)}

	a := filepath.Join(dir, "a.obj")
	b := filepath.Join(dir, "b.obj")
	if err := d.ExportCollision(a, height); err != nil {
		t.Fatal(err)
	}
	if err := d.ExportCollision(b, height); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Error("repeated export is not byte-identical")
	}

	topo, err := LoadTopology(a)
	if err != nil {
		t.Fatalf("exported OBJ does not parse: %v", err)
	}
	if len(topo.Faces) != 16*16*2 {
		t.Errorf("faces = %d, want %d", len(topo.Faces), 16*16*2)
	}
}

func TestCollisionExportMissingTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.obj")
	height := createTestCanvas(t, canvas.Height, 8, func(x, y int) canvas.RGBA { return canvas.Gray(0) })
	d := &Deriver{Mapping: canvas.Mapping{Extent: 8}, HeightScale: 1}

	if err := d.ExportCollision(path, height); !errors.Is(err, ErrMissingAsset) {
		t.Errorf("expected ErrMissingAsset, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be created without topology")
	}
}

func TestExportNav(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "navmesh.csv")
	pngPath := filepath.Join(dir, "navmesh.png")
	walk := createTestCanvas(t, canvas.Walkability, 32, func(x, y int) canvas.RGBA {
		if y < 16 {
			return red
		}
		return black
	})
	d := &Deriver{NavCellSize: 8}
	if err := d.ExportNav(pngPath, path, walk); err != nil {
		t.Fatal(err)
	}

	pf, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("nav image not written: %v", err)
	}
	img, err := png.Decode(pf)
	pf.Close()
	if err != nil {
		t.Fatalf("decoding nav image: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("nav image width = %d, want 32", img.Bounds().Dx())
	}
	if r, _, _, _ := img.At(3, 3).RGBA(); r != 0xffff {
		t.Errorf("blocked pixel red = %#x, want 0xffff", r)
	}
	if r, _, _, _ := img.At(3, 20).RGBA(); r != 0 {
		t.Errorf("walkable pixel red = %#x, want 0", r)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := ReadNavCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 16 {
		t.Fatalf("records = %d, want 16", len(records))
	}
	for _, r := range records {
		if r.Walkable != (r.Row >= 2) {
			t.Errorf("cell (%d,%d) walkable = %v", r.Row, r.Col, r.Walkable)
		}
	}
}

func TestExportNavImageFailureSkipsCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "navmesh.csv")
	walk := createTestCanvas(t, canvas.Walkability, 16, func(x, y int) canvas.RGBA { return black })
	d := &Deriver{NavCellSize: 4}

	err := d.ExportNav(filepath.Join(dir, "missing", "navmesh.png"), csvPath, walk)
	if err == nil {
		t.Fatal("expected error for unwritable image path")
	}
	if _, err := os.Stat(csvPath); !os.IsNotExist(err) {
		t.Error("csv written despite image failure")
	}
}

func topoVertex(x, y float32) math.Vec2 {
	return math.Vec2{X: x, Y: y}
}
