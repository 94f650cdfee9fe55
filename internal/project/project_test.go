package project

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/derive"
	"github.com/Faultbox/terrapaint/internal/paint"
	"github.com/Faultbox/terrapaint/internal/scene"
	"github.com/Faultbox/terrapaint/pkg/math"
)

func newTestEngine(t *testing.T) *paint.Engine {
	t.Helper()
	cfg := paint.Config{Extent: 32, HeightScale: 10, PickResolution: 16}
	for _, ch := range canvas.Channels() {
		cfg.Sizes[ch] = 32
	}
	e, err := paint.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// fillPattern writes a per-channel gradient so round trips are checkable.
func fillPattern(e *paint.Engine) {
	for _, ch := range canvas.Channels() {
		e.CanvasTexture(ch).Modify(func(img *image.NRGBA64) image.Rectangle {
			b := img.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					v := float32(x+y*int(ch+1)) / 256
					canvas.Set(img, x, y, canvas.RGBA{R: v, G: 1 - v, B: v / 2, A: 1})
				}
			}
			return b
		})
	}
}

func newTestProject(topo *derive.Topology) *Project {
	return New(DefaultLayout(), &derive.Deriver{
		Mapping:     canvas.Mapping{Extent: 32},
		HeightScale: 10,
		NavCellSize: 8,
		Topology:    topo,
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "level")
	src := newTestEngine(t)
	fillPattern(src)
	sc := scene.New()
	sc.Add(scene.Object{Model: "tree.egg", Position: math.Vec3{X: 4, Y: 4}})

	p := newTestProject(derive.GridTopology(4, 32))
	rep, err := p.Save(dir, src, sc, SaveOptions{Items: ItemAll})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(rep.Written) != 8 {
		t.Errorf("written = %d files, want 8: %v", len(rep.Written), rep.Written)
	}
	for _, f := range p.Layout.Files(dir) {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}

	dst := newTestEngine(t)
	loadedScene := scene.New()
	rep, err = p.Load(dir, dst, loadedScene, ItemAll)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rep.Loaded) != 6 {
		t.Errorf("loaded = %d files, want 6: %v", len(rep.Loaded), rep.Loaded)
	}
	for _, ch := range canvas.Channels() {
		for _, pt := range []image.Point{{0, 0}, {5, 17}, {31, 31}} {
			if a, b := src.Canvas(ch).Pixel(pt.X, pt.Y), dst.Canvas(ch).Pixel(pt.X, pt.Y); a != b {
				t.Errorf("%s pixel %v = %+v, want %+v", ch, pt, b, a)
			}
		}
	}
	if loadedScene.Len() != 1 {
		t.Errorf("scene objects = %d, want 1", loadedScene.Len())
	}
}

func TestSaveRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	p := newTestProject(nil)
	if _, err := p.Save(dir, newTestEngine(t), nil, SaveOptions{Items: ItemHeight}); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := p.Save(dir, newTestEngine(t), nil, SaveOptions{Items: ItemHeight, Overwrite: true}); err != nil {
		t.Errorf("overwrite save: %v", err)
	}
}

func TestSaveMissingTopology(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "level")
	p := newTestProject(nil)

	rep, err := p.Save(dir, newTestEngine(t), scene.New(), SaveOptions{Items: ItemAll})
	if !errors.Is(err, derive.ErrMissingAsset) {
		t.Fatalf("expected ErrMissingAsset, got %v", err)
	}
	if len(rep.Failed) != 1 {
		t.Fatalf("failed = %v, want only the collision mesh", rep.Failed)
	}
	if len(rep.Written) != 7 {
		t.Errorf("written = %d, the rest of the save must continue", len(rep.Written))
	}
	if _, err := os.Stat(filepath.Join(dir, "collision.obj")); !os.IsNotExist(err) {
		t.Error("collision.obj must not be created without topology")
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	p := newTestProject(nil)
	e := newTestEngine(t)

	// Only the height map is present.
	if err := e.SaveChannel(canvas.Height, filepath.Join(dir, "heightmap.png")); err != nil {
		t.Fatal(err)
	}

	rep, err := p.Load(dir, e, scene.New(), ItemAll)
	var missing *MissingFilesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingFilesError, got %v", err)
	}
	if len(missing.Paths) != 5 {
		t.Errorf("missing = %v, want 5 files", missing.Paths)
	}
	if len(rep.Loaded) != 1 {
		t.Errorf("loaded = %v, want the height map", rep.Loaded)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "heightmap.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := newTestProject(nil)
	rep, err := p.Load(dir, newTestEngine(t), nil, ItemHeight)
	if err == nil {
		t.Fatal("expected decode error")
	}
	var missing *MissingFilesError
	if errors.As(err, &missing) {
		t.Error("corrupt file must not be reported as missing")
	}
	if len(rep.Failed) != 1 {
		t.Errorf("failed = %v", rep.Failed)
	}
}

func TestLayoutFiles(t *testing.T) {
	l := DefaultLayout()
	want := []string{"heightmap.png", "detail0.png", "detail1.png", "grass.png", "scene.yaml", "collision.obj", "navmesh.png", "navmesh.csv"}
	got := l.Files("")
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestItemHas(t *testing.T) {
	if !ItemAll.Has(ItemNav | ItemScene) {
		t.Error("ItemAll must include every item")
	}
	if ItemHeight.Has(ItemTexture) {
		t.Error("height alone must not include texture")
	}
}
