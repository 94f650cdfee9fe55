package assets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeStampPNG writes a size×size image filled with a grey level.
func writeStampPNG(t *testing.T, path string, size int, level uint8) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{level, level, level, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestBuiltins(t *testing.T) {
	lib := NewLibrary(32)
	want := []string{"circle", "soft", "square"}
	got := lib.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if lib.At(0).Res != 32 {
		t.Errorf("stamp res = %d, want 32", lib.At(0).Res)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeStampPNG(t, filepath.Join(dir, "rock.png"), 16, 255)
	writeStampPNG(t, filepath.Join(dir, "grass.png"), 16, 128)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644)

	lib := NewLibrary(16)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	names := lib.Names()
	if len(names) != 5 {
		t.Fatalf("names = %v, want builtins + grass + rock", names)
	}
	if names[3] != "grass" || names[4] != "rock" {
		t.Errorf("user stamps not sorted: %v", names)
	}

	rock, err := lib.Get("rock")
	if err != nil {
		t.Fatalf("Get(rock): %v", err)
	}
	if rock.Mask[0] < 0.98 {
		t.Errorf("white stamp mask = %v, want ~1", rock.Mask[0])
	}

	if _, err := lib.Get("missing"); !errors.Is(err, ErrStampNotFound) {
		t.Errorf("expected ErrStampNotFound, got %v", err)
	}
}

func TestLoadDirMissing(t *testing.T) {
	lib := NewLibrary(16)
	if err := lib.LoadDir(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("missing dir should not fail: %v", err)
	}
	if lib.Len() != 3 {
		t.Errorf("len = %d, want 3 builtins", lib.Len())
	}
}

func TestAtWraps(t *testing.T) {
	lib := NewLibrary(8)
	if lib.At(3).Name != "circle" {
		t.Errorf("At(3) = %s, want circle", lib.At(3).Name)
	}
	if lib.At(-1).Name != "square" {
		t.Errorf("At(-1) = %s, want square", lib.At(-1).Name)
	}
}

func TestReloadAndCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dot.png")
	writeStampPNG(t, path, 8, 255)

	lib := NewLibrary(8)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := lib.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	if hits, _ := lib.CacheStats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}

	// Rewrite with a new modification time and a darker image.
	writeStampPNG(t, path, 8, 0)
	later := time.Now().Add(2 * time.Second)
	os.Chtimes(path, later, later)
	if err := lib.Reload(path); err != nil {
		t.Fatal(err)
	}
	s, _ := lib.Get("dot")
	if s.Mask[0] != 0 {
		t.Errorf("reloaded mask = %v, want 0", s.Mask[0])
	}

	os.Remove(path)
	if err := lib.Reload(path); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Get("dot"); !errors.Is(err, ErrStampNotFound) {
		t.Error("removed file should drop the stamp")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(8)
	if err := lib.LoadDir(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- lib.Watch(ctx, func(name string) { changed <- name })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeStampPNG(t, filepath.Join(dir, "fresh.png"), 8, 255)

	select {
	case name := <-changed:
		if name != "fresh" {
			t.Errorf("changed = %s, want fresh", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	if _, err := lib.Get("fresh"); err != nil {
		t.Errorf("Get(fresh): %v", err)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
