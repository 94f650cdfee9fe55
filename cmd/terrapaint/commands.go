package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/derive"
	"github.com/Faultbox/terrapaint/internal/paint"
	"github.com/Faultbox/terrapaint/pkg/math"
)

func levelDir(fs *flag.FlagSet, usage string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("usage: terrapaint %s", usage)
	}
	return fs.Arg(0), nil
}

func cmdNew(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	force := fs.Bool("f", false, "Overwrite an existing level")
	fs.Parse(args)
	dir, err := levelDir(fs, "new [-f] <dir>")
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", dir)
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	return s.save(dir)
}

// pointList collects repeated -at x,y flags.
type pointList []math.Vec2

func (p *pointList) String() string { return fmt.Sprint(*p) }

func (p *pointList) Set(v string) error {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return fmt.Errorf("point %q must be x,y", v)
	}
	x, errX := strconv.ParseFloat(xs, 32)
	y, errY := strconv.ParseFloat(ys, 32)
	if errX != nil || errY != nil {
		return fmt.Errorf("point %q must be numeric", v)
	}
	*p = append(*p, math.Vec2{X: float32(x), Y: float32(y)})
	return nil
}

var heightOps = map[string]brush.HeightMode{
	"up":    brush.Up,
	"down":  brush.Down,
	"level": brush.Level,
	"blur":  brush.Blur,
}

func cmdPaint(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("paint", flag.ExitOnError)
	mode := fs.String("mode", "height", "Paint mode: height, texture, vegetation, walk")
	op := fs.String("op", "up", "Height operation: up, down, level, blur")
	erase := fs.Bool("erase", false, "Erase on binary channels")
	slot := fs.Int("slot", -1, "Texture or vegetation slot (1-based)")
	size := fs.Float64("size", 0, "Brush radius in world units")
	strength := fs.Float64("strength", -1, "Brush strength")
	heading := fs.Float64("heading", 0, "Brush heading in degrees")
	level := fs.Float64("level", -1, "Level target in [0,1]")
	stamp := fs.String("stamp", "", "Stamp name")
	repeat := fs.Int("repeat", 1, "Dabs per point")
	var points pointList
	fs.Var(&points, "at", "Dab position x,y in world units (repeatable)")
	fs.Parse(args)

	dir, err := levelDir(fs, "paint [options] <dir>")
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.New("paint: at least one -at point is required")
	}
	m, err := parseMode(*mode)
	if err != nil {
		return err
	}
	if m == paint.ModeObject {
		return errors.New("paint: object mode does not paint canvases")
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if _, err := s.load(dir); err != nil {
		return err
	}

	e := s.engine
	e.SetMode(m)
	switch m {
	case paint.ModeHeight:
		hm, ok := heightOps[*op]
		if !ok {
			return fmt.Errorf("paint: unknown height op %q", *op)
		}
		e.SetHeightMode(hm)
		if *level >= 0 {
			e.SetLevelTarget(float32(*level))
		}
	case paint.ModeTexture:
		if *slot > 0 {
			if err := e.SetTextureSlot(*slot - 1); err != nil {
				return err
			}
		}
	case paint.ModeVegetation:
		if *slot > 0 {
			if err := e.SetVegetationSlot(*slot - 1); err != nil {
				return err
			}
		}
	}
	if *erase {
		for _, ch := range e.ActiveChannels() {
			if ch.Binary() {
				e.SetBinaryMode(ch, brush.Erase)
			}
		}
	}
	if *stamp != "" {
		st, err := s.stamps.Get(*stamp)
		if err != nil {
			return err
		}
		e.SetStamp(st)
	}
	if *size > 0 {
		e.SetBrushSize(float32(*size))
	}
	if *strength >= 0 {
		e.SetBrushAlpha(float32(*strength))
	}
	e.SetBrushHeading(float32(*heading))

	var dirty image.Rectangle
	e.BeginStroke()
	for _, p := range points {
		e.MoveBrush(p.X, p.Y)
		for i := 0; i < *repeat; i++ {
			for _, r := range e.PaintActive() {
				dirty = dirty.Union(r)
			}
		}
	}
	e.EndStroke()
	fmt.Printf("Painted %d dab(s) in %s mode, dirty %v\n", len(points)*(*repeat), m, dirty)

	return s.save(dir)
}

func cmdExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Parse(args)
	dir, err := levelDir(fs, "export <dir>")
	if err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if _, err := s.load(dir); err != nil {
		return err
	}

	d := s.project.Deriver
	l := s.project.Layout
	var errs []error
	if err := d.ExportCollision(filepath.Join(dir, l.Collision+".obj"), s.engine.Canvas(canvas.Height)); err != nil {
		errs = append(errs, err)
	}
	navPNG := filepath.Join(dir, l.CanvasFile(canvas.Walkability))
	navCSV := filepath.Join(dir, l.Nav+".csv")
	if err := d.ExportNav(navPNG, navCSV, s.engine.Canvas(canvas.Walkability)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func cmdInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	dir, err := levelDir(fs, "info <dir>")
	if err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	rep, err := s.load(dir)
	if err != nil {
		return err
	}

	e := s.engine
	l := s.project.Layout
	fmt.Printf("Level:    %s\n", dir)
	fmt.Printf("Extent:   %.1f world units, height scale %.1f\n", e.Extent(), e.HeightScale())
	fmt.Printf("Loaded:   %d file(s), missing %d\n", len(rep.Loaded), len(rep.Missing))
	fmt.Println()

	fmt.Println("Canvases:")
	for _, ch := range canvas.Channels() {
		b := e.Canvas(ch).Bounds()
		fmt.Printf("  %s  %dx%d\n", channelLabel(l, ch), b.Dx(), b.Dy())
	}

	lo, hi := heightRange(e.Canvas(canvas.Height))
	fmt.Printf("\nHeight:   %.2f .. %.2f world units\n", lo*e.HeightScale(), hi*e.HeightScale())

	records, err := s.project.Deriver.NavGrid(e.Canvas(canvas.Walkability))
	if err != nil {
		return err
	}
	grid := derive.NewGrid(records)
	fmt.Printf("Nav grid: %dx%d cells, %d walkable\n", grid.Rows, grid.Cols, grid.Count())

	env := s.scene.Environment
	fmt.Printf("Scene:    %d object(s), %d light(s)\n", s.scene.Len(), len(s.scene.Lights()))
	if env.HasWater() {
		fmt.Printf("Water:    level %.1f\n", env.WaterLevel)
	}
	return nil
}

// heightRange returns the lowest and highest stored height.
func heightRange(r canvas.Reader) (lo, hi float32) {
	snap := r.Snapshot()
	b := snap.Bounds()
	lo, hi = math32.Inf(1), math32.Inf(-1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := canvas.At(snap, x, y).R
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi
}
