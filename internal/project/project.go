package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/derive"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/scene"
)

var ErrExists = errors.New("project: level directory already exists")

// Canvases is the painting state a level is saved from and loaded into.
type Canvases interface {
	Canvas(ch canvas.Channel) canvas.Reader
	SaveChannel(ch canvas.Channel, path string) error
	LoadChannel(ch canvas.Channel, path string) error
}

// Failure records one file that could not be written or read.
type Failure struct {
	Path string
	Err  error
}

// Report lists the outcome of a batch save or load per file.
type Report struct {
	Written []string
	Loaded  []string
	Missing []string
	Failed  []Failure
}

// Err joins all failures into a single error, or nil.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failed)+1)
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	if len(r.Missing) > 0 {
		errs = append(errs, &MissingFilesError{Paths: r.Missing})
	}
	return errors.Join(errs...)
}

func (r *Report) fail(path string, err error) {
	logger.Warn("level file failed", zap.String("path", path), zap.Error(err))
	r.Failed = append(r.Failed, Failure{Path: path, Err: err})
}

// MissingFilesError lists every file a load expected but did not find.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return "Some files are missing: " + strings.Join(e.Paths, " ")
}

// Project binds a level layout to the components it saves and loads.
type Project struct {
	Layout  Layout
	Deriver *derive.Deriver
}

// New creates a project using layout and deriver for collision and
// navigation exports.
func New(layout Layout, deriver *derive.Deriver) *Project {
	return &Project{Layout: layout, Deriver: deriver}
}

// SaveOptions controls a batch save.
type SaveOptions struct {
	Items     Item
	Overwrite bool // write into an existing directory
}

// Save writes the selected items into dir. Each file is written
// independently; a failure is recorded in the report and the remaining
// files are still attempted. The returned error joins all failures.
func (p *Project) Save(dir string, cv Canvases, sc *scene.Scene, opts SaveOptions) (*Report, error) {
	if _, err := os.Stat(dir); err == nil && !opts.Overwrite {
		return nil, fmt.Errorf("%w: %s", ErrExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating level directory: %w", err)
	}

	rep := &Report{}
	write := func(name string, fn func(path string) error) {
		path := filepath.Join(dir, name)
		if err := fn(path); err != nil {
			rep.fail(path, err)
			return
		}
		logger.Info("saved", zap.String("path", path))
		rep.Written = append(rep.Written, path)
	}
	saveCanvas := func(ch canvas.Channel) {
		write(p.Layout.CanvasFile(ch), func(path string) error { return cv.SaveChannel(ch, path) })
	}

	if opts.Items.Has(ItemHeight) {
		saveCanvas(canvas.Height)
	}
	if opts.Items.Has(ItemTexture) {
		saveCanvas(canvas.TextureWeight)
		saveCanvas(canvas.TextureWeight2)
	}
	if opts.Items.Has(ItemVegetation) {
		saveCanvas(canvas.Vegetation)
	}
	if opts.Items.Has(ItemScene) && sc != nil {
		write(p.Layout.sceneYAML(), sc.Save)
	}
	if opts.Items.Has(ItemCollision) {
		write(p.Layout.collisionOBJ(), func(path string) error {
			return p.Deriver.ExportCollision(path, cv.Canvas(canvas.Height))
		})
	}
	if opts.Items.Has(ItemNav) {
		walk := cv.Canvas(canvas.Walkability)
		write(p.Layout.CanvasFile(canvas.Walkability), func(path string) error {
			return p.Deriver.ExportNavImage(path, walk)
		})
		write(p.Layout.navCSV(), func(path string) error {
			return p.Deriver.ExportNavCSV(path, walk)
		})
	}

	logger.Info("level saved",
		zap.String("dir", dir),
		zap.Int("written", len(rep.Written)),
		zap.Int("failed", len(rep.Failed)))
	return rep, rep.Err()
}

// Load reads the selected items from dir. Every file is attempted; files
// that do not exist are collected and reported once as a
// *MissingFilesError joined with any other failures. Derived outputs are
// not loaded: they are regenerated from the canvases on save.
func (p *Project) Load(dir string, cv Canvases, sc *scene.Scene, items Item) (*Report, error) {
	rep := &Report{}
	read := func(name string, fn func(path string) error) {
		path := filepath.Join(dir, name)
		err := fn(path)
		switch {
		case err == nil:
			logger.Info("loaded", zap.String("path", path))
			rep.Loaded = append(rep.Loaded, path)
		case errors.Is(err, canvas.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			logger.Warn("file not found", zap.String("path", path))
			rep.Missing = append(rep.Missing, path)
		default:
			rep.fail(path, err)
		}
	}
	loadCanvas := func(ch canvas.Channel) {
		read(p.Layout.CanvasFile(ch), func(path string) error { return cv.LoadChannel(ch, path) })
	}

	if items.Has(ItemHeight) {
		loadCanvas(canvas.Height)
	}
	if items.Has(ItemTexture) {
		loadCanvas(canvas.TextureWeight)
		loadCanvas(canvas.TextureWeight2)
	}
	if items.Has(ItemVegetation) {
		loadCanvas(canvas.Vegetation)
	}
	if items.Has(ItemScene) && sc != nil {
		read(p.Layout.sceneYAML(), sc.Load)
	}
	if items.Has(ItemNav) {
		loadCanvas(canvas.Walkability)
	}

	logger.Info("level loaded",
		zap.String("dir", dir),
		zap.Int("loaded", len(rep.Loaded)),
		zap.Int("missing", len(rep.Missing)),
		zap.Int("failed", len(rep.Failed)))
	return rep, rep.Err()
}
