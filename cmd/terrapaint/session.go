package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/assets"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/derive"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/paint"
	"github.com/Faultbox/terrapaint/internal/project"
	"github.com/Faultbox/terrapaint/internal/scene"
)

// session is everything one command works on.
type session struct {
	cfg     *config.Config
	engine  *paint.Engine
	scene   *scene.Scene
	stamps  *assets.Library
	project *project.Project
}

func newSession(cfg *config.Config) (*session, error) {
	pc, err := paint.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	stamps := assets.NewLibrary(cfg.Canvas.StampResolution)
	if err := stamps.LoadDir(cfg.Brush.StampDir); err != nil {
		logger.Warn("stamp directory unreadable", zap.Error(err))
	}

	e, err := paint.New(pc, stamps.At(0))
	if err != nil {
		return nil, err
	}

	topo, err := derive.LoadTopology(cfg.Export.Topology)
	if err != nil {
		// Collision export reports the missing asset when it is attempted.
		logger.Warn("collision topology unavailable", zap.String("path", cfg.Export.Topology), zap.Error(err))
		topo = nil
	}
	deriver := &derive.Deriver{
		Mapping:             e.Mapping(),
		HeightScale:         e.HeightScale(),
		NavCellSize:         cfg.Export.NavCellSize,
		UnwalkableThreshold: cfg.Export.UnwalkableThreshold,
		Topology:            topo,
	}

	sc := scene.New()
	sc.Environment.TerrainScale = cfg.World.HeightScale

	return &session{
		cfg:     cfg,
		engine:  e,
		scene:   sc,
		stamps:  stamps,
		project: project.New(project.LayoutFromConfig(cfg.Export), deriver),
	}, nil
}

// load reads a level. Missing files are tolerated and logged; any other
// failure is returned.
func (s *session) load(dir string) (*project.Report, error) {
	rep, err := s.project.Load(dir, s.engine, s.scene, project.ItemAll)
	var missing *project.MissingFilesError
	if errors.As(err, &missing) && len(rep.Failed) == 0 {
		logger.Warn(missing.Error())
		return rep, nil
	}
	return rep, err
}

// save writes every level file into dir, replacing existing ones.
func (s *session) save(dir string) error {
	rep, err := s.project.Save(dir, s.engine, s.scene, project.SaveOptions{Items: project.ItemAll, Overwrite: true})
	if rep != nil {
		fmt.Printf("Files saved to %s (%d written, %d failed)\n", dir, len(rep.Written), len(rep.Failed))
		for _, f := range rep.Failed {
			fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
		}
	}
	if rep != nil && len(rep.Failed) == 1 && errors.Is(err, derive.ErrMissingAsset) {
		// A level without a topology asset is still usable.
		return nil
	}
	return err
}

// parseMode maps a mode name to a paint mode.
func parseMode(name string) (paint.Mode, error) {
	for _, m := range []paint.Mode{paint.ModeHeight, paint.ModeTexture, paint.ModeVegetation, paint.ModeObject, paint.ModeWalk} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", name)
}

// channelLabel names a channel the way the level files do.
func channelLabel(l project.Layout, ch canvas.Channel) string {
	return fmt.Sprintf("%-12s %s", ch, l.CanvasFile(ch))
}
