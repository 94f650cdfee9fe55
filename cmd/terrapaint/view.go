package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/brush"
	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
	"github.com/Faultbox/terrapaint/internal/editor"
	"github.com/Faultbox/terrapaint/internal/engine/input"
	"github.com/Faultbox/terrapaint/internal/engine/renderer"
	"github.com/Faultbox/terrapaint/internal/engine/window"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/internal/paint"
)

const frameInterval = time.Second / 60

var modeKeys = map[input.Action]paint.Mode{
	input.ActionModeHeight:     paint.ModeHeight,
	input.ActionModeTexture:    paint.ModeTexture,
	input.ActionModeVegetation: paint.ModeVegetation,
	input.ActionModeObject:     paint.ModeObject,
	input.ActionModeWalk:       paint.ModeWalk,
}

var axisKeys = map[input.Action]editor.Axis{
	input.ActionAxisHeading: editor.AxisHeading,
	input.ActionAxisPitch:   editor.AxisPitch,
	input.ActionAxisRoll:    editor.AxisRoll,
}

func cmdView(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	model := fs.String("model", "", "Model placed by right click in object mode")
	fs.Parse(args)
	dir, err := levelDir(fs, "view [-model path] <dir>")
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

	win, err := window.New("terrapaint", cfg.Window)
	if err != nil {
		return err
	}
	defer win.Close()

	w, h := win.Size()
	canvases := make([]*canvas.Canvas, 0, canvas.NumChannels)
	for _, ch := range canvas.Channels() {
		canvases = append(canvases, s.engine.CanvasTexture(ch))
	}
	rend, err := renderer.New(renderer.View{Extent: s.engine.Extent(), Width: w, Height: h}, canvases)
	if err != nil {
		return err
	}
	defer rend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := editor.New(s.engine, s.scene, s.stamps, editor.StepsFromConfig(cfg.Brush))
	if *model != "" {
		ctrl.HoldObject(*model)
	}
	go ctrl.Run(ctx, cfg.Editor.TickInterval)

	if cfg.Brush.WatchStamps {
		go func() {
			err := s.stamps.Watch(ctx, func(name string) {
				if s.engine.Stamp().Name == name {
					ctrl.SelectStamp(name)
				}
			})
			if err != nil {
				logger.Warn("stamp watch stopped", zap.Error(err))
			}
		}()
	}

	in := input.New(input.DefaultBindings())
	frame := time.NewTicker(frameInterval)
	defer frame.Stop()

	for range frame.C {
		if in.Update() {
			break
		}
		if in.Resized {
			rend.Resize(in.Width, in.Height)
		}
		handleCommands(in, s, ctrl, dir)

		pointer, onTerrain := rend.View().ScreenToWorld(in.MouseX, in.MouseY)
		ctrl.SetInput(editor.Input{
			Paint:       in.LeftHeld,
			RotateLeft:  in.Held(input.ActionRotateLeft),
			RotateRight: in.Held(input.ActionRotateRight),
			ScaleUp:     in.Held(input.ActionScaleUp),
			ScaleDown:   in.Held(input.ActionScaleDown),
			AlphaUp:     in.Held(input.ActionAlphaUp),
			AlphaDown:   in.Held(input.ActionAlphaDown),
			Pointer:     pointer,
			OnTerrain:   onTerrain,
		})

		rend.Sync()
		ch, br := previewState(s.engine)
		rend.Draw(ch, br)
		win.SwapBuffers()
		win.SetStatus(status(s.engine))
	}

	cancel()
	return s.save(dir)
}

func handleCommands(in *input.Input, s *session, ctrl *editor.Controller, dir string) {
	for a, m := range modeKeys {
		if in.Pressed(a) {
			ctrl.SetMode(m)
		}
	}
	for a, ax := range axisKeys {
		if in.Pressed(a) {
			ctrl.SetAxis(ax)
		}
	}
	e := s.engine

	if n, ok := in.SlotPressed(); ok {
		var err error
		switch e.Mode() {
		case paint.ModeTexture:
			err = e.SetTextureSlot(n)
		case paint.ModeVegetation:
			err = e.SetVegetationSlot(n)
		}
		if err != nil {
			logger.Debug("slot key ignored", zap.Error(err))
		}
	}
	if in.Pressed(input.ActionNextStamp) {
		ctrl.CycleStamp(1)
	}
	if in.Pressed(input.ActionPrevStamp) {
		ctrl.CycleStamp(-1)
	}
	if in.Pressed(input.ActionHeightMode) && e.Mode() == paint.ModeHeight {
		e.SetHeightMode((e.HeightMode() + 1) % (brush.Blur + 1))
	}
	if in.Pressed(input.ActionErase) {
		for _, ch := range e.ActiveChannels() {
			if ch.Binary() {
				next := brush.Erase
				if e.BinaryMode(ch) == brush.Erase {
					next = brush.Paint
				}
				e.SetBinaryMode(ch, next)
			}
		}
	}
	if in.Pressed(input.ActionSample) && e.Mode() == paint.ModeHeight {
		e.SetLevelTarget(e.SampleLevelTarget())
	}
	if in.RightClicked && e.Mode() == paint.ModeObject {
		ctrl.Drop()
	}
	if in.Pressed(input.ActionSave) {
		if err := s.save(dir); err != nil {
			logger.Error("save failed", zap.Error(err))
		}
	}
}

// previewState picks the canvas to show and the brush outline for it.
func previewState(e *paint.Engine) (canvas.Channel, renderer.Brush) {
	active := e.ActiveChannels()
	ch := canvas.Height
	if len(active) > 0 {
		ch = active[0]
	}
	t := e.Transform()
	extent := e.Extent()
	return ch, renderer.Brush{
		U:       t.Position.X / extent,
		V:       t.Position.Y / extent,
		Radius:  t.Size / extent,
		Visible: len(active) > 0,
	}
}

func status(e *paint.Engine) string {
	t := e.Transform()
	s := fmt.Sprintf("%s  size %.2f  strength %.2f  heading %.0f", e.Mode(), t.Size, t.Strength, t.Heading)
	if e.Mode() == paint.ModeHeight {
		s += fmt.Sprintf("  %s", e.HeightMode())
		if e.HeightMode() == brush.Level {
			s += fmt.Sprintf(" %.2f", e.LevelTarget())
		}
	}
	return s
}
