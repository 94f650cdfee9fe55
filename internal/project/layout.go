// Package project saves and loads a level directory: one PNG per canvas,
// the derived collision mesh and navigation grid, and the scene file.
package project

import (
	"path/filepath"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/config"
)

// Item selects one part of a level for save or load.
type Item uint8

const (
	ItemHeight Item = 1 << iota
	ItemTexture
	ItemVegetation
	ItemScene
	ItemCollision
	ItemNav

	ItemAll = ItemHeight | ItemTexture | ItemVegetation | ItemScene | ItemCollision | ItemNav
)

// Has reports whether every item in o is selected.
func (i Item) Has(o Item) bool { return i&o == o }

// Layout names the files inside a level directory, without extensions.
type Layout struct {
	Height       string
	DetailPrefix string
	Grass        string
	Nav          string
	Collision    string
	Scene        string
}

// DefaultLayout returns the standard file names.
func DefaultLayout() Layout {
	return LayoutFromConfig(config.Default().Export)
}

// LayoutFromConfig takes file names from the export config section.
func LayoutFromConfig(c config.ExportConfig) Layout {
	return Layout{
		Height:       c.HeightFile,
		DetailPrefix: c.DetailPrefix,
		Grass:        c.GrassFile,
		Nav:          c.NavFile,
		Collision:    c.CollisionFile,
		Scene:        c.SceneFile,
	}
}

// CanvasFile returns the image file name for a channel.
func (l Layout) CanvasFile(ch canvas.Channel) string {
	switch ch {
	case canvas.Height:
		return l.Height + ".png"
	case canvas.TextureWeight:
		return l.DetailPrefix + "0.png"
	case canvas.TextureWeight2:
		return l.DetailPrefix + "1.png"
	case canvas.Vegetation:
		return l.Grass + ".png"
	case canvas.Walkability:
		return l.Nav + ".png"
	}
	return ch.String() + ".png"
}

func (l Layout) navCSV() string       { return l.Nav + ".csv" }
func (l Layout) collisionOBJ() string { return l.Collision + ".obj" }
func (l Layout) sceneYAML() string    { return l.Scene + ".yaml" }

// Files lists every file a full save writes, in save order.
func (l Layout) Files(dir string) []string {
	names := []string{
		l.CanvasFile(canvas.Height),
		l.CanvasFile(canvas.TextureWeight),
		l.CanvasFile(canvas.TextureWeight2),
		l.CanvasFile(canvas.Vegetation),
		l.sceneYAML(),
		l.collisionOBJ(),
		l.CanvasFile(canvas.Walkability),
		l.navCSV(),
	}
	for i, n := range names {
		names[i] = filepath.Join(dir, n)
	}
	return names
}
