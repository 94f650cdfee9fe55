package derive

import (
	"fmt"
	"image/png"
	"io"

	"go.uber.org/zap"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/internal/fsutil"
	"github.com/Faultbox/terrapaint/internal/logger"
)

// Deriver bundles the settings for both derivations. Outputs are always
// regenerated wholesale from the current canvases.
type Deriver struct {
	Mapping             canvas.Mapping
	HeightScale         float32
	NavCellSize         int
	UnwalkableThreshold float32
	Topology            *Topology // nil makes collision export fail with ErrMissingAsset
}

// CollisionMesh builds the displaced collision mesh.
func (d *Deriver) CollisionMesh(height canvas.Reader) (*Mesh, error) {
	return GenerateCollisionMesh(d.Topology, height, d.Mapping, d.HeightScale)
}

// ExportCollision writes the collision mesh to path. A missing topology
// fails before any file is created.
func (d *Deriver) ExportCollision(path string, height canvas.Reader) error {
	mesh, err := d.CollisionMesh(height)
	if err != nil {
		return err
	}
	err = fsutil.WriteAtomic(path, func(w io.Writer) error {
		return WriteOBJ(w, mesh)
	})
	if err != nil {
		return fmt.Errorf("exporting collision mesh: %w", err)
	}
	logger.Info("collision mesh exported",
		zap.String("path", path),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("faces", len(mesh.Faces)))
	return nil
}

// NavGrid classifies the walkability canvas.
func (d *Deriver) NavGrid(walk canvas.Reader) ([]NavRecord, error) {
	threshold := d.UnwalkableThreshold
	if threshold <= 0 {
		threshold = DefaultUnwalkableThreshold
	}
	return GenerateNavGrid(walk, d.NavCellSize, threshold)
}

// ExportNav regenerates both navigation outputs: the walkability image at
// pngPath and the per-cell CSV at csvPath. The CSV is not written when the
// image fails.
func (d *Deriver) ExportNav(pngPath, csvPath string, walk canvas.Reader) error {
	if err := d.ExportNavImage(pngPath, walk); err != nil {
		return err
	}
	return d.ExportNavCSV(csvPath, walk)
}

// ExportNavImage writes the walkability canvas as a 16-bit PNG.
func (d *Deriver) ExportNavImage(path string, walk canvas.Reader) error {
	snap := walk.Snapshot()
	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return png.Encode(w, snap)
	})
	if err != nil {
		return fmt.Errorf("exporting nav image: %w", err)
	}
	return nil
}

// ExportNavCSV writes the navigation CSV to path.
func (d *Deriver) ExportNavCSV(path string, walk canvas.Reader) error {
	records, err := d.NavGrid(walk)
	if err != nil {
		return err
	}
	err = fsutil.WriteAtomic(path, func(w io.Writer) error {
		return WriteNavCSV(w, records)
	})
	if err != nil {
		return fmt.Errorf("exporting nav grid: %w", err)
	}

	blocked := 0
	for _, r := range records {
		if !r.Walkable {
			blocked++
		}
	}
	logger.Info("nav grid exported",
		zap.String("path", path),
		zap.Int("cells", len(records)),
		zap.Int("unwalkable", blocked))
	return nil
}
