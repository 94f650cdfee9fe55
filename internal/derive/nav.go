package derive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Faultbox/terrapaint/internal/canvas"
)

// DefaultUnwalkableThreshold is the red level at or above which a
// walkability pixel blocks movement.
const DefaultUnwalkableThreshold = 0.5

var navHeader = []string{"row", "col", "walkable"}

// NavRecord classifies one grid cell.
type NavRecord struct {
	Row, Col int
	Walkable bool
}

// GenerateNavGrid splits the walkability canvas into cellSize×cellSize
// pixel cells (edge cells may be smaller) and classifies each one. A cell
// is unwalkable when at least half of its pixels are unwalkable. Records
// are returned in row-major order.
func GenerateNavGrid(walk canvas.Reader, cellSize int, threshold float32) ([]NavRecord, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("derive: nav cell size must be positive, got %d", cellSize)
	}
	snap := walk.Snapshot()
	b := snap.Bounds()
	rows := (b.Dy() + cellSize - 1) / cellSize
	cols := (b.Dx() + cellSize - 1) / cellSize

	records := make([]NavRecord, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			blocked, total := 0, 0
			for y := row * cellSize; y < min((row+1)*cellSize, b.Dy()); y++ {
				for x := col * cellSize; x < min((col+1)*cellSize, b.Dx()); x++ {
					total++
					if canvas.At(snap, b.Min.X+x, b.Min.Y+y).R >= threshold {
						blocked++
					}
				}
			}
			records = append(records, NavRecord{Row: row, Col: col, Walkable: 2*blocked < total})
		}
	}
	return records, nil
}

// WriteNavCSV writes the header and one line per record.
func WriteNavCSV(w io.Writer, records []NavRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(navHeader); err != nil {
		return err
	}
	line := make([]string, 3)
	for _, r := range records {
		line[0] = strconv.Itoa(r.Row)
		line[1] = strconv.Itoa(r.Col)
		line[2] = "0"
		if r.Walkable {
			line[2] = "1"
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadNavCSV parses a file produced by WriteNavCSV.
func ReadNavCSV(r io.Reader) ([]NavRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(navHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading nav header: %w", err)
	}
	for i, h := range navHeader {
		if header[i] != h {
			return nil, fmt.Errorf("%w: unexpected nav header %v", ErrInvalidMesh, header)
		}
	}

	var records []NavRecord
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		row, errR := strconv.Atoi(line[0])
		col, errC := strconv.Atoi(line[1])
		if errR != nil || errC != nil || (line[2] != "0" && line[2] != "1") {
			return nil, fmt.Errorf("%w: bad nav record %v", ErrInvalidMesh, line)
		}
		records = append(records, NavRecord{Row: row, Col: col, Walkable: line[2] == "1"})
	}
}
