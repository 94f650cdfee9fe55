// Package derive turns painted canvases into exported geometry: a collision
// mesh displaced from the height canvas and a navigation grid classified
// from the walkability canvas.
package derive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/terrapaint/pkg/math"
)

var (
	ErrMissingAsset = errors.New("derive: required asset missing")
	ErrInvalidMesh  = errors.New("derive: invalid mesh data")
)

// Topology is a fixed reference mesh: planar vertex positions in world
// units and triangle indices. Heights are supplied at export time.
type Topology struct {
	Vertices []math.Vec2
	Faces    [][3]int // zero-based
}

// LoadTopology reads a Wavefront OBJ file. Vertex Z is ignored; polygons
// are triangulated as fans.
func LoadTopology(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: topology %s", ErrMissingAsset, path)
		}
		return nil, err
	}
	defer f.Close()

	topo, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return topo, nil
}

// ParseOBJ reads "v" and "f" records from OBJ text. Other records are
// skipped. Face indices may be negative (relative) or carry /vt/vn parts.
func ParseOBJ(r io.Reader) (*Topology, error) {
	topo := &Topology{}
	sc := bufio.NewScanner(r)
	line := 0

	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: line %d: vertex needs x and y", ErrInvalidMesh, line)
			}
			x, errX := strconv.ParseFloat(fields[1], 32)
			y, errY := strconv.ParseFloat(fields[2], 32)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("%w: line %d: bad vertex coordinate", ErrInvalidMesh, line)
			}
			topo.Vertices = append(topo.Vertices, math.Vec2{X: float32(x), Y: float32(y)})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidMesh, line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := faceIndex(ref, len(topo.Vertices))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidMesh, line, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				topo.Faces = append(topo.Faces, [3]int{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(topo.Faces) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidMesh)
	}
	return topo, nil
}

func faceIndex(ref string, count int) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	}
	return 0, fmt.Errorf("face index %d out of range (%d vertices)", n, count)
}

// GridTopology builds a regular n×n quad grid over [0, extent]², each quad
// split into two triangles.
func GridTopology(n int, extent float32) *Topology {
	if n < 1 {
		n = 1
	}
	topo := &Topology{
		Vertices: make([]math.Vec2, 0, (n+1)*(n+1)),
		Faces:    make([][3]int, 0, 2*n*n),
	}
	step := extent / float32(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			topo.Vertices = append(topo.Vertices, math.Vec2{X: float32(i) * step, Y: float32(j) * step})
		}
	}
	row := n + 1
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := j*row + i
			b := a + 1
			c := a + row
			d := c + 1
			topo.Faces = append(topo.Faces, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	return topo
}
