package derive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Faultbox/terrapaint/internal/canvas"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// Mesh is a displaced collision mesh.
type Mesh struct {
	Vertices []math.Vec3
	Faces    [][3]int // zero-based
}

// GenerateCollisionMesh displaces every topology vertex by the height
// canvas: z = bilinear sample at the vertex's canvas UV times scale.
// Faces are copied unchanged.
func GenerateCollisionMesh(topo *Topology, height canvas.Reader, m canvas.Mapping, scale float32) (*Mesh, error) {
	if topo == nil {
		return nil, fmt.Errorf("%w: collision topology", ErrMissingAsset)
	}
	snap := height.Snapshot()

	mesh := &Mesh{
		Vertices: make([]math.Vec3, len(topo.Vertices)),
		Faces:    append([][3]int(nil), topo.Faces...),
	}
	for i, v := range topo.Vertices {
		u, w := m.ToUV(v.X, v.Y)
		z := canvas.SampleImage(snap, u, w).R * scale
		mesh.Vertices[i] = math.Vec3{X: v.X, Y: v.Y, Z: z}
	}
	return mesh, nil
}

// WriteOBJ writes mesh as Wavefront OBJ with fixed six-decimal floats, so
// identical input produces byte-identical output.
func WriteOBJ(w io.Writer, mesh *Mesh) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)

	fmt.Fprintf(bw, "# terrapaint collision mesh\n# vertices %d faces %d\n", len(mesh.Vertices), len(mesh.Faces))
	for _, v := range mesh.Vertices {
		buf = append(buf[:0], 'v')
		for _, c := range [3]float32{v.X, v.Y, v.Z} {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(c), 'f', 6, 32)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for _, f := range mesh.Faces {
		buf = append(buf[:0], 'f')
		for _, i := range f {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(i+1), 10)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}
