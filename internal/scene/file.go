package scene

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrapaint/internal/fsutil"
	"github.com/Faultbox/terrapaint/internal/logger"
	"github.com/Faultbox/terrapaint/pkg/math"
)

// FileVersion is written into every scene file.
const FileVersion = 1

type fileSpec struct {
	Version     int          `yaml:"version"`
	Environment Environment  `yaml:"environment"`
	Textures    []string     `yaml:"textures,omitempty"`
	Grass       []string     `yaml:"grass,omitempty"`
	Objects     []objectSpec `yaml:"objects,omitempty"`
}

type objectSpec struct {
	ID         ObjectID   `yaml:"id"`
	Model      string     `yaml:"model"`
	Position   [3]float32 `yaml:"position,flow"`
	HPR        [3]float32 `yaml:"hpr,flow"`
	Scale      float32    `yaml:"scale"`
	Light      *lightSpec `yaml:"light,omitempty"`
	Properties string     `yaml:"properties,omitempty"`
}

type lightSpec struct {
	Color  [3]float32 `yaml:"color,flow"`
	Radius float32    `yaml:"radius"`
}

func toArray(v math.Vec3) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

func fromArray(a [3]float32) math.Vec3 { return math.Vec3{X: a[0], Y: a[1], Z: a[2]} }

// Encode writes the scene description as YAML.
func (s *Scene) Encode(w io.Writer) error {
	spec := fileSpec{
		Version:     FileVersion,
		Environment: s.Environment,
		Textures:    s.Textures,
		Grass:       s.Grass,
	}
	for _, o := range s.Objects() {
		md := s.Metadata(o.ID)
		entry := objectSpec{
			ID:         o.ID,
			Model:      o.Model,
			Position:   toArray(o.Position),
			HPR:        toArray(o.HPR),
			Scale:      o.Scale,
			Properties: md.Properties,
		}
		if md.Light != nil {
			entry.Light = &lightSpec{Color: md.Light.Color, Radius: md.Light.Radius}
		}
		spec.Objects = append(spec.Objects, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&spec); err != nil {
		return fmt.Errorf("scene: encode: %w", err)
	}
	return enc.Close()
}

// Decode replaces the scene contents with the YAML description read from r.
// Object IDs are preserved; new objects continue after the largest one.
func (s *Scene) Decode(r io.Reader) error {
	var spec fileSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		return fmt.Errorf("scene: decode: %w", err)
	}
	if spec.Version > FileVersion {
		return fmt.Errorf("scene: unsupported file version %d", spec.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = 1
	clear(s.objects)
	clear(s.meta)
	s.Environment = spec.Environment
	s.Textures = spec.Textures
	s.Grass = spec.Grass

	for _, o := range spec.Objects {
		if _, dup := s.objects[o.ID]; dup || o.ID == 0 {
			return fmt.Errorf("scene: invalid or duplicate object id %d", o.ID)
		}
		s.objects[o.ID] = &Object{
			ID:       o.ID,
			Model:    o.Model,
			Position: fromArray(o.Position),
			HPR:      fromArray(o.HPR),
			Scale:    o.Scale,
		}
		md := Metadata{Properties: o.Properties}
		if o.Light != nil {
			md.Light = &LightRef{Color: o.Light.Color, Radius: o.Light.Radius}
		}
		if md.Light != nil || md.Properties != "" {
			s.meta[o.ID] = md
		}
		s.nextID = max(s.nextID, o.ID+1)
	}
	return nil
}

// Save writes the scene description to path atomically.
func (s *Scene) Save(path string) error {
	if err := fsutil.WriteAtomic(path, s.Encode); err != nil {
		return err
	}
	logger.Debug("scene saved", zap.String("path", path), zap.Int("objects", s.Len()))
	return nil
}

// Load reads the scene description at path. A missing file returns an
// error matching fs.ErrNotExist and leaves the scene untouched.
func (s *Scene) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.Decode(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("scene loaded", zap.String("path", path), zap.Int("objects", s.Len()))
	return nil
}
