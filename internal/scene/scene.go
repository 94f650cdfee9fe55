// Package scene is the placed-object side table: typed objects keyed by a
// stable ID, their optional light and property metadata, and the level's
// environment settings.
package scene

import (
	"errors"
	"slices"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/internal/picking"
	"github.com/Faultbox/terrapaint/pkg/math"
)

var ErrUnknownObject = errors.New("scene: unknown object")

// ObjectID identifies a placed object. IDs are never reused within a scene.
type ObjectID uint64

// Object is one placed model instance. Position is in world units with Z
// up; HPR holds heading, pitch and roll in degrees.
type Object struct {
	ID       ObjectID
	Model    string
	Position math.Vec3
	HPR      math.Vec3
	Scale    float32
}

// LightRef attaches a point light to an object.
type LightRef struct {
	Color  [3]float32
	Radius float32
}

// Metadata is the per-object data the editor attaches besides the transform.
type Metadata struct {
	Light      *LightRef
	Properties string
}

// Scene holds placed objects and level-wide settings. It is safe for
// concurrent use.
type Scene struct {
	mu      sync.RWMutex
	nextID  ObjectID
	objects map[ObjectID]*Object
	meta    map[ObjectID]Metadata

	Environment Environment
	Textures    []string // terrain texture per slot
	Grass       []string // grass texture per vegetation slot
}

// New creates an empty scene with default environment settings.
func New() *Scene {
	return &Scene{
		nextID:      1,
		objects:     make(map[ObjectID]*Object),
		meta:        make(map[ObjectID]Metadata),
		Environment: DefaultEnvironment(),
	}
}

// Add places a copy of obj, assigns it a fresh ID and returns that ID.
// A zero scale becomes 1.
func (s *Scene) Add(obj Object) ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

func (s *Scene) addLocked(obj Object) ObjectID {
	obj.ID = s.nextID
	s.nextID++
	if obj.Scale == 0 {
		obj.Scale = 1
	}
	s.objects[obj.ID] = &obj
	return obj.ID
}

// Remove deletes an object and its metadata.
func (s *Scene) Remove(id ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return ErrUnknownObject
	}
	delete(s.objects, id)
	delete(s.meta, id)
	return nil
}

// Get returns a copy of the object.
func (s *Scene) Get(id ObjectID) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[id]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// Update replaces the transform of an existing object, keeping its ID.
func (s *Scene) Update(obj Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.objects[obj.ID]
	if !ok {
		return ErrUnknownObject
	}
	*cur = obj
	return nil
}

// SetMetadata attaches metadata to an object.
func (s *Scene) SetMetadata(id ObjectID, md Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return ErrUnknownObject
	}
	if md.Light != nil {
		l := *md.Light
		md.Light = &l
	}
	s.meta[id] = md
	return nil
}

// Metadata returns the object's metadata; the zero value if none was set.
func (s *Scene) Metadata(id ObjectID) Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta[id]
}

// Objects returns copies of all objects ordered by ID.
func (s *Scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, *o)
	}
	slices.SortFunc(out, func(a, b Object) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of placed objects.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Lights returns the IDs of objects carrying a light, ordered by ID.
func (s *Scene) Lights() []ObjectID {
	var ids []ObjectID
	for _, o := range s.Objects() {
		if s.Metadata(o.ID).Light != nil {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// DropAt places model on the terrain at (x, y): Z is the terrain height
// there plus zOffset.
func (s *Scene) DropAt(model string, x, y, zOffset float32, terrain picking.HeightField) ObjectID {
	z := terrain.HeightAt(x, y) + zOffset
	return s.Add(Object{
		Model:    model,
		Position: math.Vec3{X: x, Y: y, Z: z},
		Scale:    1,
	})
}

// Bounds returns the object's pick box: a cube of half-size Scale centred
// on its position.
func (o Object) Bounds() picking.AABB {
	h := math32.Abs(o.Scale)
	half := math.Vec3{X: h, Y: h, Z: h}
	return picking.NewAABB(o.Position.Sub(half), o.Position.Add(half))
}

// Pick returns the nearest object whose bounds the ray enters.
func (s *Scene) Pick(r picking.Ray) (ObjectID, bool) {
	var (
		best  ObjectID
		bestT = math32.Inf(1)
	)
	for _, o := range s.Objects() {
		tmin, tmax, hit := r.IntersectAABB(o.Bounds())
		if !hit || tmax < 0 {
			continue
		}
		t := math32.Max(tmin, 0)
		if t < bestT {
			best, bestT = o.ID, t
		}
	}
	return best, !math32.IsInf(bestT, 1)
}

// Clear removes every object and resets ID allocation.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = 1
	clear(s.objects)
	clear(s.meta)
}
