// Package picking casts screen rays against the terrain height field and
// placed-object bounds. World space is Z-up.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// NewAABB creates a box from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y), Z: math32.Min(a.Z, b.Z)},
		Max: math.Vec3{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y), Z: math32.Max(a.Z, b.Z)},
	}
}

// ScreenToRay converts screen pixel coordinates to a world-space ray.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // screen Y grows down

	near := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, -1, 1}).Vec3()
	far := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, 1, 1}).Vec3()

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// IntersectPlaneZ intersects the ray with the horizontal plane Z = z.
func (r Ray) IntersectPlaneZ(z float32) (math.Vec3, bool) {
	if math32.Abs(r.Direction.Z) < 1e-3 {
		return math.Vec3{}, false
	}
	t := (z - r.Origin.Z) / r.Direction.Z
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectAABB returns the entry and exit distances of the ray through box.
// A ray starting inside the box has tmin < 0.
func (r Ray) IntersectAABB(box AABB) (tmin, tmax float32, hit bool) {
	tmin = -math32.MaxFloat32
	tmax = math32.MaxFloat32

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// HeightField answers world-space terrain heights.
type HeightField interface {
	HeightAt(x, y float32) float32
}

// MarchHeightField walks the ray through bounds in steps of step world
// units and returns the first point at or below the terrain surface,
// refined by bisection.
func MarchHeightField(r Ray, field HeightField, bounds AABB, step float32) (math.Vec3, bool) {
	tmin, tmax, hit := r.IntersectAABB(bounds)
	if !hit {
		return math.Vec3{}, false
	}
	tmin = math32.Max(tmin, 0)
	if step <= 0 {
		step = 1
	}

	above := func(t float32) bool {
		p := r.At(t)
		return p.Z > field.HeightAt(p.X, p.Y)
	}

	if !above(tmin) {
		return r.At(tmin), true
	}

	prev := tmin
	for t := tmin + step; ; t += step {
		if t > tmax {
			t = tmax
		}
		if !above(t) {
			lo, hi := prev, t
			for i := 0; i < 16; i++ {
				mid := (lo + hi) / 2
				if above(mid) {
					lo = mid
				} else {
					hi = mid
				}
			}
			return r.At(hi), true
		}
		if t >= tmax {
			return math.Vec3{}, false
		}
		prev = t
	}
}
