package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2    { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float32      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float32         { return math32.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float32 { return v.Sub(o).Length() }

// Rotate returns v rotated counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float32) Vec2 {
	s, c := math32.Sincos(Radians(deg))
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Vec3 is a 3D vector. Terrain space is Z-up: X/Y span the ground plane.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float32   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector, or zero for a zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// XY drops the height component.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

// Vec4 is a homogeneous 4-component vector.
type Vec4 [4]float32

// Vec3 performs the perspective divide.
func (v Vec4) Vec3() Vec3 {
	if v[3] == 0 || v[3] == 1 {
		return Vec3{v[0], v[1], v[2]}
	}
	return Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
}
