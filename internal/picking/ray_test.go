package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrapaint/pkg/math"
)

type flatField float32

func (f flatField) HeightAt(x, y float32) float32 { return float32(f) }

// rampField rises along X.
type rampField struct{ slope float32 }

func (r rampField) HeightAt(x, y float32) float32 { return x * r.slope }

func TestScreenToRayCenter(t *testing.T) {
	eye := math.Vec3{X: 100, Y: 100, Z: 200}
	target := math.Vec3{X: 100, Y: 100, Z: 0}
	view := math.LookAt(eye, target, math.Vec3{Y: 1})
	proj := math.Perspective(1, 1, 1, 1000)
	inv, ok := proj.Mul(view).Inverse()
	if !ok {
		t.Fatal("singular view-projection")
	}

	r := ScreenToRay(400, 400, 800, 800, inv)
	if math32.Abs(r.Direction.Z+1) > 1e-3 {
		t.Errorf("centre ray direction = %v, want straight down", r.Direction)
	}

	p, ok := r.IntersectPlaneZ(0)
	if !ok {
		t.Fatal("expected ground hit")
	}
	if math32.Abs(p.X-100) > 0.05 || math32.Abs(p.Y-100) > 0.05 {
		t.Errorf("ground hit = %v, want (100,100)", p)
	}
}

func TestIntersectPlaneZ(t *testing.T) {
	tests := []struct {
		name string
		ray  Ray
		ok   bool
	}{
		{"down", Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}, true},
		{"up", Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: 1}}, false},
		{"parallel", Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{X: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.ray.IntersectPlaneZ(0); ok != tt.ok {
				t.Errorf("ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: 10, Y: 10, Z: 10}, math.Vec3{})

	r := Ray{Origin: math.Vec3{X: -5, Y: 5, Z: 5}, Direction: math.Vec3{X: 1}}
	tmin, tmax, hit := r.IntersectAABB(box)
	if !hit || tmin != 5 || tmax != 15 {
		t.Errorf("got (%v, %v, %v), want (5, 15, true)", tmin, tmax, hit)
	}

	miss := Ray{Origin: math.Vec3{X: -5, Y: 20, Z: 5}, Direction: math.Vec3{X: 1}}
	if _, _, hit := miss.IntersectAABB(box); hit {
		t.Error("expected miss")
	}

	inside := Ray{Origin: math.Vec3{X: 5, Y: 5, Z: 5}, Direction: math.Vec3{Z: 1}}
	if tmin, _, hit := inside.IntersectAABB(box); !hit || tmin >= 0 {
		t.Errorf("inside start: tmin=%v hit=%v", tmin, hit)
	}
}

func TestMarchHeightField(t *testing.T) {
	bounds := NewAABB(math.Vec3{}, math.Vec3{X: 512, Y: 512, Z: 100})

	t.Run("flat", func(t *testing.T) {
		r := Ray{Origin: math.Vec3{X: 100, Y: 200, Z: 300}, Direction: math.Vec3{Z: -1}}
		p, ok := MarchHeightField(r, flatField(40), bounds, 1)
		if !ok {
			t.Fatal("expected hit")
		}
		if math32.Abs(p.Z-40) > 0.01 || p.X != 100 || p.Y != 200 {
			t.Errorf("hit = %v, want (100,200,40)", p)
		}
	})

	t.Run("ramp oblique", func(t *testing.T) {
		dir := math.Vec3{X: 1, Z: -1}.Normalize()
		r := Ray{Origin: math.Vec3{X: 0, Y: 50, Z: 90}, Direction: dir}
		field := rampField{slope: 0.5}
		p, ok := MarchHeightField(r, field, bounds, 2)
		if !ok {
			t.Fatal("expected hit")
		}
		// z = 90 - x meets z = 0.5x at x = 60.
		if math32.Abs(p.X-60) > 0.05 {
			t.Errorf("hit x = %v, want 60", p.X)
		}
	})

	t.Run("miss outside", func(t *testing.T) {
		r := Ray{Origin: math.Vec3{X: -10, Y: -10, Z: 50}, Direction: math.Vec3{X: -1}}
		if _, ok := MarchHeightField(r, flatField(0), bounds, 1); ok {
			t.Error("expected miss")
		}
	})
}
