package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraState struct {
	Position mgl32.Vec3
	Yaw      float32 // radians, around +Y
	Pitch    float32 // radians
	FovY     float32 // degrees
	Aspect   float32
	Near     float32
	Far      float32
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position: mgl32.Vec3{0, 2, 20},
		FovY:     60,
		Aspect:   16.0 / 9.0,
		Near:     0.3,
		Far:      1000,
	}
}

func (c *CameraState) GetForward() mgl32.Vec3 {
	// Y-up, yaw 0 looks down -Z
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
	}
}

func (c *CameraState) GetRight() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Yaw))),
		0,
		float32(math.Sin(float64(c.Yaw))),
	}
}

func (c *CameraState) GetUp() mgl32.Vec3 {
	return c.GetRight().Cross(c.GetForward()).Normalize()
}

func (c *CameraState) GetViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.GetForward()), mgl32.Vec3{0, 1, 0})
}

func (c *CameraState) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// FrustumCorners returns the eight world-space corners of the view frustum
// slice between the near and far distances: near quad first, then far quad.
func (c *CameraState) FrustumCorners(near, far float32) [8]mgl32.Vec3 {
	fwd := c.GetForward()
	right := c.GetRight()
	up := c.GetUp()
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(c.FovY)) * 0.5))

	var corners [8]mgl32.Vec3
	for i, d := range [2]float32{near, far} {
		h := d * tanHalf
		w := h * c.Aspect
		center := c.Position.Add(fwd.Mul(d))
		corners[i*4+0] = center.Sub(right.Mul(w)).Sub(up.Mul(h))
		corners[i*4+1] = center.Add(right.Mul(w)).Sub(up.Mul(h))
		corners[i*4+2] = center.Add(right.Mul(w)).Add(up.Mul(h))
		corners[i*4+3] = center.Sub(right.Mul(w)).Add(up.Mul(h))
	}
	return corners
}

// ExtractFrustum extracts the 6 planes of the frustum from the view-projection matrix.
// Returns planes in order: Left, Right, Bottom, Top, Near, Far.
// Plane is Ax + By + Cz + D = 0 with the normal pointing inside.
func (c *CameraState) ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4
	row3 := vp.Row(3)
	for axis := 0; axis < 3; axis++ {
		r := vp.Row(axis)
		planes[axis*2] = row3.Add(r)
		planes[axis*2+1] = row3.Sub(r)
	}

	for i := 0; i < 6; i++ {
		length := planes[i].Vec3().Len()
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

func AABBInFrustum(b Bounds, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		// most-inside corner along the plane normal
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] > 0 {
				p[axis] = b.Max[axis]
			} else {
				p[axis] = b.Min[axis]
			}
		}
		if plane.Dot(p.Vec4(1.0)) < 0 {
			return false
		}
	}
	return true
}

func SphereInFrustum(s Sphere, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		if plane.Dot(s.Center.Vec4(1.0)) < -s.Radius {
			return false
		}
	}
	return true
}
