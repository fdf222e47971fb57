package match

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	cameraHome   = mgl32.Vec3{0.2, 2, 0}
	cameraTarget = mgl32.Vec3{0, 0, 0}
	cameraUp     = mgl32.Vec3{0, 1, 0}
)

// Viewport is the screen size the presentation layer draws into, in pixels.
type Viewport struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// DefaultViewport is used until the presentation layer reports its size.
var DefaultViewport = Viewport{Width: 1280, Height: 720}

func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Camera looks down on the rink. Panning moves the eye and the target together.
type Camera struct {
	Position mgl32.Vec3 `json:"position"`
	Target   mgl32.Vec3 `json:"target"`
}

func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset returns the camera to its kick-off view.
func (c *Camera) Reset() {
	c.Position = cameraHome
	c.Target = cameraTarget
}

// View is the look-at matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, cameraUp)
}

// Projection is a frustum whose width follows the viewport aspect ratio.
func Projection(vp Viewport) mgl32.Mat4 {
	aspect := vp.Width / vp.Height
	return mgl32.Frustum(-aspect, aspect, -1, 1, 1, 1000)
}

// Translate pans by (dx, dz). Each axis moves only if it stays within bounds.
func (c *Camera) Translate(dx, dz float32) {
	if x := c.Position[0] + dx; x >= PanMinX && x <= PanMaxX {
		c.Position[0] += dx
		c.Target[0] += dx
	}
	if z := c.Position[2] + dz; z >= PanMinZ && z <= PanMaxZ {
		c.Position[2] += dz
		c.Target[2] += dz
	}
}

// Ray turns a screen point into a normalised world-space direction starting
// at the camera position.
func (c *Camera) Ray(x, y float32, vp Viewport) mgl32.Vec3 {
	ndc := mgl32.Vec4{2*x/vp.Width - 1, -(2*y/vp.Height - 1), -1, 1}

	eye := Projection(vp).Inv().Mul4x1(ndc)
	eye[2] = -1
	eye[3] = 0

	world := c.View().Inv().Mul4x1(eye)
	return world.Vec3().Normalize()
}

// ScreenPoint projects a world point to screen pixels.
func (c *Camera) ScreenPoint(p mgl32.Vec3, vp Viewport) (x, y float32) {
	clip := Projection(vp).Mul4(c.View()).Mul4x1(p.Vec4(1))
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	return (ndcX + 1) / 2 * vp.Width, (1 - ndcY) / 2 * vp.Height
}

// hitsSphere reports whether the ray from origin along dir passes within
// radius of center.
func hitsSphere(center mgl32.Vec3, radius float32, origin, dir mgl32.Vec3) bool {
	toCenter := center.Sub(origin)
	closest := origin.Add(dir.Mul(toCenter.Dot(dir)))
	return center.Sub(closest).Len() < radius
}
