package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RestThreshold is the squared speed below which a body snaps to rest.
const RestThreshold = 0.01

// Shape is the collision shape of a body. It is either a Disc or a Wall.
type Shape interface {
	shape()
}

// Disc is a vertical cylinder colliding as a circle on the X/Z plane.
type Disc struct {
	Radius float32
}

// Wall is an immovable segment on the X/Z plane with a thickness.
type Wall struct {
	Start     mgl32.Vec2 // (x, z)
	End       mgl32.Vec2 // (x, z)
	Thickness float32
}

func (Disc) shape() {}
func (Wall) shape() {}

// Heading is the cosmetic spin of a moving body: an angle in degrees around Axis.
type Heading struct {
	Angle float32    `json:"angle"`
	Axis  mgl32.Vec3 `json:"axis"`
}

// Transform is a read-only snapshot of what a renderer needs to draw a body.
type Transform struct {
	ID       int        `json:"id"`
	Position mgl32.Vec3 `json:"position"`
	Heading  Heading    `json:"heading"`
	Scale    mgl32.Vec3 `json:"scale"`
}

// Body is a rigid body owned by a World.
type Body struct {
	ID    int
	Shape Shape

	position      mgl32.Vec3
	velocity      mgl32.Vec3
	heading       Heading
	scale         mgl32.Vec3
	mass          float32
	friction      float32
	rotationSpeed float32
}

func newBody(s Shape) *Body {
	return &Body{
		ID:       -1,
		Shape:    s,
		scale:    mgl32.Vec3{1, 1, 1},
		heading:  Heading{Axis: mgl32.Vec3{1, 0, 0}},
		mass:     1,
		friction: 0.8,
	}
}

// NewDisc creates a disc body of the given unscaled radius.
func NewDisc(radius float32) *Body {
	return newBody(Disc{Radius: radius})
}

// NewWall creates a wall body between two (x, z) points.
func NewWall(start, end mgl32.Vec2, thickness float32) *Body {
	return newBody(Wall{Start: start, End: end, Thickness: thickness})
}

func (b *Body) Position() mgl32.Vec3 { return b.position }
func (b *Body) Velocity() mgl32.Vec3 { return b.velocity }
func (b *Body) Heading() Heading     { return b.heading }
func (b *Body) Scale() mgl32.Vec3    { return b.scale }
func (b *Body) Mass() float32        { return b.mass }
func (b *Body) Friction() float32    { return b.friction }

func (b *Body) SetPosition(p mgl32.Vec3) { b.position = p }
func (b *Body) SetVelocity(v mgl32.Vec3) { b.velocity = v }
func (b *Body) SetScale(s mgl32.Vec3)    { b.scale = s }

// SetMass sets the body mass. Non-positive values are ignored.
func (b *Body) SetMass(m float32) {
	if m > 0 {
		b.mass = m
	}
}

// SetFriction sets the per-second velocity damping factor.
func (b *Body) SetFriction(f float32) { b.friction = f }

// SetRotationSpeed sets how many degrees the heading advances per moving step.
func (b *Body) SetRotationSpeed(s float32) { b.rotationSpeed = s }

// IsDisc reports whether the body collides as a disc.
func (b *Body) IsDisc() bool {
	_, ok := b.Shape.(Disc)
	return ok
}

// Radius returns the scaled disc radius, or the thickness of a wall.
func (b *Body) Radius() float32 {
	switch s := b.Shape.(type) {
	case Disc:
		return s.Radius * maxComponent(b.scale)
	case Wall:
		return s.Thickness
	}
	return 0
}

// ApplyImpulse changes the velocity by impulse / mass.
func (b *Body) ApplyImpulse(impulse mgl32.Vec3) {
	b.velocity = b.velocity.Add(impulse.Mul(1 / b.mass))
}

// Transform returns a snapshot of the body's visual state.
func (b *Body) Transform() Transform {
	return Transform{ID: b.ID, Position: b.position, Heading: b.heading, Scale: b.scale}
}

// integrate advances the body by dt and reports whether it is still moving.
func (b *Body) integrate(dt float32) bool {
	b.position = b.position.Add(b.velocity.Mul(dt))
	b.velocity = b.velocity.Sub(b.velocity.Mul(b.friction * dt))

	speedSq := b.velocity.Dot(b.velocity)
	if speedSq <= RestThreshold {
		b.velocity = mgl32.Vec3{}
		return false
	}

	speed := sqrt32(speedSq)
	b.heading.Angle += b.rotationSpeed
	b.heading.Axis = mgl32.Vec3{b.velocity[2] / speed, 0, -b.velocity[0] / speed}
	return true
}

func maxComponent(v mgl32.Vec3) float32 {
	m := v[0]
	if v[1] > m {
		m = v[1]
	}
	if v[2] > m {
		m = v[2]
	}
	return m
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
