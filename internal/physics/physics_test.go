package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < tolerance
}

func planarDistance(a, b *Body) float32 {
	dx := b.position[0] - a.position[0]
	dz := b.position[2] - a.position[2]
	return sqrt32(dx*dx + dz*dz)
}

// Helper to create a disc at (x, 0, z) with the given radius and mass.
func disc(x, z, radius, mass float32) *Body {
	b := NewDisc(radius)
	b.SetPosition(mgl32.Vec3{x, 0, z})
	b.SetMass(mass)
	return b
}

func TestEqualMassHeadOnExchangesVelocities(t *testing.T) {
	a := disc(0, 0, 0.2, 1)
	b := disc(0.3, 0, 0.2, 1)
	a.SetVelocity(mgl32.Vec3{1, 0, 0})
	b.SetVelocity(mgl32.Vec3{-1, 0, 0})

	if !collideDiscs(a, b, a.Radius(), b.Radius()) {
		t.Fatal("overlapping discs did not collide")
	}

	if !near(a.velocity[0], -1) || !near(b.velocity[0], 1) {
		t.Errorf("velocities not exchanged: a=%v b=%v", a.velocity, b.velocity)
	}
	if !near(a.velocity[2], 0) || !near(b.velocity[2], 0) {
		t.Errorf("head-on collision produced tangential motion: a=%v b=%v", a.velocity, b.velocity)
	}
}

func TestTangentialVelocityIsKept(t *testing.T) {
	a := disc(0, 0, 0.2, 1)
	b := disc(0.3, 0, 0.2, 1)
	a.SetVelocity(mgl32.Vec3{1, 0, 0.5})

	collideDiscs(a, b, a.Radius(), b.Radius())

	if !near(a.velocity[0], 0) || !near(a.velocity[2], 0.5) {
		t.Errorf("a velocity = %v, want (0, 0, 0.5)", a.velocity)
	}
	if !near(b.velocity[0], 1) || !near(b.velocity[2], 0) {
		t.Errorf("b velocity = %v, want (1, 0, 0)", b.velocity)
	}
}

func TestNoResidualPenetration(t *testing.T) {
	cases := []struct {
		name   string
		bx, bz float32
		ma, mb float32
	}{
		{"deep overlap", 0.05, 0.02, 1, 1},
		{"grazing", 0.39, 0, 3, 1},
		{"diagonal", 0.2, 0.2, 1, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := disc(0, 0, 0.2, tc.ma)
			b := disc(tc.bx, tc.bz, 0.2, tc.mb)
			collideDiscs(a, b, a.Radius(), b.Radius())

			if d := planarDistance(a, b); d < 0.4-tolerance {
				t.Errorf("discs still overlap: distance=%.5f", d)
			}
		})
	}
}

func TestCoincidentDiscsAreSkipped(t *testing.T) {
	a := disc(1, 1, 0.2, 1)
	b := disc(1, 1, 0.2, 1)
	a.SetVelocity(mgl32.Vec3{1, 0, 0})

	if collideDiscs(a, b, a.Radius(), b.Radius()) {
		t.Error("coincident discs reported a collision")
	}
	if math.IsNaN(float64(a.position[0])) || math.IsNaN(float64(a.velocity[0])) {
		t.Error("coincident discs produced NaN state")
	}
}

func TestAtRestWorldIsIdempotent(t *testing.T) {
	w := NewWorld()
	w.Add(disc(0, 0, 0.2, 1))
	w.Add(disc(1, 0, 0.2, 3))
	w.Add(NewWall(mgl32.Vec2{-2, -2}, mgl32.Vec2{-2, 2}, 0.25))

	before := w.Transforms()
	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60.0)
	}

	if w.IsMoving() {
		t.Error("world at rest reports movement")
	}
	after := w.Transforms()
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("body %d moved: %v -> %v", i, before[i].Position, after[i].Position)
		}
	}
}

func TestBallStruckByHeavyDisc(t *testing.T) {
	w := NewWorld()
	ball := w.Add(disc(0, 0, 0.85, 1))
	ball.SetScale(mgl32.Vec3{0.17, 0.17, 0.17})

	striker := NewDisc(1.17)
	striker.SetScale(mgl32.Vec3{0.2, 0.2, 0.2})
	striker.SetMass(3)
	reach := ball.Radius() + striker.Radius()
	striker.SetPosition(mgl32.Vec3{-(reach - 0.01), 0, 0})
	w.Add(striker)

	striker.ApplyImpulse(mgl32.Vec3{3, 0, 0})
	w.Step(1.0 / 60.0)

	if ball.velocity[0] <= 0 {
		t.Errorf("ball not pushed away from disc: v=%v", ball.velocity)
	}
	if d := planarDistance(ball, striker); d < reach-tolerance {
		t.Errorf("ball and disc still overlap: distance=%.5f reach=%.5f", d, reach)
	}
	a, b, ok := w.LastCollision()
	if !ok || a != striker || b != ball {
		t.Errorf("last collision = (%v, %v, %v), want (striker, ball)", a, b, ok)
	}
}

func TestDiscBouncesOffWall(t *testing.T) {
	w := NewWorld()
	d := w.Add(disc(0, 0.3, 0.2, 1))
	wall := w.Add(NewWall(mgl32.Vec2{-1, 0}, mgl32.Vec2{1, 0}, 0.25))
	d.SetVelocity(mgl32.Vec3{0.5, 0, -2})

	var got [2]*Body
	w.OnCollision(func(a, b *Body) { got = [2]*Body{a, b} })

	if !w.resolve(wall, d) {
		t.Fatal("wall against disc not handled")
	}

	if !near(d.velocity[2], 2) {
		t.Errorf("normal velocity not reflected: v=%v", d.velocity)
	}
	if !near(d.velocity[0], 0.5) {
		t.Errorf("tangential velocity changed: v=%v", d.velocity)
	}
	if got[0] != wall || got[1] != d {
		t.Errorf("collision callback got %v, want (wall, disc)", got)
	}
	if wall.position != (mgl32.Vec3{}) || wall.velocity != (mgl32.Vec3{}) {
		t.Errorf("wall moved: pos=%v vel=%v", wall.position, wall.velocity)
	}
}

func TestWallIgnoresDistantDisc(t *testing.T) {
	w := NewWorld()
	d := w.Add(disc(0, 2, 0.2, 1))
	wall := w.Add(NewWall(mgl32.Vec2{-1, 0}, mgl32.Vec2{1, 0}, 0.25))
	d.SetVelocity(mgl32.Vec3{0, 0, -1})

	w.resolve(d, wall)

	if d.velocity[2] != -1 {
		t.Errorf("distant disc was deflected: v=%v", d.velocity)
	}
	if _, _, ok := w.LastCollision(); ok {
		t.Error("distant disc recorded a collision")
	}
}

func TestWallPairsAreNotHandled(t *testing.T) {
	w := NewWorld()
	a := w.Add(NewWall(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, 0.25))
	b := w.Add(NewWall(mgl32.Vec2{0, 0}, mgl32.Vec2{0, 1}, 0.25))

	if w.resolve(a, b) || w.resolve(b, a) {
		t.Error("wall pair reported as handled")
	}
}

func TestIntegrateAppliesFrictionAndHeading(t *testing.T) {
	b := NewDisc(0.2)
	b.SetRotationSpeed(1.5)
	b.SetVelocity(mgl32.Vec3{1, 0, 0})

	if !b.integrate(0.5) {
		t.Fatal("fast disc reported at rest")
	}
	if !near(b.position[0], 0.5) {
		t.Errorf("position = %v, want x=0.5", b.position)
	}
	if !near(b.velocity[0], 0.6) {
		t.Errorf("velocity = %v, want x=0.6 after friction", b.velocity)
	}
	if !near(b.heading.Angle, 1.5) {
		t.Errorf("heading angle = %v, want 1.5", b.heading.Angle)
	}
	if !near(b.heading.Axis[2], -1) || !near(b.heading.Axis[0], 0) {
		t.Errorf("heading axis = %v, want (0, 0, -1)", b.heading.Axis)
	}
}

func TestSlowBodySnapsToRest(t *testing.T) {
	b := NewDisc(0.2)
	b.SetVelocity(mgl32.Vec3{0.05, 0, 0.05})

	if b.integrate(1.0 / 60.0) {
		t.Error("slow disc reported moving")
	}
	if b.velocity != (mgl32.Vec3{}) {
		t.Errorf("velocity = %v, want zero", b.velocity)
	}
}

func TestScaledRadiusUsesLargestAxis(t *testing.T) {
	b := NewDisc(2)
	b.SetScale(mgl32.Vec3{0.1, 0.5, 0.25})
	if !near(b.Radius(), 1) {
		t.Errorf("Radius() = %v, want 1", b.Radius())
	}
}

func TestDeterminism(t *testing.T) {
	build := func() *World {
		w := NewWorld()
		for i := 0; i < 6; i++ {
			d := disc(float32(i%3)*0.5-0.5, float32(i/3)*0.5, 0.2, float32(1+i%2*2))
			w.Add(d)
		}
		w.Add(NewWall(mgl32.Vec2{-2, -2}, mgl32.Vec2{2, -2}, 0.25))
		w.Add(NewWall(mgl32.Vec2{-2, 2}, mgl32.Vec2{2, 2}, 0.25))
		w.Bodies()[0].ApplyImpulse(mgl32.Vec3{4, 0, 3})
		return w
	}

	w1, w2 := build(), build()
	for i := 0; i < 240; i++ {
		w1.Step(1.0 / 60.0)
		w2.Step(1.0 / 60.0)
	}

	for i, b := range w1.Bodies() {
		other := w2.Bodies()[i]
		if b.position != other.position || b.velocity != other.velocity {
			t.Errorf("body %d diverged: %v vs %v", i, b.position, other.position)
		}
	}
}
