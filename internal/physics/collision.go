package physics

import "github.com/go-gl/mathgl/mgl32"

// resolve handles a pair of bodies according to their shapes. It returns false
// for pairs that have no collision response (wall against wall).
func (w *World) resolve(a, b *Body) bool {
	switch a.Shape.(type) {
	case Disc:
		switch b.Shape.(type) {
		case Disc:
			if collideDiscs(a, b, a.Radius(), b.Radius()) {
				w.collided(a, b)
			}
			return true
		case Wall:
			w.resolveWall(b, a)
			return true
		}
	case Wall:
		if b.IsDisc() {
			w.resolveWall(a, b)
			return true
		}
	}
	return false
}

// resolveWall bounces a disc off a wall by colliding it with a phantom disc of
// the disc's mass, sitting at the closest point of the segment and moving with
// the opposite velocity. The phantom is thrown away afterwards.
func (w *World) resolveWall(wall, disc *Body) {
	seg := wall.Shape.(Wall)
	pos := disc.position

	line := seg.End.Sub(seg.Start)
	rel := mgl32.Vec2{pos[0] - seg.Start[0], pos[2] - seg.Start[1]}

	lenSq := line.Dot(line)
	if lenSq == 0 {
		return
	}
	t := clamp(line.Dot(rel), 0, lenSq) / lenSq
	closest := seg.Start.Add(line.Mul(t))

	dx := pos[0] - closest[0]
	dz := pos[2] - closest[1]
	reach := seg.Thickness + disc.Radius()
	if dx*dx+dz*dz > reach*reach {
		return
	}

	phantom := &Body{
		ID:       wall.ID,
		Shape:    Disc{Radius: seg.Thickness},
		position: mgl32.Vec3{closest[0], 0, closest[1]},
		velocity: disc.velocity.Mul(-1),
		scale:    mgl32.Vec3{1, 1, 1},
		mass:     disc.mass,
	}
	if collideDiscs(phantom, disc, seg.Thickness, disc.Radius()) {
		w.collided(wall, disc)
	}
}

// collideDiscs separates two overlapping discs by half the overlap each and
// exchanges the normal components of their velocities as a 1-D elastic
// collision. Tangential components are kept. Coincident centres have no
// defined normal and are left untouched.
func collideDiscs(a, b *Body, ra, rb float32) bool {
	d := mgl32.Vec2{b.position[0] - a.position[0], b.position[2] - a.position[2]}
	r := ra + rb

	distSq := d.Dot(d)
	if distSq >= r*r || distSq == 0 {
		return false
	}

	dist := sqrt32(distSq)
	n := d.Mul(1 / dist)
	overlap := (r - dist) / 2

	a.position[0] -= overlap * n[0]
	a.position[2] -= overlap * n[1]
	b.position[0] += overlap * n[0]
	b.position[2] += overlap * n[1]

	tan := mgl32.Vec2{-n[1], n[0]}
	va := mgl32.Vec2{a.velocity[0], a.velocity[2]}
	vb := mgl32.Vec2{b.velocity[0], b.velocity[2]}

	tanA, tanB := va.Dot(tan), vb.Dot(tan)
	normA, normB := va.Dot(n), vb.Dot(n)

	m1, m2 := a.mass, b.mass
	p1 := (normA*(m1-m2) + 2*m2*normB) / (m1 + m2)
	p2 := (normB*(m2-m1) + 2*m1*normA) / (m1 + m2)

	a.velocity[0] = tan[0]*tanA + n[0]*p1
	a.velocity[2] = tan[1]*tanA + n[1]*p1
	b.velocity[0] = tan[0]*tanB + n[0]*p2
	b.velocity[2] = tan[1]*tanB + n[1]*p2
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
