package physics

// CollisionFunc receives every resolved collision pair during a step.
type CollisionFunc func(a, b *Body)

// World owns an ordered set of bodies and steps them together. Bodies are
// resolved in insertion order, so two worlds built the same way evolve the same.
type World struct {
	bodies      []*Body
	moving      bool
	onCollision CollisionFunc

	lastA, lastB *Body
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Add appends a body and assigns its ID (its insertion index).
func (w *World) Add(b *Body) *Body {
	b.ID = len(w.bodies)
	w.bodies = append(w.bodies, b)
	return b
}

// Bodies returns the bodies in insertion order. The slice must not be modified.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// OnCollision binds the collision callback. Passing nil unbinds it.
func (w *World) OnCollision(fn CollisionFunc) {
	w.onCollision = fn
}

// IsMoving reports whether any body was still moving after the last step.
func (w *World) IsMoving() bool {
	return w.moving
}

// LastCollision returns the most recent collision pair, if any.
func (w *World) LastCollision() (a, b *Body, ok bool) {
	return w.lastA, w.lastB, w.lastA != nil
}

// ClearLastCollision forgets the recorded collision pair.
func (w *World) ClearLastCollision() {
	w.lastA, w.lastB = nil, nil
}

// Free drops every body.
func (w *World) Free() {
	w.bodies = nil
	w.moving = false
	w.ClearLastCollision()
}

// Transforms snapshots every body for rendering.
func (w *World) Transforms() []Transform {
	out := make([]Transform, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b.Transform()
	}
	return out
}

// Step resolves every unordered pair once, later body first, then integrates
// all bodies by dt.
func (w *World) Step(dt float32) {
	for i := 1; i < len(w.bodies); i++ {
		for j := 0; j < i; j++ {
			w.resolve(w.bodies[i], w.bodies[j])
		}
	}

	w.moving = false
	for _, b := range w.bodies {
		if b.integrate(dt) {
			w.moving = true
		}
	}
}

func (w *World) collided(a, b *Body) {
	w.lastA, w.lastB = a, b
	if w.onCollision != nil {
		w.onCollision(a, b)
	}
}
