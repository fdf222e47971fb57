package match

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/playmatatu/chapas/internal/physics"
	"github.com/playmatatu/chapas/internal/protocol"
)

// Select picks the active team's piece under the screen point: caps in index
// order first, then the keeper.
func (m *Machine) Select(x, y float32) {
	if m.state != StateChoosing || m.selected != nil || m.data.World.IsMoving() {
		return
	}

	ray := m.camera.Ray(x, y, m.viewport)
	for i, c := range m.data.ActiveCaps() {
		if m.trySelect(c, i, ray, x, y) {
			return
		}
	}
	m.trySelect(m.data.ActiveKeeper(), -1, ray, x, y)
}

func (m *Machine) trySelect(b *physics.Body, index int, ray mgl32.Vec3, x, y float32) bool {
	if !hitsSphere(b.Position(), b.Radius(), m.camera.Position, ray) {
		return false
	}

	m.selected = b
	m.selectedIndex = index
	m.touchX, m.touchY = x, y

	p := b.Position()
	m.arrow = Arrow{Visible: true, Position: mgl32.Vec3{p[0], 0.001, p[2]}}
	return true
}

// Drag aims the selected piece. The arrow grows with the drag distance
// relative to the screen size and points away from the drag.
func (m *Machine) Drag(x, y float32) {
	if m.selected == nil {
		return
	}

	dx := (x - m.touchX) / m.viewport.Width
	dy := (y - m.touchY) / m.viewport.Height

	m.arrow.Angle = mgl32.RadToDeg(float32(math.Atan2(float64(dy), float64(-dx))))
	mag := float32(math.Hypot(float64(dx), float64(dy))) * ArrowMagnitudeMul
	if mag > MaxArrowMagnitude {
		mag = MaxArrowMagnitude
	}
	m.arrow.Magnitude = mag
}

// Release shoots the selected piece along the arrow. Releasing over the piece
// itself cancels the selection.
func (m *Machine) Release(x, y float32) {
	if m.selected == nil {
		return
	}

	piece, index, arrow := m.selected, m.selectedIndex, m.arrow
	m.selected = nil
	m.arrow = Arrow{}

	ray := m.camera.Ray(x, y, m.viewport)
	if hitsSphere(piece.Position(), piece.Radius(), m.camera.Position, ray) {
		return
	}

	mag := arrow.Magnitude * ImpulseMultiplier
	rad := float64(mgl32.DegToRad(arrow.Angle))
	impulse := mgl32.Vec3{
		-mag * float32(math.Sin(rad)),
		0,
		-mag * float32(math.Cos(rad)),
	}
	piece.ApplyImpulse(impulse)
	m.data.TickTurnClock(true)

	m.emitSound(SoundKick)
	m.emit(Event{
		Kind:     EventShot,
		Team:     m.data.Team(),
		CapIndex: index,
		Impulse:  impulse,
		Clock:    m.data.MatchClock(),
	})

	m.send(protocol.MovePdu{
		Frame:     int32(m.data.MatchClock()),
		ImpulseX:  impulse[0],
		ImpulseZ:  impulse[2],
		CapIndex:  int32(index),
		Expiry:    protocol.ExpiryMove,
		TurnClock: int32(m.data.TurnClock()),
	})
}

// Pan scrolls the camera by a screen-space drag while nothing is selected.
func (m *Machine) Pan(dx, dy float32) {
	if m.selected != nil || (m.state != StateChoosing && m.state != StateWaiting) {
		return
	}
	along := -dx / m.viewport.Width * PanSpeedX
	across := dy / m.viewport.Height * PanSpeedY
	m.camera.Translate(across, along)
}
