package match

import (
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/playmatatu/chapas/internal/physics"
	"github.com/playmatatu/chapas/internal/protocol"
)

// State is the current step of the match.
type State int

const (
	StateInit State = iota
	StateChoosing
	StateWaiting
	StateGoal
	StateEnd
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateChoosing:
		return "choosing"
	case StateWaiting:
		return "waiting"
	case StateGoal:
		return "goal"
	case StateEnd:
		return "end"
	}
	return "finished"
}

// Options configures a new Machine. Zero values mean hot-seat play with the
// default layout and viewport.
type Options struct {
	Policy   NetworkPolicy
	Layout   *Layout
	Viewport Viewport
	Events   *EventQueue
}

// Arrow is the aiming arrow drawn under the selected piece.
type Arrow struct {
	Visible   bool       `json:"visible"`
	Position  mgl32.Vec3 `json:"position"`
	Magnitude float32    `json:"magnitude"`
	Angle     float32    `json:"angle"` // degrees around +Y
}

// Machine runs one match. It is not safe for concurrent use: the owner calls
// Frame and the input methods from a single goroutine.
type Machine struct {
	data     *Data
	policy   NetworkPolicy
	events   *EventQueue
	camera   *Camera
	viewport Viewport

	state  State
	banner *Banner
	frame  uint64

	scorer       Team
	secondBanner bool

	lastMoving bool
	possessor  *physics.Body

	selected      *physics.Body
	selectedIndex int
	touchX        float32
	touchY        float32
	arrow         Arrow

	linkLost bool
}

// NewMachine sets up the rink and starts the kick-off banner.
func NewMachine(opts Options) (*Machine, error) {
	layout := DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	data, err := NewData(layout)
	if err != nil {
		return nil, fmt.Errorf("set up match: %w", err)
	}

	m := &Machine{
		data:     data,
		policy:   opts.Policy,
		events:   opts.Events,
		camera:   NewCamera(),
		viewport: opts.Viewport,
	}
	if m.policy == nil {
		m.policy = LocalPolicy{}
	}
	if m.events == nil {
		m.events = NewEventQueue(DefaultEventCapacity)
	}
	if !m.viewport.valid() {
		m.viewport = DefaultViewport
	}

	data.World.OnCollision(m.onCollision)
	m.enterInit()
	return m, nil
}

func (m *Machine) State() State          { return m.state }
func (m *Machine) Data() *Data           { return m.data }
func (m *Machine) Events() *EventQueue   { return m.events }
func (m *Machine) Camera() *Camera       { return m.camera }
func (m *Machine) Policy() NetworkPolicy { return m.policy }
func (m *Machine) FrameCount() uint64    { return m.frame }

// SetViewport records the presentation's screen size. Invalid sizes are ignored.
func (m *Machine) SetViewport(vp Viewport) {
	if vp.valid() {
		m.viewport = vp
	}
}

// Frame runs one fixed step: the current state's logic, then the physics.
func (m *Machine) Frame() {
	if m.state == StateFinished {
		return
	}
	m.frame++
	m.checkLink()

	switch m.state {
	case StateInit:
		m.updateInit()
	case StateChoosing:
		m.updateChoosing()
	case StateWaiting:
		m.updateWaiting()
	case StateGoal:
		m.updateGoal()
	case StateEnd:
		m.updateEnd()
	}

	if m.state != StateFinished {
		m.data.World.Step(Timestep)
	}
}

// ForceEnd stops the match immediately.
func (m *Machine) ForceEnd() {
	if m.state == StateFinished {
		return
	}
	log.Printf("[MATCH] match ended early at frame %d", m.frame)
	m.finish()
}

func (m *Machine) enterInit() {
	m.state = StateInit
	m.startBanner(NewBanner("Kick-off!"))
	m.emitSound(SoundAmbient)
	m.emitState()
}

func (m *Machine) updateInit() {
	if m.banner.Advance() {
		m.emitSound(SoundWhistle)
		m.enter(Home)
	}
}

// enter gives team the turn, played here or awaited from the peer.
func (m *Machine) enter(team Team) {
	if m.policy.Controls(team) {
		m.enterChoosing(team)
	} else {
		m.enterWaiting(team)
	}
}

func (m *Machine) enterChoosing(team Team) {
	m.data.SetTurn(team)
	m.state = StateChoosing
	m.banner = nil
	m.resetPlay()
	m.emit(Event{Kind: EventTurn, Team: team, Shots: m.data.Shots(), Clock: m.data.TurnClock()})
	m.emitState()
}

func (m *Machine) enterWaiting(team Team) {
	m.data.SetTurn(team)
	m.state = StateWaiting
	m.startBanner(NewPulse("Waiting..."))
	m.resetPlay()
	m.emit(Event{Kind: EventTurn, Team: team, Shots: m.data.Shots(), Clock: m.data.TurnClock(), Remote: true})
	m.emitState()
}

func (m *Machine) resetPlay() {
	m.lastMoving = false
	m.possessor = nil
	m.selected = nil
	m.arrow = Arrow{}
}

func (m *Machine) updateChoosing() {
	world := m.data.World

	if !world.IsMoving() && m.data.TickTurnClock(false) {
		m.endTurn()
		return
	}

	if m.data.TickMatchClock() {
		m.send(protocol.MovePdu{Expiry: protocol.ExpiryHalf})
		m.enterEnd()
		return
	}

	moving := world.IsMoving()
	if moving {
		if team, ok := m.data.GoalScorer(); ok {
			m.enterGoal(team)
			return
		}
	}

	if m.lastMoving && !moving {
		m.settle()
		if m.state != StateChoosing {
			return
		}
	}
	m.lastMoving = moving
}

// settle applies the possession rule once everything has stopped after a shot.
func (m *Machine) settle() {
	p := m.possessor
	m.possessor = nil

	switch {
	case p == nil:
		if m.downShots() {
			m.endTurn()
		}
	case !m.data.IsActiveBody(p):
		m.endTurn()
	case planarDistSq(p, m.data.Ball) < PassRange:
		// A pass never spends the last shot.
		if m.data.Shots() > 1 && m.downShots() {
			m.endTurn()
		}
	default:
		m.endTurn()
	}
}

func (m *Machine) downShots() bool {
	exhausted := m.data.DownShots()
	m.emit(Event{Kind: EventShots, Team: m.data.Team(), Shots: m.data.Shots()})
	if !exhausted {
		m.send(protocol.MovePdu{ShotsRemaining: int32(m.data.Shots())})
	}
	return exhausted
}

// endTurn hands the turn to the other team, telling the peer if it plays it.
func (m *Machine) endTurn() {
	m.emitSound(SoundWhistle)
	next := m.data.Team().Other()
	if !m.policy.Controls(next) {
		m.send(protocol.MovePdu{Expiry: protocol.ExpiryTurn})
	}
	m.enter(next)
}

func (m *Machine) updateWaiting() {
	m.banner.Advance()

	moving := m.data.World.IsMoving()
	if !moving {
		m.data.TickTurnClock(false)
	}
	m.data.TickMatchClock()

	if moving {
		if team, ok := m.data.GoalScorer(); ok {
			m.enterGoal(team)
		}
		return
	}

	for {
		pdu, ok := m.policy.Poll()
		if !ok {
			return
		}

		switch {
		case pdu.IsShotsOnly():
			m.data.SetShots(int(pdu.ShotsRemaining))
			m.emit(Event{Kind: EventShots, Team: m.data.Team(), Shots: m.data.Shots(), Remote: true})
		case pdu.Expiry == protocol.ExpiryMove:
			m.applyRemoteShot(pdu)
			return
		case pdu.Expiry == protocol.ExpiryHalf:
			m.enterEnd()
			return
		case pdu.Expiry == protocol.ExpiryTurn:
			m.enterChoosing(m.data.Team().Other())
			return
		default:
			log.Printf("[MATCH] ignoring pdu with expiry %s", pdu.Expiry)
		}
	}
}

// applyRemoteShot replays the peer's shot. The mover's clocks become ours.
func (m *Machine) applyRemoteShot(pdu protocol.MovePdu) {
	piece, ok := m.data.Piece(int(pdu.CapIndex))
	if !ok {
		log.Printf("[MATCH] ignoring shot for unknown cap %d", pdu.CapIndex)
		return
	}

	impulse := mgl32.Vec3{pdu.ImpulseX, 0, pdu.ImpulseZ}
	piece.ApplyImpulse(impulse)
	m.data.SetMatchClock(int(pdu.Frame))
	m.data.SetTurnClock(int(pdu.TurnClock))

	m.emitSound(SoundKick)
	m.emit(Event{
		Kind:     EventShot,
		Team:     m.data.Team(),
		CapIndex: int(pdu.CapIndex),
		Impulse:  impulse,
		Clock:    m.data.MatchClock(),
		Remote:   true,
	})
}

func (m *Machine) enterGoal(team Team) {
	m.state = StateGoal
	m.scorer = team
	m.resetPlay()

	text := "Home goal!"
	if team == Away {
		text = "Away goal!"
	}
	m.startBanner(NewBanner(text))
	m.emitSound(SoundCrowd)
	m.emitState()
}

func (m *Machine) updateGoal() {
	if !m.banner.Advance() {
		return
	}

	m.data.AddGoal(m.scorer)
	m.camera.Reset()
	m.emit(Event{Kind: EventGoal, Team: m.scorer})
	m.emitSound(SoundWhistle)

	// The team that conceded kicks off.
	m.enter(m.scorer.Other())
}

func (m *Machine) enterEnd() {
	m.state = StateEnd
	m.secondBanner = false
	m.resetPlay()

	text := "Full time"
	if m.data.Phase() == FirstHalf {
		text = "End of the first half"
	}
	m.startBanner(NewBanner(text))
	m.emitSound(SoundWhistle)
	m.emit(Event{Kind: EventHalfEnd, Phase: m.data.Phase().String()})
	m.emitState()
}

func (m *Machine) updateEnd() {
	if !m.banner.Advance() {
		return
	}

	if m.secondBanner {
		m.emitSound(SoundWhistle)
		m.enter(Away)
		return
	}

	if m.data.Phase() != FirstHalf {
		m.finish()
		return
	}

	m.data.SetTurn(Away)
	m.data.ResetPositions(true)
	m.camera.Reset()
	m.data.SetPhase(SecondHalf)
	m.secondBanner = true
	m.startBanner(NewBanner("Second half"))
}

func (m *Machine) finish() {
	m.data.SetPhase(Ended)
	m.data.Free()
	m.state = StateFinished
	m.banner = nil
	m.resetPlay()
	m.emit(Event{Kind: EventLeave})
	m.emitState()
}

func (m *Machine) onCollision(a, b *physics.Body) {
	if m.state != StateChoosing && m.state != StateWaiting {
		return
	}
	m.emitSound(SoundRebound)

	switch m.data.Ball {
	case a:
		m.possessor = b
	case b:
		m.possessor = a
	}
}

func (m *Machine) send(pdu protocol.MovePdu) {
	if err := m.policy.Send(pdu); err != nil {
		m.dropLink(err)
	}
}

func (m *Machine) checkLink() {
	if m.linkLost {
		return
	}
	if err := m.policy.Err(); err != nil {
		m.dropLink(err)
	}
}

// dropLink falls back to hot-seat play after the peer is gone.
func (m *Machine) dropLink(err error) {
	if m.linkLost {
		return
	}
	m.linkLost = true
	log.Printf("[MATCH] peer link lost, continuing locally: %v", err)

	if c, ok := m.policy.(io.Closer); ok {
		c.Close()
	}
	m.policy = LocalPolicy{}
	m.emit(Event{Kind: EventConnectionLost, Error: err.Error()})

	if m.state == StateWaiting {
		m.enterChoosing(m.data.Team())
	}
}

func (m *Machine) startBanner(b *Banner) {
	m.banner = b
	m.emit(Event{Kind: EventBanner, Text: b.Text})
}

func (m *Machine) emitSound(s Sound) {
	m.emit(Event{Kind: EventSound, Sound: s})
}

func (m *Machine) emitState() {
	m.emit(Event{Kind: EventState, State: m.state.String(), Phase: m.data.Phase().String()})
}

func (m *Machine) emit(e Event) {
	e.Frame = m.frame
	e.Goals = m.data.Goals()
	m.events.Push(e)
}

func planarDistSq(a, b *physics.Body) float32 {
	pa, pb := a.Position(), b.Position()
	dx := pa[0] - pb[0]
	dz := pa[2] - pb[2]
	return dx*dx + dz*dz
}
