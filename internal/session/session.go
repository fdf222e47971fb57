package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/chapas/internal/match"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrBusy         = errors.New("input queue full")
	ErrStopped      = errors.New("match is not running")
)

const (
	inboxSize  = 64
	outboxSize = 256
)

// Info identifies a running match.
type Info struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	StartedAt time.Time `json:"started_at"`
}

// Sink receives what a match produces. Calls come from a single dispatcher
// goroutine, never from the simulation loop.
type Sink interface {
	MatchStarted(ctx context.Context, info Info)
	Events(ctx context.Context, info Info, events []match.Event)
	Snapshot(ctx context.Context, info Info, snap match.Snapshot)
}

type InputKind string

const (
	InputSelect  InputKind = "select"
	InputDrag    InputKind = "drag"
	InputRelease InputKind = "release"
	InputPan     InputKind = "pan"
)

// Input is one pointer gesture from the presentation layer, in screen pixels.
// For pan, X and Y are the scroll deltas.
type Input struct {
	Kind InputKind `json:"kind" binding:"required"`
	X    float32   `json:"x"`
	Y    float32   `json:"y"`
}

func (in Input) validate() error {
	switch in.Kind {
	case InputSelect, InputDrag, InputRelease, InputPan:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}
	if !finite(in.X) || !finite(in.Y) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidInput)
	}
	return nil
}

type Options struct {
	Role          match.Role
	Policy        match.NetworkPolicy
	Viewport      match.Viewport
	SnapshotEvery int
	Sinks         []Sink
}

type batch struct {
	events []match.Event
	snap   *match.Snapshot
}

// Session owns a match.Machine and drives it at a fixed rate. Everything that
// touches the machine runs on the goroutine calling Tick.
type Session struct {
	info          Info
	machine       *match.Machine
	sinks         []Sink
	snapshotEvery uint64

	inbox chan func(*match.Machine)
	out   chan batch
	wg    sync.WaitGroup
	once  sync.Once

	mu       sync.RWMutex
	snap     match.Snapshot
	finished bool
}

// New sets up a match and starts delivering its output to the sinks.
func New(opts Options) (*Session, error) {
	m, err := match.NewMachine(match.Options{
		Policy:   opts.Policy,
		Viewport: opts.Viewport,
	})
	if err != nil {
		return nil, err
	}

	every := opts.SnapshotEvery
	if every <= 0 {
		every = 1
	}

	s := &Session{
		info: Info{
			ID:        uuid.New().String(),
			Role:      opts.Role.String(),
			StartedAt: time.Now().UTC(),
		},
		machine:       m,
		sinks:         opts.Sinks,
		snapshotEvery: uint64(every),
		inbox:         make(chan func(*match.Machine), inboxSize),
		out:           make(chan batch, outboxSize),
		snap:          m.Snapshot(),
	}

	s.wg.Add(1)
	go s.dispatch()

	log.Printf("[MATCH] Match %s created (role=%s)", s.info.ID, s.info.Role)
	return s, nil
}

func (s *Session) Info() Info { return s.info }

// Snapshot returns the last published frame.
func (s *Session) Snapshot() match.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Finished reports whether the match has reached its terminal state.
func (s *Session) Finished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finished
}

// Input queues a gesture for the next frame.
func (s *Session) Input(in Input) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.enqueue(func(m *match.Machine) {
		switch in.Kind {
		case InputSelect:
			m.Select(in.X, in.Y)
		case InputDrag:
			m.Drag(in.X, in.Y)
		case InputRelease:
			m.Release(in.X, in.Y)
		case InputPan:
			m.Pan(in.X, in.Y)
		}
	})
}

// SetViewport queues a screen size change.
func (s *Session) SetViewport(vp match.Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 || !finite(vp.Width) || !finite(vp.Height) {
		return fmt.Errorf("%w: viewport must be positive", ErrInvalidInput)
	}
	return s.enqueue(func(m *match.Machine) { m.SetViewport(vp) })
}

// End queues an immediate end of the match.
func (s *Session) End() error {
	return s.enqueue(func(m *match.Machine) { m.ForceEnd() })
}

func (s *Session) enqueue(cmd func(*match.Machine)) error {
	if s.Finished() {
		return ErrStopped
	}
	select {
	case s.inbox <- cmd:
		return nil
	default:
		return ErrBusy
	}
}

// Tick runs queued commands and one frame, then publishes the result.
func (s *Session) Tick() {
	if s.Finished() {
		return
	}

drain:
	for {
		select {
		case cmd := <-s.inbox:
			cmd(s.machine)
		default:
			break drain
		}
	}

	s.machine.Frame()

	snap := s.machine.Snapshot()
	finished := s.machine.State() == match.StateFinished
	s.mu.Lock()
	s.snap = snap
	s.finished = finished
	s.mu.Unlock()

	b := batch{events: s.machine.Events().Drain()}
	if finished || snap.Scoreboard.Frame%s.snapshotEvery == 0 {
		b.snap = &snap
	}
	if len(b.events) > 0 || b.snap != nil {
		s.publish(b)
	}
}

func (s *Session) publish(b batch) {
	select {
	case s.out <- b:
	default:
		log.Printf("[MATCH] Match %s outbox full, dropping %d events", s.info.ID, len(b.events))
	}
}

// Run ticks at the simulation rate until the match finishes or ctx is done,
// then flushes the sinks.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	ticker := time.NewTicker(time.Second / match.FramesPerSecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[MATCH] Match %s stopped: %v", s.info.ID, ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
			if s.Finished() {
				sb := s.Snapshot().Scoreboard
				log.Printf("[MATCH] Match %s finished %d-%d", s.info.ID, sb.Goals[match.Home], sb.Goals[match.Away])
				return nil
			}
		}
	}
}

// Close stops the dispatcher after it has delivered everything queued.
// It must not be called while Run or Tick is active.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.out)
		s.wg.Wait()
		if c, ok := s.machine.Policy().(interface{ Close() error }); ok {
			c.Close()
		}
	})
}

func (s *Session) dispatch() {
	defer s.wg.Done()
	ctx := context.Background()

	for _, sink := range s.sinks {
		sink.MatchStarted(ctx, s.info)
	}
	for b := range s.out {
		for _, sink := range s.sinks {
			if len(b.events) > 0 {
				sink.Events(ctx, s.info, b.events)
			}
			if b.snap != nil {
				sink.Snapshot(ctx, s.info, *b.snap)
			}
		}
	}
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
