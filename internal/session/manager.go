package session

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNoMatch      = errors.New("no match")
	ErrMatchRunning = errors.New("a match is already running")
)

// Manager holds the one match this server plays.
type Manager struct {
	mu      sync.RWMutex
	current *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewManager() *Manager {
	return &Manager{}
}

// Start runs s in the background. Only one match may run at a time; a finished
// match can be replaced.
func (m *Manager) Start(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		select {
		case <-m.done:
		default:
			return ErrMatchRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.current, m.cancel, m.done = s, cancel, done

	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return nil
}

// Current returns the running or most recently finished match.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, ErrNoMatch
	}
	return m.current, nil
}

// Done is closed when the current match stops running. It is nil before any
// match has started.
func (m *Manager) Done() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

// Stop cancels the current match and waits for it to flush.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel, done := m.cancel, m.done
	m.mu.RUnlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
