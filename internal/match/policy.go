package match

import (
	"fmt"
	"io"
	"sync"

	"github.com/playmatatu/chapas/internal/protocol"
)

// Role is how a device joined an online match.
type Role int

const (
	RoleLocal Role = iota
	RoleAcceptor
	RoleConnector
)

func (r Role) String() string {
	switch r {
	case RoleAcceptor:
		return "acceptor"
	case RoleConnector:
		return "connector"
	}
	return "local"
}

// ParseRole maps a configuration value to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "", "local":
		return RoleLocal, nil
	case "acceptor":
		return RoleAcceptor, nil
	case "connector":
		return RoleConnector, nil
	}
	return RoleLocal, fmt.Errorf("unknown match role %q", s)
}

// Team is the side this role plays. The acceptor is Home and kicks off.
func (r Role) Team() Team {
	if r == RoleConnector {
		return Away
	}
	return Home
}

// NetworkPolicy is everything the state machine needs to know about the peer.
type NetworkPolicy interface {
	// Controls reports whether this device plays team's turns.
	Controls(team Team) bool
	// Send delivers a pdu to the peer.
	Send(pdu protocol.MovePdu) error
	// Poll returns the next pdu from the peer without blocking.
	Poll() (protocol.MovePdu, bool)
	// Err is non-nil once the link can no longer deliver anything.
	Err() error
}

// LocalPolicy is hot-seat play on one device.
type LocalPolicy struct{}

func (LocalPolicy) Controls(Team) bool             { return true }
func (LocalPolicy) Send(protocol.MovePdu) error    { return nil }
func (LocalPolicy) Poll() (protocol.MovePdu, bool) { return protocol.MovePdu{}, false }
func (LocalPolicy) Err() error                     { return nil }

// OnlinePolicy plays one team and exchanges pdus with the peer over link.
type OnlinePolicy struct {
	role   Role
	link   io.ReadWriteCloser
	reader *protocol.Reader

	mu sync.Mutex
}

// NewOnlinePolicy starts reading from link and returns the policy for role.
func NewOnlinePolicy(role Role, link io.ReadWriteCloser) *OnlinePolicy {
	return &OnlinePolicy{
		role:   role,
		link:   link,
		reader: protocol.StartReader(link, protocol.NewQueue(protocol.DefaultQueueSize)),
	}
}

func (p *OnlinePolicy) Role() Role { return p.role }

func (p *OnlinePolicy) Controls(team Team) bool {
	return team == p.role.Team()
}

func (p *OnlinePolicy) Send(pdu protocol.MovePdu) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return protocol.WritePdu(p.link, pdu)
}

func (p *OnlinePolicy) Poll() (protocol.MovePdu, bool) {
	return p.reader.Queue.TryPop()
}

// Err reports the reader's terminal error once every pdu it delivered has
// been polled.
func (p *OnlinePolicy) Err() error {
	if p.reader.Queue.Len() > 0 {
		return nil
	}
	return p.reader.Err()
}

// Close stops the reader and closes the link.
func (p *OnlinePolicy) Close() error {
	p.reader.Close()
	return p.link.Close()
}
