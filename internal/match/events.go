package match

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type EventKind string

const (
	EventSound          EventKind = "sound"
	EventBanner         EventKind = "banner"
	EventState          EventKind = "state"
	EventTurn           EventKind = "turn"
	EventShots          EventKind = "shots"
	EventShot           EventKind = "shot"
	EventGoal           EventKind = "goal"
	EventHalfEnd        EventKind = "half_end"
	EventLeave          EventKind = "leave"
	EventConnectionLost EventKind = "connection_lost"
)

type Sound string

const (
	SoundAmbient Sound = "ambient"
	SoundWhistle Sound = "whistle"
	SoundKick    Sound = "kick"
	SoundRebound Sound = "rebound"
	SoundCrowd   Sound = "crowd"
)

// Event is a notification from the simulation to whoever presents it.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind  EventKind `json:"kind"`
	Frame uint64    `json:"frame"`

	Sound    Sound      `json:"sound,omitempty"`
	Text     string     `json:"text,omitempty"`
	State    string     `json:"state,omitempty"`
	Team     Team       `json:"team"`
	Goals    [2]int     `json:"goals"`
	Shots    int        `json:"shots,omitempty"`
	Phase    string     `json:"phase,omitempty"`
	CapIndex int        `json:"cap_index"`
	Impulse  mgl32.Vec3 `json:"impulse"`
	Clock    int        `json:"clock,omitempty"`
	Remote   bool       `json:"remote,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// DefaultEventCapacity bounds the undrained events kept for presentation.
const DefaultEventCapacity = 256

// EventQueue carries events one way, from the simulation to presentation.
// Pushing never blocks: when the queue is full the oldest event is dropped.
type EventQueue struct {
	mu      sync.Mutex
	events  []Event
	max     int
	dropped int
}

func NewEventQueue(capacity int) *EventQueue {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventQueue{max: capacity}
}

func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.max {
		q.events = q.events[1:]
		q.dropped++
	}
	q.events = append(q.events, e)
}

// Drain removes and returns every pending event, oldest first.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = nil
	return out
}

// Dropped is how many events were discarded because nobody drained them.
func (q *EventQueue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
