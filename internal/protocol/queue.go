package protocol

// DefaultQueueSize bounds how many unread pdus the reader may buffer.
const DefaultQueueSize = 64

// Queue hands decoded pdus from one producer goroutine to one consumer.
// The consumer never blocks; the producer blocks only while the queue is full.
type Queue struct {
	ch chan MovePdu
}

// NewQueue creates a queue holding at most size pdus.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan MovePdu, size)}
}

// Push enqueues p, waiting for room or for done to close.
func (q *Queue) Push(p MovePdu, done <-chan struct{}) bool {
	select {
	case q.ch <- p:
		return true
	case <-done:
		return false
	}
}

// TryPop returns the oldest pdu without blocking.
func (q *Queue) TryPop() (MovePdu, bool) {
	select {
	case p := <-q.ch:
		return p, true
	default:
		return MovePdu{}, false
	}
}

// Len is the number of pdus waiting.
func (q *Queue) Len() int {
	return len(q.ch)
}
