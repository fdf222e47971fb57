package protocol

import (
	"errors"
	"io"
	"log"
	"sync"
)

var ErrReaderClosed = errors.New("protocol: reader closed")

// Reader owns the inbound half of a peer stream. A background goroutine
// decodes frames and pushes them onto Queue until the stream fails or the
// reader is closed.
type Reader struct {
	Queue *Queue

	src  io.Reader
	done chan struct{}
	quit chan struct{}

	once sync.Once
	mu   sync.Mutex
	err  error
}

// StartReader spawns the reader goroutine for src.
func StartReader(src io.Reader, q *Queue) *Reader {
	if q == nil {
		q = NewQueue(DefaultQueueSize)
	}
	r := &Reader{
		Queue: q,
		src:   src,
		done:  make(chan struct{}),
		quit:  make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Reader) run() {
	defer close(r.done)
	for {
		p, err := ReadPdu(r.src)
		if err != nil {
			select {
			case <-r.quit:
				r.setErr(ErrReaderClosed)
			default:
				log.Printf("[PEER] reader stopped: %v", err)
				r.setErr(err)
			}
			return
		}
		if !r.Queue.Push(p, r.quit) {
			r.setErr(ErrReaderClosed)
			return
		}
	}
}

func (r *Reader) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Err returns the error that stopped the reader, or nil while it runs.
// io.EOF means the peer closed the stream.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done is closed when the reader goroutine has exited.
func (r *Reader) Done() <-chan struct{} {
	return r.done
}

// Close stops pushing. The goroutine exits once its pending read returns,
// which usually means the caller must also close the underlying stream.
func (r *Reader) Close() {
	r.once.Do(func() { close(r.quit) })
}
