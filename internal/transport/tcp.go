// Package transport provides the peer byte stream two devices play over.
// Whatever the carrier, a link is an io.ReadWriteCloser of 28-byte frames.
package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"time"
)

const dialTimeout = 10 * time.Second

// Listen opens a TCP listener for the accepting peer.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// AcceptOne waits for a single peer. Cancelling ctx closes the listener.
func AcceptOne(ctx context.Context, ln net.Listener) (io.ReadWriteCloser, error) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept peer: %w", err)
	}
	setNoDelay(conn)
	log.Printf("[PEER] accepted tcp peer %s", conn.RemoteAddr())
	return conn, nil
}

// Dial connects to an accepting peer over TCP.
func Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial peer %s: %w", addr, err)
	}
	setNoDelay(conn)
	log.Printf("[PEER] connected to tcp peer %s", conn.RemoteAddr())
	return conn, nil
}

// Frames are tiny and latency matters more than throughput.
func setNoDelay(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
}
