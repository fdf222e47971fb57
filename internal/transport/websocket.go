package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // peers are authenticated by token, not origin
	},
}

// WSConn adapts a websocket connection to a byte stream. Each Write is sent
// as one binary message; Read consumes binary messages back to back, so the
// frame reader sees one continuous stream.
type WSConn struct {
	conn *websocket.Conn

	readMu sync.Mutex
	cur    io.Reader

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

func newWSConn(conn *websocket.Conn) *WSConn {
	c := &WSConn{conn: conn, done: make(chan struct{})}

	conn.SetReadLimit(1 << 16)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.pingLoop()
	return c
}

// Upgrade turns an HTTP request into a peer link.
func Upgrade(w http.ResponseWriter, r *http.Request) (*WSConn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade peer link: %w", err)
	}
	log.Printf("[PEER] accepted websocket peer %s", conn.RemoteAddr())
	return newWSConn(conn), nil
}

// DialWebSocket connects to the accepting peer's link endpoint, passing the
// join token as a query parameter.
func DialWebSocket(ctx context.Context, rawURL, token string) (*WSConn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse peer url: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial peer %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial peer %s: %w", u.Host, err)
	}
	log.Printf("[PEER] connected to websocket peer %s", conn.RemoteAddr())
	return newWSConn(conn), nil
}

func (c *WSConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for {
		if c.cur == nil {
			mt, r, err := c.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			c.cur = r
		}

		n, err := c.cur.Read(p)
		if err == io.EOF {
			c.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *WSConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close frame and tears the connection down.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}

func (c *WSConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Printf("[PEER] ping failed: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// WSAcceptor hands an upgraded peer link to a caller blocked in Accept.
// Links offered while nobody is waiting are refused.
type WSAcceptor struct {
	links chan *WSConn
}

func NewWSAcceptor() *WSAcceptor {
	return &WSAcceptor{links: make(chan *WSConn)}
}

// Offer reports whether a waiting Accept took the link.
func (a *WSAcceptor) Offer(conn *WSConn) bool {
	select {
	case a.links <- conn:
		return true
	default:
		return false
	}
}

// Accept waits for the next offered link.
func (a *WSAcceptor) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	select {
	case conn := <-a.links:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
