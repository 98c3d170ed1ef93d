package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// Kind represents the type of event emitted by the listener.
type Kind int

const (
	KindMessage Kind = iota
	KindConnected
	KindDisconnected
)

// Event conveys a decoded inbound message, a connection change, or an error.
type Event struct {
	Kind    Kind
	Message protocol.Inbound
	Err     error
}

// Options configures a Listener.
type Options struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	// RetryInterval is the minimum delay between dial attempts.
	RetryInterval time.Duration
}

// Listener keeps a websocket connection to the host open and publishes every
// frame it receives. Dropped connections are redialled.
type Listener struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	retry  *throttle

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	connMu sync.Mutex
	conn   *websocket.Conn
}

// NewListener starts listening on opts.URL.
func NewListener(opts Options) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	handshake := opts.HandshakeTimeout
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	retry := opts.RetryInterval
	if retry <= 0 {
		retry = time.Second
	}
	l := &Listener{
		url:    opts.URL,
		header: opts.Header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshake,
		},
		retry:  newThrottle(retry),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}

	l.wg.Add(1)
	go l.run()

	go func() {
		l.wg.Wait()
		close(l.events)
	}()

	return l
}

// Events returns a channel of listener events. It is closed after Stop once
// the connection goroutine has exited.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Stop cancels the listener and closes the current connection.
func (l *Listener) Stop() {
	l.cancel()
	l.connMu.Lock()
	if l.conn != nil {
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = l.conn.Close()
	}
	l.connMu.Unlock()
}

// Wait blocks until the connection goroutine has exited and the events
// channel is closed.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) run() {
	defer l.wg.Done()
	for l.retry.wait(l.ctx) {
		conn, resp, err := l.dialer.DialContext(l.ctx, l.url, l.header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if l.ctx.Err() != nil {
				return
			}
			if resp != nil {
				err = fmt.Errorf("dial %s (HTTP %d): %w", l.url, resp.StatusCode, err)
			} else {
				err = fmt.Errorf("dial %s: %w", l.url, err)
			}
			if !l.emit(Event{Kind: KindDisconnected, Err: err}) {
				return
			}
			continue
		}
		if !l.attach(conn) {
			return
		}
		events.Channel.Connected(l.url)
		if !l.emit(Event{Kind: KindConnected}) {
			l.detach()
			return
		}
		err = l.read(conn)
		l.detach()
		if l.ctx.Err() != nil {
			return
		}
		events.Channel.Disconnected(l.url, err)
		if !l.emit(Event{Kind: KindDisconnected, Err: err}) {
			return
		}
	}
}

// read publishes frames until the connection fails.
func (l *Listener) read(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			events.Inbound.Malformed(err)
			continue
		}
		if !l.emit(Event{Kind: KindMessage, Message: msg}) {
			return l.ctx.Err()
		}
	}
}

func (l *Listener) attach(conn *websocket.Conn) bool {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	if l.ctx.Err() != nil {
		_ = conn.Close()
		return false
	}
	l.conn = conn
	return true
}

func (l *Listener) detach() {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
}

func (l *Listener) emit(evt Event) bool {
	select {
	case <-l.ctx.Done():
		return false
	case l.events <- evt:
		return true
	}
}
