package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/logging/events"
	"github.com/atomicstack/nui-overlay/internal/protocol"
)

// ErrNotAcknowledged is returned when the host answers with anything other
// than status 200 and the JSON string "OK".
var ErrNotAcknowledged = errors.New("host did not acknowledge message")

// Acknowledgement is the body the host returns for an accepted message.
const Acknowledgement = "OK"

const (
	defaultRoute     = "message"
	defaultTimeout   = 5 * time.Second
	defaultQueueSize = 64
	maxAckSize       = 4096
)

// Observer is told about every finished delivery attempt.
type Observer interface {
	Sent(msg protocol.Outbound, requestID string, err error)
}

// Options configures a Client.
type Options struct {
	Host       string
	Route      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	QueueSize  int
}

// Client posts outbound messages to the host. Send never blocks on the
// host: requests are started in call order but may complete in any order.
// Failed deliveries are logged and dropped.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	observer Observer

	mu     sync.Mutex
	closed bool
	queue  chan protocol.Outbound

	inflight sync.WaitGroup
	done     chan struct{}
}

// NewClient builds a client that posts to <host>/<route>.
func NewClient(opts Options) (*Client, error) {
	endpoint, err := Endpoint(opts.Host, opts.Route)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	c := &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     httpClient,
		observer: opts.Observer,
		queue:    make(chan protocol.Outbound, size),
		done:     make(chan struct{}),
	}
	go c.loop()
	return c, nil
}

// Endpoint joins the host base URL and a route.
func Endpoint(host, route string) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", fmt.Errorf("host url is required")
	}
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse host url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("host url %q must be absolute", host)
	}
	if route == "" {
		route = defaultRoute
	}
	return base.JoinPath(route).String(), nil
}

// URL returns the endpoint messages are posted to.
func (c *Client) URL() string {
	return c.endpoint
}

// Send queues msg for delivery. Messages sent after Close, or while the
// queue is full, are logged and dropped.
func (c *Client) Send(msg protocol.Outbound) {
	events.Outbound.Emit(msg.Fields())
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		logging.Errorf("drop %s message: client closed", msg.Type)
		return
	}
	select {
	case c.queue <- msg:
	default:
		logging.Errorf("drop %s message: send queue full", msg.Type)
	}
}

// Close stops accepting messages and waits until everything already queued
// has been delivered or has failed.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	close(c.queue)
	c.mu.Unlock()
	<-c.done
}

func (c *Client) loop() {
	defer close(c.done)
	for msg := range c.queue {
		started := make(chan struct{})
		c.inflight.Add(1)
		go func(msg protocol.Outbound) {
			defer c.inflight.Done()
			var once sync.Once
			signal := func() { once.Do(func() { close(started) }) }
			defer signal()

			ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
			defer cancel()
			ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
				WroteRequest: func(httptrace.WroteRequestInfo) { signal() },
			})
			c.report(msg, c.deliver(ctx, msg))
		}(msg)
		// the next request starts only once this one is on the wire
		<-started
	}
	c.inflight.Wait()
}

func (c *Client) report(msg protocol.Outbound, result delivery) {
	if result.err != nil {
		logging.Error(fmt.Errorf("send %s: %w", msg.Type, result.err))
		events.Outbound.Error(string(msg.Type), result.requestID, result.err)
	} else {
		events.Outbound.Delivered(string(msg.Type), result.requestID)
	}
	if c.observer != nil {
		c.observer.Sent(msg, result.requestID, result.err)
	}
}

type delivery struct {
	requestID string
	err       error
}

// Deliver posts msg synchronously and waits for the acknowledgement.
func (c *Client) Deliver(ctx context.Context, msg protocol.Outbound) error {
	return c.deliver(ctx, msg).err
}

func (c *Client) deliver(ctx context.Context, msg protocol.Outbound) delivery {
	requestID := uuid.NewString()
	body, err := json.Marshal(msg)
	if err != nil {
		return delivery{requestID, fmt.Errorf("encode message: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return delivery{requestID, fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return delivery{requestID, fmt.Errorf("post %s: %w", c.endpoint, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAckSize))
		return delivery{requestID, fmt.Errorf("%w: status %d", ErrNotAcknowledged, resp.StatusCode)}
	}
	var ack string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAckSize)).Decode(&ack); err != nil {
		return delivery{requestID, fmt.Errorf("%w: decode acknowledgement: %v", ErrNotAcknowledged, err)}
	}
	if ack != Acknowledgement {
		return delivery{requestID, fmt.Errorf("%w: got %q", ErrNotAcknowledged, ack)}
	}
	return delivery{requestID: requestID}
}
