package eventstream

import (
	"context"
	"net/http"
	"time"
)

const (
	connectRetryDelay = 500 * time.Millisecond
	streamRetryDelay  = time.Second
)

// Sink receives parsed events from a Client. Implementations must be safe
// for calls from the client's goroutine.
type Sink interface {
	HandleEvent(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

func (f SinkFunc) HandleEvent(ev Event) { f(ev) }

// Client maintains a long-lived connection to a hudd event stream, feeding
// every received chunk through a Parser and delivering completed events to
// its sink. Connection drops and refused connects are retried forever with a
// fixed short delay until the context is cancelled.
type Client struct {
	URL  string
	Sink Sink

	// HTTPClient is used for stream requests. The zero value uses a client
	// with no overall timeout, which a long-poll stream requires.
	HTTPClient *http.Client
}

// Run blocks, streaming events to the sink until ctx is cancelled. It always
// returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	for {
		delay := connectRetryDelay
		if c.streamOnce(ctx, hc) {
			delay = streamRetryDelay
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// streamOnce runs a single connection attempt. It reports whether a stream
// was established, so the caller can back off slightly longer after a drop
// than after a refused connect.
func (c *Client) streamOnce(ctx context.Context, hc *http.Client) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var parser Parser
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				c.Sink.HandleEvent(ev)
			}
		}
		if err != nil {
			return true
		}
	}
}
