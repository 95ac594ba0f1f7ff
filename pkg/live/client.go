package live

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Client attaches a runtime to a dev server's live endpoint and dispatches
// decoded frames to the registered handlers. Handlers run on the read
// goroutine; slow handlers delay later frames but never drop them.
type Client struct {
	url string

	mu           sync.Mutex
	conn         *websocket.Conn
	onError      func(err error)
	onReload     func(*ReloadPayload)
	onBuildError func(*ErrorPayload)
}

// NewClient creates a client for the given WebSocket URL
func NewClient(url string) *Client {
	return &Client{url: url}
}

// OnReload sets the handler for recompiled components. Handlers may be
// registered or replaced after Connect.
func (c *Client) OnReload(handler func(*ReloadPayload)) {
	c.mu.Lock()
	c.onReload = handler
	c.mu.Unlock()
}

// OnBuildError sets the handler for failed compiles
func (c *Client) OnBuildError(handler func(*ErrorPayload)) {
	c.mu.Lock()
	c.onBuildError = handler
	c.mu.Unlock()
}

// OnError sets the handler for connection and decode failures
func (c *Client) OnError(handler func(error)) {
	c.mu.Lock()
	c.onError = handler
	c.mu.Unlock()
}

func (c *Client) reloadHandler() func(*ReloadPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onReload
}

func (c *Client) buildErrorHandler() func(*ErrorPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onBuildError
}

// Connect dials the server and starts the read loop. It returns once the
// connection is established; frames are dispatched in the background until
// the connection drops or Close is called.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		ft, body, err := DecodeFrame(data)
		if err != nil {
			c.fail(err)
			continue
		}
		switch ft {
		case FrameReload:
			payload, err := DecodeReload(body)
			if err != nil {
				c.fail(err)
				continue
			}
			if handler := c.reloadHandler(); handler != nil {
				handler(payload)
			}
		case FrameBuildError:
			payload, err := DecodeError(body)
			if err != nil {
				c.fail(err)
				continue
			}
			if handler := c.buildErrorHandler(); handler != nil {
				handler(payload)
			}
		case FrameControl:
			// Control frames carry no runtime-visible state yet.
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	handler := c.onError
	c.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

// Close tears down the connection; in-flight handlers finish first
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}
