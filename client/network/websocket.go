package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/messages"
	"github.com/cbodonnell/broadside/pkg/version"
	"nhooyr.io/websocket"
)

const (
	// ClientIDHeader carries the client's session id on the upgrade request
	ClientIDHeader = "X-Client-ID"
)

// ChannelState is the lifecycle of a WSClient. It only moves forward.
type ChannelState int

const (
	ChannelConnecting ChannelState = iota
	ChannelOpen
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// InboundFrame is one frame received from the server, decoded or not.
type InboundFrame struct {
	// Index counts frames on this connection from zero.
	Index uint64
	// Raw is the frame exactly as received.
	Raw []byte
	// ReceivedAt is when the frame was read off the connection.
	ReceivedAt time.Time
	// Frame is the decoded frame, nil when Err is set.
	Frame *messages.ServerFrame
	// Err is a *messages.DecodeError when the frame was rejected.
	Err error
}

// FrameHandler is called once per inbound frame, in arrival order.
type FrameHandler func(frame *InboundFrame) error

// WSClient represents a WebSocket client holding a single connection to a
// fixed server address.
type WSClient struct {
	serverAddr string
	clientID   string
	logger     *log.Logger

	lock  sync.Mutex
	state ChannelState
	conn  *websocket.Conn
}

// NewWSClient creates a new WebSocket client.
func NewWSClient(serverAddr string, clientID string, logger *log.Logger) *WSClient {
	if logger == nil {
		logger = log.Default()
	}
	return &WSClient{
		serverAddr: serverAddr,
		clientID:   clientID,
		logger:     logger,
		state:      ChannelConnecting,
	}
}

// State returns the current channel state.
func (c *WSClient) State() ChannelState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Connect establishes the connection. There is no handshake payload.
// A client that has been closed cannot connect again.
func (c *WSClient) Connect(ctx context.Context) error {
	c.lock.Lock()
	switch c.state {
	case ChannelOpen:
		c.lock.Unlock()
		return fmt.Errorf("already connected to %s", c.serverAddr)
	case ChannelClosed:
		c.lock.Unlock()
		return ErrChannelClosed
	}
	c.lock.Unlock()

	c.logger.Info("Connecting to WebSocket server at %s", c.serverAddr)
	header := http.Header{}
	header.Set(ClientIDHeader, c.clientID)
	header.Set("User-Agent", fmt.Sprintf("broadside/%s", version.Get()))
	conn, _, err := websocket.Dial(ctx, c.serverAddr, &websocket.DialOptions{
		HTTPHeader: header,
	})

	c.lock.Lock()
	defer c.lock.Unlock()
	if err != nil {
		c.state = ChannelClosed
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	if c.state == ChannelClosed {
		// closed while dialing
		conn.Close(websocket.StatusNormalClosure, "client closing")
		return ErrChannelClosed
	}
	conn.SetReadLimit(messages.MessageBufferSize)

	c.conn = conn
	c.state = ChannelOpen
	return nil
}

// HandleMessages reads frames until the connection ends and hands each one
// to handler on the calling goroutine. A frame is fully handled before the
// next is read, so handler sees frames in arrival order. A handler error
// stops the loop and closes the connection.
func (c *WSClient) HandleMessages(ctx context.Context, handler FrameHandler) error {
	conn, err := c.openConn()
	if err != nil {
		return err
	}

	for index := uint64(0); ; index++ {
		typ, b, err := conn.Read(ctx)
		if err != nil {
			return c.readFailed(ctx, err)
		}

		frame := &InboundFrame{
			Index:      index,
			Raw:        b,
			ReceivedAt: time.Now(),
		}
		if typ != websocket.MessageText {
			frame.Err = &messages.DecodeError{Reason: "binary frames are not supported", Frame: b}
		} else {
			frame.Frame, frame.Err = messages.DecodeServerFrame(b)
		}
		c.logger.Trace("Received frame from WebSocket server: %s", b)

		if err := handler(frame); err != nil {
			c.Close()
			return fmt.Errorf("failed to handle frame: %w", err)
		}
	}
}

func (c *WSClient) readFailed(ctx context.Context, err error) error {
	c.lock.Lock()
	alreadyClosed := c.state == ChannelClosed
	c.state = ChannelClosed
	c.lock.Unlock()

	if alreadyClosed || ctx.Err() != nil {
		c.logger.Debug("WebSocket connection closed by client")
		return &ErrConnectionClosedByClient{}
	}

	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		c.logger.Info("WebSocket connection closed by server: %v", err)
		return &ErrConnectionClosedByServer{Code: closeErr.Code, Reason: closeErr.Reason}
	}

	c.logger.Error("Error reading WebSocket message from %s: %v", c.serverAddr, err)
	return fmt.Errorf("failed to read from WebSocket connection: %w", err)
}

func (c *WSClient) openConn() (*websocket.Conn, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch c.state {
	case ChannelOpen:
		return c.conn, nil
	case ChannelClosed:
		return nil, ErrChannelClosed
	default:
		return nil, ErrChannelNotOpen
	}
}

// SendCommand encodes cmd and writes it as one text frame. Sends after the
// connection closed fail with ErrChannelClosed; any other failure is a
// *SendFailedError. Nothing is retried.
func (c *WSClient) SendCommand(ctx context.Context, cmd types.Command) error {
	b, err := messages.EncodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	conn, err := c.openConn()
	if errors.Is(err, ErrChannelClosed) {
		return ErrChannelClosed
	}
	if err != nil {
		return &SendFailedError{Command: string(cmd.Type()), Err: err}
	}

	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		c.lock.Lock()
		alreadyClosed := c.state == ChannelClosed
		c.state = ChannelClosed
		c.lock.Unlock()
		// tear the connection down so the read loop ends and reports it
		if !alreadyClosed {
			conn.CloseNow()
		}
		return &SendFailedError{Command: string(cmd.Type()), Err: err}
	}

	c.logger.Debug("Sent %s command: %s", cmd.Type(), b)
	return nil
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	c.lock.Lock()
	if c.state == ChannelClosed {
		c.lock.Unlock()
		c.logger.Debug("WebSocket connection is already closed")
		return nil
	}
	c.state = ChannelClosed
	conn := c.conn
	c.lock.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client closing")
}
