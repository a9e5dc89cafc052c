package network

import (
	"errors"
	"fmt"

	"nhooyr.io/websocket"
)

var (
	// ErrChannelClosed is returned by sends after the connection has closed.
	// A closed channel never reopens.
	ErrChannelClosed = errors.New("channel closed")
	// ErrChannelNotOpen is wrapped in a SendFailedError when a send is
	// attempted before the connection is established.
	ErrChannelNotOpen = errors.New("channel not open")
)

// SendFailedError is returned when a command could not be written to the server.
type SendFailedError struct {
	Command string
	Err     error
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("failed to send %s command: %v", e.Command, e.Err)
}

func (e *SendFailedError) Unwrap() error {
	return e.Err
}

// ErrConnectionClosedByServer is returned when the server closes the websocket
type ErrConnectionClosedByServer struct {
	Code   websocket.StatusCode
	Reason string
}

func (e *ErrConnectionClosedByServer) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connection closed by server (%d)", int(e.Code))
	}
	return fmt.Sprintf("connection closed by server (%d): %s", int(e.Code), e.Reason)
}

// ErrConnectionClosedByClient is returned when the websocket was closed locally
type ErrConnectionClosedByClient struct{}

func (e *ErrConnectionClosedByClient) Error() string {
	return "connection closed by client"
}

// IsSendFailed reports whether err is, or wraps, a SendFailedError.
func IsSendFailed(err error) bool {
	var sendErr *SendFailedError
	return errors.As(err, &sendErr)
}
