package ui

import (
	"errors"

	"github.com/cbodonnell/broadside/client/network"
)

// ActionableError is an error worded for the player, with what they can do about it.
type ActionableError struct {
	Message string
	// Err is the underlying error, for the log.
	Err error
}

func (e *ActionableError) Error() string {
	return e.Message
}

func (e *ActionableError) Unwrap() error {
	return e.Err
}

// ForConnectionError words the reason the connection ended.
func ForConnectionError(err error) *ActionableError {
	var closedByServer *network.ErrConnectionClosedByServer
	switch {
	case errors.As(err, &closedByServer):
		msg := "The server closed the connection."
		if closedByServer.Reason != "" {
			msg = "The server closed the connection (" + closedByServer.Reason + ")."
		}
		return &ActionableError{Message: msg + " Press q to quit.", Err: err}
	default:
		return &ActionableError{Message: "Lost connection to the server. Press q to quit.", Err: err}
	}
}

// ForSendError words a failed command send.
func ForSendError(err error) *ActionableError {
	switch {
	case errors.Is(err, network.ErrChannelClosed):
		return &ActionableError{Message: "Not connected. Your move was not sent. Press q to quit.", Err: err}
	case errors.Is(err, network.ErrChannelNotOpen):
		return &ActionableError{Message: "Still connecting. Try again in a moment.", Err: err}
	default:
		return &ActionableError{Message: "Your move could not be sent. Try again.", Err: err}
	}
}
