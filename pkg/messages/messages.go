package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

const (
	// MessageBufferSize is the largest frame the client accepts from the server
	MessageBufferSize = 64 * 1024
	// maxErrorFrameLen bounds how much of an offending frame DecodeError.Error prints
	maxErrorFrameLen = 128
)

// ServerFrame is a decoded server to client frame.
type ServerFrame struct {
	// Seq is the optional monotonic sequence number of the snapshot.
	// Servers that predate sequencing never set it.
	Seq *uint64
	// State is the complete snapshot carried by the frame.
	State types.GameState
}

// serverFrameJSON is the wire shape of every server frame. Pointer and raw
// fields distinguish a missing key from a zero value.
type serverFrameJSON struct {
	Type  *types.StateType `json:"type"`
	Seq   *uint64          `json:"seq,omitempty"`
	Ships json.RawMessage  `json:"ships,omitempty"`
	Size  *int             `json:"size,omitempty"`
	Who   *types.Player    `json:"who,omitempty"`
}

// commandJSON is the wire shape of every client to server frame.
type commandJSON struct {
	Type types.CommandType    `json:"type"`
	Loc  *types.Location      `json:"loc"`
	Dir  *types.ShipDirection `json:"dir,omitempty"`
}

// DecodeError is returned when an inbound frame is not a valid snapshot.
type DecodeError struct {
	Reason string
	Frame  []byte
	Err    error
}

func (e *DecodeError) Error() string {
	frame := string(e.Frame)
	if len(frame) > maxErrorFrameLen {
		frame = frame[:maxErrorFrameLen] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to decode frame %q: %s: %v", frame, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to decode frame %q: %s", frame, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	_, ok := AsDecodeError(err)
	return ok
}
