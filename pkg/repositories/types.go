package repositories

import "time"

// FrameOutcome records what the client did with an inbound frame.
type FrameOutcome string

const (
	// FrameOutcomeApplied frames replaced the client state
	FrameOutcomeApplied FrameOutcome = "applied"
	// FrameOutcomeRejected frames failed to decode and were not applied
	FrameOutcomeRejected FrameOutcome = "rejected"
	// FrameOutcomeStale frames carried a sequence number at or below the last applied one
	FrameOutcomeStale FrameOutcome = "stale"
)

// Frame is one journaled inbound frame.
type Frame struct {
	SessionID  string       `json:"sessionID"`
	Index      uint64       `json:"index"`
	ReceivedAt time.Time    `json:"receivedAt"`
	StateType  string       `json:"stateType,omitempty"`
	Seq        *uint64      `json:"seq,omitempty"`
	Outcome    FrameOutcome `json:"outcome"`
	Reason     string       `json:"reason,omitempty"`
	Raw        []byte       `json:"raw"`
}

// Session summarizes the journal of one client session.
type Session struct {
	ID      string    `json:"id"`
	Frames  int       `json:"frames"`
	FirstAt time.Time `json:"firstAt"`
	LastAt  time.Time `json:"lastAt"`
}

type ErrNotFound struct {
	SessionID string
}

func (e *ErrNotFound) Error() string {
	if e.SessionID == "" {
		return "not found"
	}
	return "session not found: " + e.SessionID
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}
