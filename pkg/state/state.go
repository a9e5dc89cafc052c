package state

import (
	"errors"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

var (
	// ErrNilState is returned when Replace is called with a nil snapshot.
	ErrNilState = errors.New("game state is nil")
	// ErrReentrantReplace is returned when a subscriber calls Replace while
	// a replace is still notifying.
	ErrReentrantReplace = errors.New("replace called during subscriber notification")
)

// Subscriber is notified after every Replace with the discarded and the new snapshot.
type Subscriber func(previous, next types.GameState)

// Store holds the single authoritative game state of the client.
// There is exactly one writer; any number of readers may call Get.
type Store interface {
	// Get returns the current snapshot.
	Get() types.GameState
	// Replace discards the current snapshot and stores next in its place,
	// then notifies subscribers synchronously in subscription order.
	Replace(next types.GameState) error
	// Subscribe registers s and returns a func that removes it.
	Subscribe(s Subscriber) (unsubscribe func())
}
