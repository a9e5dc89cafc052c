package state

import (
	"sync"

	"github.com/cbodonnell/broadside/pkg/game/types"
)

type subscription struct {
	id uint64
	fn Subscriber
}

// InMemoryStore is a Store backed by a single value.
type InMemoryStore struct {
	lock        sync.RWMutex
	gameState   types.GameState
	version     uint64
	nextID      uint64
	subscribers []subscription
	notifying   bool
}

var _ Store = &InMemoryStore{}

// NewInMemoryStore returns a store holding the initial Waiting state.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		gameState: types.Initial(),
	}
}

func (s *InMemoryStore) Get() types.GameState {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.gameState
}

// Version returns the number of snapshots applied so far.
func (s *InMemoryStore) Version() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.version
}

func (s *InMemoryStore) Replace(next types.GameState) error {
	if next == nil {
		return ErrNilState
	}

	s.lock.Lock()
	if s.notifying {
		s.lock.Unlock()
		return ErrReentrantReplace
	}
	previous := s.gameState
	s.gameState = next
	s.version++
	subscribers := make([]subscription, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.notifying = true
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		s.notifying = false
		s.lock.Unlock()
	}()

	// subscribers run without the lock so they can call Get
	for _, sub := range subscribers {
		sub.fn(previous, next)
	}

	return nil
}

func (s *InMemoryStore) Subscribe(fn Subscriber) func() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lock.Lock()
			defer s.lock.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}
