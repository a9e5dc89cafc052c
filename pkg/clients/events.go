package clients

import (
	"sync"
)

type ViewerEventType int

const (
	ViewerEventConnected ViewerEventType = iota
	ViewerEventDisconnected
)

func (t ViewerEventType) String() string {
	switch t {
	case ViewerEventConnected:
		return "connected"
	case ViewerEventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type ViewerEvent struct {
	Type      ViewerEventType
	ViewerID  uint32
	SessionID string
}

type ViewerEventHandler func(event ViewerEvent)

type ViewerEventManager struct {
	lock     sync.Mutex
	handlers []ViewerEventHandler
}

func NewViewerEventManager() *ViewerEventManager {
	return &ViewerEventManager{}
}

// RegisterHandler registers a handler for events.
func (em *ViewerEventManager) RegisterHandler(handler ViewerEventHandler) {
	em.lock.Lock()
	defer em.lock.Unlock()
	em.handlers = append(em.handlers, handler)
}

// Trigger triggers an event.
// All registered handlers will be called their own goroutine.
func (em *ViewerEventManager) Trigger(event ViewerEvent) {
	em.lock.Lock()
	defer em.lock.Unlock()
	for _, handler := range em.handlers {
		go handler(event)
	}
}
