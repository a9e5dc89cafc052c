package clients

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// ViewerIDMaxRetries represents the maximum number of retries when generating a unique ID
	ViewerIDMaxRetries = 1024
)

// Viewer is a client connected to the replay server
type Viewer struct {
	ID          uint32    `json:"id"`
	SessionID   string    `json:"sessionId"`
	ClientID    string    `json:"clientId,omitempty"`
	RemoteAddr  string    `json:"remoteAddr"`
	ConnectedAt time.Time `json:"connectedAt"`
	// FramesSent is updated as the replay progresses.
	FramesSent int `json:"framesSent"`
}

// ViewerManager tracks the viewers of a replay server
type ViewerManager struct {
	viewers     map[uint32]*Viewer
	viewersLock sync.RWMutex
	nextID      uint32
	events      *ViewerEventManager
}

// NewViewerManager creates a new ViewerManager. events may be nil.
func NewViewerManager(events *ViewerEventManager) *ViewerManager {
	return &ViewerManager{
		viewers: make(map[uint32]*Viewer),
		nextID:  1,
		events:  events,
	}
}

// AddViewer registers a viewer and returns its ID
func (vm *ViewerManager) AddViewer(sessionID, clientID, remoteAddr string) (uint32, error) {
	vm.viewersLock.Lock()
	id, err := vm.generateUniqueID(ViewerIDMaxRetries)
	if err != nil {
		vm.viewersLock.Unlock()
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	vm.viewers[id] = &Viewer{
		ID:          id,
		SessionID:   sessionID,
		ClientID:    clientID,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
	}
	vm.viewersLock.Unlock()

	vm.trigger(ViewerEvent{Type: ViewerEventConnected, ViewerID: id, SessionID: sessionID})
	return id, nil
}

// RemoveViewer removes a viewer from the manager
func (vm *ViewerManager) RemoveViewer(id uint32) {
	vm.viewersLock.Lock()
	viewer, exists := vm.viewers[id]
	if exists {
		delete(vm.viewers, id)
	}
	vm.viewersLock.Unlock()

	if exists {
		vm.trigger(ViewerEvent{Type: ViewerEventDisconnected, ViewerID: id, SessionID: viewer.SessionID})
	}
}

// SetFramesSent records replay progress for a viewer
func (vm *ViewerManager) SetFramesSent(id uint32, n int) {
	vm.viewersLock.Lock()
	defer vm.viewersLock.Unlock()
	if viewer, ok := vm.viewers[id]; ok {
		viewer.FramesSent = n
	}
}

// GetViewers returns a copy of all connected viewers ordered by ID
func (vm *ViewerManager) GetViewers() []Viewer {
	vm.viewersLock.RLock()
	defer vm.viewersLock.RUnlock()
	viewers := make([]Viewer, 0, len(vm.viewers))
	for _, viewer := range vm.viewers {
		viewers = append(viewers, *viewer)
	}
	sort.Slice(viewers, func(i, j int) bool { return viewers[i].ID < viewers[j].ID })
	return viewers
}

func (vm *ViewerManager) Exists(id uint32) bool {
	vm.viewersLock.RLock()
	defer vm.viewersLock.RUnlock()
	_, ok := vm.viewers[id]
	return ok
}

// generateUniqueID must be called with viewersLock held
func (vm *ViewerManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := vm.nextID
		vm.nextID++
		if id == 0 {
			continue
		}
		if _, ok := vm.viewers[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

func (vm *ViewerManager) trigger(event ViewerEvent) {
	if vm.events != nil {
		vm.events.Trigger(event)
	}
}
