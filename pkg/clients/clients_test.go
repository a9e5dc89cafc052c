package clients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerManager_AddRemove(t *testing.T) {
	vm := NewViewerManager(nil)

	first, err := vm.AddViewer("s1", "c1", "127.0.0.1:1")
	require.NoError(t, err)
	second, err := vm.AddViewer("s2", "", "127.0.0.1:2")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	vm.SetFramesSent(first, 3)
	viewers := vm.GetViewers()
	require.Len(t, viewers, 2)
	assert.Equal(t, first, viewers[0].ID)
	assert.Equal(t, "s1", viewers[0].SessionID)
	assert.Equal(t, 3, viewers[0].FramesSent)
	assert.Equal(t, "s2", viewers[1].SessionID)

	vm.RemoveViewer(first)
	assert.False(t, vm.Exists(first))
	assert.True(t, vm.Exists(second))

	// removing twice is a no-op
	vm.RemoveViewer(first)
	assert.Len(t, vm.GetViewers(), 1)
}

func TestViewerManager_GenerateUniqueIDSkipsTaken(t *testing.T) {
	vm := NewViewerManager(nil)
	vm.viewers[1] = &Viewer{ID: 1}
	vm.viewers[2] = &Viewer{ID: 2}

	id, err := vm.AddViewer("s", "", "")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), id)
}

func TestViewerManager_GenerateUniqueIDGivesUp(t *testing.T) {
	vm := NewViewerManager(nil)
	for i := uint32(1); i <= 4; i++ {
		vm.viewers[i] = &Viewer{ID: i}
	}

	_, err := vm.generateUniqueID(4)
	assert.Error(t, err)
}

func TestViewerManager_Events(t *testing.T) {
	events := NewViewerEventManager()
	got := make(chan ViewerEvent, 2)
	events.RegisterHandler(func(event ViewerEvent) {
		got <- event
	})
	vm := NewViewerManager(events)

	id, err := vm.AddViewer("s", "", "")
	require.NoError(t, err)
	vm.RemoveViewer(id)

	var types []ViewerEventType
	for i := 0; i < 2; i++ {
		select {
		case event := <-got:
			assert.Equal(t, id, event.ViewerID)
			assert.Equal(t, "s", event.SessionID)
			types = append(types, event.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for viewer event")
		}
	}
	// handlers run in their own goroutines so order is not guaranteed
	assert.ElementsMatch(t, []ViewerEventType{ViewerEventConnected, ViewerEventDisconnected}, types)
}
