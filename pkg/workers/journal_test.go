package workers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	mu     sync.Mutex
	frames []repositories.Frame
	fail   bool
}

var _ repositories.Repository = &memoryRepository{}

func (r *memoryRepository) Close(ctx context.Context) error { return nil }

func (r *memoryRepository) SaveFrame(ctx context.Context, frame repositories.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *memoryRepository) LoadFrames(ctx context.Context, sessionID string) ([]repositories.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repositories.Frame(nil), r.frames...), nil
}

func (r *memoryRepository) ListSessions(ctx context.Context) ([]repositories.Session, error) {
	return nil, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0, log.LogLevelTrace)
}

func TestJournalWorker_SavesInOrderAndFlushes(t *testing.T) {
	repo := &memoryRepository{}
	w := NewJournalWorker(NewJournalWorkerOptions{
		Repository: repo,
		BufferSize: 16,
		Logger:     testLogger(),
	})

	for i := 0; i < 10; i++ {
		w.Record(repositories.Frame{SessionID: "s", Index: uint64(i), Outcome: repositories.FrameOutcomeApplied})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	frames, err := repo.LoadFrames(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, frames, 10)
	for i, f := range frames {
		assert.Equal(t, uint64(i), f.Index)
	}

	saved, failed, dropped := w.Counts()
	assert.Equal(t, uint64(10), saved)
	assert.Zero(t, failed)
	assert.Zero(t, dropped)
}

func TestJournalWorker_RecordNeverBlocks(t *testing.T) {
	w := NewJournalWorker(NewJournalWorkerOptions{
		Repository: &memoryRepository{},
		BufferSize: 2,
		Logger:     testLogger(),
	})

	for i := 0; i < 5; i++ {
		w.Record(repositories.Frame{Index: uint64(i)})
	}

	_, _, dropped := w.Counts()
	assert.Equal(t, uint64(3), dropped)
}

func TestJournalWorker_CountsFailures(t *testing.T) {
	w := NewJournalWorker(NewJournalWorkerOptions{
		Repository: &memoryRepository{fail: true},
		Logger:     testLogger(),
	})
	w.Record(repositories.Frame{Index: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	saved, failed, _ := w.Counts()
	assert.Zero(t, saved)
	assert.Equal(t, uint64(1), failed)
}
