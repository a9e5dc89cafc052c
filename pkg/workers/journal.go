package workers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/repositories"
)

const (
	DefaultJournalBufferSize = 256
	DefaultJournalInterval   = 10 * time.Second
)

// JournalWorker writes inbound frames to a repository off the UI goroutine.
type JournalWorker struct {
	repository repositories.Repository
	frameChan  chan repositories.Frame
	interval   time.Duration
	logger     *log.Logger

	saved   atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

type NewJournalWorkerOptions struct {
	Repository repositories.Repository
	// BufferSize bounds the frames waiting to be written.
	BufferSize int
	// Interval between summary log lines.
	Interval time.Duration
	Logger   *log.Logger
}

// NewJournalWorker creates a new JournalWorker.
// Frames handed to Record are saved in order by Start.
func NewJournalWorker(opts NewJournalWorkerOptions) *JournalWorker {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultJournalBufferSize
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultJournalInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &JournalWorker{
		repository: opts.Repository,
		frameChan:  make(chan repositories.Frame, opts.BufferSize),
		interval:   opts.Interval,
		logger:     opts.Logger,
	}
}

// Record queues frame for saving. It never blocks; when the buffer is full
// the frame is dropped and counted.
func (w *JournalWorker) Record(frame repositories.Frame) {
	select {
	case w.frameChan <- frame:
	default:
		w.dropped.Add(1)
		w.logger.Warn("Journal buffer full, dropping frame %d of session %s", frame.Index, frame.SessionID)
	}
}

// Start saves frames until ctx is done, then flushes what is still buffered.
func (w *JournalWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// frames already taken off the channel are saved even if ctx ends mid-write
	saveCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case frame := <-w.frameChan:
			w.saveFrame(saveCtx, frame)
		case <-ticker.C:
			w.logger.Debug("Journal: %d saved, %d failed, %d dropped", w.saved.Load(), w.failed.Load(), w.dropped.Load())
		}
	}
}

func (w *JournalWorker) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case frame := <-w.frameChan:
			w.saveFrame(ctx, frame)
		default:
			return
		}
	}
}

func (w *JournalWorker) saveFrame(ctx context.Context, frame repositories.Frame) {
	if err := w.repository.SaveFrame(ctx, frame); err != nil {
		w.failed.Add(1)
		w.logger.Error("Failed to save frame %d of session %s: %v", frame.Index, frame.SessionID, err)
		return
	}
	w.saved.Add(1)
}

// Counts returns how many frames were saved, failed to save, and were dropped.
func (w *JournalWorker) Counts() (saved, failed, dropped uint64) {
	return w.saved.Load(), w.failed.Load(), w.dropped.Load()
}
