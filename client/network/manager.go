package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/broadside/pkg/game/board"
	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/queue"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/cbodonnell/broadside/pkg/state"
)

const (
	DefaultServerURL = "ws://127.0.0.1:3000/ws"

	enqueueRetryInterval = 5 * time.Millisecond
)

// FrameRecorder receives every inbound frame together with what was done
// with it. Record must not block.
type FrameRecorder interface {
	Record(frame repositories.Frame)
}

// Stats counts inbound frames by outcome.
type Stats struct {
	Received uint64
	Applied  uint64
	Rejected uint64
	Stale    uint64
}

// NetworkManager owns the connection to the game server and is the only
// writer of the state store.
type NetworkManager struct {
	client       *WSClient
	clientID     string
	store        state.Store
	messageQueue queue.Queue[*InboundFrame]
	recorder     FrameRecorder
	logger       *log.Logger

	filter SequenceFilter

	errChan         chan error
	cancelClientCtx context.CancelFunc
	clientWaitGroup *sync.WaitGroup

	received atomic.Uint64
	applied  atomic.Uint64
	rejected atomic.Uint64
	stale    atomic.Uint64
}

type NewNetworkManagerOptions struct {
	ServerURL    string
	ClientID     string
	Store        state.Store
	MessageQueue queue.Queue[*InboundFrame]
	// Recorder is optional.
	Recorder FrameRecorder
	Logger   *log.Logger
}

// NewNetworkManager creates a new network manager.
func NewNetworkManager(opts NewNetworkManagerOptions) (*NetworkManager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if opts.MessageQueue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if opts.ServerURL == "" {
		opts.ServerURL = DefaultServerURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("clientID", opts.ClientID)

	return &NetworkManager{
		client:          NewWSClient(opts.ServerURL, opts.ClientID, logger),
		clientID:        opts.ClientID,
		store:           opts.Store,
		messageQueue:    opts.MessageQueue,
		recorder:        opts.Recorder,
		logger:          logger,
		errChan:         make(chan error, 1),
		clientWaitGroup: &sync.WaitGroup{},
	}, nil
}

// Start connects to the server and starts reading frames in the background.
// When the read loop ends its reason is delivered on ErrChan.
func (m *NetworkManager) Start(ctx context.Context) error {
	if m.cancelClientCtx != nil {
		return fmt.Errorf("network manager already started")
	}
	if err := m.client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to start websocket client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancelClientCtx = cancel

	m.clientWaitGroup.Add(1)
	go func(ctx context.Context) {
		defer m.clientWaitGroup.Done()
		err := m.client.HandleMessages(ctx, func(frame *InboundFrame) error {
			return m.enqueue(ctx, frame)
		})
		m.errChan <- err
	}(ctx)

	m.logger.Info("Connected to server")
	return nil
}

// enqueue blocks the read loop while the queue is full rather than dropping
// frames, so no snapshot is ever lost or reordered.
func (m *NetworkManager) enqueue(ctx context.Context, frame *InboundFrame) error {
	m.received.Add(1)
	for {
		err := m.messageQueue.Enqueue(frame)
		if !errors.Is(err, queue.ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(enqueueRetryInterval):
		}
	}
}

// ProcessServerMessages applies every queued frame to the store in arrival
// order and returns how many were applied. It must be called from a single
// goroutine, normally the UI loop.
func (m *NetworkManager) ProcessServerMessages() (int, error) {
	frames, err := m.messageQueue.ReadAllMessages()
	if err != nil {
		return 0, fmt.Errorf("failed to read messages from server message queue: %v", err)
	}

	applied := 0
	var errs []error
	for _, frame := range frames {
		ok, err := m.processFrame(frame)
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			applied++
		}
	}
	return applied, errors.Join(errs...)
}

func (m *NetworkManager) processFrame(frame *InboundFrame) (bool, error) {
	record := repositories.Frame{
		SessionID:  m.clientID,
		Index:      frame.Index,
		ReceivedAt: frame.ReceivedAt,
		Raw:        frame.Raw,
	}

	if frame.Err != nil {
		m.rejected.Add(1)
		m.logger.Error("Failed to decode frame %d: %v", frame.Index, frame.Err)
		record.Outcome = repositories.FrameOutcomeRejected
		record.Reason = frame.Err.Error()
		m.record(record)
		return false, nil
	}

	next := frame.Frame.State
	record.StateType = string(next.Type())
	record.Seq = frame.Frame.Seq

	if !m.filter.Accept(frame.Frame.Seq) {
		m.stale.Add(1)
		last, _ := m.filter.Last()
		m.logger.Warn("Dropping stale %s frame %d: seq %d <= %d", next.Type(), frame.Index, *frame.Frame.Seq, last)
		record.Outcome = repositories.FrameOutcomeStale
		m.record(record)
		return false, nil
	}

	if err := m.store.Replace(next); err != nil {
		m.rejected.Add(1)
		record.Outcome = repositories.FrameOutcomeRejected
		record.Reason = err.Error()
		m.record(record)
		return false, fmt.Errorf("failed to apply %s frame %d: %w", next.Type(), frame.Index, err)
	}
	m.applied.Add(1)
	record.Outcome = repositories.FrameOutcomeApplied
	m.record(record)
	m.logger.Debug("Applied %s frame %d", next.Type(), frame.Index)

	if _, err := board.ProjectState(next); err != nil {
		// the snapshot is kept; the view refuses to project it
		m.logger.Error("Received invalid %s snapshot: %v", next.Type(), err)
	}

	return true, nil
}

func (m *NetworkManager) record(frame repositories.Frame) {
	if m.recorder != nil {
		m.recorder.Record(frame)
	}
}

// SendCommand forwards cmd to the server. See WSClient.SendCommand.
func (m *NetworkManager) SendCommand(ctx context.Context, cmd types.Command) error {
	return m.client.SendCommand(ctx, cmd)
}

// Stop stops the network manager and its client and clears the server message queue.
func (m *NetworkManager) Stop() error {
	if m.cancelClientCtx == nil {
		m.logger.Warn("Network manager already stopped")
		return nil
	}
	m.cancelClientCtx()

	m.client.Close()

	m.logger.Debug("Waiting for client to stop")
	m.clientWaitGroup.Wait()
	if err := m.messageQueue.ClearQueue(); err != nil {
		return fmt.Errorf("failed to clear server message queue: %v", err)
	}

	m.cancelClientCtx = nil

	m.logger.Info("Network manager stopped")

	return nil
}

// ErrChan delivers the reason the read loop ended, once.
func (m *NetworkManager) ErrChan() <-chan error {
	return m.errChan
}

// ChannelState returns the state of the underlying connection.
func (m *NetworkManager) ChannelState() ChannelState {
	return m.client.State()
}

func (m *NetworkManager) ClientID() string {
	return m.clientID
}

func (m *NetworkManager) Stats() Stats {
	return Stats{
		Received: m.received.Load(),
		Applied:  m.applied.Load(),
		Rejected: m.rejected.Load(),
		Stale:    m.stale.Load(),
	}
}
