package queue

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by Enqueue when the queue has no free slot.
var ErrQueueFull = errors.New("queue is full")

// Queue represents a basic FIFO queue. Items come out in the order they
// went in.
type Queue[T any] interface {
	Enqueue(item T) error
	Dequeue(ctx context.Context) (T, error)
	Size() int
	ReadAllMessages() ([]T, error)
	ClearQueue() error
}
