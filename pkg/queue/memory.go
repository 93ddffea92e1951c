package queue

import (
	"fmt"
	"sync"
)

const (
	// DefaultQueueBufferSize is the capacity used when a non-positive size is requested.
	DefaultQueueBufferSize = 1024
)

// InMemoryQueue implements Queue with a bounded slice.
type InMemoryQueue[T any] struct {
	lock     sync.Mutex
	items    []T
	capacity int
}

var _ Queue[int] = &InMemoryQueue[int]{}

// NewInMemoryQueue creates a new queue holding at most size items.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	if size <= 0 {
		size = DefaultQueueBufferSize
	}
	return &InMemoryQueue[T]{
		items:    make([]T, 0, size),
		capacity: size,
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) >= q.capacity {
		return fmt.Errorf("queue is full (%d items)", q.capacity)
	}
	q.items = append(q.items, item)
	return nil
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}

// ReadAllMessages returns all pending items in arrival order and empties the queue.
func (q *InMemoryQueue[T]) ReadAllMessages() ([]T, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	messages := q.items
	q.items = make([]T, 0, q.capacity)
	return messages, nil
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue[T]) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = q.items[:0]
}
