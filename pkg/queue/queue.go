package queue

// Queue is a FIFO buffer drained once per frame. Producers enqueue during
// a simulation step; the game loop reads the whole batch at once.
type Queue[T any] interface {
	Enqueue(item T) error
	Size() int
	ReadAllMessages() ([]T, error)
	ClearQueue()
}
