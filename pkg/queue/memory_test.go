package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue_ReadAllMessages(t *testing.T) {
	q := NewInMemoryQueue[string](4)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	require.NoError(t, q.Enqueue("c"))
	assert.Equal(t, 3, q.Size())

	got, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Size())

	got, err = q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInMemoryQueue_full(t *testing.T) {
	q := NewInMemoryQueue[int](2)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.Error(t, q.Enqueue(3))
	assert.Equal(t, 2, q.Size())

	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
	assert.NoError(t, q.Enqueue(3))
}

func TestInMemoryQueue_defaultSize(t *testing.T) {
	q := NewInMemoryQueue[int](0)
	assert.Equal(t, DefaultQueueBufferSize, q.capacity)
}
