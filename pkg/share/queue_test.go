package share

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewQueueInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewQueue[float32]("bad", capacity, QueueOptions{})
		require.True(t, errors.Is(err, ErrInvalidCapacity))
	}
	require.Panics(t, func() { MustNewQueue[int]("bad", 0, QueueOptions{}) })
}

func TestQueueFIFOAndCount(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for capacity := 1; capacity <= 8; capacity++ {
		q := MustNewQueue[int32]("fifo", capacity, QueueOptions{})
		var model []int32
		puts, gets := 0, 0
		for i := 0; i < 500; i++ {
			if len(model) < capacity && (len(model) == 0 || rnd.Intn(2) == 0) {
				v := rnd.Int31()
				q.Put(v)
				model = append(model, v)
				puts++
			} else {
				v, err := q.Get()
				require.NoError(t, err)
				require.Equal(t, model[0], v)
				model = model[1:]
				gets++
			}
			require.Equal(t, puts-gets, q.Len())
			require.Equal(t, len(model) == capacity, q.Full())
			require.Equal(t, len(model) == 0, q.Empty())
		}
	}
}

func TestQueueOverwriteDropsOldest(t *testing.T) {
	const capacity = 5
	q := MustNewQueue[uint16]("ring", capacity, QueueOptions{Overwrite: true})
	for i := 0; i <= capacity; i++ {
		q.Put(uint16(i))
	}
	require.Equal(t, capacity, q.Len())
	require.Equal(t, capacity, q.MaxFull())
	for i := 1; i <= capacity; i++ {
		v, err := q.Get()
		require.NoError(t, err)
		require.Equal(t, uint16(i), v)
	}
	require.True(t, q.Empty())
}

func TestQueueEmpty(t *testing.T) {
	q := MustNewQueue[float64]("empty", 3, QueueOptions{})
	_, err := q.Get()
	require.Equal(t, ErrEmpty, err)
	_, err = q.PeekNewest()
	require.Equal(t, ErrEmpty, err)
	require.Equal(t, 2.5, q.PeekOr(2.5))
}

func TestQueuePeekNewest(t *testing.T) {
	q := MustNewQueue[float32]("peek", 3, QueueOptions{Overwrite: true})
	for _, v := range []float32{1, 2, 3, 4} {
		q.Put(v)
		n := q.Len()
		peeked, err := q.PeekNewest()
		require.NoError(t, err)
		require.Equal(t, v, peeked)
		require.Equal(t, n, q.Len())
	}
	v, err := q.Get()
	require.NoError(t, err)
	require.Equal(t, float32(2), v)
}

func TestQueueHasMany(t *testing.T) {
	q := MustNewQueue[int]("many", 4, QueueOptions{})
	require.False(t, q.Any())
	require.False(t, q.HasMany())
	q.Put(1)
	require.True(t, q.Any())
	require.False(t, q.HasMany())
	q.Put(2)
	require.True(t, q.HasMany())
}

func TestQueueTryPut(t *testing.T) {
	q := MustNewQueue[uint8]("try", 2, QueueOptions{})
	require.NoError(t, q.TryPut(1))
	require.NoError(t, q.TryPut(2))
	require.Equal(t, ErrFull, q.TryPut(3))
	require.False(t, q.PutFromISR(3))
	v, err := q.Get()
	require.NoError(t, err)
	require.Equal(t, uint8(1), v)
	require.True(t, q.PutFromISR(3))
}

func TestQueueBlockingPutWaitsForSpace(t *testing.T) {
	q := MustNewQueue[int]("block", 1, QueueOptions{Protect: true})
	q.Put(1)
	done := make(chan struct{})
	go func() {
		q.Put(2)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("put on a full queue returned")
	case <-time.After(20 * time.Millisecond):
	}
	v, err := q.Get()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("put did not resume")
	}
	v, err = q.Get()
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestQueueProtectedConcurrentProducers(t *testing.T) {
	const producers, items = 4, 250
	q := MustNewQueue[int]("isr", producers*items, QueueOptions{Protect: true})
	var wg sync.WaitGroup
	var dropped atomic.Int32
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < items; i++ {
				if !q.PutFromISR(i) {
					dropped.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	require.Zero(t, dropped.Load())
	require.Equal(t, producers*items, q.Len())
	require.True(t, q.Full())
}

func TestQueueClear(t *testing.T) {
	q := MustNewQueue[int]("clear", 3, QueueOptions{})
	q.Put(1)
	q.Put(2)
	q.Clear()
	require.True(t, q.Empty())
	require.Zero(t, q.MaxFull())
	q.Put(7)
	v, err := q.PeekNewest()
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
