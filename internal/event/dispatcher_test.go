package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	d := NewDispatcher(16)

	var mu sync.Mutex
	var got []Event
	calls := 0
	d.Subscribe(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		return nil
	})
	d.Subscribe(func(context.Context, Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return errors.New("cache down")
	})

	stop := d.Start(2)
	d.Publish(context.Background(), Changed(EntityPost, OpCreated, 1))
	d.Publish(context.Background(), Changed(EntityUser, OpDeleted, 2))
	require.NoError(t, stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
	assert.Equal(t, 2, calls)
	for _, e := range got {
		assert.Equal(t, RootPath, e.Path)
	}
	stats := d.Stats()
	assert.Equal(t, int64(2), stats.Handled)
	assert.Equal(t, int64(2), stats.HandlerErrors)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1)
	d.Publish(context.Background(), Changed(EntityPost, OpCreated, 1))
	d.Publish(context.Background(), Changed(EntityPost, OpCreated, 2))

	assert.Equal(t, 1, d.Stats().Queued)
	assert.Equal(t, int64(1), d.Stats().Dropped)
}

func TestDispatcher_PublishAfterStop(t *testing.T) {
	d := NewDispatcher(4)
	stop := d.Start(1)
	require.NoError(t, stop(context.Background()))
	// second call is safe
	require.NoError(t, stop(context.Background()))

	d.Publish(context.Background(), Changed(EntityPost, OpUpdated, 3))
	assert.Equal(t, int64(1), d.Stats().Dropped)
}

func TestDispatcher_StopHonoursContext(t *testing.T) {
	d := NewDispatcher(4)
	block := make(chan struct{})
	d.Subscribe(func(context.Context, Event) error {
		<-block
		return nil
	})
	stop := d.Start(1)
	d.Publish(context.Background(), Changed(EntityPost, OpCreated, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, stop(ctx), context.DeadlineExceeded)

	close(block)
	assert.NoError(t, stop(context.Background()))
}

func TestDispatcher_StopRacingPublishLosesNothing(t *testing.T) {
	for round := 0; round < 20; round++ {
		d := NewDispatcher(64)
		d.Subscribe(func(context.Context, Event) error { return nil })
		stop := d.Start(2)

		const publishers, perPublisher = 4, 50
		var wg sync.WaitGroup
		for p := 0; p < publishers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perPublisher; i++ {
					d.Publish(context.Background(), Changed(EntityPost, OpUpdated, int64(p*perPublisher+i)))
				}
			}(p)
		}
		require.NoError(t, stop(context.Background()))
		wg.Wait()

		// 每个事件要么被处理，要么计入丢弃
		st := d.Stats()
		assert.Equal(t, int64(publishers*perPublisher), st.Handled+st.Dropped, "round %d", round)
		assert.Zero(t, st.Queued, "round %d", round)
	}
}

func TestSync_RunsHandlerBeforeForwarding(t *testing.T) {
	var order []string
	next := publisherFunc(func(_ context.Context, e Event) {
		order = append(order, "next")
	})
	p := Sync(func(_ context.Context, e Event) error {
		order = append(order, "sync")
		return errors.New("cache down")
	}, next)

	p.Publish(context.Background(), Changed(EntityUser, OpCreated, 1))

	assert.Equal(t, []string{"sync", "next"}, order)
}

type publisherFunc func(ctx context.Context, e Event)

func (f publisherFunc) Publish(ctx context.Context, e Event) { f(ctx, e) }

func TestNop(t *testing.T) {
	Nop().Publish(context.Background(), Changed(EntityUser, OpCreated, 1))
}
