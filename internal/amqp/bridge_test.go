package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/notify"
)

type fakePublisher struct {
	mu    sync.Mutex
	msgs  []*StoreChangedMessage
	err   error
	block chan struct{}
}

func (f *fakePublisher) PublishStoreChanged(_ context.Context, msg *StoreChangedMessage) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakePublisher) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.ID
	}
	return out
}

func TestBridgeForwardsNotifierEvents(t *testing.T) {
	n := notify.New(0)
	defer n.Close()
	pub := &fakePublisher{}
	b := NewBridge(pub, 8, nil)
	b.Attach(n)

	n.Publish(notify.Event{Kind: core.KindAccount, Op: notify.OpCreated, ID: "a1"})
	n.Publish(notify.Event{Kind: core.KindAccount, Op: notify.OpDeleted, ID: "a1"})

	require.Eventually(t, func() bool { return len(pub.ids()) == 2 }, 2*time.Second, 5*time.Millisecond)
	b.Close()

	assert.Equal(t, []string{"a1", "a1"}, pub.ids())
	assert.Equal(t, 0, n.Subscribers(), "Close should detach from the notifier")
}

func TestBridgeDropsWhenBufferFull(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	b := NewBridge(pub, 1, nil)

	// The first event is taken by the worker and blocks there, the second
	// fills the buffer, the rest are dropped.
	b.enqueue(notify.Event{ID: "1"})
	require.Eventually(t, func() bool { return len(b.events) == 0 }, 2*time.Second, time.Millisecond)
	b.enqueue(notify.Event{ID: "2"})
	b.enqueue(notify.Event{ID: "3"})
	b.enqueue(notify.Event{ID: "4"})
	assert.Equal(t, 2, b.Dropped())

	close(pub.block)
	b.Close()
	assert.Equal(t, []string{"1", "2"}, pub.ids())
}

func TestBridgePublishErrorsDoNotStopForwarding(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	b := NewBridge(pub, 4, nil)

	b.enqueue(notify.Event{ID: "x"})
	b.enqueue(notify.Event{ID: "y"})
	b.Close()

	assert.Equal(t, []string{"x", "y"}, pub.ids())
}

func TestBridgeCloseIsIdempotent(t *testing.T) {
	b := NewBridge(&fakePublisher{}, 0, nil)
	b.Close()
	b.Close()
	b.enqueue(notify.Event{ID: "late"})
	assert.Equal(t, 0, b.Dropped())
}
