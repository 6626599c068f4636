package amqp

import (
	"context"
	"sync"
	"time"

	"wallet/internal/log"
	"wallet/internal/notify"
)

// Publisher is the outbound half of Client.
type Publisher interface {
	PublishStoreChanged(ctx context.Context, msg *StoreChangedMessage) error
}

// Bridge forwards notifier events to a Publisher from its own goroutine,
// so a slow broker never holds up the notifier's other handlers. When its
// buffer is full new events are dropped and counted.
type Bridge struct {
	pub    Publisher
	logger *log.Logger
	events chan notify.Event
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	dropped  int
	notifier *notify.Notifier
	token    notify.Token
}

func NewBridge(pub Publisher, buffer int, logger *log.Logger) *Bridge {
	if buffer <= 0 {
		buffer = notify.DefaultQueueSize
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	b := &Bridge{
		pub:    pub,
		logger: logger.WithComponent(log.ComponentAMQP),
		events: make(chan notify.Event, buffer),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Attach subscribes the bridge to n. Close detaches it.
func (b *Bridge) Attach(n *notify.Notifier) {
	tok := n.Subscribe(b.enqueue)
	b.mu.Lock()
	b.notifier, b.token = n, tok
	b.mu.Unlock()
}

func (b *Bridge) enqueue(e notify.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- e:
	default:
		b.dropped++
		b.logger.Warn("Change feed buffer full, event dropped",
			log.FieldKind, e.Kind,
			log.FieldRecordID, e.ID,
			"dropped_total", b.dropped)
	}
}

func (b *Bridge) run() {
	defer close(b.done)
	for e := range b.events {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := b.pub.PublishStoreChanged(ctx, NewStoreChangedMessage(e)); err != nil {
			b.logger.Error("Failed to publish store change",
				log.FieldKind, e.Kind,
				log.FieldOperation, e.Op,
				log.FieldRecordID, e.ID,
				log.FieldError, err)
		}
		cancel()
	}
}

// Dropped returns how many events were discarded because the buffer was
// full.
func (b *Bridge) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close detaches from the notifier, publishes what is buffered, then
// returns.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	n, tok := b.notifier, b.token
	close(b.events)
	b.mu.Unlock()

	if n != nil {
		n.Unsubscribe(tok)
	}
	<-b.done
}
