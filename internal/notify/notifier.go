// Package notify broadcasts "the store changed" events to subscribers.
//
// Events are queued by Publish and delivered on a single dispatcher
// goroutine, so handlers never run concurrently with each other and never
// block the writer. When the queue is full the newest event replaces the
// pending tail: bursts may coalesce, but the last event of a burst is always
// delivered.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"wallet/internal/core"
)

// Op is the kind of write that produced an event.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event describes a completed write. Subscribers that only care about the
// fact of change may ignore the fields.
type Event struct {
	Kind core.Kind
	Op   Op
	ID   string
	At   time.Time
}

type Handler func(Event)

// Token identifies a subscription. The zero Token is never issued.
type Token uint64

const DefaultQueueSize = 256

type Notifier struct {
	mu       sync.Mutex
	handlers map[Token]Handler
	order    []Token
	next     Token
	pending  []Event
	maxQueue int
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// New starts a notifier whose queue holds at most queueSize undelivered
// events (DefaultQueueSize when queueSize <= 0).
func New(queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	n := &Notifier{
		handlers: make(map[Token]Handler),
		maxQueue: queueSize,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

// Subscribe registers h for every future event.
func (n *Notifier) Subscribe(h Handler) Token {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	t := n.next
	n.handlers[t] = h
	n.order = append(n.order, t)
	return t
}

// Unsubscribe removes the handler registered under t. Unknown or already
// removed tokens are ignored.
func (n *Notifier) Unsubscribe(t Token) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.handlers[t]; !ok {
		return
	}
	delete(n.handlers, t)
	for i, o := range n.order {
		if o == t {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Subscribers returns the number of registered handlers.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.handlers)
}

// Publish queues e for delivery. Callers must only publish after the write
// the event describes is durable. Publishing after Close is a no-op.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if len(n.pending) >= n.maxQueue {
		n.pending[len(n.pending)-1] = e
	} else {
		n.pending = append(n.pending, e)
	}
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Close delivers what is still queued, then stops the dispatcher. It waits
// for the dispatcher goroutine, so a handler must not call it directly; a
// handler that wants to shut down should run `go n.Close()`.
func (n *Notifier) Close() {
	n.once.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.mu.Unlock()
		close(n.stop)
	})
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for {
		select {
		case <-n.wake:
			n.drain()
		case <-n.stop:
			n.drain()
			return
		}
	}
}

func (n *Notifier) drain() {
	for {
		n.mu.Lock()
		if len(n.pending) == 0 {
			n.mu.Unlock()
			return
		}
		e := n.pending[0]
		n.pending = n.pending[1:]
		n.mu.Unlock()

		n.deliver(e)
	}
}

func (n *Notifier) deliver(e Event) {
	n.mu.Lock()
	tokens := append([]Token(nil), n.order...)
	n.mu.Unlock()

	for _, t := range tokens {
		n.mu.Lock()
		h, ok := n.handlers[t]
		n.mu.Unlock()
		if !ok {
			continue
		}
		n.call(h, e)
	}
}

func (n *Notifier) call(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Change handler panicked",
				"component", "notify",
				"kind", e.Kind,
				"op", e.Op,
				"panic", r)
		}
	}()
	h(e)
}
