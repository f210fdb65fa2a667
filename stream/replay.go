package stream

import (
	"sync"
)

// Config configures per-subscriber buffering.
type Config struct {
	// BufferSize is the number of undelivered values a subscription holds.
	// When it is full the oldest value is dropped.
	BufferSize int
}

// DefaultConfig returns the default stream configuration
func DefaultConfig() Config {
	return Config{BufferSize: 256}
}

// Replay broadcasts values to any number of subscribers and replays the
// latest value to each new subscriber. Publish never blocks: every
// subscription owns a bounded queue drained by its own goroutine.
type Replay[T any] struct {
	mu        sync.Mutex
	latest    T
	hasLatest bool
	subs      map[*Subscription[T]]struct{}
	closed    bool
	config    Config
}

// NewReplay creates an empty stream.
func NewReplay[T any](config Config) *Replay[T] {
	if config.BufferSize < 1 {
		config.BufferSize = 1
	}
	return &Replay[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		config: config,
	}
}

// Publish records v as the latest value and queues it for every subscriber.
// Publishing to a closed stream is a no-op.
func (r *Replay[T]) Publish(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.latest = v
	r.hasLatest = true
	for s := range r.subs {
		s.push(v)
	}
}

// Latest returns the most recently published value.
func (r *Replay[T]) Latest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.hasLatest
}

// Subscribe attaches a new subscriber. The latest value, if any, is the
// first value it receives. Subscribing to a closed stream returns a
// subscription whose channel is already closed.
func (r *Replay[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{
		parent: r,
		limit:  r.config.BufferSize,
		notify: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.stop()
		close(s.out)
		return s
	}
	if r.hasLatest {
		s.push(r.latest)
	}
	r.subs[s] = struct{}{}
	r.mu.Unlock()

	go s.pump()
	return s
}

// Subscribers returns the number of attached subscriptions.
func (r *Replay[T]) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Close detaches every subscriber and rejects further values.
func (r *Replay[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := r.subs
	r.subs = make(map[*Subscription[T]]struct{})
	r.mu.Unlock()

	for s := range subs {
		s.stop()
	}
}

func (r *Replay[T]) remove(s *Subscription[T]) {
	r.mu.Lock()
	delete(r.subs, s)
	r.mu.Unlock()
}

// Subscription is one subscriber's view of a Replay stream.
type Subscription[T any] struct {
	parent *Replay[T]

	mu      sync.Mutex
	queue   []T
	limit   int
	dropped int

	notify chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

// C returns the channel values are delivered on. It is closed after
// Unsubscribe or when the stream is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Unsubscribe detaches the subscription. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.parent.remove(s)
	s.stop()
}

// Dropped returns how many values were discarded because the subscriber
// fell behind by more than the buffer size.
func (s *Subscription[T]) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Subscription[T]) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if len(s.queue) >= s.limit {
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.dropped++
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
