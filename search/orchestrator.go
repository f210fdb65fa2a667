package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/paging"
	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
	"github.com/smallnest/searchflow/stream"
)

// DefaultPageLimit is the page size requested from the client.
const DefaultPageLimit = 10

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("search: orchestrator already running")

// Orchestrator turns phrase changes and end-of-list signals into page
// fetches and folds the results into a stream of view states.
//
// All sequencing happens on the goroutine executing Run: it owns the
// current state, the active session and its page counter. Fetches run on
// their own goroutines and hand their results back to it.
type Orchestrator struct {
	client    profile.Client
	pageLimit int
	logger    log.Logger
	metrics   *Metrics
	initial   state.ViewState

	states  *stream.Replay[state.ViewState]
	running atomic.Bool

	// mu guards current, which Run writes and Current reads.
	mu      sync.RWMutex
	current state.ViewState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInitialState starts the fold from s instead of state.Blank(), e.g.
// after restoring a snapshot.
func WithInitialState(s state.ViewState) Option {
	return func(o *Orchestrator) {
		o.initial = s
	}
}

// WithPageLimit sets the page size passed to the client.
func WithPageLimit(limit int) Option {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.pageLimit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithStreamConfig sets the buffering of state subscriptions.
func WithStreamConfig(cfg stream.Config) Option {
	return func(o *Orchestrator) {
		o.states = stream.NewReplay[state.ViewState](cfg)
	}
}

// New creates an orchestrator. The initial state is published immediately,
// so subscribers attached before Run see it.
func New(client profile.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		pageLimit: DefaultPageLimit,
		logger:    log.GetDefaultLogger(),
		initial:   state.Blank(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.states == nil {
		o.states = stream.NewReplay[state.ViewState](stream.DefaultConfig())
	}
	o.current = o.initial
	o.states.Publish(o.initial)
	return o
}

// Subscribe attaches a renderer. The latest state is delivered first; a
// renderer that detaches and re-attaches gets it again without triggering
// any fetch.
func (o *Orchestrator) Subscribe() *stream.Subscription[state.ViewState] {
	return o.states.Subscribe()
}

// Current returns the latest folded state.
func (o *Orchestrator) Current() state.ViewState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// Close ends every subscription. Call it after Run has returned.
func (o *Orchestrator) Close() {
	o.states.Close()
}

// session is one activation of a phrase.
type session struct {
	token   uint64
	phrase  string
	ctx     context.Context
	cancel  context.CancelFunc
	counter *paging.Counter
}

type fetchResult struct {
	token    uint64
	page     int
	profiles []profile.Profile
	err      error
	elapsed  time.Duration
}

// Run sequences the search until ctx is done or phrases is closed. Each
// value from phrases replaces the active search; an empty phrase clears
// it. Each value from edges asks for the next page of the active search
// and is ignored while a fetch is in flight or after the end was reached.
// A closed edges channel only stops pagination.
func (o *Orchestrator) Run(ctx context.Context, phrases <-chan string, edges <-chan struct{}) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	l := &loop{
		o:       o,
		ctx:     loopCtx,
		results: make(chan fetchResult),
		state:   o.Current(),
	}
	defer l.cancelSession()

	for {
		select {
		case <-loopCtx.Done():
			return nil

		case phrase, ok := <-phrases:
			if !ok {
				return nil
			}
			l.activate(phrase)

		case _, ok := <-edges:
			if !ok {
				edges = nil
				continue
			}
			l.nextPage()

		case r := <-l.results:
			l.complete(r)
		}
	}
}

// loop holds the state owned by the Run goroutine.
type loop struct {
	o       *Orchestrator
	ctx     context.Context
	results chan fetchResult

	tokens  uint64
	session *session
	state   state.ViewState
}

func (l *loop) activate(phrase string) {
	if l.cancelSession() {
		l.o.metrics.cancelled()
	}

	if phrase == "" {
		l.emit(state.Cancelled{})
		return
	}

	l.tokens++
	ctx, cancel := context.WithCancel(l.ctx)
	l.session = &session{
		token:   l.tokens,
		phrase:  phrase,
		ctx:     ctx,
		cancel:  cancel,
		counter: paging.NewCounter(),
	}
	page, _ := l.session.counter.Start()
	l.request(page)
}

// cancelSession drops the active session. Results still in flight for it
// will carry a stale token.
func (l *loop) cancelSession() bool {
	if l.session == nil {
		return false
	}
	l.session.cancel()
	l.o.logger.Debug("cancelled search %q at page %d", l.session.phrase, l.session.counter.Page())
	l.session = nil
	return true
}

func (l *loop) nextPage() {
	if l.session == nil {
		return
	}
	page, ok := l.session.counter.Next()
	if !ok {
		l.o.logger.Debug("edge signal ignored for %q", l.session.phrase)
		return
	}
	l.request(page)
}

func (l *loop) request(page int) {
	s := l.session
	s.counter.SetAutoload(false)

	kind := KindFresh
	if page == 1 {
		l.emit(state.LoadingFreshSearch{SearchPhrase: s.phrase})
	} else {
		kind = KindMore
		l.emit(state.LoadingMoreResults{SearchPhrase: s.phrase})
	}
	l.o.metrics.request(kind)

	go l.fetch(s.ctx, s.token, s.phrase, page)
}

func (l *loop) fetch(ctx context.Context, token uint64, phrase string, page int) {
	start := time.Now()
	profiles, err := l.o.client.Search(ctx, phrase, page, l.o.pageLimit)
	r := fetchResult{
		token:    token,
		page:     page,
		profiles: profiles,
		err:      err,
		elapsed:  time.Since(start),
	}
	select {
	case l.results <- r:
	case <-l.ctx.Done():
	}
}

func (l *loop) complete(r fetchResult) {
	s := l.session
	if s == nil || r.token != s.token {
		l.o.metrics.stale()
		l.o.logger.Debug("discarded stale result for page %d", r.page)
		return
	}

	kind := KindFresh
	if r.page > 1 {
		kind = KindMore
	}

	switch {
	case r.err != nil:
		l.o.logger.Error("search %q page %d failed: %v", s.phrase, r.page, r.err)
		l.o.metrics.outcome(OutcomeError, kind, r.elapsed)
		l.emit(state.Failed{SearchPhrase: s.phrase, Err: r.err})
	case len(r.profiles) == 0:
		l.o.metrics.outcome(OutcomeEnd, kind, r.elapsed)
		l.emit(state.EndReached{SearchPhrase: s.phrase})
	case r.page == 1:
		l.o.metrics.outcome(OutcomeFresh, kind, r.elapsed)
		l.emit(state.FreshResults{SearchPhrase: s.phrase, Profiles: r.profiles})
		s.counter.SetAutoload(true)
	default:
		l.o.metrics.outcome(OutcomeMore, kind, r.elapsed)
		l.emit(state.MoreResults{SearchPhrase: s.phrase, Profiles: r.profiles})
		s.counter.SetAutoload(true)
	}
}

func (l *loop) emit(p state.Partial) {
	l.o.logger.Debug("partial state: %s", p)
	l.state = state.Fold(l.state, p)
	l.o.logger.Debug("view state: %s", l.state)

	l.o.mu.Lock()
	l.o.current = l.state
	l.o.mu.Unlock()

	l.o.states.Publish(l.state)
}
