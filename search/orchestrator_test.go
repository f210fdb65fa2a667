package search

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/profile"
	"github.com/smallnest/searchflow/state"
	"github.com/smallnest/searchflow/stream"
)

const waitFor = 2 * time.Second

// quiet is how long a test waits to be confident nothing else happens.
const quiet = 100 * time.Millisecond

type reply struct {
	profiles []profile.Profile
	err      error
}

type call struct {
	ctx     context.Context
	keyword string
	page    int
	limit   int
	reply   chan reply
}

// scriptedClient hands every request to the test, which answers it when it
// wants. Answers are returned even if ctx was cancelled, like a client
// that does not observe cancellation.
type scriptedClient struct {
	calls chan call
	done  chan struct{}
}

func newScriptedClient(t *testing.T) *scriptedClient {
	c := &scriptedClient{calls: make(chan call, 16), done: make(chan struct{})}
	t.Cleanup(func() { close(c.done) })
	return c
}

func (c *scriptedClient) Search(ctx context.Context, keyword string, page, limit int) ([]profile.Profile, error) {
	cl := call{ctx: ctx, keyword: keyword, page: page, limit: limit, reply: make(chan reply, 1)}
	c.calls <- cl
	select {
	case r := <-cl.reply:
		return r.profiles, r.err
	case <-c.done:
		return nil, errors.New("test finished")
	}
}

func (c *scriptedClient) expectCall(t *testing.T) call {
	t.Helper()
	select {
	case cl := <-c.calls:
		return cl
	case <-time.After(waitFor):
		t.Fatal("expected a fetch")
	}
	return call{}
}

func (c *scriptedClient) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case cl := <-c.calls:
		t.Fatalf("unexpected fetch for %q page %d", cl.keyword, cl.page)
	case <-time.After(quiet):
	}
}

func next(t *testing.T, sub *stream.Subscription[state.ViewState]) state.ViewState {
	t.Helper()
	select {
	case s, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return s
	case <-time.After(waitFor):
		t.Fatal("expected a view state")
	}
	return state.ViewState{}
}

func expectNoState(t *testing.T, sub *stream.Subscription[state.ViewState]) {
	t.Helper()
	select {
	case s := <-sub.C():
		t.Fatalf("unexpected view state %s", s)
	case <-time.After(quiet):
	}
}

type harness struct {
	phrases chan string
	edges   chan struct{}
}

func run(t *testing.T, o *Orchestrator) harness {
	t.Helper()
	h := harness{phrases: make(chan string), edges: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- o.Run(ctx, h.phrases, h.edges) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errCh)
		o.Close()
	})
	return h
}

func names(s state.ViewState) []string {
	return profile.Names(s.Profiles)
}

func alice(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, "Alice "+strconv.Itoa(i))
	}
	return out
}

func TestOrchestrator_FreshSearchThenScroll(t *testing.T) {
	o := New(profile.NewFixtureClient(1000), WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)

	s := next(t, sub)
	assert.Equal(t, state.IdleTerminal, s.Status)
	assert.Empty(t, s.Profiles)

	h.phrases <- "alice"

	s = next(t, sub)
	assert.Equal(t, "alice", s.Phrase)
	assert.Equal(t, state.LoadingFresh, s.Status)
	assert.Empty(t, s.Profiles)

	s = next(t, sub)
	assert.Equal(t, state.IdleLoadable, s.Status)
	assert.Equal(t, alice(1, 5), names(s))

	h.edges <- struct{}{}

	s = next(t, sub)
	assert.Equal(t, state.LoadingMore, s.Status)
	assert.Equal(t, alice(1, 5), names(s))
	assert.Equal(t, state.LoadingMoreView, s.ListItems()[5].ViewType())

	s = next(t, sub)
	assert.Equal(t, state.IdleLoadable, s.Status)
	assert.Equal(t, alice(1, 10), names(s))
	assert.True(t, o.Current().Equal(s))
}

func TestOrchestrator_ClearingCancelsInFlightFetch(t *testing.T) {
	client := newScriptedClient(t)
	m := NewMetrics(prometheus.NewRegistry())
	o := New(client, WithLogger(&log.NoOpLogger{}), WithMetrics(m))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	assert.Equal(t, state.LoadingFresh, next(t, sub).Status)
	inFlight := client.expectCall(t)
	assert.Equal(t, "alice", inFlight.keyword)
	assert.Equal(t, 1, inFlight.page)
	assert.Equal(t, DefaultPageLimit, inFlight.limit)

	h.phrases <- ""
	s := next(t, sub)
	assert.Equal(t, "", s.Phrase)
	assert.Equal(t, state.IdleLoadable, s.Status)
	assert.Empty(t, s.Profiles)
	assert.Error(t, inFlight.ctx.Err(), "fetch context cancelled")

	inFlight.reply <- reply{profiles: []profile.Profile{{Name: "Alice 1"}}}
	expectNoState(t, sub)
	assert.Empty(t, o.Current().Profiles)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.discarded) == 1
	}, waitFor, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cancellations))
}

func TestOrchestrator_PhraseSwitchDropsOldResults(t *testing.T) {
	client := newScriptedClient(t)
	o := New(client, WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	first := client.expectCall(t)

	h.phrases <- "bob"
	s := next(t, sub)
	assert.Equal(t, "bob", s.Phrase)
	assert.Equal(t, state.LoadingFresh, s.Status)
	second := client.expectCall(t)
	assert.Equal(t, "bob", second.keyword)

	first.reply <- reply{profiles: []profile.Profile{{Name: "Alice 1"}}}
	second.reply <- reply{profiles: []profile.Profile{{Name: "Bob 1"}}}

	s = next(t, sub)
	assert.Equal(t, "bob", s.Phrase)
	assert.Equal(t, []string{"Bob 1"}, names(s))
	expectNoState(t, sub)
}

func TestOrchestrator_NoOverlappingRequests(t *testing.T) {
	client := newScriptedClient(t)
	o := New(client, WithLogger(&log.NoOpLogger{}), WithPageLimit(20))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	first := client.expectCall(t)
	assert.Equal(t, 20, first.limit)

	h.edges <- struct{}{}
	h.edges <- struct{}{}
	client.expectNoCall(t)
	expectNoState(t, sub)

	first.reply <- reply{profiles: []profile.Profile{{Name: "Alice 1"}}}
	assert.Equal(t, state.IdleLoadable, next(t, sub).Status)

	h.edges <- struct{}{}
	assert.Equal(t, state.LoadingMore, next(t, sub).Status)
	second := client.expectCall(t)
	assert.Equal(t, 2, second.page, "suppressed signals did not advance the page")

	second.reply <- reply{profiles: []profile.Profile{{Name: "Alice 2"}}}
	s := next(t, sub)
	assert.Equal(t, []string{"Alice 1", "Alice 2"}, names(s))
}

func TestOrchestrator_FailureStopsAutoload(t *testing.T) {
	client := newScriptedClient(t)
	o := New(client, WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	client.expectCall(t).reply <- reply{err: errors.New("network unreachable")}

	s := next(t, sub)
	assert.Equal(t, state.IdleTerminal, s.Status)
	assert.Empty(t, s.Profiles)
	require.Error(t, s.Err)
	assert.Equal(t, "network unreachable", s.Err.Error())

	h.edges <- struct{}{}
	client.expectNoCall(t)
	expectNoState(t, sub)

	// A new phrase starts over with a fresh counter.
	h.phrases <- "bob"
	s = next(t, sub)
	assert.NoError(t, s.Err)
	assert.Equal(t, 1, client.expectCall(t).page)
}

func TestOrchestrator_EndReached(t *testing.T) {
	o := New(profile.NewFixtureClient(12), WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	assert.Equal(t, alice(1, 3), names(next(t, sub)))

	h.edges <- struct{}{}
	assert.Equal(t, state.LoadingMore, next(t, sub).Status)

	s := next(t, sub)
	assert.Equal(t, state.IdleTerminal, s.Status)
	assert.Equal(t, alice(1, 3), names(s))
	items := s.ListItems()
	assert.Equal(t, state.NoMoreResultsView, items[len(items)-1].ViewType())

	h.edges <- struct{}{}
	expectNoState(t, sub)
}

func TestOrchestrator_NoResults(t *testing.T) {
	o := New(profile.NewFixtureClient(12), WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "zed"
	next(t, sub)
	s := next(t, sub)
	assert.Equal(t, state.IdleTerminal, s.Status)
	assert.True(t, s.HasNoResults())
}

func TestOrchestrator_ResubscribeReplaysWithoutFetching(t *testing.T) {
	client := newScriptedClient(t)
	o := New(client, WithLogger(&log.NoOpLogger{}))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	client.expectCall(t).reply <- reply{profiles: []profile.Profile{{Name: "Alice 1"}}}
	latest := next(t, sub)

	sub.Unsubscribe()
	again := o.Subscribe()
	defer again.Unsubscribe()

	assert.True(t, latest.Equal(next(t, again)))
	client.expectNoCall(t)
}

func TestOrchestrator_InitialState(t *testing.T) {
	restored := state.ViewState{
		Phrase:   "alice",
		Status:   state.IdleLoadable,
		Profiles: []profile.Profile{{Name: "Alice 1"}},
	}
	o := New(profile.NewFixtureClient(1000), WithLogger(&log.NoOpLogger{}), WithInitialState(restored))
	defer o.Close()

	sub := o.Subscribe()
	assert.True(t, restored.Equal(next(t, sub)))
	assert.True(t, restored.Equal(o.Current()))
}

func TestOrchestrator_RunLifecycle(t *testing.T) {
	o := New(profile.NewFixtureClient(10), WithLogger(&log.NoOpLogger{}))
	defer o.Close()

	phrases := make(chan string)
	edges := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- o.Run(context.Background(), phrases, edges) }()

	// Wait until the loop is running.
	close(edges)
	phrases <- "bob"

	assert.ErrorIs(t, o.Run(context.Background(), phrases, edges), ErrAlreadyRunning)

	close(phrases)
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after phrases closed")
	}
}

func TestOrchestrator_SubscribeAfterClose(t *testing.T) {
	o := New(profile.NewFixtureClient(10), WithLogger(&log.NoOpLogger{}))
	o.Close()

	sub := o.Subscribe()
	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.NotPanics(t, sub.Unsubscribe)
	assert.NotPanics(t, sub.Unsubscribe)
}

func TestOrchestrator_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	o := New(profile.NewFixtureClient(1000), WithLogger(&log.NoOpLogger{}), WithMetrics(m))
	sub := o.Subscribe()
	h := run(t, o)
	next(t, sub)

	h.phrases <- "alice"
	next(t, sub)
	next(t, sub)
	h.edges <- struct{}{}
	next(t, sub)
	next(t, sub)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(KindFresh)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(KindMore)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeFresh)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeMore)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchDuration))
}
