package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// stubAdapter implements domain.Adapter for testing
type stubAdapter struct {
	platform   domain.Platform
	candidates []domain.Candidate
	err        error
	delay      time.Duration
	panicMsg   string
	calls      int32
}

func (a *stubAdapter) Platform() domain.Platform { return a.platform }

func (a *stubAdapter) Search(ctx context.Context, query domain.Query) ([]domain.Candidate, error) {
	atomic.AddInt32(&a.calls, 1)
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.candidates, nil
}

func (a *stubAdapter) callCount() int {
	return int(atomic.LoadInt32(&a.calls))
}

// captureSink records events for assertions
type captureSink struct {
	mu     sync.Mutex
	events []domain.ResolutionEvent
}

func (s *captureSink) Record(event domain.ResolutionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) recorded() []domain.ResolutionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ResolutionEvent, len(s.events))
	copy(out, s.events)
	return out
}

func candidatesFor(platform domain.Platform, n int) []domain.Candidate {
	out := make([]domain.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Candidate{
			Platform:  platform,
			ID:        string(rune('a' + i)),
			Title:     "track",
			SourceURL: "https://example.com/track",
		})
	}
	return out
}

func testResolveConfig() *domain.ResolveConfig {
	return &domain.ResolveConfig{
		SearchLimit:    6,
		AdapterTimeout: time.Second,
	}
}

func newTestResolver(t *testing.T, order domain.PlatformOrder, adapters []domain.Adapter, sink domain.EventSink) *Resolver {
	t.Helper()
	r, err := NewResolver(order, adapters, testResolveConfig(), sink, nil)
	require.NoError(t, err)
	return r
}

func TestResolve_PrimaryWins(t *testing.T) {
	primary := &stubAdapter{platform: domain.PlatformSoundCloud, candidates: candidatesFor(domain.PlatformSoundCloud, 3)}
	secondary := &stubAdapter{platform: domain.PlatformBandcamp, candidates: candidatesFor(domain.PlatformBandcamp, 10)}

	r := newTestResolver(t,
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformBandcamp},
		[]domain.Adapter{primary, secondary}, nil)

	platform, candidates, err := r.Resolve(context.Background(), "lady gaga poker face")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformSoundCloud, platform)
	assert.Len(t, candidates, 3)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 0, secondary.callCount(), "secondary adapters must not be consulted when the primary has results")
}

func TestResolve_PriorityBeatsSpeed(t *testing.T) {
	// A slow primary with results must still win over an instant secondary.
	primary := &stubAdapter{
		platform:   domain.PlatformSoundCloud,
		candidates: candidatesFor(domain.PlatformSoundCloud, 1),
		delay:      100 * time.Millisecond,
	}
	secondary := &stubAdapter{platform: domain.PlatformYouTube, candidates: candidatesFor(domain.PlatformYouTube, 5)}

	r := newTestResolver(t,
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformYouTube},
		[]domain.Adapter{primary, secondary}, nil)

	platform, _, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformSoundCloud, platform)
	assert.Equal(t, 0, secondary.callCount())
}

func TestResolve_FallbackCompleteness(t *testing.T) {
	first := &stubAdapter{platform: domain.PlatformSoundCloud} // empty result
	second := &stubAdapter{
		platform: domain.PlatformBandcamp,
		err:      domain.NewPlatformError(domain.PlatformBandcamp, domain.KindPlatformUnavailable, errors.New("dial timeout")),
	}
	third := &stubAdapter{platform: domain.PlatformMixcloud, candidates: candidatesFor(domain.PlatformMixcloud, 1)}
	fourth := &stubAdapter{platform: domain.PlatformYouTube, candidates: candidatesFor(domain.PlatformYouTube, 9)}

	r := newTestResolver(t,
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformBandcamp, domain.PlatformMixcloud, domain.PlatformYouTube},
		[]domain.Adapter{first, second, third, fourth}, nil)

	platform, candidates, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformMixcloud, platform)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 1, first.callCount())
	assert.Equal(t, 1, second.callCount())
	assert.Equal(t, 1, third.callCount())
	assert.Equal(t, 0, fourth.callCount(), "platforms after the winner must not be consulted")
}

func TestResolve_Exhaustion(t *testing.T) {
	adapters := []domain.Adapter{
		&stubAdapter{platform: domain.PlatformSoundCloud},
		&stubAdapter{platform: domain.PlatformBandcamp},
		&stubAdapter{platform: domain.PlatformMixcloud},
		&stubAdapter{platform: domain.PlatformYouTube},
	}

	r := newTestResolver(t, domain.DefaultPlatformOrder(), adapters, nil)

	_, _, err := r.Resolve(context.Background(), "obscure query")
	require.Error(t, err)

	var exhausted *domain.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Len(t, exhausted.Failures, 4, "one failure reason per configured platform")
	for _, f := range exhausted.Failures {
		assert.Equal(t, domain.KindNoResults, f.Kind)
	}
}

func TestResolve_MixedFailureReasons(t *testing.T) {
	adapters := []domain.Adapter{
		&stubAdapter{
			platform: domain.PlatformSoundCloud,
			err:      domain.NewPlatformError(domain.PlatformSoundCloud, domain.KindPlatformUnavailable, errors.New("connect timeout")),
		},
		&stubAdapter{
			platform: domain.PlatformBandcamp,
			err:      domain.NewPlatformError(domain.PlatformBandcamp, domain.KindRateLimited, errors.New("429")),
		},
		&stubAdapter{platform: domain.PlatformYouTube},
	}

	order := domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformBandcamp, domain.PlatformYouTube}
	r := newTestResolver(t, order, adapters, nil)

	_, _, err := r.Resolve(context.Background(), "query")

	var exhausted *domain.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, 3)
	assert.Equal(t, domain.KindPlatformUnavailable, exhausted.FailureFor(domain.PlatformSoundCloud).Kind)
	assert.Equal(t, domain.KindRateLimited, exhausted.FailureFor(domain.PlatformBandcamp).Kind)
	assert.Equal(t, domain.KindNoResults, exhausted.FailureFor(domain.PlatformYouTube).Kind)
}

func TestResolve_PanickingAdapterIsContained(t *testing.T) {
	first := &stubAdapter{platform: domain.PlatformSoundCloud, panicMsg: "nil map write"}
	second := &stubAdapter{platform: domain.PlatformYouTube, candidates: candidatesFor(domain.PlatformYouTube, 2)}

	r := newTestResolver(t,
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformYouTube},
		[]domain.Adapter{first, second}, nil)

	platform, candidates, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err, "a panicking adapter must not abort the resolution")

	assert.Equal(t, domain.PlatformYouTube, platform)
	assert.Len(t, candidates, 2)
}

func TestResolve_SlowAdapterTimesOut(t *testing.T) {
	slow := &stubAdapter{
		platform:   domain.PlatformSoundCloud,
		candidates: candidatesFor(domain.PlatformSoundCloud, 1),
		delay:      500 * time.Millisecond,
	}
	fast := &stubAdapter{platform: domain.PlatformYouTube, candidates: candidatesFor(domain.PlatformYouTube, 1)}

	config := &domain.ResolveConfig{SearchLimit: 6, AdapterTimeout: 50 * time.Millisecond}
	r, err := NewResolver(
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformYouTube},
		[]domain.Adapter{slow, fast}, config, nil, nil)
	require.NoError(t, err)

	platform, _, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformYouTube, platform, "a hung platform fails over instead of hanging the pipeline")
}

func TestResolve_EmptyQuery(t *testing.T) {
	adapter := &stubAdapter{platform: domain.PlatformSoundCloud, candidates: candidatesFor(domain.PlatformSoundCloud, 1)}
	r := newTestResolver(t, domain.PlatformOrder{domain.PlatformSoundCloud}, []domain.Adapter{adapter}, nil)

	_, _, err := r.Resolve(context.Background(), "   ")
	assert.True(t, domain.IsExhausted(err))
	assert.Equal(t, 0, adapter.callCount())
}

func TestResolve_EmitsEvents(t *testing.T) {
	sink := &captureSink{}
	adapters := []domain.Adapter{
		&stubAdapter{platform: domain.PlatformSoundCloud},
		&stubAdapter{platform: domain.PlatformBandcamp, candidates: candidatesFor(domain.PlatformBandcamp, 2)},
	}

	r := newTestResolver(t,
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformBandcamp},
		adapters, sink)

	_, _, err := r.Resolve(context.Background(), "Some Query")
	require.NoError(t, err)

	events := sink.recorded()
	require.Len(t, events, 2)

	assert.Equal(t, domain.StageResolve, events[0].Stage)
	assert.Equal(t, domain.PlatformSoundCloud, events[0].Platform)
	assert.Equal(t, domain.OutcomeMiss, events[0].Outcome)
	assert.Equal(t, domain.KindNoResults, events[0].Kind)
	assert.Equal(t, "some query", events[0].Query)

	assert.Equal(t, domain.PlatformBandcamp, events[1].Platform)
	assert.Equal(t, domain.OutcomeHit, events[1].Outcome)
	assert.Equal(t, 2, events[1].Candidates)
}

func TestNewResolver_MissingAdapter(t *testing.T) {
	_, err := NewResolver(
		domain.PlatformOrder{domain.PlatformSoundCloud, domain.PlatformYouTube},
		[]domain.Adapter{&stubAdapter{platform: domain.PlatformSoundCloud}},
		testResolveConfig(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no adapter for platform")
}

func TestNewResolver_InvalidOrder(t *testing.T) {
	_, err := NewResolver(domain.PlatformOrder{}, nil, testResolveConfig(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPlatformOrder)
}
