package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// Resolver implements ordered fallback across platform adapters: platforms
// are probed strictly in priority order and the first one producing at least
// one candidate wins. Priority beats speed, so probes are sequential, never
// raced.
type Resolver struct {
	order    domain.PlatformOrder
	adapters map[domain.Platform]domain.Adapter
	timeout  time.Duration
	limit    int
	events   domain.EventSink
	logger   *zap.Logger
}

// NewResolver creates a resolver over the given adapters. The order and
// adapter set are fixed for the resolver's lifetime.
func NewResolver(
	order domain.PlatformOrder,
	adapters []domain.Adapter,
	config *domain.ResolveConfig,
	events domain.EventSink,
	logger *zap.Logger,
) (*Resolver, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	byPlatform := make(map[domain.Platform]domain.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	for _, tag := range order {
		if _, ok := byPlatform[tag]; !ok {
			return nil, fmt.Errorf("no adapter for platform: %s", tag)
		}
	}

	if events == nil {
		events = domain.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		order:    order,
		adapters: byPlatform,
		timeout:  config.AdapterTimeout,
		limit:    config.SearchLimit,
		events:   events,
		logger:   logger,
	}, nil
}

// Order returns the fallback priority list.
func (r *Resolver) Order() domain.PlatformOrder {
	return r.order
}

// Resolve probes each platform in order with a per-call deadline and returns
// the winning platform together with its candidates, in platform-native
// ranking. A platform that errors or returns nothing is recorded and the
// next one is consulted; only when every platform came up empty does Resolve
// fail, with one classified reason per platform.
func (r *Resolver) Resolve(ctx context.Context, rawQuery string) (domain.Platform, []domain.Candidate, error) {
	query := domain.NewQuery(rawQuery, r.limit)
	if query.IsEmpty() {
		return "", nil, &domain.ExhaustedError{}
	}

	failures := make([]*domain.PlatformError, 0, len(r.order))

	for _, tag := range r.order {
		adapter := r.adapters[tag]

		start := time.Now()
		candidates, err := r.probe(ctx, adapter, query)
		latency := time.Since(start)

		if err == nil && len(candidates) == 0 {
			err = domain.NewPlatformError(tag, domain.KindNoResults, nil)
		}

		if err == nil {
			r.events.Record(domain.ResolutionEvent{
				Stage:      domain.StageResolve,
				Platform:   tag,
				Outcome:    domain.OutcomeHit,
				Query:      query.Normalized,
				Candidates: len(candidates),
				Latency:    latency,
			})
			r.logger.Info("platform resolved query",
				zap.String("platform", string(tag)),
				zap.String("query", query.Normalized),
				zap.Int("candidates", len(candidates)),
				zap.Duration("latency", latency))
			return tag, candidates, nil
		}

		failure := domain.ClassifyAdapterError(tag, err)
		failures = append(failures, failure)

		outcome := domain.OutcomeFailure
		if failure.Kind == domain.KindNoResults {
			outcome = domain.OutcomeMiss
		}
		r.events.Record(domain.ResolutionEvent{
			Stage:    domain.StageResolve,
			Platform: tag,
			Outcome:  outcome,
			Kind:     failure.Kind,
			Query:    query.Normalized,
			Latency:  latency,
		})
		r.logger.Warn("platform probe failed, trying next",
			zap.String("platform", string(tag)),
			zap.String("kind", string(failure.Kind)),
			zap.Duration("latency", latency),
			zap.Error(failure.Err))

		// The caller gave up; probing further platforms would just burn
		// their deadline against a context that is already dead.
		if ctx.Err() != nil {
			break
		}
	}

	return "", nil, &domain.ExhaustedError{Failures: failures}
}

// probe invokes one adapter with the per-call deadline. A panicking adapter
// is contained here and reported as the platform being unavailable.
func (r *Resolver) probe(ctx context.Context, adapter domain.Adapter, query domain.Query) (candidates []domain.Candidate, err error) {
	probeCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			candidates = nil
			err = domain.NewPlatformError(adapter.Platform(), domain.KindPlatformUnavailable,
				fmt.Errorf("adapter panic: %v", rec))
		}
	}()

	return adapter.Search(probeCtx, query)
}
