package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musifyyy/tunefetch/internal/domain"
	"github.com/musifyyy/tunefetch/pkg/logger"
)

func newTestMultiLogger(t *testing.T) (*logger.MultiLogger, string) {
	t.Helper()
	dir := t.TempDir()
	multi, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { multi.Sync() })
	return multi, dir
}

// categoryFile reads today's log file for a category; empty when absent.
func categoryFile(t *testing.T, dir, category string) string {
	t.Helper()
	path := filepath.Join(dir, category+"-"+time.Now().Format("20060102")+".log")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestEventLogSink_RoutesByStage(t *testing.T) {
	multi, dir := newTestMultiLogger(t)
	sink := NewEventLogSink(multi)

	sink.Record(domain.ResolutionEvent{
		Stage:      domain.StageResolve,
		Platform:   domain.PlatformSoundCloud,
		Outcome:    domain.OutcomeHit,
		Query:      "some query",
		Candidates: 3,
	})
	sink.Record(domain.ResolutionEvent{
		Stage:    domain.StageFetch,
		Platform: domain.PlatformSoundCloud,
		Outcome:  domain.OutcomeHit,
	})
	require.NoError(t, multi.Sync())

	resolveLog := categoryFile(t, dir, "resolve")
	assert.Contains(t, resolveLog, "platform_probe")
	assert.Contains(t, resolveLog, "some query")

	pipelineLog := categoryFile(t, dir, "pipeline")
	assert.Contains(t, pipelineLog, "fetch")

	// Hits never touch the error log.
	assert.NotContains(t, categoryFile(t, dir, "error"), "soundcloud")
}

func TestEventLogSink_FailuresReachErrorLog(t *testing.T) {
	multi, dir := newTestMultiLogger(t)
	sink := NewEventLogSink(multi)

	sink.Record(domain.ResolutionEvent{
		Stage:    domain.StageFetch,
		Platform: domain.PlatformYouTube,
		Outcome:  domain.OutcomeFailure,
		Kind:     domain.KindTranscodeFailed,
	})
	sink.Record(domain.ResolutionEvent{
		Stage:    domain.StageResolve,
		Platform: domain.PlatformBandcamp,
		Outcome:  domain.OutcomeMiss,
		Kind:     domain.KindNoResults,
	})
	require.NoError(t, multi.Sync())

	errorLog := categoryFile(t, dir, "error")
	assert.Contains(t, errorLog, "fetch_failure")
	assert.Contains(t, errorLog, "transcode_failed")
	// Misses are routine; they stay in their own category.
	assert.NotContains(t, errorLog, "bandcamp")
}

func TestEventJournalSink_Persists(t *testing.T) {
	journal := newTestJournal(t)
	sink := NewEventJournalSink(journal, nil)

	sink.Record(domain.ResolutionEvent{
		Stage:      domain.StageResolve,
		Platform:   domain.PlatformMixcloud,
		Outcome:    domain.OutcomeHit,
		Query:      "deep house mix",
		Candidates: 2,
		Latency:    80 * time.Millisecond,
	})

	events, err := journal.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.PlatformMixcloud, events[0].Platform)
	assert.Equal(t, domain.OutcomeHit, events[0].Outcome)
	assert.Equal(t, "deep house mix", events[0].Query)
	assert.Equal(t, 2, events[0].Candidates)
}

func TestEventJournalSink_SurvivesClosedJournal(t *testing.T) {
	journal := newTestJournal(t)
	require.NoError(t, journal.Close())

	sink := NewEventJournalSink(journal, nil)

	// A dead journal must not panic or block the resolution path.
	sink.Record(domain.ResolutionEvent{
		Stage:    domain.StageResolve,
		Platform: domain.PlatformSoundCloud,
		Outcome:  domain.OutcomeHit,
	})
}
