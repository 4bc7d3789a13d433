package infrastructure

import (
	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/domain"
	"github.com/musifyyy/tunefetch/pkg/logger"
)

// EventLogSink writes resolution events to the categorized JSON event logs,
// one category per core stage. This is the observability collaborator: the
// core emits, the sink persists to disk.
type EventLogSink struct {
	multi *logger.MultiLogger
}

// NewEventLogSink creates a sink over the categorized multi-logger.
func NewEventLogSink(multi *logger.MultiLogger) *EventLogSink {
	return &EventLogSink{multi: multi}
}

// Record writes one event. The multi-logger's zap cores are non-blocking
// enough for the pipeline's hot path; no buffering happens here.
func (s *EventLogSink) Record(event domain.ResolutionEvent) {
	fields := []zap.Field{
		zap.String("platform", string(event.Platform)),
		zap.String("outcome", string(event.Outcome)),
		zap.Duration("latency", event.Latency),
	}
	if event.Kind != "" {
		fields = append(fields, zap.String("kind", string(event.Kind)))
	}
	if event.Query != "" {
		fields = append(fields, zap.String("query", event.Query))
	}
	if event.Candidates > 0 {
		fields = append(fields, zap.Int("candidates", event.Candidates))
	}

	switch event.Stage {
	case domain.StageResolve:
		s.multi.LogResolveEvent("platform_probe", fields...)
	case domain.StageFetch:
		s.multi.LogPipelineEvent("fetch", fields...)
	}

	// Hard failures land in the error log too, so operators can watch one
	// file. Misses are routine and stay in their category.
	if event.Outcome == domain.OutcomeFailure {
		s.multi.LogAppError(string(event.Stage)+"_failure", fields...)
	}
}

// EventJournalSink persists resolution events through the journal so the
// analytics collaborator can query them later.
type EventJournalSink struct {
	journal domain.EventJournal
	logger  *zap.Logger
}

// NewEventJournalSink creates a sink over an event journal.
func NewEventJournalSink(journal domain.EventJournal, logger *zap.Logger) *EventJournalSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventJournalSink{journal: journal, logger: logger}
}

// Record appends one event. A journal write failure is logged and dropped;
// observability must never fail a resolution.
func (s *EventJournalSink) Record(event domain.ResolutionEvent) {
	if err := s.journal.AppendEvent(domain.NewEventRecord(event)); err != nil {
		s.logger.Warn("failed to journal event",
			zap.String("stage", string(event.Stage)),
			zap.String("platform", string(event.Platform)),
			zap.Error(err))
	}
}
