package domain

import "time"

// EventStage distinguishes which part of the core emitted an event.
type EventStage string

const (
	StageResolve EventStage = "resolve"
	StageFetch   EventStage = "fetch"
)

// EventOutcome is the observed result of one probe or fetch.
type EventOutcome string

const (
	OutcomeHit     EventOutcome = "hit"
	OutcomeMiss    EventOutcome = "miss"
	OutcomeFailure EventOutcome = "failure"
)

// ResolutionEvent is one observability record: which platform was attempted,
// how it went, and how long it took. The core emits these and keeps nothing;
// persistence is a collaborator concern.
type ResolutionEvent struct {
	Stage      EventStage
	Platform   Platform
	Outcome    EventOutcome
	Kind       ErrorKind // set when Outcome is miss or failure
	Query      string
	Candidates int
	Latency    time.Duration
}

// EventRecord is a persisted ResolutionEvent. The analytics collaborator
// reads these back; the core only appends.
type EventRecord struct {
	ID         uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Stage      EventStage    `json:"stage" gorm:"index"`
	Platform   Platform      `json:"platform" gorm:"index"`
	Outcome    EventOutcome  `json:"outcome"`
	Kind       ErrorKind     `json:"kind,omitempty"`
	Query      string        `json:"query,omitempty"`
	Candidates int           `json:"candidates,omitempty"`
	Latency    time.Duration `json:"latency"`
	CreatedAt  time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewEventRecord converts an emitted event into its persisted form.
func NewEventRecord(event ResolutionEvent) *EventRecord {
	return &EventRecord{
		Stage:      event.Stage,
		Platform:   event.Platform,
		Outcome:    event.Outcome,
		Kind:       event.Kind,
		Query:      event.Query,
		Candidates: event.Candidates,
		Latency:    event.Latency,
		CreatedAt:  time.Now(),
	}
}

// EventSink consumes resolution events. Implementations must be safe for
// concurrent use; a slow sink must not stall the pipeline, so sinks that do
// I/O should buffer or drop.
type EventSink interface {
	Record(event ResolutionEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(ResolutionEvent) {}

// MultiSink fans events out to several sinks.
type MultiSink []EventSink

func (m MultiSink) Record(event ResolutionEvent) {
	for _, s := range m {
		s.Record(event)
	}
}
