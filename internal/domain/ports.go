package domain

import "context"

// Adapter wraps one external content platform's search capability.
//
// Implementations classify their own failures: every error returned is a
// *PlatformError with kind NoResults, PlatformUnavailable or RateLimited.
// An empty candidate slice with a nil error is valid and is treated as
// NoResults by the resolver. Adapters honor ctx for cancellation and
// deadlines, forward the platform's own relevance ranking without
// re-ordering, and must be safe for concurrent use.
type Adapter interface {
	// Platform returns the tag of the platform this adapter searches.
	Platform() Platform

	// Search returns up to query.Limit candidates for the query.
	Search(ctx context.Context, query Query) ([]Candidate, error)
}

// Extractor resolves a candidate's source URL into a directly fetchable
// media stream. Failures are classified as ExtractionFailed; a stream with
// no audio track is a failure, not a degraded success.
type Extractor interface {
	// Extract resolves the candidate into a stream reference without
	// downloading the media.
	Extract(ctx context.Context, candidate Candidate) (*ResolvedStream, error)

	// Fetch downloads a non-direct stream (HLS, DASH) to dest. Direct
	// streams are fetched by the pipeline itself over plain HTTP.
	Fetch(ctx context.Context, candidate Candidate, stream *ResolvedStream, dest string) error
}

// Transcoder converts fetched media to the delivery audio format.
type Transcoder interface {
	// Transcode reads src and writes the converted audio to dst. A partial
	// dst on failure is the transcoder's to report, the pipeline's to delete.
	Transcode(ctx context.Context, src, dst string) error
}

// FetchJournal records resolution and fetch requests for the collaborator
// layers. The core never reads its own history back.
type FetchJournal interface {
	Create(record *FetchRecord) error
	Update(record *FetchRecord) error
	FindByID(id string) (*FetchRecord, error)
	FindRecent(limit int) ([]*FetchRecord, error)
	CountByStatus(status FetchStatus) (int64, error)
}

// EventJournal persists emitted resolution events for later inspection.
type EventJournal interface {
	AppendEvent(record *EventRecord) error
	RecentEvents(limit int) ([]*EventRecord, error)
}
