package domain

import (
	"time"

	"github.com/google/uuid"
)

// FetchStatus represents the current status of a journaled request
type FetchStatus string

const (
	StatusPending   FetchStatus = "pending"
	StatusResolving FetchStatus = "resolving"
	StatusFetching  FetchStatus = "fetching"
	StatusCompleted FetchStatus = "completed"
	StatusFailed    FetchStatus = "failed"
)

// FetchRecord is the journal entry the collaborator layers keep per request.
// It tracks what was asked, which platform won, and what came back. The core
// pipeline itself never touches the journal.
type FetchRecord struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	Query        string        `json:"query" gorm:"not null;index"`
	Platform     Platform      `json:"platform,omitempty" gorm:"index"`
	SourceURL    string        `json:"source_url,omitempty"`
	Title        string        `json:"title,omitempty"`
	Uploader     string        `json:"uploader,omitempty"`
	Status       FetchStatus   `json:"status" gorm:"not null;index"`
	ErrorKind    ErrorKind     `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	FilePath     string        `json:"file_path,omitempty"`
	ByteSize     int64         `json:"byte_size,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Latency      time.Duration `json:"latency,omitempty"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// NewFetchRecord creates a pending journal entry for a query.
func NewFetchRecord(query string) *FetchRecord {
	now := time.Now()
	return &FetchRecord{
		ID:        uuid.New().String(),
		Query:     query,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkResolving marks the record as probing platforms.
func (r *FetchRecord) MarkResolving() {
	r.Status = StatusResolving
	r.UpdatedAt = time.Now()
}

// MarkResolved records the winning platform. The record stays in the
// resolving status until the caller picks a candidate and fetches it.
func (r *FetchRecord) MarkResolved(platform Platform) {
	r.Platform = platform
	r.UpdatedAt = time.Now()
}

// MarkFetching records the selected candidate and marks the download phase.
func (r *FetchRecord) MarkFetching(candidate Candidate) {
	r.Status = StatusFetching
	r.Platform = candidate.Platform
	r.SourceURL = candidate.SourceURL
	r.Title = candidate.Title
	r.Uploader = candidate.Uploader
	r.UpdatedAt = time.Now()
}

// MarkCompleted records the delivered artifact.
func (r *FetchRecord) MarkCompleted(result *DownloadResult) {
	r.Status = StatusCompleted
	r.FilePath = result.FilePath
	r.ByteSize = result.Size
	r.Duration = result.Duration
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.Latency = now.Sub(r.CreatedAt)
}

// MarkFailed records a classified failure.
func (r *FetchRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.ErrorKind = KindOf(err)
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	now := time.Now()
	r.UpdatedAt = now
	r.Latency = now.Sub(r.CreatedAt)
}

// IsTerminal checks if the record reached a final state.
func (r *FetchRecord) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
