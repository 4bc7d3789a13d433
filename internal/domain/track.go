package domain

import (
	"strings"
	"time"
)

// Platform identifies one external content source.
type Platform string

const (
	PlatformSoundCloud Platform = "soundcloud"
	PlatformBandcamp   Platform = "bandcamp"
	PlatformMixcloud   Platform = "mixcloud"
	PlatformYouTube    Platform = "youtube"
)

// ValidatePlatform checks if a platform tag is known
func ValidatePlatform(p Platform) bool {
	switch p {
	case PlatformSoundCloud, PlatformBandcamp, PlatformMixcloud, PlatformYouTube:
		return true
	}
	return false
}

// PlatformOrder is the fallback priority list. It is fixed at construction
// and never mutated at request time.
type PlatformOrder []Platform

// DefaultPlatformOrder probes the primary audio platform first, then the
// secondary audio platforms, with the video platform as last resort.
func DefaultPlatformOrder() PlatformOrder {
	return PlatformOrder{PlatformSoundCloud, PlatformBandcamp, PlatformMixcloud, PlatformYouTube}
}

// Validate checks that every tag in the order is a known platform and that
// no tag appears twice.
func (o PlatformOrder) Validate() error {
	if len(o) == 0 {
		return ErrEmptyPlatformOrder
	}
	seen := make(map[Platform]bool, len(o))
	for _, p := range o {
		if !ValidatePlatform(p) {
			return &UnknownPlatformError{Platform: p}
		}
		if seen[p] {
			return &DuplicatePlatformError{Platform: p}
		}
		seen[p] = true
	}
	return nil
}

// Query is a normalized search request. Created once per request, read-only
// afterwards.
type Query struct {
	Raw        string
	Normalized string
	Limit      int
}

// NewQuery normalizes raw user text for matching: surrounding whitespace is
// trimmed, internal runs of whitespace collapsed, and the text case-folded.
func NewQuery(raw string, limit int) Query {
	normalized := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	return Query{
		Raw:        raw,
		Normalized: normalized,
		Limit:      limit,
	}
}

// IsEmpty reports whether the query has no searchable text.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}

// Candidate is one normalized, unselected search result. Produced by an
// adapter, read-only downstream. SourceURL must be resolvable by the
// extraction backend for its platform.
type Candidate struct {
	Platform     Platform      `json:"platform"`
	ID           string        `json:"id"` // unique within its platform
	Title        string        `json:"title"`
	Uploader     string        `json:"uploader"`
	Duration     time.Duration `json:"duration"`
	SourceURL    string        `json:"source_url"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
}

// ResolvedStream is a directly fetchable media reference derived from a
// Candidate. Short-lived: platform URLs are often time-limited, so a stream
// is valid only for the download that immediately follows its extraction.
type ResolvedStream struct {
	URL       string // direct media URL, empty when LocalPath is set
	LocalPath string // set when the backend already fetched the media
	FormatID  string
	Ext       string
	Protocol  string // https, http, m3u8_native, ...
	Codec     string
	BitrateK  int
	Title     string
	Uploader  string
	Duration  time.Duration
	ExpiresAt time.Time // zero when the platform gave no expiry hint
}

// Direct reports whether the stream can be fetched with a plain HTTP GET.
func (s *ResolvedStream) Direct() bool {
	if s.LocalPath != "" {
		return false
	}
	p := strings.ToLower(s.Protocol)
	return p == "" || p == "http" || p == "https"
}

// DownloadResult is the delivered audio artifact. Ownership of the file
// transfers to the caller on success; the pipeline keeps no reference and
// the caller deletes the file after delivery.
type DownloadResult struct {
	FilePath string        `json:"file_path"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
	Title    string        `json:"title"`
	Uploader string        `json:"uploader"`
	Platform Platform      `json:"platform"`
}
