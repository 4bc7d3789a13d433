package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// SoundCloudAdapter searches SoundCloud through yt-dlp's scsearch shorthand.
// SoundCloud is the primary audio platform, so it sits first in the default
// fallback order.
type SoundCloudAdapter struct {
	runner *YTDLPRunner
}

// NewSoundCloudAdapter creates the SoundCloud search adapter.
func NewSoundCloudAdapter(runner *YTDLPRunner) *SoundCloudAdapter {
	return &SoundCloudAdapter{runner: runner}
}

// Platform returns the platform this adapter searches.
func (a *SoundCloudAdapter) Platform() domain.Platform {
	return domain.PlatformSoundCloud
}

// Search returns SoundCloud's own relevance ranking, unreordered.
func (a *SoundCloudAdapter) Search(ctx context.Context, query domain.Query) ([]domain.Candidate, error) {
	spec := fmt.Sprintf("scsearch%d:%s", query.Limit, query.Normalized)

	entries, err := a.runner.FlatSearch(ctx, spec)
	if err != nil {
		return nil, classifyExecError(a.Platform(), domain.KindPlatformUnavailable, err)
	}

	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		sourceURL := e.URL
		if sourceURL == "" {
			sourceURL = e.WebpageURL
		}
		if sourceURL == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Platform:     a.Platform(),
			ID:           e.ID,
			Title:        e.Title,
			Uploader:     e.Uploader,
			Duration:     time.Duration(e.Duration * float64(time.Second)),
			SourceURL:    sourceURL,
			ThumbnailURL: e.Thumbnail,
		})
	}
	return candidates, nil
}
