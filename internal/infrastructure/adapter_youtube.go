package infrastructure

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// YouTubeAdapter searches YouTube through yt-dlp's ytsearch shorthand. It is
// the video fallback platform, probed last. Session cookies are optional:
// without them YouTube serves fewer (or age-walled) results, which degrades
// capability but is not an error.
type YouTubeAdapter struct {
	runner      *YTDLPRunner
	cookiesFile string
}

// NewYouTubeAdapter creates the YouTube search adapter. cookiesFile may be
// empty or point at a nonexistent file; both just mean no authentication.
func NewYouTubeAdapter(runner *YTDLPRunner, cookiesFile string) *YouTubeAdapter {
	if cookiesFile != "" {
		if _, err := os.Stat(cookiesFile); err != nil {
			cookiesFile = ""
		}
	}
	return &YouTubeAdapter{runner: runner, cookiesFile: cookiesFile}
}

// Platform returns the platform this adapter searches.
func (a *YouTubeAdapter) Platform() domain.Platform {
	return domain.PlatformYouTube
}

// Search returns YouTube's own relevance ranking, unreordered.
func (a *YouTubeAdapter) Search(ctx context.Context, query domain.Query) ([]domain.Candidate, error) {
	spec := fmt.Sprintf("ytsearch%d:%s", query.Limit, query.Normalized)

	args := []string{"--extractor-args", "youtube:player_client=ios,web"}
	if a.cookiesFile != "" {
		args = append(args, "--cookies", a.cookiesFile)
	}

	entries, err := a.runner.FlatSearch(ctx, spec, args...)
	if err != nil {
		return nil, classifyExecError(a.Platform(), domain.KindPlatformUnavailable, err)
	}

	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		sourceURL := e.URL
		if sourceURL == "" {
			sourceURL = e.WebpageURL
		}
		if sourceURL == "" && e.ID != "" {
			sourceURL = e.ID
		}
		if sourceURL == "" {
			continue
		}
		// Flat extraction sometimes yields bare video IDs.
		if !strings.HasPrefix(sourceURL, "http") {
			sourceURL = "https://www.youtube.com/watch?v=" + sourceURL
		}

		uploader := e.Uploader
		if uploader == "" {
			uploader = e.Channel
		}
		candidates = append(candidates, domain.Candidate{
			Platform:     a.Platform(),
			ID:           e.ID,
			Title:        e.Title,
			Uploader:     uploader,
			Duration:     time.Duration(e.Duration * float64(time.Second)),
			SourceURL:    sourceURL,
			ThumbnailURL: e.Thumbnail,
		})
	}
	return candidates, nil
}

// CookiesConfigured reports whether authentication material was found.
func (a *YouTubeAdapter) CookiesConfigured() bool {
	return a.cookiesFile != ""
}
