package infrastructure

import (
	"context"
	"os"
	"time"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// YTDLPExtractor is the extraction backend: it resolves a candidate's source
// URL into a direct audio stream reference via yt-dlp, guaranteeing the
// result carries an audio track. Resolved URLs are often time-limited; a
// stream is used for exactly one download and a retry re-extracts.
type YTDLPExtractor struct {
	runner      *YTDLPRunner
	cookiesFile string // forwarded for platforms that gate extraction
}

// NewYTDLPExtractor creates the extraction backend.
func NewYTDLPExtractor(runner *YTDLPRunner, cookiesFile string) *YTDLPExtractor {
	if cookiesFile != "" {
		if _, err := os.Stat(cookiesFile); err != nil {
			cookiesFile = ""
		}
	}
	return &YTDLPExtractor{runner: runner, cookiesFile: cookiesFile}
}

// Extract resolves the candidate into a ResolvedStream without downloading.
func (e *YTDLPExtractor) Extract(ctx context.Context, candidate domain.Candidate) (*domain.ResolvedStream, error) {
	info, err := e.runner.Extract(ctx, candidate.SourceURL, e.platformArgs(candidate.Platform)...)
	if err != nil {
		return nil, classifyExecError(candidate.Platform, domain.KindExtractionFailed, err)
	}

	format, err := SelectAudioFormat(info)
	if err != nil {
		return nil, domain.NewPlatformError(candidate.Platform, domain.KindExtractionFailed, err)
	}

	return &domain.ResolvedStream{
		URL:       format.URL,
		FormatID:  format.FormatID,
		Ext:       format.Ext,
		Protocol:  format.Protocol,
		Codec:     format.ACodec,
		BitrateK:  int(format.ABR),
		Title:     info.Title,
		Uploader:  info.Uploader,
		Duration:  time.Duration(info.Duration * float64(time.Second)),
		ExpiresAt: streamExpiry(format.URL),
	}, nil
}

// Fetch downloads a segmented stream (HLS, DASH) to dest through yt-dlp,
// which knows how to assemble it.
func (e *YTDLPExtractor) Fetch(ctx context.Context, candidate domain.Candidate, stream *domain.ResolvedStream, dest string) error {
	args := e.platformArgs(candidate.Platform)
	err := e.runner.DownloadFormat(ctx, candidate.SourceURL, stream.FormatID, dest, args...)
	if err != nil {
		return classifyExecError(candidate.Platform, domain.KindDownloadFailed, err)
	}
	return nil
}

// platformArgs supplies per-platform extraction flags. YouTube needs the
// alternate player clients and, when present, session cookies; the other
// platforms extract cleanly with none.
func (e *YTDLPExtractor) platformArgs(platform domain.Platform) []string {
	if platform != domain.PlatformYouTube {
		return nil
	}
	args := []string{"--extractor-args", "youtube:player_client=ios,web"}
	if e.cookiesFile != "" {
		args = append(args, "--cookies", e.cookiesFile)
	}
	return args
}
