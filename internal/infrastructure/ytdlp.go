package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// YTDLPRunner wraps the yt-dlp binary. It is the single place the process
// is spawned from: flat search for the exec-backed adapters, full extraction
// for the extraction backend, and format download for segmented streams.
// A runner is stateless and safe for concurrent use.
type YTDLPRunner struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewYTDLPRunner creates a runner for the configured binary.
func NewYTDLPRunner(config *domain.ExtractConfig, logger *zap.Logger) *YTDLPRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPRunner{
		binary:  config.YTDLPBinary,
		timeout: config.Timeout,
		logger:  logger,
	}
}

// flatEntry mirrors one entry of yt-dlp's flat-playlist JSON output.
type flatEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Duration   float64 `json:"duration"`
	Thumbnail  string  `json:"thumbnail"`
}

type flatResult struct {
	Entries []*flatEntry `json:"entries"`
}

// ytdlpFormat mirrors one format of yt-dlp's full JSON output.
type ytdlpFormat struct {
	FormatID string  `json:"format_id"`
	ACodec   string  `json:"acodec"`
	VCodec   string  `json:"vcodec"`
	Ext      string  `json:"ext"`
	Protocol string  `json:"protocol"`
	URL      string  `json:"url"`
	ABR      float64 `json:"abr"`
	TBR      float64 `json:"tbr"`
}

type ytdlpInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Uploader string        `json:"uploader"`
	Duration float64       `json:"duration"`
	Formats  []ytdlpFormat `json:"formats"`
}

// FlatSearch runs a flat-playlist search (e.g. "scsearch6:query") and
// returns the entries in the order yt-dlp produced them.
func (r *YTDLPRunner) FlatSearch(ctx context.Context, searchSpec string, extraArgs ...string) ([]*flatEntry, error) {
	args := []string{"-J", "--flat-playlist", "--no-warnings", "--ignore-errors"}
	args = append(args, extraArgs...)
	args = append(args, searchSpec)

	stdout, err := r.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var result flatResult
	if err := json.Unmarshal(stdout, &result); err != nil {
		return nil, fmt.Errorf("yt-dlp search output parse error: %w", err)
	}

	entries := make([]*flatEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		if e == nil || e.Title == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Extract runs a full metadata extraction for one URL without downloading.
func (r *YTDLPRunner) Extract(ctx context.Context, sourceURL string, extraArgs ...string) (*ytdlpInfo, error) {
	args := []string{"-J", "--no-warnings", "--no-playlist", "--skip-download"}
	args = append(args, extraArgs...)
	args = append(args, sourceURL)

	stdout, err := r.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata parse error: %w", err)
	}
	return &info, nil
}

// DownloadFormat downloads one already-selected format to dest. Used for
// segmented protocols the pipeline cannot fetch over plain HTTP.
func (r *YTDLPRunner) DownloadFormat(ctx context.Context, sourceURL, formatID, dest string, extraArgs ...string) error {
	args := []string{"--no-warnings", "--no-playlist", "-o", dest}
	args = append(args, extraArgs...)
	if formatID != "" {
		args = append(args, "-f", formatID)
	} else {
		args = append(args, "-f", "bestaudio/best")
	}
	args = append(args, sourceURL)

	_, err := r.run(ctx, args)
	return err
}

// run executes the binary with a bounded deadline, returning stdout. Stderr
// is folded into the error for classification upstream.
func (r *YTDLPRunner) run(ctx context.Context, args []string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running yt-dlp", zap.String("cmd", ShellEscapeCommand(r.binary, args...)))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// SelectAudioFormat picks the best audio-capable format from an extraction.
// Audio-only formats are preferred over muxed ones; within a group, plain
// HTTPS beats segmented protocols and higher audio bitrate wins. Returns an
// error when no format carries an audio track.
func SelectAudioFormat(info *ytdlpInfo) (*ytdlpFormat, error) {
	candidates := make([]ytdlpFormat, 0, len(info.Formats))
	for _, f := range info.Formats {
		if f.URL == "" {
			continue
		}
		if (f.VCodec == "none" || f.VCodec == "") && f.ACodec != "none" {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		for _, f := range info.Formats {
			if f.URL == "" {
				continue
			}
			if f.ACodec != "none" && f.ACodec != "" {
				candidates = append(candidates, f)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable audio formats")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scoreFormat(&candidates[i]), scoreFormat(&candidates[j])
		if si == sj {
			return candidates[i].ABR > candidates[j].ABR
		}
		return si > sj
	})

	best := candidates[0]
	return &best, nil
}

// scoreFormat ranks a format by container and delivery protocol.
func scoreFormat(f *ytdlpFormat) int {
	score := 0
	switch strings.ToLower(f.Ext) {
	case "m4a":
		score += 100
	case "webm":
		score += 90
	case "ogg", "opus":
		score += 85
	case "mp3":
		score += 80
	case "mp4":
		score += 70
	default:
		score += 60
	}

	p := strings.ToLower(f.Protocol)
	switch {
	case strings.HasPrefix(p, "https"):
		score += 30
	case strings.HasPrefix(p, "http"):
		score += 25
	case strings.Contains(p, "m3u8"), strings.Contains(p, "hls"):
		score += 20
	case strings.Contains(p, "dash"):
		score += 15
	}
	return score
}

// streamExpiry extracts the expiry hint platforms embed in signed media
// URLs. Zero time when the URL carries none.
func streamExpiry(mediaURL string) time.Time {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return time.Time{}
	}
	expire := u.Query().Get("expire")
	if expire == "" {
		expire = u.Query().Get("Expires")
	}
	if expire == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(expire, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// classifyExecError maps a failed yt-dlp invocation onto the error taxonomy.
// Explicit backoff signals become RateLimited; everything else takes the
// caller's fallback kind.
func classifyExecError(platform domain.Platform, fallback domain.ErrorKind, err error) *domain.PlatformError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate-limit") {
		return domain.NewPlatformError(platform, domain.KindRateLimited, err)
	}
	return domain.NewPlatformError(platform, fallback, err)
}
