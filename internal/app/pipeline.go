package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// Stage is the pipeline's position in the fetch state machine.
type Stage string

const (
	StagePending     Stage = "pending"
	StageExtracting  Stage = "extracting"
	StageStreaming   Stage = "streaming"
	StageTranscoding Stage = "transcoding"
	StageComplete    Stage = "complete"
	StageFailed      Stage = "failed"
)

// Pipeline turns a selected candidate into a delivered audio file:
// extract -> stream to a scoped work dir -> transcode -> move to the
// completed dir. Every failure and cancellation path removes the work dir,
// so no partial artifact ever survives an error. The pipeline never retries;
// a failed candidate may mean a failed platform, and that call is the
// caller's.
type Pipeline struct {
	extractor  domain.Extractor
	transcoder domain.Transcoder
	config     *domain.PipelineConfig
	client     *http.Client
	events     domain.EventSink
	logger     *zap.Logger
}

// NewPipeline creates a download/transcode pipeline. The shared HTTP client
// is safe for concurrent fetches.
func NewPipeline(
	extractor domain.Extractor,
	transcoder domain.Transcoder,
	config *domain.PipelineConfig,
	events domain.EventSink,
	logger *zap.Logger,
) *Pipeline {
	if events == nil {
		events = domain.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:  extractor,
		transcoder: transcoder,
		config:     config,
		client:     &http.Client{},
		events:     events,
		logger:     logger,
	}
}

// Fetch runs the state machine for one candidate. On success the returned
// file belongs to the caller; the pipeline keeps no reference to it.
func (p *Pipeline) Fetch(ctx context.Context, candidate domain.Candidate) (*domain.DownloadResult, error) {
	if p.config.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.OverallTimeout)
		defer cancel()
	}

	start := time.Now()
	result, stage, err := p.run(ctx, candidate)

	if err != nil {
		p.events.Record(domain.ResolutionEvent{
			Stage:    domain.StageFetch,
			Platform: candidate.Platform,
			Outcome:  domain.OutcomeFailure,
			Kind:     domain.KindOf(err),
			Latency:  time.Since(start),
		})
		p.logger.Warn("fetch failed",
			zap.String("platform", string(candidate.Platform)),
			zap.String("source_url", candidate.SourceURL),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return nil, err
	}

	p.events.Record(domain.ResolutionEvent{
		Stage:    domain.StageFetch,
		Platform: candidate.Platform,
		Outcome:  domain.OutcomeHit,
		Latency:  time.Since(start),
	})
	p.logger.Info("fetch complete",
		zap.String("platform", string(candidate.Platform)),
		zap.String("file", result.FilePath),
		zap.Int64("size", result.Size),
		zap.Duration("latency", time.Since(start)))
	return result, nil
}

// run walks the state machine and reports the stage a failure happened in.
// All scratch files live under one unique work dir, which is removed on
// every exit path; only the final artifact, already moved out, survives a
// successful run.
func (p *Pipeline) run(ctx context.Context, candidate domain.Candidate) (*domain.DownloadResult, Stage, error) {
	stage := StagePending

	workDir, err := p.makeWorkDir()
	if err != nil {
		return nil, StageFailed, domain.NewPlatformError(candidate.Platform, domain.KindDownloadFailed, err)
	}
	defer os.RemoveAll(workDir)

	// Extracting
	stage = StageExtracting
	stream, err := p.extractor.Extract(ctx, candidate)
	if err != nil {
		return nil, stage, domain.WrapKind(candidate.Platform, domain.KindExtractionFailed, err)
	}

	// Streaming
	stage = StageStreaming
	rawPath := filepath.Join(workDir, "source."+streamExt(stream))
	if err := p.stream(ctx, candidate, stream, rawPath); err != nil {
		return nil, stage, domain.WrapKind(candidate.Platform, domain.KindDownloadFailed, err)
	}

	// Transcoding
	stage = StageTranscoding
	outPath := filepath.Join(workDir, "out."+p.config.AudioFormat)
	if err := p.transcoder.Transcode(ctx, rawPath, outPath); err != nil {
		return nil, stage, domain.WrapKind(candidate.Platform, domain.KindTranscodeFailed, err)
	}

	// Complete: move the artifact out of the work dir so the deferred
	// cleanup cannot touch it. Ownership transfers to the caller here.
	finalPath, size, err := p.moveToCompleted(outPath, candidate, stream)
	if err != nil {
		return nil, stage, domain.NewPlatformError(candidate.Platform, domain.KindTranscodeFailed, err)
	}
	stage = StageComplete

	title := stream.Title
	if title == "" {
		title = candidate.Title
	}
	uploader := stream.Uploader
	if uploader == "" {
		uploader = candidate.Uploader
	}
	duration := stream.Duration
	if duration == 0 {
		duration = candidate.Duration
	}

	return &domain.DownloadResult{
		FilePath: finalPath,
		Size:     size,
		Duration: duration,
		Title:    title,
		Uploader: uploader,
		Platform: candidate.Platform,
	}, stage, nil
}

// makeWorkDir creates a unique scratch directory so concurrent fetches never
// collide.
func (p *Pipeline) makeWorkDir() (string, error) {
	if err := os.MkdirAll(p.config.WorkDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	workDir := filepath.Join(p.config.WorkDir, "fetch-"+uuid.New().String())
	if err := os.Mkdir(workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return workDir, nil
}

// stream retrieves the media bytes to dest. Direct streams go over plain
// HTTP; anything segmented is delegated back to the extraction backend,
// which knows how to assemble it.
func (p *Pipeline) stream(ctx context.Context, candidate domain.Candidate, stream *domain.ResolvedStream, dest string) error {
	if stream.LocalPath != "" {
		return os.Rename(stream.LocalPath, dest)
	}
	if !stream.Direct() {
		return p.extractor.Fetch(ctx, candidate, stream, dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stream.URL, nil)
	if err != nil {
		return fmt.Errorf("invalid stream URL: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream request returned %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create stream file: %w", err)
	}

	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("stream copy failed: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("stream flush failed: %w", closeErr)
	}
	return nil
}

// moveToCompleted places the artifact in the completed directory under a
// collision-free name and returns its path and size.
func (p *Pipeline) moveToCompleted(outPath string, candidate domain.Candidate, stream *domain.ResolvedStream) (string, int64, error) {
	if err := os.MkdirAll(p.config.CompletedDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create completed directory: %w", err)
	}

	title := stream.Title
	if title == "" {
		title = candidate.Title
	}
	name := fmt.Sprintf("%s-%s.%s", uuid.New().String()[:8], sanitizeFilename(title), p.config.AudioFormat)
	finalPath := filepath.Join(p.config.CompletedDir, name)

	if err := os.Rename(outPath, finalPath); err != nil {
		// Rename fails across filesystems; fall back to copy and delete.
		if err := copyFile(outPath, finalPath); err != nil {
			return "", 0, fmt.Errorf("failed to move artifact: %w", err)
		}
		os.Remove(outPath)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat artifact: %w", err)
	}
	return finalPath, info.Size(), nil
}

// streamExt picks a scratch-file extension for the raw media.
func streamExt(stream *domain.ResolvedStream) string {
	if stream.Ext != "" {
		return stream.Ext
	}
	return "media"
}

// sanitizeFilename strips path separators and other characters that are
// unsafe in a filename, and bounds the length.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
	)
	name = replacer.Replace(strings.TrimSpace(name))
	if name == "" {
		name = "track"
	}
	if len(name) > 120 {
		name = name[:120]
	}
	return name
}

// copyFile copies src to dst preserving contents only.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
