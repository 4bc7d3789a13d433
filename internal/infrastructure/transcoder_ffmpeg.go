package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// FFmpegTranscoder converts fetched media to the fixed delivery format:
// a single-bitrate mp3 at the configured sample rate.
type FFmpegTranscoder struct {
	binary     string
	bitrate    string
	sampleRate int
	logger     *zap.Logger
}

// NewFFmpegTranscoder creates a transcoder for the configured binary.
func NewFFmpegTranscoder(config *domain.PipelineConfig, logger *zap.Logger) *FFmpegTranscoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegTranscoder{
		binary:     config.FFmpegBinary,
		bitrate:    config.AudioBitrate,
		sampleRate: config.SampleRate,
		logger:     logger,
	}
}

// Transcode converts src to mp3 at dst. ffmpeg truncates dst itself via -y;
// a partial dst after an error is the caller's to delete, which the pipeline
// does by removing the whole work dir.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-nostdin",
		"-i", src,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", strconv.Itoa(t.sampleRate),
		"-b:a", t.bitrate,
		dst,
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Debug("running ffmpeg", zap.String("cmd", ShellEscapeCommand(t.binary, args...)))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
