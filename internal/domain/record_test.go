package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFetchRecord(t *testing.T) {
	record := NewFetchRecord("lady gaga poker face")

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "lady gaga poker face", record.Query)
	assert.Equal(t, StatusPending, record.Status)
	assert.False(t, record.IsTerminal())
}

func TestFetchRecord_Lifecycle(t *testing.T) {
	record := NewFetchRecord("query")

	record.MarkResolving()
	assert.Equal(t, StatusResolving, record.Status)

	record.MarkResolved(PlatformSoundCloud)
	assert.Equal(t, StatusResolving, record.Status, "a resolved record waits for the caller's pick")
	assert.Equal(t, PlatformSoundCloud, record.Platform)
	assert.False(t, record.IsTerminal())

	candidate := Candidate{
		Platform:  PlatformSoundCloud,
		Title:     "Poker Face",
		Uploader:  "Lady Gaga",
		SourceURL: "https://soundcloud.com/ladygaga/poker-face",
	}
	record.MarkFetching(candidate)
	assert.Equal(t, StatusFetching, record.Status)
	assert.Equal(t, PlatformSoundCloud, record.Platform)
	assert.Equal(t, "Poker Face", record.Title)
	assert.Equal(t, candidate.SourceURL, record.SourceURL)

	result := &DownloadResult{
		FilePath: "/tmp/out.mp3",
		Size:     1024,
		Duration: 3 * time.Minute,
	}
	record.MarkCompleted(result)
	assert.Equal(t, StatusCompleted, record.Status)
	assert.Equal(t, "/tmp/out.mp3", record.FilePath)
	assert.Equal(t, int64(1024), record.ByteSize)
	assert.NotNil(t, record.CompletedAt)
	assert.True(t, record.IsTerminal())
}

func TestFetchRecord_MarkFailed(t *testing.T) {
	record := NewFetchRecord("query")

	err := NewPlatformError(PlatformYouTube, KindDownloadFailed, errors.New("boom"))
	record.MarkFailed(err)

	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, KindDownloadFailed, record.ErrorKind)
	assert.Contains(t, record.ErrorMessage, "boom")
	assert.True(t, record.IsTerminal())
}
