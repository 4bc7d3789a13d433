package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery("  Lady  GAGA   Poker Face ", 6)

	assert.Equal(t, "  Lady  GAGA   Poker Face ", q.Raw)
	assert.Equal(t, "lady gaga poker face", q.Normalized)
	assert.Equal(t, 6, q.Limit)
	assert.False(t, q.IsEmpty())
}

func TestNewQuery_Empty(t *testing.T) {
	assert.True(t, NewQuery("", 6).IsEmpty())
	assert.True(t, NewQuery("   \t\n ", 6).IsEmpty())
}

func TestPlatformOrder_Validate(t *testing.T) {
	assert.NoError(t, DefaultPlatformOrder().Validate())
	assert.NoError(t, PlatformOrder{PlatformYouTube}.Validate())

	err := PlatformOrder{}.Validate()
	assert.ErrorIs(t, err, ErrEmptyPlatformOrder)

	err = PlatformOrder{PlatformSoundCloud, "myspace"}.Validate()
	var unknown *UnknownPlatformError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, Platform("myspace"), unknown.Platform)

	err = PlatformOrder{PlatformSoundCloud, PlatformSoundCloud}.Validate()
	var dup *DuplicatePlatformError
	assert.ErrorAs(t, err, &dup)
}

func TestValidatePlatform(t *testing.T) {
	assert.True(t, ValidatePlatform(PlatformSoundCloud))
	assert.True(t, ValidatePlatform(PlatformBandcamp))
	assert.True(t, ValidatePlatform(PlatformMixcloud))
	assert.True(t, ValidatePlatform(PlatformYouTube))
	assert.False(t, ValidatePlatform("spotify"))
	assert.False(t, ValidatePlatform(""))
}

func TestResolvedStream_Direct(t *testing.T) {
	assert.True(t, (&ResolvedStream{URL: "https://cdn.example/a.m4a", Protocol: "https"}).Direct())
	assert.True(t, (&ResolvedStream{URL: "http://cdn.example/a.m4a", Protocol: "http"}).Direct())
	assert.True(t, (&ResolvedStream{URL: "https://cdn.example/a.m4a"}).Direct())
	assert.False(t, (&ResolvedStream{URL: "https://cdn.example/a.m3u8", Protocol: "m3u8_native"}).Direct())
	assert.False(t, (&ResolvedStream{LocalPath: "/tmp/a.m4a"}).Direct())
}
