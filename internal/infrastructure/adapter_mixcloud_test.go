package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musifyyy/tunefetch/internal/domain"
)

const mixcloudSearchPayload = `{
	"data": [
		{
			"key": "/artist-one/deep-cuts/",
			"slug": "deep-cuts",
			"name": "Deep Cuts Vol. 1",
			"url": "https://www.mixcloud.com/artist-one/deep-cuts/",
			"audio_length": 3600,
			"user": {"name": "Artist One"},
			"pictures": {"medium": "https://thumbnailer.mixcloud.com/deep-cuts.jpg"}
		},
		{
			"key": "/artist-two/late-night/",
			"slug": "late-night",
			"name": "Late Night Session",
			"url": "https://www.mixcloud.com/artist-two/late-night/",
			"audio_length": 1800,
			"user": {"name": "Artist Two"},
			"pictures": {}
		},
		{
			"key": "/broken/",
			"slug": "broken",
			"name": "",
			"url": "https://www.mixcloud.com/broken/"
		}
	]
}`

func TestMixcloudAdapter_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		assert.Equal(t, "deep house mix", r.URL.Query().Get("q"))
		assert.Equal(t, "cloudcast", r.URL.Query().Get("type"))
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mixcloudSearchPayload))
	}))
	defer server.Close()

	adapter := NewMixcloudAdapter(server.URL, server.Client())

	candidates, err := adapter.Search(context.Background(), domain.NewQuery("Deep House Mix", 6))
	require.NoError(t, err)

	// Entries missing a title are dropped; platform ordering is preserved.
	require.Len(t, candidates, 2)
	assert.Equal(t, "deep-cuts", candidates[0].ID)
	assert.Equal(t, "Deep Cuts Vol. 1", candidates[0].Title)
	assert.Equal(t, "Artist One", candidates[0].Uploader)
	assert.Equal(t, time.Hour, candidates[0].Duration)
	assert.Equal(t, "https://www.mixcloud.com/artist-one/deep-cuts/", candidates[0].SourceURL)
	assert.Equal(t, "https://thumbnailer.mixcloud.com/deep-cuts.jpg", candidates[0].ThumbnailURL)
	assert.Equal(t, "late-night", candidates[1].ID)

	for _, c := range candidates {
		assert.Equal(t, domain.PlatformMixcloud, c.Platform)
	}
}

func TestMixcloudAdapter_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := NewMixcloudAdapter(server.URL, server.Client())

	_, err := adapter.Search(context.Background(), domain.NewQuery("query", 6))
	require.Error(t, err)
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
}

func TestMixcloudAdapter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewMixcloudAdapter(server.URL, server.Client())

	_, err := adapter.Search(context.Background(), domain.NewQuery("query", 6))
	require.Error(t, err)
	assert.Equal(t, domain.KindPlatformUnavailable, domain.KindOf(err))
}

func TestMixcloudAdapter_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	adapter := NewMixcloudAdapter(server.URL, server.Client())

	_, err := adapter.Search(context.Background(), domain.NewQuery("query", 6))
	require.Error(t, err)
	assert.Equal(t, domain.KindPlatformUnavailable, domain.KindOf(err))
}

func TestMixcloudAdapter_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	adapter := NewMixcloudAdapter(server.URL, server.Client())

	candidates, err := adapter.Search(context.Background(), domain.NewQuery("query", 6))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
