package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// MixcloudAdapter searches Mixcloud through its public JSON API. No
// authentication material exists for Mixcloud; the public API is the full
// capability.
type MixcloudAdapter struct {
	baseURL string
	client  *http.Client
}

// NewMixcloudAdapter creates the Mixcloud search adapter. baseURL defaults
// to the public API host when empty.
func NewMixcloudAdapter(baseURL string, client *http.Client) *MixcloudAdapter {
	if baseURL == "" {
		baseURL = "https://api.mixcloud.com"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &MixcloudAdapter{baseURL: baseURL, client: client}
}

// Platform returns the platform this adapter searches.
func (a *MixcloudAdapter) Platform() domain.Platform {
	return domain.PlatformMixcloud
}

// mixcloudSearchResponse mirrors the API's cloudcast search payload.
type mixcloudSearchResponse struct {
	Data []struct {
		Key         string  `json:"key"`
		Slug        string  `json:"slug"`
		Name        string  `json:"name"`
		URL         string  `json:"url"`
		AudioLength float64 `json:"audio_length"`
		User        struct {
			Name string `json:"name"`
		} `json:"user"`
		Pictures struct {
			Medium string `json:"medium"`
		} `json:"pictures"`
	} `json:"data"`
}

// Search returns Mixcloud's own relevance ranking, unreordered.
func (a *MixcloudAdapter) Search(ctx context.Context, query domain.Query) ([]domain.Candidate, error) {
	endpoint := fmt.Sprintf("%s/search/?q=%s&type=cloudcast&limit=%s",
		a.baseURL, url.QueryEscape(query.Normalized), strconv.Itoa(query.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewPlatformError(a.Platform(), domain.KindRateLimited,
			fmt.Errorf("mixcloud returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable,
			fmt.Errorf("mixcloud returned %d", resp.StatusCode))
	}

	var payload mixcloudSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable,
			fmt.Errorf("mixcloud response parse error: %w", err))
	}

	candidates := make([]domain.Candidate, 0, len(payload.Data))
	for _, item := range payload.Data {
		if item.URL == "" || item.Name == "" {
			continue
		}
		id := item.Slug
		if id == "" {
			id = item.Key
		}
		candidates = append(candidates, domain.Candidate{
			Platform:     a.Platform(),
			ID:           id,
			Title:        item.Name,
			Uploader:     item.User.Name,
			Duration:     time.Duration(item.AudioLength * float64(time.Second)),
			SourceURL:    item.URL,
			ThumbnailURL: item.Pictures.Medium,
		})
	}
	return candidates, nil
}
