package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// BandcampAdapter searches Bandcamp by scraping its track search page.
// Bandcamp exposes no public search API; the search page is stable enough
// that the result list markup has not changed in years. Durations are not
// shown on the search page, so candidates carry none.
type BandcampAdapter struct {
	baseURL string
	client  *http.Client
}

// NewBandcampAdapter creates the Bandcamp search adapter. baseURL defaults
// to bandcamp.com when empty.
func NewBandcampAdapter(baseURL string, client *http.Client) *BandcampAdapter {
	if baseURL == "" {
		baseURL = "https://bandcamp.com"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &BandcampAdapter{baseURL: baseURL, client: client}
}

// Platform returns the platform this adapter searches.
func (a *BandcampAdapter) Platform() domain.Platform {
	return domain.PlatformBandcamp
}

// Search returns Bandcamp's own result ordering, unreordered.
func (a *BandcampAdapter) Search(ctx context.Context, query domain.Query) ([]domain.Candidate, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&item_type=t", a.baseURL, url.QueryEscape(query.Normalized))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewPlatformError(a.Platform(), domain.KindRateLimited,
			fmt.Errorf("bandcamp returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable,
			fmt.Errorf("bandcamp returned %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewPlatformError(a.Platform(), domain.KindPlatformUnavailable,
			fmt.Errorf("bandcamp page parse error: %w", err))
	}

	var candidates []domain.Candidate
	doc.Find("li.searchresult").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".heading a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}

		// Result links carry tracking parameters; the bare URL doubles as
		// the platform-unique identifier.
		sourceURL := href
		if idx := strings.Index(sourceURL, "?"); idx > 0 {
			sourceURL = sourceURL[:idx]
		}

		// Subhead reads "by Artist Name".
		uploader := strings.TrimSpace(s.Find(".subhead").First().Text())
		uploader = strings.TrimSpace(strings.TrimPrefix(uploader, "by "))

		thumb, _ := s.Find(".art img").First().Attr("src")

		candidates = append(candidates, domain.Candidate{
			Platform:     a.Platform(),
			ID:           sourceURL,
			Title:        title,
			Uploader:     uploader,
			SourceURL:    sourceURL,
			ThumbnailURL: thumb,
		})
		return len(candidates) < query.Limit
	})

	return candidates, nil
}
