package search

import (
	"context"
	"fmt"
	"time"

	"WatchPull/internal/domain/models"
	xhttp "WatchPull/pkg/http"
	"WatchPull/pkg/util"
)

// Client is an HTTP news-search collaborator used by the market review phase.
type Client struct {
	apiURL string
	apiKey string
	client *xhttp.Client
}

type searchResp struct {
	Items []struct {
		Title       string `json:"title"`
		Source      string `json:"source"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
	} `json:"items"`
}

// New creates a search client.
func New(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}
	var sr searchResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.apiURL + "/search",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		QueryParams: map[string][]string{
			"q":     {query},
			"limit": {fmt.Sprintf("%d", limit)},
		},
	}, &sr)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	items := make([]models.NewsItem, 0, len(sr.Items))
	for _, it := range sr.Items {
		items = append(items, models.NewsItem{
			Title:       it.Title,
			Source:      it.Source,
			URL:         it.URL,
			PublishedAt: util.ParseTimeDefault(it.PublishedAt, time.Time{}),
		})
	}
	return items, nil
}
