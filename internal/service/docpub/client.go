package docpub

import (
	"context"
	"fmt"
	"time"

	xhttp "WatchPull/pkg/http"
)

// Client publishes review reports as cloud documents. It exchanges app
// credentials for a tenant token, then creates the document.
type Client struct {
	apiURL    string
	appID     string
	appSecret string
	folder    string
	client    *xhttp.Client
}

type tokenResp struct {
	Code  int    `json:"code"`
	Token string `json:"tenant_access_token"`
}

type createDocResp struct {
	Code int `json:"code"`
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

// New creates a document publisher client.
func New(apiURL, appID, appSecret, folder string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiURL:    apiURL,
		appID:     appID,
		appSecret: appSecret,
		folder:    folder,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Publish creates a document and returns its URL.
func (c *Client) Publish(ctx context.Context, title, content string) (string, error) {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return "", err
	}

	var dr createDocResp
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.apiURL + "/docs",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + token,
		},
		Body: map[string]string{
			"title":   title,
			"content": content,
			"folder":  c.folder,
		},
	}, &dr)
	if err != nil {
		return "", fmt.Errorf("create doc: %w", err)
	}
	if dr.Code != 0 {
		return "", fmt.Errorf("create doc rejected: code=%d", dr.Code)
	}
	return dr.Data.URL, nil
}

func (c *Client) tenantToken(ctx context.Context) (string, error) {
	var tr tokenResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.apiURL + "/auth/tenant_access_token",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body: map[string]string{
			"app_id":     c.appID,
			"app_secret": c.appSecret,
		},
	}, &tr)
	if err != nil {
		return "", fmt.Errorf("tenant token: %w", err)
	}
	if tr.Code != 0 || tr.Token == "" {
		return "", fmt.Errorf("tenant token rejected: code=%d", tr.Code)
	}
	return tr.Token, nil
}
