// Package rewards wraps the rewards collaborator. Awarding points is
// fire-and-forget: a failure is logged by the caller and never fails the
// checkout.
package rewards

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client interface {
	AwardOrderPoints(ctx context.Context, orderNumber string) error
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP builds the HTTP rewards client.
func NewHTTP(baseURL, apiKey string) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) AwardOrderPoints(ctx context.Context, orderNumber string) error {
	endpoint := c.baseURL + "/rewards/orders/" + url.PathEscape(orderNumber) + "/points"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("award points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rewards returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
