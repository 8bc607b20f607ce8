package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewHTTP builds the HTTP gateway client.
func NewHTTP(baseURL, secretKey string) Gateway {
	return &httpGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *httpGateway) Initialize(ctx context.Context, email string, amountCents int64, reference, callbackURL string, metadata map[string]string) (InitializeResult, error) {
	payload := map[string]interface{}{
		"email":        email,
		"amount":       amountCents,
		"reference":    reference,
		"callback_url": callbackURL,
		"metadata":     metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return InitializeResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return InitializeResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
		} `json:"data"`
	}
	if err := g.do(req, &out); err != nil {
		return InitializeResult{}, fmt.Errorf("initialize payment: %w", err)
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return InitializeResult{}, fmt.Errorf("initialize payment: gateway rejected reference %s", reference)
	}
	return InitializeResult{
		RedirectURL: out.Data.AuthorizationURL,
		AccessCode:  out.Data.AccessCode,
	}, nil
}

func (g *httpGateway) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return VerifyResult{}, err
	}

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			Status string `json:"status"`
			Amount int64  `json:"amount"`
		} `json:"data"`
	}
	if err := g.do(req, &out); err != nil {
		return VerifyResult{}, fmt.Errorf("verify payment: %w", err)
	}
	return VerifyResult{
		Success:     out.Status && strings.EqualFold(out.Data.Status, "success"),
		AmountCents: out.Data.Amount,
	}, nil
}

func (g *httpGateway) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, msg)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
