package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/domain"
)

const addressCodeTTL = 24 * time.Hour

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   cache.Cache
	logger  *log.Logger
}

// NewHTTP builds the HTTP carrier client. Validated address codes are kept
// in the injected cache; pass a small memory cache to bypass redis.
func NewHTTP(baseURL, apiKey string, c cache.Cache, logger *log.Logger) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   c,
		logger:  logger,
	}
}

func (h *httpClient) ValidateAddress(ctx context.Context, addr domain.Address) (string, error) {
	if addr.Empty() {
		return "", fmt.Errorf("address has no routable fields")
	}
	freeform := addr.Freeform()
	key := cache.Key("carrier", "address", freeform)
	if code, err := h.cache.Get(ctx, key); err == nil && code != "" {
		return code, nil
	}

	var out struct {
		AddressCode string `json:"addressCode"`
	}
	payload := map[string]string{
		"address": freeform,
		"name":    addr.Name,
		"phone":   addr.Phone,
		"email":   addr.Email,
	}
	if err := h.post(ctx, "/addresses/validate", payload, &out); err != nil {
		return "", fmt.Errorf("validate address: %w", err)
	}
	if out.AddressCode == "" {
		return "", fmt.Errorf("validate address: empty code returned")
	}
	if err := h.cache.Set(ctx, key, out.AddressCode, addressCodeTTL); err != nil {
		h.logger.Printf("cache address code: %v", err)
	}
	return out.AddressCode, nil
}

func (h *httpClient) FetchRates(ctx context.Context, req RateRequest) (RateResponse, error) {
	var out RateResponse
	if err := h.post(ctx, "/rates", req, &out); err != nil {
		return RateResponse{}, fmt.Errorf("fetch rates: %w", err)
	}
	if len(out.Couriers) == 0 {
		return RateResponse{}, fmt.Errorf("fetch rates: no couriers returned")
	}
	return out, nil
}

func (h *httpClient) Book(ctx context.Context, requestToken, courierID string) (string, error) {
	var out struct {
		TrackingRef string `json:"trackingRef"`
	}
	payload := map[string]string{
		"requestToken": requestToken,
		"courierId":    courierID,
	}
	if err := h.post(ctx, "/shipments", payload, &out); err != nil {
		return "", fmt.Errorf("book shipment: %w", err)
	}
	if out.TrackingRef == "" {
		return "", fmt.Errorf("book shipment: empty tracking reference")
	}
	return out.TrackingRef, nil
}

func (h *httpClient) Track(ctx context.Context, trackingRef string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := h.get(ctx, "/shipments/"+url.PathEscape(trackingRef), &out); err != nil {
		return "", fmt.Errorf("track shipment: %w", err)
	}
	return out.Status, nil
}

func (h *httpClient) Cancel(ctx context.Context, trackingRef string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"/shipments/"+url.PathEscape(trackingRef), nil)
	if err != nil {
		return err
	}
	if err := h.do(req, nil); err != nil {
		return fmt.Errorf("cancel shipment: %w", err)
	}
	return nil
}

func (h *httpClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, out)
}

func (h *httpClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return err
	}
	return h.do(req, out)
}

func (h *httpClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("carrier returned %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
