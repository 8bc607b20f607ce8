package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-backend/internal/domain"
)

type stubLicenses struct {
	byUser map[string][]domain.License
}

func (s *stubLicenses) CreateIfAbsent(_ context.Context, l domain.License) (bool, error) {
	return true, nil
}

func (s *stubLicenses) ListByUser(_ context.Context, userID string) ([]domain.License, error) {
	return s.byUser[userID], nil
}

type stubVendors struct {
	vendors map[string]domain.Vendor
}

func (s *stubVendors) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (s *stubVendors) GetByIDs(_ context.Context, ids []string) (map[string]domain.Vendor, error) {
	result := make(map[string]domain.Vendor, len(ids))
	for _, id := range ids {
		if v, ok := s.vendors[id]; ok {
			result[id] = v
		}
	}
	return result, nil
}

func TestListLicensesRequiresUserHeader(t *testing.T) {
	router := buildRouter(logDiscard(), nil, Deps{Licenses: &stubLicenses{}})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/licenses", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("licenses without user header = %d, want 401", rec.Code)
	}
}

func TestListLicensesReturnsCallerLicenses(t *testing.T) {
	licenses := &stubLicenses{byUser: map[string][]domain.License{
		"u1": {{Key: "LIC-1", UserID: "u1", OrderNumber: "MP-1"}},
	}}
	router := buildRouter(logDiscard(), nil, Deps{Licenses: licenses})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/licenses", nil)
	req.Header.Set("X-User-ID", "u1")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("licenses status = %d, want 200", rec.Code)
	}
	var body struct {
		Licenses []domain.License `json:"licenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Licenses) != 1 || body.Licenses[0].Key != "LIC-1" {
		t.Fatalf("licenses = %+v, want the caller's single license", body.Licenses)
	}

	// Another caller sees an empty list, not null and not someone else's keys.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/licenses", nil)
	req.Header.Set("X-User-ID", "u2")
	router.ServeHTTP(rec, req)
	if got := rec.Body.String(); got != `{"licenses":[]}` {
		t.Fatalf("licenses for u2 = %s, want empty array", got)
	}
}

func TestGetVendor(t *testing.T) {
	vendors := &stubVendors{vendors: map[string]domain.Vendor{
		"v1": {ID: "v1", Name: "Acme Audio"},
	}}
	router := buildRouter(logDiscard(), nil, Deps{Vendors: vendors})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/vendors/v1", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("vendor status = %d, want 200", rec.Code)
	}
	var body struct {
		Vendor domain.Vendor `json:"vendor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Vendor.Name != "Acme Audio" {
		t.Fatalf("vendor = %+v", body.Vendor)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/vendors/unknown", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown vendor status = %d, want 404", rec.Code)
	}
}
