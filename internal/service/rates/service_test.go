package rates

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/domain"
)

type stubCarrier struct {
	mu            sync.Mutex
	ratesByVendor map[string]carrier.RateResponse
	validateErr   error
	ratesErr      error
	lastSender    string
}

func (s *stubCarrier) ValidateAddress(_ context.Context, addr domain.Address) (string, error) {
	if s.validateErr != nil {
		return "", s.validateErr
	}
	return "code:" + addr.City, nil
}

func (s *stubCarrier) FetchRates(_ context.Context, req carrier.RateRequest) (carrier.RateResponse, error) {
	if s.ratesErr != nil {
		return carrier.RateResponse{}, s.ratesErr
	}
	s.mu.Lock()
	s.lastSender = req.SenderCode
	s.mu.Unlock()
	resp, ok := s.ratesByVendor[req.SenderCode]
	if !ok {
		return carrier.RateResponse{}, errors.New("no rates configured")
	}
	return resp, nil
}

func (s *stubCarrier) Book(_ context.Context, _, _ string) (string, error) { return "", nil }
func (s *stubCarrier) Track(_ context.Context, _ string) (string, error)  { return "", nil }
func (s *stubCarrier) Cancel(_ context.Context, _ string) error           { return nil }

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func physicalGroup(vendorID, city string, pickup bool) domain.VendorGroup {
	return domain.VendorGroup{
		VendorID:         vendorID,
		VendorName:       vendorID,
		Origin:           domain.Address{Street: "1 Main", City: city, Country: "US"},
		SupportsPickup:   pickup,
		HasPhysicalItems: true,
		Items: []domain.OrderItem{
			{ID: vendorID + "-item", Name: "widget", Quantity: 1, UnitPriceCents: 1000, Type: domain.ProductPhysical, WeightGrams: 500, VendorID: vendorID},
		},
	}
}

func TestAggregateSumsPricesAndTakesSlowestETA(t *testing.T) {
	c := &stubCarrier{ratesByVendor: map[string]carrier.RateResponse{
		"code:cityA": {RequestToken: "t1", Couriers: []carrier.Courier{
			{ID: "c1", Name: "Alpha Express", Service: "standard", AmountCents: 2500, EstimatedDays: 3},
		}},
		"code:cityB": {RequestToken: "t2", Couriers: []carrier.Courier{
			{ID: "c2", Name: "Beta Logistics", Service: "standard", AmountCents: 4000, EstimatedDays: 6},
		}},
	}}
	svc := New(c, discardLogger())

	groups := []domain.VendorGroup{
		physicalGroup("v1", "cityA", true),
		physicalGroup("v2", "cityB", true),
	}
	quote, err := svc.QuoteForGroups(context.Background(), groups, domain.Address{Street: "9 Dest", City: "dest", Country: "US"})
	if err != nil {
		t.Fatal(err)
	}
	if quote.Source != SourceLive {
		t.Fatalf("source = %s, want live", quote.Source)
	}

	std, ok := quote.Option(domain.DeliveryStandard)
	if !ok {
		t.Fatal("standard option missing")
	}
	if std.PriceCents != 6500 {
		t.Fatalf("standard price = %d, want 6500", std.PriceCents)
	}
	if std.EstimatedDays != 6 {
		t.Fatalf("standard ETA = %d days, want slowest vendor's 6", std.EstimatedDays)
	}
	if std.Courier != MultipleCouriers {
		t.Fatalf("courier = %q, want %q", std.Courier, MultipleCouriers)
	}
	if std.VendorCosts["v1"] != 2500 || std.VendorCosts["v2"] != 4000 {
		t.Fatalf("vendor cost attribution wrong: %+v", std.VendorCosts)
	}
}

func TestCheapestPerVendorPerTypeIsKept(t *testing.T) {
	c := &stubCarrier{ratesByVendor: map[string]carrier.RateResponse{
		"code:cityA": {Couriers: []carrier.Courier{
			{ID: "c1", Name: "Pricey", Service: "standard", AmountCents: 5000, EstimatedDays: 2},
			{ID: "c2", Name: "Cheap", Service: "standard", AmountCents: 1800, EstimatedDays: 4},
		}},
	}}
	svc := New(c, discardLogger())

	quote, err := svc.QuoteForGroups(context.Background(), []domain.VendorGroup{physicalGroup("v1", "cityA", false)}, domain.Address{Street: "9", City: "dest"})
	if err != nil {
		t.Fatal(err)
	}
	std, ok := quote.Option(domain.DeliveryStandard)
	if !ok {
		t.Fatal("standard option missing")
	}
	if std.PriceCents != 1800 || std.Courier != "Cheap" {
		t.Fatalf("expected cheapest courier kept, got %+v", std)
	}
}

func TestFallbackOnCarrierError(t *testing.T) {
	c := &stubCarrier{ratesErr: errors.New("timeout")}
	svc := New(c, discardLogger())

	quote, err := svc.QuoteForGroups(context.Background(), []domain.VendorGroup{physicalGroup("v1", "cityA", false)}, domain.Address{Street: "9", City: "dest"})
	if err != nil {
		t.Fatal(err)
	}
	if quote.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", quote.Source)
	}
	std, ok := quote.Option(domain.DeliveryStandard)
	if !ok || std.PriceCents != fallbackStandardCents {
		t.Fatalf("fallback standard missing or mispriced: %+v, ok=%v", std, ok)
	}
	exp, ok := quote.Option(domain.DeliveryExpress)
	if !ok || exp.PriceCents != fallbackExpressCents {
		t.Fatalf("fallback express missing or mispriced: %+v, ok=%v", exp, ok)
	}
}

func TestMixedSourceWhenOneVendorFallsBack(t *testing.T) {
	c := &stubCarrier{ratesByVendor: map[string]carrier.RateResponse{
		"code:cityA": {Couriers: []carrier.Courier{
			{ID: "c1", Name: "Alpha", Service: "standard", AmountCents: 2000, EstimatedDays: 3},
		}},
		// cityB intentionally absent: its vendor falls back.
	}}
	svc := New(c, discardLogger())

	groups := []domain.VendorGroup{
		physicalGroup("v1", "cityA", true),
		physicalGroup("v2", "cityB", true),
	}
	quote, err := svc.QuoteForGroups(context.Background(), groups, domain.Address{Street: "9", City: "dest"})
	if err != nil {
		t.Fatal(err)
	}
	if quote.Source != SourceMixed {
		t.Fatalf("source = %s, want mixed", quote.Source)
	}
	std, ok := quote.Option(domain.DeliveryStandard)
	if !ok {
		t.Fatal("standard option missing")
	}
	if std.PriceCents != 2000+fallbackStandardCents {
		t.Fatalf("mixed standard price = %d", std.PriceCents)
	}
}

func TestDigitalOnlyCartGetsZeroCostDigitalOption(t *testing.T) {
	svc := New(&stubCarrier{}, discardLogger())
	groups := []domain.VendorGroup{{
		VendorID: "v1",
		Items:    []domain.OrderItem{{Type: domain.ProductDigital, Quantity: 1}},
	}}
	quote, err := svc.QuoteForGroups(context.Background(), groups, domain.Address{})
	if err != nil {
		t.Fatal(err)
	}
	if len(quote.Options) != 1 {
		t.Fatalf("want single option, got %+v", quote.Options)
	}
	opt := quote.Options[0]
	if opt.Type != domain.DeliveryDigital || opt.PriceCents != 0 {
		t.Fatalf("unexpected digital option %+v", opt)
	}
}

func TestPickupOfferedOnlyWhenAllVendorsSupportIt(t *testing.T) {
	c := &stubCarrier{ratesByVendor: map[string]carrier.RateResponse{
		"code:cityA": {Couriers: []carrier.Courier{{Name: "A", Service: "standard", AmountCents: 1000, EstimatedDays: 1}}},
		"code:cityB": {Couriers: []carrier.Courier{{Name: "B", Service: "standard", AmountCents: 1000, EstimatedDays: 1}}},
	}}
	svc := New(c, discardLogger())

	dest := domain.Address{Street: "9", City: "dest"}
	all := []domain.VendorGroup{physicalGroup("v1", "cityA", true), physicalGroup("v2", "cityB", true)}
	quote, err := svc.QuoteForGroups(context.Background(), all, dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := quote.Option(domain.DeliveryPickup); !ok {
		t.Fatal("pickup should be offered when every vendor supports it")
	}

	mixed := []domain.VendorGroup{physicalGroup("v1", "cityA", true), physicalGroup("v2", "cityB", false)}
	quote, err = svc.QuoteForGroups(context.Background(), mixed, dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := quote.Option(domain.DeliveryPickup); ok {
		t.Fatal("pickup must not be offered when a vendor lacks support")
	}
}

func TestQuoteValidatesVendorOrigin(t *testing.T) {
	c := &stubCarrier{ratesByVendor: map[string]carrier.RateResponse{
		"code:cityA": {Couriers: []carrier.Courier{{Name: "A", Service: "standard", AmountCents: 1000, EstimatedDays: 1}}},
	}}
	svc := New(c, discardLogger())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.QuoteForGroups(context.Background(), []domain.VendorGroup{physicalGroup("v1", "cityA", false)}, domain.Address{Street: "9", City: "dest"})
	if err != nil {
		t.Fatal(err)
	}
	if c.lastSender != "code:cityA" {
		t.Fatalf("unexpected sender code %q", c.lastSender)
	}
}
