// Package rates merges per-vendor carrier quotes into one customer-facing
// set of delivery options. The collaborator being down never fails a quote:
// affected vendors fall back to fixed two-tier pricing, and the response
// carries a source flag so pricing confidence stays observable.
package rates

import (
	"context"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/domain"
)

// Quote sources.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
	SourceMixed    = "mixed"
)

// Fixed fallback pricing per vendor group, used whenever the collaborator
// cannot produce a quote for a vendor.
const (
	fallbackStandardCents = 2500
	fallbackStandardDays  = 5
	fallbackExpressCents  = 4500
	fallbackExpressDays   = 2
	fallbackCourierName   = "Standard Fallback"
)

// MultipleCouriers is shown when more than one vendor contributes parcels
// to a delivery option.
const MultipleCouriers = "Multiple Couriers"

// Option is one customer-facing delivery choice, priced across vendors.
type Option struct {
	Type          domain.DeliveryType `json:"type"`
	Courier       string              `json:"courier"`
	PriceCents    int64               `json:"priceCents"`
	EstimatedDays int                 `json:"estimatedDays"`
	// VendorCosts attributes the price to each shipping vendor so the order
	// can record per-vendor shipment costs.
	VendorCosts map[string]int64 `json:"vendorCosts,omitempty"`
}

// Quote is the aggregated answer for one cart and destination.
type Quote struct {
	Options []Option `json:"options"`
	Source  string   `json:"source"`
}

// Option returns the option of the given type, if offered.
func (q Quote) Option(t domain.DeliveryType) (Option, bool) {
	for _, o := range q.Options {
		if o.Type == t {
			return o, true
		}
	}
	return Option{}, false
}

type Service struct {
	carrier carrier.Client
	logger  *log.Logger
	now     func() time.Time
}

func New(c carrier.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carrier: c, logger: logger, now: time.Now}
}

// vendorQuote is the per-vendor intermediate: cheapest quote per rate type.
type vendorQuote struct {
	vendorID string
	byType   map[domain.DeliveryType]carrier.Courier
	live     bool
}

// QuoteForGroups prices delivery for a partitioned cart. Vendor groups are
// quoted in parallel; they are disjoint so no ordering is required.
func (s *Service) QuoteForGroups(ctx context.Context, groups []domain.VendorGroup, dest domain.Address) (Quote, error) {
	shipping := make([]domain.VendorGroup, 0, len(groups))
	for _, g := range groups {
		if g.HasPhysicalItems {
			shipping = append(shipping, g)
		}
	}

	// Digital-only cart: a single zero-cost digital delivery option.
	if len(shipping) == 0 {
		return Quote{
			Options: []Option{{Type: domain.DeliveryDigital, Courier: "Digital Delivery", PriceCents: 0, EstimatedDays: 0}},
			Source:  SourceLive,
		}, nil
	}

	quotes := make([]vendorQuote, len(shipping))
	var wg sync.WaitGroup
	for i, g := range shipping {
		wg.Add(1)
		go func(i int, g domain.VendorGroup) {
			defer wg.Done()
			quotes[i] = s.quoteVendor(ctx, g, dest)
		}(i, g)
	}
	wg.Wait()

	return s.aggregate(groups, shipping, quotes), nil
}

// quoteVendor fetches live rates for one vendor group, degrading to the
// fixed fallback on any error.
func (s *Service) quoteVendor(ctx context.Context, g domain.VendorGroup, dest domain.Address) vendorQuote {
	live, err := s.liveQuote(ctx, g, dest)
	if err != nil {
		s.logger.Printf("rates: vendor=%s falling back: %v", g.VendorID, err)
		return fallbackQuote(g.VendorID)
	}
	return live
}

func (s *Service) liveQuote(ctx context.Context, g domain.VendorGroup, dest domain.Address) (vendorQuote, error) {
	senderCode, err := s.carrier.ValidateAddress(ctx, g.Origin)
	if err != nil {
		return vendorQuote{}, err
	}
	receiverCode, err := s.carrier.ValidateAddress(ctx, dest)
	if err != nil {
		return vendorQuote{}, err
	}

	items := make([]carrier.RateItem, 0, len(g.Items))
	for _, it := range g.PhysicalItems() {
		items = append(items, carrier.RateItem{
			Name:        it.Name,
			Quantity:    it.Quantity,
			ValueCents:  it.UnitPriceCents * int64(it.Quantity),
			WeightGrams: it.WeightGrams * it.Quantity,
		})
	}

	resp, err := s.carrier.FetchRates(ctx, carrier.RateRequest{
		SenderCode:   senderCode,
		ReceiverCode: receiverCode,
		Items:        items,
		PickupDate:   s.now().Add(24 * time.Hour),
	})
	if err != nil {
		return vendorQuote{}, err
	}

	vq := vendorQuote{vendorID: g.VendorID, byType: make(map[domain.DeliveryType]carrier.Courier), live: true}
	for _, c := range resp.Couriers {
		t, ok := parseRateType(c.Service)
		if !ok {
			continue
		}
		best, seen := vq.byType[t]
		if !seen || c.AmountCents < best.AmountCents {
			vq.byType[t] = c
		}
	}
	return vq, nil
}

func fallbackQuote(vendorID string) vendorQuote {
	return vendorQuote{
		vendorID: vendorID,
		byType: map[domain.DeliveryType]carrier.Courier{
			domain.DeliveryStandard: {Name: fallbackCourierName, Service: "standard", AmountCents: fallbackStandardCents, EstimatedDays: fallbackStandardDays},
			domain.DeliveryExpress:  {Name: fallbackCourierName, Service: "express", AmountCents: fallbackExpressCents, EstimatedDays: fallbackExpressDays},
		},
	}
}

// aggregate merges per-vendor quotes: for each rate type offered by every
// shipping vendor, prices are summed and the estimated time is the slowest
// vendor's, because a multi-vendor order is not complete until every parcel
// arrives.
func (s *Service) aggregate(all, shipping []domain.VendorGroup, quotes []vendorQuote) Quote {
	liveCount := 0
	for _, q := range quotes {
		if q.live {
			liveCount++
		}
	}
	source := SourceMixed
	switch liveCount {
	case len(quotes):
		source = SourceLive
	case 0:
		source = SourceFallback
	}

	var options []Option
	for _, t := range []domain.DeliveryType{domain.DeliveryStandard, domain.DeliveryExpress, domain.DeliverySameDay} {
		opt, complete := sumType(t, quotes)
		if complete {
			options = append(options, opt)
		}
	}

	if pickupSupported(all) {
		options = append(options, Option{
			Type:       domain.DeliveryPickup,
			Courier:    "Store Pickup",
			PriceCents: 0,
		})
	}

	sort.Slice(options, func(i, j int) bool { return options[i].PriceCents < options[j].PriceCents })
	return Quote{Options: options, Source: source}
}

// sumType aggregates one rate type; offered only when every shipping vendor
// has a quote for it.
func sumType(t domain.DeliveryType, quotes []vendorQuote) (Option, bool) {
	opt := Option{Type: t, VendorCosts: make(map[string]int64, len(quotes))}
	for _, q := range quotes {
		c, ok := q.byType[t]
		if !ok {
			return Option{}, false
		}
		opt.PriceCents += c.AmountCents
		opt.VendorCosts[q.vendorID] = c.AmountCents
		if c.EstimatedDays > opt.EstimatedDays {
			opt.EstimatedDays = c.EstimatedDays
		}
		if opt.Courier == "" {
			opt.Courier = c.Name
		}
	}
	if len(quotes) > 1 {
		opt.Courier = MultipleCouriers
	}
	return opt, true
}

func pickupSupported(groups []domain.VendorGroup) bool {
	for _, g := range groups {
		if g.HasPhysicalItems && !g.SupportsPickup {
			return false
		}
	}
	return true
}

func parseRateType(service string) (domain.DeliveryType, bool) {
	switch service {
	case "standard":
		return domain.DeliveryStandard, true
	case "express":
		return domain.DeliveryExpress, true
	case "same_day":
		return domain.DeliverySameDay, true
	case "pickup":
		return domain.DeliveryPickup, true
	default:
		return "", false
	}
}
