// Package shipment books couriers for the physical vendor portions of a
// paid order. Each vendor's booking is independent: one failure leaves that
// shipment pending without touching siblings or the recorded payment.
package shipment

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/domain"
)

type orderRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	SetShipmentBooked(ctx context.Context, shipmentID, courier, trackingRef string) (bool, error)
}

type Service struct {
	orders  orderRepo
	carrier carrier.Client
	logger  *log.Logger
	now     func() time.Time
}

func New(orders orderRepo, c carrier.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, carrier: c, logger: logger, now: time.Now}
}

// Book books a courier for one vendor shipment. Re-invocation for a
// shipment that already has a tracking reference is a no-op.
func (s *Service) Book(ctx context.Context, orderNumber, shipmentID string) error {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	sh, ok := order.ShipmentByID(shipmentID)
	if !ok {
		return fmt.Errorf("shipment %s on order %s: %w", shipmentID, orderNumber, domain.ErrNotFound)
	}
	if sh.Booked() || sh.Status != domain.ShipmentPending {
		return nil
	}
	if order.PaymentStatus != domain.PaymentCompleted {
		return fmt.Errorf("order %s payment is %s, not completed", orderNumber, order.PaymentStatus)
	}

	senderCode, err := s.carrier.ValidateAddress(ctx, sh.Origin)
	if err != nil {
		return fmt.Errorf("validate origin for vendor %s: %w", sh.VendorID, err)
	}
	receiverCode, err := s.carrier.ValidateAddress(ctx, order.Destination)
	if err != nil {
		return fmt.Errorf("validate destination: %w", err)
	}

	items := shipmentItems(order, sh)
	resp, err := s.carrier.FetchRates(ctx, carrier.RateRequest{
		SenderCode:   senderCode,
		ReceiverCode: receiverCode,
		Items:        items,
		PickupDate:   s.now().Add(24 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("fetch rates for vendor %s: %w", sh.VendorID, err)
	}

	if len(resp.Couriers) == 0 {
		return fmt.Errorf("no couriers quoted for vendor %s on order %s: %w", sh.VendorID, orderNumber, domain.ErrDeliveryUnavailable)
	}
	courier := selectCourier(resp.Couriers, order.DeliveryType)
	trackingRef, err := s.carrier.Book(ctx, resp.RequestToken, courier.ID)
	if err != nil {
		return fmt.Errorf("book courier %s for vendor %s: %w", courier.Name, sh.VendorID, err)
	}

	booked, err := s.orders.SetShipmentBooked(ctx, shipmentID, courier.Name, trackingRef)
	if err != nil {
		return err
	}
	if !booked {
		// A concurrent booking won; ours stands as a duplicate at the
		// carrier and should be cancelled best-effort.
		s.logger.Printf("shipment: duplicate booking for %s/%s, cancelling %s", orderNumber, shipmentID, trackingRef)
		if err := s.carrier.Cancel(ctx, trackingRef); err != nil {
			s.logger.Printf("shipment: cancel duplicate %s: %v", trackingRef, err)
		}
		return nil
	}
	s.logger.Printf("shipment: booked order=%s vendor=%s courier=%s tracking=%s", orderNumber, sh.VendorID, courier.Name, trackingRef)
	return nil
}

// Track returns the carrier status for a booked shipment.
func (s *Service) Track(ctx context.Context, orderNumber, shipmentID string) (string, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	sh, ok := order.ShipmentByID(shipmentID)
	if !ok {
		return "", domain.ErrNotFound
	}
	if !sh.Booked() {
		return string(domain.ShipmentPending), nil
	}
	return s.carrier.Track(ctx, sh.TrackingRef)
}

func shipmentItems(order *domain.Order, sh domain.VendorShipment) []carrier.RateItem {
	member := make(map[string]bool, len(sh.ItemIDs))
	for _, id := range sh.ItemIDs {
		member[id] = true
	}
	var items []carrier.RateItem
	for _, it := range order.Items {
		if !member[it.ID] {
			continue
		}
		items = append(items, carrier.RateItem{
			Name:        it.Name,
			Quantity:    it.Quantity,
			ValueCents:  it.UnitPriceCents * int64(it.Quantity),
			WeightGrams: it.WeightGrams * it.Quantity,
		})
	}
	return items
}

// selectCourier picks fastest-first for express and same-day deliveries,
// cheapest-first otherwise. Callers guarantee couriers is non-empty.
func selectCourier(couriers []carrier.Courier, deliveryType domain.DeliveryType) carrier.Courier {
	best := couriers[0]
	fastest := deliveryType == domain.DeliveryExpress || deliveryType == domain.DeliverySameDay
	for _, c := range couriers[1:] {
		if fastest {
			if c.EstimatedDays < best.EstimatedDays {
				best = c
			}
		} else if c.AmountCents < best.AmountCents {
			best = c
		}
	}
	return best
}
