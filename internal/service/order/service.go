// Package order owns the post-creation lifecycle of an order: vendor
// fulfillment updates and cancellation with restock, carrier cancellation
// and refund.
package order

import (
	"context"
	"fmt"
	"io"
	"log"

	"marketplace-backend/internal/carrier"
	"marketplace-backend/internal/domain"
)

type orderRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateFulfillment(ctx context.Context, number string, from, to domain.FulfillmentStatus) (bool, error)
	Cancel(ctx context.Context, number, reason string) (bool, error)
	MarkRefunded(ctx context.Context, number string, amount int64, reason string) (bool, error)
	CancelShipments(ctx context.Context, number string) error
}

type productRepo interface {
	IncrementStock(ctx context.Context, id string, qty int) error
}

type walletRepo interface {
	Credit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error)
}

type Service struct {
	orders   orderRepo
	products productRepo
	wallets  walletRepo
	carrier  carrier.Client
	logger   *log.Logger
}

func New(orders orderRepo, products productRepo, wallets walletRepo, c carrier.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, products: products, wallets: wallets, carrier: c, logger: logger}
}

func (s *Service) Get(ctx context.Context, number string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus applies a vendor-initiated fulfillment update. Transitions
// only move forward; the conditional repository update closes the race with
// a concurrent transition.
func (s *Service) UpdateStatus(ctx context.Context, number string, next domain.FulfillmentStatus) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if next == domain.FulfillmentCancelled {
		return nil, fmt.Errorf("%w: use cancellation, not a status update", domain.ErrInvalidTransition)
	}
	if !order.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}
	ok, err := s.orders.UpdateFulfillment(ctx, number, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %s moved concurrently", domain.ErrInvalidTransition, number)
	}
	return s.orders.GetByNumber(ctx, number)
}

// Cancel cancels an order that has not shipped yet. The conditional
// repository update admits exactly one canceller; that caller then restocks
// physical items when the order was paid, cancels any booked carrier
// shipments best-effort, and refunds the full total to the wallet exactly
// once. A failed carrier cancellation never blocks the refund.
func (s *Service) Cancel(ctx context.Context, number, reason string) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, fmt.Errorf("%w: cannot cancel order in %s", domain.ErrInvalidTransition, order.Status)
	}

	ok, err := s.orders.Cancel(ctx, number, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %s moved concurrently", domain.ErrInvalidTransition, number)
	}

	// Stock was only decremented once payment completed, so restocking an
	// unpaid order would inflate inventory.
	if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
		for _, it := range order.Items {
			if !it.Shippable() {
				continue
			}
			if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				s.logger.Printf("order: restock product=%s order=%s: %v", it.ProductID, number, err)
			}
		}
	}

	for _, sh := range order.Shipments {
		if !sh.Booked() {
			continue
		}
		if err := s.carrier.Cancel(ctx, sh.TrackingRef); err != nil {
			s.logger.Printf("order: carrier cancel shipment=%s order=%s: %v", sh.ID, number, err)
		}
	}
	if err := s.orders.CancelShipments(ctx, number); err != nil {
		s.logger.Printf("order: cancel shipments order=%s: %v", number, err)
	}

	if order.PaymentStatus == domain.PaymentCompleted {
		refunded, err := s.orders.MarkRefunded(ctx, number, order.TotalCents, reason)
		if err != nil {
			return nil, err
		}
		if refunded {
			if _, err := s.wallets.Credit(ctx, order.UserID, order.TotalCents, domain.PurposeOrderRefund, number, &number); err != nil {
				// The order is marked refunded but the wallet credit failed;
				// this needs operator attention, so surface it.
				s.logger.Printf("order: CRITICAL refund credit failed order=%s amount=%d: %v", number, order.TotalCents, err)
				return nil, fmt.Errorf("refund wallet credit for %s: %w", number, err)
			}
		}
	}

	return s.orders.GetByNumber(ctx, number)
}
