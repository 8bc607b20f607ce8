// Package checkout turns a validated cart into a priced, settled order. It
// owns the settlement strategies (gateway redirect, wallet debit, cash on
// delivery) and the exactly-once post-settlement side effects.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/payment"
	"marketplace-backend/internal/repository/outbox"
	"marketplace-backend/internal/service/rates"
)

type cartRepo interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementCouponUsage(ctx context.Context, code string) error
}

type vendorRepo interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Vendor, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	CompletePayment(ctx context.Context, number string, fulfillment domain.FulfillmentStatus) (bool, error)
	MarkPaymentFailed(ctx context.Context, number, reason string) error
	SetGatewayRef(ctx context.Context, number, ref string) error
	UpdateFulfillment(ctx context.Context, number string, from, to domain.FulfillmentStatus) (bool, error)
}

type walletRepo interface {
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	Debit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error)
}

type licenseRepo interface {
	CreateIfAbsent(ctx context.Context, l domain.License) (bool, error)
}

type outboxRepo interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}

type quoter interface {
	QuoteForGroups(ctx context.Context, groups []domain.VendorGroup, dest domain.Address) (rates.Quote, error)
}

// BookShipmentPayload is the outbox payload for a vendor booking task.
type BookShipmentPayload struct {
	OrderNumber string `json:"orderNumber"`
	ShipmentID  string `json:"shipmentId"`
}

// AwardPointsPayload is the outbox payload for the rewards task.
type AwardPointsPayload struct {
	OrderNumber string `json:"orderNumber"`
}

type Service struct {
	carts    cartRepo
	products productRepo
	vendors  vendorRepo
	orders   orderRepo
	wallets  walletRepo
	licenses licenseRepo
	outbox   outboxRepo
	rates    quoter
	gateway  payment.Gateway

	callbackURL string
	taxRateBps  int64
	logger      *log.Logger
	now         func() time.Time
}

type Deps struct {
	Carts    cartRepo
	Products productRepo
	Vendors  vendorRepo
	Orders   orderRepo
	Wallets  walletRepo
	Licenses licenseRepo
	Outbox   outboxRepo
	Rates    quoter
	Gateway  payment.Gateway
}

func New(deps Deps, callbackURL string, taxRateBps int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:       deps.Carts,
		products:    deps.Products,
		vendors:     deps.Vendors,
		orders:      deps.Orders,
		wallets:     deps.Wallets,
		licenses:    deps.Licenses,
		outbox:      deps.Outbox,
		rates:       deps.Rates,
		gateway:     deps.Gateway,
		callbackURL: callbackURL,
		taxRateBps:  taxRateBps,
		logger:      logger,
		now:         time.Now,
	}
}

type Input struct {
	UserID        string
	Email         string
	PaymentMethod domain.PaymentMethod
	DeliveryType  domain.DeliveryType
	Destination   domain.Address
}

// Result is the checkout outcome: either a settled/confirmed order, or a
// pending order plus the gateway redirect the customer must follow.
type Result struct {
	Order    *domain.Order             `json:"order"`
	Redirect *payment.InitializeResult `json:"redirect,omitempty"`
	// RateSource reports whether shipping was priced from live collaborator
	// data or fallback pricing.
	RateSource string `json:"rateSource"`
}

// Quote prices the delivery options for the user's active cart without
// creating an order.
func (s *Service) Quote(ctx context.Context, userID string, dest domain.Address) (rates.Quote, error) {
	_, items, _, err := s.loadCart(ctx, userID)
	if err != nil {
		return rates.Quote{}, err
	}
	groups, err := s.partitionWithVendors(ctx, items)
	if err != nil {
		return rates.Quote{}, err
	}
	return s.rates.QuoteForGroups(ctx, groups, dest)
}

// Checkout validates the cart, prices it, creates the order and runs the
// selected settlement strategy. Validation failures abort before the order
// row exists; settlement failures after creation leave a terminal failed
// order the customer can recreate.
func (s *Service) Checkout(ctx context.Context, in Input) (*Result, error) {
	cart, items, coupon, err := s.loadCart(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.PaymentMethod == domain.MethodCashOnDelivery {
		for _, it := range items {
			if !it.Shippable() {
				return nil, fmt.Errorf("%w: %s is %s", domain.ErrPaymentMethodNotAllowed, it.Name, it.Type)
			}
		}
	}

	groups, err := s.partitionWithVendors(ctx, items)
	if err != nil {
		return nil, err
	}

	quote, err := s.rates.QuoteForGroups(ctx, groups, in.Destination)
	if err != nil {
		return nil, err
	}

	order, err := s.buildOrder(in, cart, items, coupon, groups, quote)
	if err != nil {
		return nil, err
	}

	// Wallet balance is validated before any state is written; the actual
	// debit below re-checks atomically against concurrent spends.
	if in.PaymentMethod == domain.MethodWallet {
		w, err := s.wallets.Get(ctx, in.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if w == nil || w.BalanceCents < order.TotalCents {
			return nil, domain.ErrInsufficientBalance
		}
	}

	if err := s.orders.Create(ctx, *order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	// The cart is cleared only after the order is durable. A failed clear is
	// logged, not surfaced: the order already exists.
	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		s.logger.Printf("checkout: clear cart %s after order %s: %v", cart.ID, order.Number, err)
	}

	switch in.PaymentMethod {
	case domain.MethodWallet:
		return s.settleWithWallet(ctx, order, quote.Source)
	case domain.MethodGateway:
		return s.settleWithGateway(ctx, order, in.Email, quote.Source)
	case domain.MethodCashOnDelivery:
		return s.settleCashOnDelivery(ctx, order, quote.Source)
	default:
		return nil, fmt.Errorf("unsupported payment method %q", in.PaymentMethod)
	}
}

// loadCart fetches the active cart, resolves every product into an
// immutable order-item snapshot and validates products and stock. No state
// is mutated here.
func (s *Service) loadCart(ctx context.Context, userID string) (*domain.Cart, []domain.OrderItem, *domain.Coupon, error) {
	cart, err := s.carts.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrEmptyCart
		}
		return nil, nil, nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, nil, nil, domain.ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Quantity < 1 {
			return nil, nil, nil, fmt.Errorf("line %s: quantity must be at least 1", line.ID)
		}
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, nil, fmt.Errorf("%w: product %s", domain.ErrProductInactive, line.ProductID)
			}
			return nil, nil, nil, err
		}
		if !p.Active() {
			return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrProductInactive, p.Name)
		}
		if p.Type.Shippable() && p.Stock < line.Quantity {
			return nil, nil, nil, fmt.Errorf("%w: %s has %d left, %d requested", domain.ErrInsufficientStock, p.Name, p.Stock, line.Quantity)
		}
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			ProductID:      p.ID,
			Name:           p.Name,
			ImageURL:       p.ImageURL,
			Variant:        line.Variant,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			VendorID:       p.VendorID,
			Type:           p.Type,
			WeightGrams:    p.WeightGrams,
		})
	}

	var coupon *domain.Coupon
	if cart.CouponCode != nil && strings.TrimSpace(*cart.CouponCode) != "" {
		coupon, err = s.products.GetCoupon(ctx, *cart.CouponCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, nil, domain.ErrCouponInvalid
			}
			return nil, nil, nil, err
		}
		if !coupon.Usable() {
			return nil, nil, nil, domain.ErrCouponInvalid
		}
	}

	return cart, items, coupon, nil
}

func (s *Service) partitionWithVendors(ctx context.Context, items []domain.OrderItem) ([]domain.VendorGroup, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.VendorID] {
			seen[it.VendorID] = true
			ids = append(ids, it.VendorID)
		}
	}
	vendors, err := s.vendors.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := vendors[id]; !ok {
			s.logger.Printf("checkout: vendor %s has no profile, rates will fall back", id)
		}
	}
	return partition(items, vendors), nil
}

// buildOrder assembles the priced aggregate. Totals are recomputed from
// components; nothing monetary is trusted from the client.
func (s *Service) buildOrder(in Input, cart *domain.Cart, items []domain.OrderItem, coupon *domain.Coupon, groups []domain.VendorGroup, quote rates.Quote) (*domain.Order, error) {
	subtotal := cart.SubtotalCents()

	var discount int64
	if coupon != nil {
		discount = coupon.DiscountCents
		if discount > subtotal {
			return nil, domain.ErrCouponInvalid
		}
	}

	deliveryType := in.DeliveryType
	digitalOnly := true
	for _, it := range items {
		if it.Shippable() {
			digitalOnly = false
			break
		}
	}
	if digitalOnly {
		deliveryType = domain.DeliveryDigital
	}

	option, ok := quote.Option(deliveryType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDeliveryUnavailable, deliveryType)
	}

	order := &domain.Order{
		Number:        s.newOrderNumber(),
		UserID:        in.UserID,
		Items:         items,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: option.PriceCents,
		DeliveryType:  deliveryType,
		Destination:   in.Destination,
		Status:        domain.FulfillmentPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		CouponCode:    cart.CouponCode,
		CreatedAt:     s.now().UTC(),
		UpdatedAt:     s.now().UTC(),
	}
	order.TaxCents = (order.SubtotalCents - order.DiscountCents) * s.taxRateBps / 10000
	order.TotalCents = order.ComputeTotal()

	for _, g := range groups {
		if !g.HasPhysicalItems {
			continue
		}
		itemIDs := make([]string, 0, len(g.Items))
		for _, it := range g.PhysicalItems() {
			itemIDs = append(itemIDs, it.ID)
		}
		order.Shipments = append(order.Shipments, domain.VendorShipment{
			ID:          uuid.NewString(),
			OrderNumber: order.Number,
			VendorID:    g.VendorID,
			VendorName:  g.VendorName,
			Origin:      g.Origin,
			ItemIDs:     itemIDs,
			CostCents:   option.VendorCosts[g.VendorID],
			Status:      domain.ShipmentPending,
		})
	}

	return order, nil
}

func (s *Service) settleWithWallet(ctx context.Context, order *domain.Order, rateSource string) (*Result, error) {
	_, err := s.wallets.Debit(ctx, order.UserID, order.TotalCents, domain.PurposeOrderPayment, order.Number, &order.Number)
	if err != nil {
		if markErr := s.orders.MarkPaymentFailed(ctx, order.Number, "wallet debit failed"); markErr != nil {
			s.logger.Printf("checkout: mark %s failed: %v", order.Number, markErr)
		}
		return nil, err
	}
	if err := s.completeSettlement(ctx, order); err != nil {
		return nil, err
	}
	settled, err := s.orders.GetByNumber(ctx, order.Number)
	if err != nil {
		return nil, err
	}
	return &Result{Order: settled, RateSource: rateSource}, nil
}

func (s *Service) settleWithGateway(ctx context.Context, order *domain.Order, email, rateSource string) (*Result, error) {
	init, err := s.gateway.Initialize(ctx, email, order.TotalCents, order.Number, s.callbackURL, map[string]string{
		"userId": order.UserID,
	})
	if err != nil {
		if markErr := s.orders.MarkPaymentFailed(ctx, order.Number, "gateway initialization failed"); markErr != nil {
			s.logger.Printf("checkout: mark %s failed: %v", order.Number, markErr)
		}
		return nil, fmt.Errorf("initialize gateway payment: %w", err)
	}
	if err := s.orders.SetGatewayRef(ctx, order.Number, init.AccessCode); err != nil {
		s.logger.Printf("checkout: store gateway ref for %s: %v", order.Number, err)
	}
	created, err := s.orders.GetByNumber(ctx, order.Number)
	if err != nil {
		return nil, err
	}
	return &Result{Order: created, Redirect: &init, RateSource: rateSource}, nil
}

func (s *Service) settleCashOnDelivery(ctx context.Context, order *domain.Order, rateSource string) (*Result, error) {
	// COD orders confirm immediately; payment settles on collection, which
	// is out of band. Side effects wait for the payment transition.
	if _, err := s.orders.UpdateFulfillment(ctx, order.Number, domain.FulfillmentPending, domain.FulfillmentConfirmed); err != nil {
		return nil, err
	}
	confirmed, err := s.orders.GetByNumber(ctx, order.Number)
	if err != nil {
		return nil, err
	}
	return &Result{Order: confirmed, RateSource: rateSource}, nil
}

// VerifyPayment resolves a gateway-redirect order after the customer
// returns from the gateway. Verifying an already settled order is a no-op
// returning the existing order, so gateway retries and webhook replays are
// harmless.
func (s *Service) VerifyPayment(ctx context.Context, reference string) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
		return order, nil
	}
	if order.PaymentStatus == domain.PaymentFailed {
		return order, nil
	}

	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}
	if !res.Success {
		if err := s.orders.MarkPaymentFailed(ctx, reference, "gateway verification failed"); err != nil {
			return nil, err
		}
		return s.orders.GetByNumber(ctx, reference)
	}
	if res.AmountCents != order.TotalCents {
		s.logger.Printf("checkout: verify %s amount mismatch gateway=%d order=%d", reference, res.AmountCents, order.TotalCents)
	}

	if err := s.completeSettlement(ctx, order); err != nil {
		return nil, err
	}
	return s.orders.GetByNumber(ctx, reference)
}

// completeSettlement performs the payment-completed transition and, only
// when this call actually won the transition, fires the post-settlement
// side effects. Replays observe transitioned=false and do nothing, which is
// what makes stock decrements, coupon usage, licenses and reward points
// exactly-once per order.
func (s *Service) completeSettlement(ctx context.Context, order *domain.Order) error {
	fulfillment := domain.FulfillmentConfirmed
	if order.IsDigital() {
		fulfillment = domain.FulfillmentDelivered
	}
	transitioned, err := s.orders.CompletePayment(ctx, order.Number, fulfillment)
	if err != nil {
		return err
	}
	if !transitioned {
		return nil
	}

	for _, it := range order.Items {
		if !it.Shippable() {
			continue
		}
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			// Stock was validated at checkout; a shortfall here means a
			// concurrent sale raced us. The payment stands; we log and move
			// on rather than failing the settlement.
			s.logger.Printf("checkout: decrement stock product=%s order=%s: %v", it.ProductID, order.Number, err)
		}
	}

	if order.CouponCode != nil {
		if err := s.products.IncrementCouponUsage(ctx, *order.CouponCode); err != nil {
			s.logger.Printf("checkout: increment coupon %s order=%s: %v", *order.CouponCode, order.Number, err)
		}
	}

	for _, it := range order.Items {
		if it.Shippable() {
			continue
		}
		if _, err := s.licenses.CreateIfAbsent(ctx, domain.License{
			Key:         uuid.NewString(),
			UserID:      order.UserID,
			OrderNumber: order.Number,
			OrderItemID: it.ID,
			Active:      true,
			CreatedAt:   s.now().UTC(),
		}); err != nil {
			s.logger.Printf("checkout: create license order=%s item=%s: %v", order.Number, it.ID, err)
		}
	}

	if err := s.outbox.Enqueue(ctx, outbox.TaskAwardPoints, AwardPointsPayload{OrderNumber: order.Number}); err != nil {
		s.logger.Printf("checkout: enqueue rewards for %s: %v", order.Number, err)
	}
	for _, sh := range order.Shipments {
		if err := s.outbox.Enqueue(ctx, outbox.TaskBookShipment, BookShipmentPayload{OrderNumber: order.Number, ShipmentID: sh.ID}); err != nil {
			s.logger.Printf("checkout: enqueue booking for %s/%s: %v", order.Number, sh.ID, err)
		}
	}

	s.logger.Printf("checkout: settled order=%s fulfillment=%s total=%d", order.Number, fulfillment, order.TotalCents)
	return nil
}

// newOrderNumber builds a unique human-readable reference, also used as the
// gateway idempotency key.
func (s *Service) newOrderNumber() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "MP-" + s.now().UTC().Format("20060102-150405") + "-" + uuid.NewString()[:8]
	}
	return "MP-" + s.now().UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(suffix))
}
