package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/payment"
	"marketplace-backend/internal/service/rates"
)

const (
	userID    = "user-1"
	vendorA   = "vendor-a"
	vendorB   = "vendor-b"
	physicalP = "prod-physical"
	digitalP  = "prod-digital"
)

type stubCarts struct {
	cart    *domain.Cart
	err     error
	cleared int
}

func (s *stubCarts) GetActiveByUser(_ context.Context, _ string) (*domain.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cart == nil {
		return nil, domain.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(_ context.Context, _ string) error {
	s.cleared++
	return nil
}

type stubProducts struct {
	products   map[string]domain.Product
	coupon     *domain.Coupon
	decrements map[string]int
	couponUses int
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *stubProducts) DecrementStock(_ context.Context, id string, qty int) error {
	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return domain.ErrInsufficientStock
	}
	p.Stock -= qty
	s.products[id] = p
	if s.decrements == nil {
		s.decrements = make(map[string]int)
	}
	s.decrements[id] += qty
	return nil
}

func (s *stubProducts) GetCoupon(_ context.Context, code string) (*domain.Coupon, error) {
	if s.coupon == nil || s.coupon.Code != code {
		return nil, domain.ErrNotFound
	}
	cp := *s.coupon
	return &cp, nil
}

func (s *stubProducts) IncrementCouponUsage(_ context.Context, _ string) error {
	s.couponUses++
	return nil
}

type stubVendors struct {
	vendors map[string]domain.Vendor
}

func (s *stubVendors) GetByIDs(_ context.Context, ids []string) (map[string]domain.Vendor, error) {
	out := make(map[string]domain.Vendor, len(ids))
	for _, id := range ids {
		if v, ok := s.vendors[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// fakeOrders mimics the conditional-update semantics of the postgres
// repository so settlement races can be exercised in-process.
type fakeOrders struct {
	orders map[string]*domain.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrders) Create(_ context.Context, o domain.Order) error {
	cp := o
	f.orders[o.Number] = &cp
	return nil
}

func (f *fakeOrders) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	o, ok := f.orders[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) CompletePayment(_ context.Context, number string, fulfillment domain.FulfillmentStatus) (bool, error) {
	o, ok := f.orders[number]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = domain.PaymentCompleted
	o.Status = fulfillment
	return true, nil
}

func (f *fakeOrders) MarkPaymentFailed(_ context.Context, number, reason string) error {
	o, ok := f.orders[number]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentStatus = domain.PaymentFailed
	o.Status = domain.FulfillmentCancelled
	o.CancelReason = &reason
	return nil
}

func (f *fakeOrders) SetGatewayRef(_ context.Context, number, ref string) error {
	o, ok := f.orders[number]
	if !ok {
		return domain.ErrNotFound
	}
	o.GatewayRef = &ref
	return nil
}

func (f *fakeOrders) UpdateFulfillment(_ context.Context, number string, from, to domain.FulfillmentStatus) (bool, error) {
	o, ok := f.orders[number]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrders) only(t *testing.T) *domain.Order {
	t.Helper()
	if len(f.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(f.orders))
	}
	for _, o := range f.orders {
		return o
	}
	return nil
}

type stubWallet struct {
	w      *domain.Wallet
	debits int
}

func (s *stubWallet) Get(_ context.Context, _ string) (*domain.Wallet, error) {
	if s.w == nil {
		return nil, domain.ErrNotFound
	}
	return s.w, nil
}

func (s *stubWallet) Debit(_ context.Context, _ string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error) {
	if s.w == nil {
		return nil, domain.ErrInsufficientBalance
	}
	txn, err := s.w.Debit(amount, purpose, reference, relatedOrder)
	if err != nil {
		return nil, err
	}
	s.debits++
	return &txn, nil
}

type stubLicenses struct {
	created []domain.License
}

func (s *stubLicenses) CreateIfAbsent(_ context.Context, l domain.License) (bool, error) {
	for _, existing := range s.created {
		if existing.OrderNumber == l.OrderNumber && existing.OrderItemID == l.OrderItemID {
			return false, nil
		}
	}
	s.created = append(s.created, l)
	return true, nil
}

type enqueued struct {
	taskType string
	payload  interface{}
}

type stubOutbox struct {
	tasks []enqueued
}

func (s *stubOutbox) Enqueue(_ context.Context, taskType string, payload interface{}) error {
	s.tasks = append(s.tasks, enqueued{taskType: taskType, payload: payload})
	return nil
}

func (s *stubOutbox) count(taskType string) int {
	n := 0
	for _, t := range s.tasks {
		if t.taskType == taskType {
			n++
		}
	}
	return n
}

type stubQuoter struct {
	quote rates.Quote
	err   error
}

func (s *stubQuoter) QuoteForGroups(_ context.Context, _ []domain.VendorGroup, _ domain.Address) (rates.Quote, error) {
	return s.quote, s.err
}

type stubGateway struct {
	initResult  payment.InitializeResult
	initErr     error
	initCalls   int
	verifyRes   payment.VerifyResult
	verifyErr   error
	verifyCalls int
}

func (s *stubGateway) Initialize(_ context.Context, _ string, _ int64, _, _ string, _ map[string]string) (payment.InitializeResult, error) {
	s.initCalls++
	return s.initResult, s.initErr
}

func (s *stubGateway) Verify(_ context.Context, _ string) (payment.VerifyResult, error) {
	s.verifyCalls++
	return s.verifyRes, s.verifyErr
}

// fixture wires the service against in-memory collaborators: a mixed cart
// (one physical item from vendor A, one digital item from vendor B), a
// funded wallet and a standard-rate quote.
type fixture struct {
	carts    *stubCarts
	products *stubProducts
	vendors  *stubVendors
	orders   *fakeOrders
	wallet   *stubWallet
	licenses *stubLicenses
	outbox   *stubOutbox
	quoter   *stubQuoter
	gateway  *stubGateway
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		carts: &stubCarts{cart: &domain.Cart{
			ID:     "cart-1",
			UserID: userID,
			Lines: []domain.CartLine{
				{ID: "line-1", ProductID: physicalP, Quantity: 1, UnitPriceCents: 10000},
				{ID: "line-2", ProductID: digitalP, Quantity: 1, UnitPriceCents: 5000},
			},
		}},
		products: &stubProducts{products: map[string]domain.Product{
			physicalP: {ID: physicalP, VendorID: vendorA, Name: "Headphones", Type: domain.ProductPhysical, Stock: 5, WeightGrams: 300, Status: "active"},
			digitalP:  {ID: digitalP, VendorID: vendorB, Name: "Photo Suite", Type: domain.ProductDigital, Stock: 9999, Status: "active"},
		}},
		vendors: &stubVendors{vendors: map[string]domain.Vendor{
			vendorA: {ID: vendorA, Name: "Gadget Corner", Origin: domain.Address{Street: "12 Harbor Rd", City: "Lagos", Country: "NG"}},
			vendorB: {ID: vendorB, Name: "Bitwise Labs"},
		}},
		orders:   newFakeOrders(),
		wallet:   &stubWallet{w: &domain.Wallet{UserID: userID, BalanceCents: 20000, TotalEarnedCents: 20000}},
		licenses: &stubLicenses{},
		outbox:   &stubOutbox{},
		quoter: &stubQuoter{quote: rates.Quote{
			Source: rates.SourceLive,
			Options: []rates.Option{
				{Type: domain.DeliveryStandard, Courier: "FastShip", PriceCents: 2000, EstimatedDays: 4, VendorCosts: map[string]int64{vendorA: 2000}},
			},
		}},
		gateway: &stubGateway{initResult: payment.InitializeResult{RedirectURL: "https://gw/redirect", AccessCode: "AC-1"}},
	}
	f.svc = New(Deps{
		Carts:    f.carts,
		Products: f.products,
		Vendors:  f.vendors,
		Orders:   f.orders,
		Wallets:  f.wallet,
		Licenses: f.licenses,
		Outbox:   f.outbox,
		Rates:    f.quoter,
		Gateway:  f.gateway,
	}, "http://localhost/verify", 0, log.New(io.Discard, "", 0))
	return f
}

func walletInput() Input {
	return Input{
		UserID:        userID,
		Email:         "demo@example.com",
		PaymentMethod: domain.MethodWallet,
		DeliveryType:  domain.DeliveryStandard,
		Destination:   domain.Address{Street: "1 Main St", City: "Lagos", Country: "NG"},
	}
}

func TestCheckoutWalletSettlesMixedCart(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Checkout(context.Background(), walletInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	order := res.Order
	if order.PaymentStatus != domain.PaymentCompleted {
		t.Fatalf("payment status = %s, want completed", order.PaymentStatus)
	}
	if order.Status != domain.FulfillmentConfirmed {
		t.Fatalf("fulfillment = %s, want confirmed (order has a physical item)", order.Status)
	}
	if order.TotalCents != 17000 {
		t.Fatalf("total = %d, want 17000 (15000 subtotal + 2000 shipping)", order.TotalCents)
	}
	if f.wallet.w.BalanceCents != 3000 {
		t.Fatalf("wallet balance = %d, want 3000", f.wallet.w.BalanceCents)
	}
	if got := f.products.decrements[physicalP]; got != 1 {
		t.Fatalf("physical stock decrement = %d, want 1", got)
	}
	if got := f.products.decrements[digitalP]; got != 0 {
		t.Fatalf("digital stock decrement = %d, want 0", got)
	}
	if len(f.licenses.created) != 1 {
		t.Fatalf("licenses created = %d, want 1 (digital item only)", len(f.licenses.created))
	}
	if len(order.Shipments) != 1 || order.Shipments[0].VendorID != vendorA {
		t.Fatalf("expected one shipment for vendor A, got %+v", order.Shipments)
	}
	if order.Shipments[0].CostCents != 2000 {
		t.Fatalf("shipment cost = %d, want 2000", order.Shipments[0].CostCents)
	}
	if got := f.outbox.count("rewards.award"); got != 1 {
		t.Fatalf("rewards tasks = %d, want 1", got)
	}
	if got := f.outbox.count("shipment.book"); got != 1 {
		t.Fatalf("booking tasks = %d, want 1", got)
	}
	if f.carts.cleared != 1 {
		t.Fatalf("cart cleared %d times, want 1", f.carts.cleared)
	}
	if res.RateSource != rates.SourceLive {
		t.Fatalf("rate source = %s, want live", res.RateSource)
	}
}

func TestCheckoutWalletInsufficientBalance(t *testing.T) {
	f := newFixture()
	f.wallet.w.BalanceCents = 1000

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if len(f.orders.orders) != 0 {
		t.Fatalf("no order should exist after a failed balance pre-check, got %d", len(f.orders.orders))
	}
	if f.carts.cleared != 0 {
		t.Fatalf("cart must survive a rejected checkout")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()
	f.carts.cart = nil

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFixture()
	p := f.products.products[physicalP]
	p.Stock = 0
	f.products.products[physicalP] = p

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if len(f.orders.orders) != 0 {
		t.Fatalf("no order should exist after stock validation failure")
	}
}

func TestCheckoutCashOnDeliveryRejectsDigitalItems(t *testing.T) {
	f := newFixture()
	in := walletInput()
	in.PaymentMethod = domain.MethodCashOnDelivery

	_, err := f.svc.Checkout(context.Background(), in)
	if !errors.Is(err, domain.ErrPaymentMethodNotAllowed) {
		t.Fatalf("err = %v, want ErrPaymentMethodNotAllowed", err)
	}
}

func TestCheckoutCashOnDeliveryConfirmsWithoutSettlement(t *testing.T) {
	f := newFixture()
	f.carts.cart.Lines = f.carts.cart.Lines[:1] // physical item only
	in := walletInput()
	in.PaymentMethod = domain.MethodCashOnDelivery

	res, err := f.svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Order.Status != domain.FulfillmentConfirmed {
		t.Fatalf("status = %s, want confirmed", res.Order.Status)
	}
	if res.Order.PaymentStatus != domain.PaymentPending {
		t.Fatalf("payment = %s, want pending until collection", res.Order.PaymentStatus)
	}
	if len(f.products.decrements) != 0 {
		t.Fatalf("stock must not move before payment, got %v", f.products.decrements)
	}
	if len(f.outbox.tasks) != 0 {
		t.Fatalf("no side-effect tasks before payment, got %d", len(f.outbox.tasks))
	}
}

func TestCheckoutDigitalOnlyDeliversImmediately(t *testing.T) {
	f := newFixture()
	f.carts.cart.Lines = f.carts.cart.Lines[1:] // digital item only
	f.quoter.quote = rates.Quote{
		Source:  rates.SourceLive,
		Options: []rates.Option{{Type: domain.DeliveryDigital, Courier: "Digital Delivery", PriceCents: 0}},
	}
	in := walletInput()
	in.DeliveryType = domain.DeliveryStandard // ignored for digital-only carts

	res, err := f.svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Order.DeliveryType != domain.DeliveryDigital {
		t.Fatalf("delivery type = %s, want digital", res.Order.DeliveryType)
	}
	if res.Order.Status != domain.FulfillmentDelivered {
		t.Fatalf("status = %s, want delivered on payment", res.Order.Status)
	}
	if res.Order.ShippingCents != 0 {
		t.Fatalf("shipping = %d, want 0", res.Order.ShippingCents)
	}
	if len(res.Order.Shipments) != 0 {
		t.Fatalf("digital-only order must have no shipments, got %d", len(res.Order.Shipments))
	}
	if len(f.licenses.created) != 1 {
		t.Fatalf("licenses = %d, want 1", len(f.licenses.created))
	}
	if got := f.outbox.count("shipment.book"); got != 0 {
		t.Fatalf("booking tasks = %d, want 0", got)
	}
}

func TestCheckoutCouponApplied(t *testing.T) {
	f := newFixture()
	code := "WELCOME10"
	f.carts.cart.CouponCode = &code
	f.products.coupon = &domain.Coupon{Code: code, DiscountCents: 1000, Active: true}

	res, err := f.svc.Checkout(context.Background(), walletInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Order.DiscountCents != 1000 {
		t.Fatalf("discount = %d, want 1000", res.Order.DiscountCents)
	}
	if res.Order.TotalCents != 16000 {
		t.Fatalf("total = %d, want 16000 (15000 - 1000 + 2000)", res.Order.TotalCents)
	}
	if f.products.couponUses != 1 {
		t.Fatalf("coupon usage incremented %d times, want 1", f.products.couponUses)
	}
}

func TestCheckoutCouponExceedingSubtotalRejected(t *testing.T) {
	f := newFixture()
	code := "TOOBIG"
	f.carts.cart.CouponCode = &code
	f.products.coupon = &domain.Coupon{Code: code, DiscountCents: 99999, Active: true}

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrCouponInvalid) {
		t.Fatalf("err = %v, want ErrCouponInvalid", err)
	}
}

func TestCheckoutExhaustedCouponRejected(t *testing.T) {
	f := newFixture()
	code := "USEDUP"
	f.carts.cart.CouponCode = &code
	f.products.coupon = &domain.Coupon{Code: code, DiscountCents: 500, Active: true, UsageCount: 3, UsageLimit: 3}

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrCouponInvalid) {
		t.Fatalf("err = %v, want ErrCouponInvalid", err)
	}
}

func TestCheckoutTaxApplied(t *testing.T) {
	f := newFixture()
	f.svc.taxRateBps = 750 // 7.5%

	res, err := f.svc.Checkout(context.Background(), walletInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Order.TaxCents != 1125 {
		t.Fatalf("tax = %d, want 1125 (7.5%% of 15000)", res.Order.TaxCents)
	}
	if res.Order.TotalCents != res.Order.ComputeTotal() {
		t.Fatalf("stored total %d does not match computed %d", res.Order.TotalCents, res.Order.ComputeTotal())
	}
}

func TestCheckoutGatewayReturnsRedirect(t *testing.T) {
	f := newFixture()
	in := walletInput()
	in.PaymentMethod = domain.MethodGateway

	res, err := f.svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Redirect == nil || res.Redirect.RedirectURL != "https://gw/redirect" {
		t.Fatalf("redirect = %+v, want gateway redirect", res.Redirect)
	}
	if res.Order.PaymentStatus != domain.PaymentPending {
		t.Fatalf("payment = %s, want pending until verification", res.Order.PaymentStatus)
	}
	if res.Order.GatewayRef == nil || *res.Order.GatewayRef != "AC-1" {
		t.Fatalf("gateway ref = %v, want AC-1", res.Order.GatewayRef)
	}
	if f.wallet.debits != 0 {
		t.Fatalf("gateway checkout must not touch the wallet")
	}
}

func TestCheckoutGatewayInitFailureMarksOrderFailed(t *testing.T) {
	f := newFixture()
	f.gateway.initErr = errors.New("gateway down")
	in := walletInput()
	in.PaymentMethod = domain.MethodGateway

	_, err := f.svc.Checkout(context.Background(), in)
	if err == nil {
		t.Fatal("expected error when gateway initialization fails")
	}
	order := f.orders.only(t)
	if order.PaymentStatus != domain.PaymentFailed {
		t.Fatalf("payment = %s, want failed", order.PaymentStatus)
	}
	if order.Status != domain.FulfillmentCancelled {
		t.Fatalf("status = %s, want cancelled", order.Status)
	}
}

func TestCheckoutWalletDebitRaceMarksOrderFailed(t *testing.T) {
	f := newFixture()
	// Pre-check passes, then a concurrent spend drains the wallet before
	// the debit lands.
	healthy := &stubWallet{w: &domain.Wallet{UserID: userID, BalanceCents: 20000}}
	f.svc.wallets = raceWallet{pre: healthy, debitErr: domain.ErrInsufficientBalance}

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	order := f.orders.only(t)
	if order.PaymentStatus != domain.PaymentFailed {
		t.Fatalf("payment = %s, want failed after debit race", order.PaymentStatus)
	}
}

// raceWallet reports a healthy balance on Get but fails the debit, standing
// in for a concurrent spend between pre-check and settlement.
type raceWallet struct {
	pre      *stubWallet
	debitErr error
}

func (r raceWallet) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.pre.Get(ctx, userID)
}

func (r raceWallet) Debit(_ context.Context, _ string, _ int64, _, _ string, _ *string) (*domain.WalletTransaction, error) {
	return nil, r.debitErr
}

func TestVerifyPaymentSettlesOnce(t *testing.T) {
	f := newFixture()
	in := walletInput()
	in.PaymentMethod = domain.MethodGateway
	res, err := f.svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	number := res.Order.Number
	f.gateway.verifyRes = payment.VerifyResult{Success: true, AmountCents: res.Order.TotalCents}

	first, err := f.svc.VerifyPayment(context.Background(), number)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if first.PaymentStatus != domain.PaymentCompleted {
		t.Fatalf("payment = %s, want completed", first.PaymentStatus)
	}

	second, err := f.svc.VerifyPayment(context.Background(), number)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if second.PaymentStatus != domain.PaymentCompleted {
		t.Fatalf("second verify payment = %s, want completed", second.PaymentStatus)
	}
	if f.gateway.verifyCalls != 1 {
		t.Fatalf("gateway verify called %d times, want 1 (settled orders short-circuit)", f.gateway.verifyCalls)
	}
	if got := f.products.decrements[physicalP]; got != 1 {
		t.Fatalf("stock decremented %d, want exactly 1 across replays", got)
	}
	if got := f.outbox.count("rewards.award"); got != 1 {
		t.Fatalf("rewards tasks = %d, want exactly 1 across replays", got)
	}
	if len(f.licenses.created) != 1 {
		t.Fatalf("licenses = %d, want exactly 1 across replays", len(f.licenses.created))
	}
}

func TestVerifyPaymentFailureMarksOrderFailed(t *testing.T) {
	f := newFixture()
	in := walletInput()
	in.PaymentMethod = domain.MethodGateway
	res, err := f.svc.Checkout(context.Background(), in)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	f.gateway.verifyRes = payment.VerifyResult{Success: false}

	order, err := f.svc.VerifyPayment(context.Background(), res.Order.Number)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if order.PaymentStatus != domain.PaymentFailed {
		t.Fatalf("payment = %s, want failed", order.PaymentStatus)
	}
	if len(f.products.decrements) != 0 {
		t.Fatalf("stock must not move on failed verification")
	}
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	f := newFixture()
	_, err := f.svc.VerifyPayment(context.Background(), "MP-NOPE")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckoutDeliveryTypeUnavailable(t *testing.T) {
	f := newFixture()
	in := walletInput()
	in.DeliveryType = domain.DeliveryPickup // quote only offers standard

	_, err := f.svc.Checkout(context.Background(), in)
	if !errors.Is(err, domain.ErrDeliveryUnavailable) {
		t.Fatalf("err = %v, want ErrDeliveryUnavailable", err)
	}
}

func TestCheckoutInactiveProduct(t *testing.T) {
	f := newFixture()
	p := f.products.products[physicalP]
	p.Status = "archived"
	f.products.products[physicalP] = p

	_, err := f.svc.Checkout(context.Background(), walletInput())
	if !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("err = %v, want ErrProductInactive", err)
	}
}

func TestQuoteReturnsOptionsWithoutCreatingOrder(t *testing.T) {
	f := newFixture()

	q, err := f.svc.Quote(context.Background(), userID, domain.Address{Street: "1 Main St", City: "Lagos", Country: "NG"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(q.Options) != 1 || q.Options[0].Type != domain.DeliveryStandard {
		t.Fatalf("options = %+v, want the standard option", q.Options)
	}
	if len(f.orders.orders) != 0 {
		t.Fatalf("quote must not create orders")
	}
	if f.carts.cleared != 0 {
		t.Fatalf("quote must not clear the cart")
	}
}
