package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"market-api/internal/domain"
	"market-api/internal/paygate"
	orderrepo "market-api/internal/repository/order"
	"github.com/shopspring/decimal"
)

type stubCartRepo struct {
	items      []domain.CartItem
	listErr    error
	deletedIDs []string
	deleteErr  error
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.items, s.listErr
}

func (s *stubCartRepo) DeleteByIDs(ctx context.Context, userID string, ids []string) error {
	s.deletedIDs = append(s.deletedIDs, ids...)
	return s.deleteErr
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubOrderRepo struct {
	created     *orderrepo.CreateOrderInput
	createErr   error
	orders      map[string]*domain.Order
	intentOrder string
	intentID    string
	statusOrder string
	statusValue domain.OrderStatus
	statusTime  *time.Time
	statusCalls int
	statusErr   error
	fakeOrder   string
	fakePayment string
}

func (s *stubOrderRepo) CreateWithItems(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &in
	return &domain.Order{ID: "ord-1", UserID: in.UserID, Total: in.Total, Status: domain.OrderPending, PaymentCurrency: in.Currency}, nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) GetOwned(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListAdmin(ctx context.Context, in orderrepo.ListAdminInput) ([]domain.Order, int, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) ItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return nil, nil
}

func (s *stubOrderRepo) SetPaymentIntent(ctx context.Context, orderID, paymentID, paymentURL string) error {
	s.intentOrder = orderID
	s.intentID = paymentID
	return nil
}

func (s *stubOrderRepo) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, completedAt *time.Time) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusCalls++
	s.statusOrder = orderID
	s.statusValue = status
	s.statusTime = completedAt
	return nil
}

func (s *stubOrderRepo) FakeComplete(ctx context.Context, orderID, paymentID string, completedAt time.Time) (*domain.Order, error) {
	s.fakeOrder = orderID
	s.fakePayment = paymentID
	return &domain.Order{ID: orderID, Status: domain.OrderCompleted, PaymentID: paymentID, CompletedAt: &completedAt}, nil
}

type stubGateway struct {
	invoice     *paygate.Invoice
	invoiceErr  error
	invoiceReqs []paygate.InvoiceRequest
	currencies  []string
	currErr     error
}

func (s *stubGateway) CreateInvoice(ctx context.Context, in paygate.InvoiceRequest) (*paygate.Invoice, error) {
	s.invoiceReqs = append(s.invoiceReqs, in)
	if s.invoiceErr != nil {
		return nil, s.invoiceErr
	}
	return s.invoice, nil
}

func (s *stubGateway) Currencies(ctx context.Context) ([]string, error) {
	return s.currencies, s.currErr
}

type stubCurrencyCache struct {
	stored []string
	getErr error
}

func (s *stubCurrencyCache) Get(ctx context.Context) ([]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.stored, nil
}

func (s *stubCurrencyCache) Set(ctx context.Context, currencies []string) error {
	s.stored = currencies
	return nil
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreatePaymentTotalIsExact(t *testing.T) {
	carts := &stubCartRepo{items: []domain.CartItem{
		{ID: "line-1", ProductID: "p1", Quantity: 3},
	}}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Widget", Price: price("19.99")},
	}}
	orders := &stubOrderRepo{}
	gw := &stubGateway{invoice: &paygate.Invoice{ID: "inv-1", InvoiceURL: "https://pay.example/inv-1"}}
	svc := New(carts, products, orders, gw, nil, nil)

	res, err := svc.CreatePayment(context.Background(), "u1", "btc")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if got := res.Total.String(); got != "59.97" {
		t.Fatalf("total = %s, want 59.97", got)
	}
	if orders.created == nil {
		t.Fatal("order was not created")
	}
	if got := orders.created.Total.String(); got != "59.97" {
		t.Fatalf("persisted total = %s, want 59.97", got)
	}
	if len(orders.created.Items) != 1 || orders.created.Items[0].Price.String() != "19.99" {
		t.Fatalf("unexpected order items: %+v", orders.created.Items)
	}
	if res.PaymentID != "inv-1" || res.PaymentURL != "https://pay.example/inv-1" {
		t.Fatalf("unexpected payment intent: %+v", res)
	}
	if orders.intentOrder != "ord-1" || orders.intentID != "inv-1" {
		t.Fatalf("payment intent not persisted: order=%q id=%q", orders.intentOrder, orders.intentID)
	}
}

func TestCreatePaymentEmptyCart(t *testing.T) {
	svc := New(&stubCartRepo{}, &stubProductRepo{}, &stubOrderRepo{}, &stubGateway{}, nil, nil)

	_, err := svc.CreatePayment(context.Background(), "u1", "btc")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreatePaymentSkipsDeletedProducts(t *testing.T) {
	carts := &stubCartRepo{items: []domain.CartItem{
		{ID: "line-1", ProductID: "gone", Quantity: 1},
		{ID: "line-2", ProductID: "p1", Quantity: 2},
	}}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Price: price("5.00")},
	}}
	orders := &stubOrderRepo{}
	gw := &stubGateway{invoice: &paygate.Invoice{ID: "inv-1"}}
	svc := New(carts, products, orders, gw, nil, nil)

	res, err := svc.CreatePayment(context.Background(), "u1", "eth")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if got := res.Total.String(); got != "10" {
		t.Fatalf("total = %s, want 10", got)
	}
	if len(orders.created.Items) != 1 || orders.created.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected items: %+v", orders.created.Items)
	}
	// only the surviving snapshot line is cleared
	if len(carts.deletedIDs) != 1 || carts.deletedIDs[0] != "line-2" {
		t.Fatalf("deleted cart lines = %v, want [line-2]", carts.deletedIDs)
	}
}

func TestCreatePaymentAllProductsDeleted(t *testing.T) {
	carts := &stubCartRepo{items: []domain.CartItem{{ID: "line-1", ProductID: "gone", Quantity: 1}}}
	svc := New(carts, &stubProductRepo{}, &stubOrderRepo{}, &stubGateway{}, nil, nil)

	_, err := svc.CreatePayment(context.Background(), "u1", "btc")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreatePaymentGatewayFailureKeepsCart(t *testing.T) {
	carts := &stubCartRepo{items: []domain.CartItem{{ID: "line-1", ProductID: "p1", Quantity: 1}}}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Price: price("9.99")},
	}}
	orders := &stubOrderRepo{}
	gw := &stubGateway{invoiceErr: &paygate.APIError{StatusCode: 403, Body: "invalid api key"}}
	svc := New(carts, products, orders, gw, nil, nil)

	_, err := svc.CreatePayment(context.Background(), "u1", "btc")
	if err == nil {
		t.Fatal("expected error from gateway failure")
	}
	var apiErr *paygate.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want wrapped APIError", err)
	}
	if len(carts.deletedIDs) != 0 {
		t.Fatalf("cart lines deleted despite gateway failure: %v", carts.deletedIDs)
	}
	// the order itself survives for a later retry
	if orders.created == nil {
		t.Fatal("order should have been created before the gateway call")
	}
}

func TestCreateIntentRejectsDuplicate(t *testing.T) {
	gw := &stubGateway{invoice: &paygate.Invoice{ID: "inv-2"}}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, &stubOrderRepo{}, gw, nil, nil)

	ord := &domain.Order{ID: "ord-1", PaymentID: "inv-1", Total: price("10.00")}
	_, err := svc.createIntent(context.Background(), ord, "btc")
	if !errors.Is(err, domain.ErrDuplicatePaymentIntent) {
		t.Fatalf("err = %v, want ErrDuplicatePaymentIntent", err)
	}
	if len(gw.invoiceReqs) != 0 {
		t.Fatal("gateway must not be called for an order that already has an intent")
	}
}

func TestApplyWebhookFinished(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"ord-1","payment_status":"finished","pay_amount":59.97,"pay_currency":"btc"}`))

	if orders.statusOrder != "ord-1" || orders.statusValue != domain.OrderCompleted {
		t.Fatalf("status update = (%q, %q)", orders.statusOrder, orders.statusValue)
	}
	if orders.statusTime == nil || !orders.statusTime.Equal(fixed) {
		t.Fatalf("completedAt = %v, want %v", orders.statusTime, fixed)
	}
}

func TestApplyWebhookLastWriteWins(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"ord-1","payment_status":"finished"}`))
	// out-of-order delivery: an older waiting event arrives after finished
	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"ord-1","payment_status":"waiting"}`))

	if orders.statusCalls != 2 {
		t.Fatalf("statusCalls = %d, want 2", orders.statusCalls)
	}
	if orders.statusValue != domain.OrderWaiting {
		t.Fatalf("final status = %q, want Waiting", orders.statusValue)
	}
	if orders.statusTime != nil {
		t.Fatal("waiting event must not carry a completion time")
	}
}

func TestApplyWebhookRawPassthrough(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"ord-1","payment_status":"sending"}`))

	if got := string(orders.statusValue); got != "sending" {
		t.Fatalf("status = %q, want raw passthrough %q", got, "sending")
	}
}

func TestApplyWebhookMalformedBody(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	svc.ApplyWebhook(context.Background(), []byte(`{not json`))

	if orders.statusCalls != 0 {
		t.Fatalf("statusCalls = %d, want 0 for malformed payload", orders.statusCalls)
	}
}

func TestApplyWebhookIgnoresOtherEvents(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"subscription","order_id":"ord-1","payment_status":"finished"}`))

	if orders.statusCalls != 0 {
		t.Fatalf("statusCalls = %d, want 0 for non-payment event", orders.statusCalls)
	}
}

func TestApplyWebhookLooseFallback(t *testing.T) {
	orders := &stubOrderRepo{}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	// pay_amount as a string breaks the strict decode but the loose path
	// still extracts the order id
	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"ord-2","pay_amount":"oops"}`))

	if orders.statusOrder != "ord-2" {
		t.Fatalf("statusOrder = %q, want ord-2", orders.statusOrder)
	}
	if got := string(orders.statusValue); got != "Unknown" {
		t.Fatalf("status = %q, want Unknown", got)
	}
}

func TestApplyWebhookUnknownOrder(t *testing.T) {
	orders := &stubOrderRepo{statusErr: domain.ErrNotFound}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	// must not panic or surface an error
	svc.ApplyWebhook(context.Background(), []byte(`{"event_type":"payment","order_id":"nope","payment_status":"finished"}`))
}

func TestFakePayment(t *testing.T) {
	orders := &stubOrderRepo{orders: map[string]*domain.Order{
		"ord-1": {ID: "ord-1", Status: domain.OrderPending},
	}}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	completed, err := svc.FakePayment(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("FakePayment: %v", err)
	}
	if completed.Status != domain.OrderCompleted {
		t.Fatalf("status = %q, want Completed", completed.Status)
	}
	if !strings.HasPrefix(orders.fakePayment, "FAKE_") || len(orders.fakePayment) != len("FAKE_")+12 {
		t.Fatalf("fake payment id = %q", orders.fakePayment)
	}
}

func TestFakePaymentAlreadyCompleted(t *testing.T) {
	orders := &stubOrderRepo{orders: map[string]*domain.Order{
		"ord-1": {ID: "ord-1", Status: domain.OrderCompleted},
	}}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, orders, &stubGateway{}, nil, nil)

	_, err := svc.FakePayment(context.Background(), "ord-1")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCurrenciesStaticFallback(t *testing.T) {
	gw := &stubGateway{currErr: errors.New("provider down")}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, &stubOrderRepo{}, gw, nil, nil)

	got := svc.Currencies(context.Background())
	if len(got) == 0 {
		t.Fatal("expected static currency list")
	}
	if got[0] != staticCurrencies[0] {
		t.Fatalf("got %v, want static list", got)
	}
}

func TestCurrenciesCacheHit(t *testing.T) {
	gw := &stubGateway{currErr: errors.New("must not be called")}
	cch := &stubCurrencyCache{stored: []string{"btc", "eth"}}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, &stubOrderRepo{}, gw, cch, nil)

	got := svc.Currencies(context.Background())
	if len(got) != 2 || got[0] != "btc" {
		t.Fatalf("got %v, want cached [btc eth]", got)
	}
}

func TestCurrenciesPopulatesCache(t *testing.T) {
	gw := &stubGateway{currencies: []string{"btc", "sol"}}
	cch := &stubCurrencyCache{getErr: errors.New("cache miss")}
	svc := New(&stubCartRepo{}, &stubProductRepo{}, &stubOrderRepo{}, gw, cch, nil)

	got := svc.Currencies(context.Background())
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if len(cch.stored) != 2 || cch.stored[1] != "sol" {
		t.Fatalf("cache not populated: %v", cch.stored)
	}
}
