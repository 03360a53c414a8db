// Package payment implements the order/payment lifecycle: cart snapshot,
// order creation, provider invoice creation, and webhook reconciliation.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"market-api/internal/cache"
	"market-api/internal/domain"
	"market-api/internal/paygate"
	orderrepo "market-api/internal/repository/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// staticCurrencies is served when the provider is unreachable or not
// configured. Degraded mode, not a failure.
var staticCurrencies = []string{"btc", "eth", "ltc", "doge", "xmr", "sol", "bnb", "usdttrc20", "usdc"}

type cartRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	DeleteByIDs(ctx context.Context, userID string, ids []string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	CreateWithItems(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetOwned(ctx context.Context, userID, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAdmin(ctx context.Context, in orderrepo.ListAdminInput) ([]domain.Order, int, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	SetPaymentIntent(ctx context.Context, orderID, paymentID, paymentURL string) error
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, completedAt *time.Time) error
	FakeComplete(ctx context.Context, orderID, paymentID string, completedAt time.Time) (*domain.Order, error)
}

type Service struct {
	cartRepo    cartRepo
	productRepo productRepo
	orderRepo   orderRepo
	gateway     paygate.Client
	currencies  cache.CurrencyCache
	logger      *log.Logger
	now         func() time.Time
}

// New creates a payment Service. The currency cache is optional.
func New(carts cartRepo, products productRepo, orders orderRepo, gateway paygate.Client, currencies cache.CurrencyCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		cartRepo:    carts,
		productRepo: products,
		orderRepo:   orders,
		gateway:     gateway,
		currencies:  currencies,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreatePaymentResult is returned to the checkout caller.
type CreatePaymentResult struct {
	OrderID    string          `json:"orderId"`
	PaymentID  string          `json:"paymentId"`
	PaymentURL string          `json:"paymentUrl"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

type snapshotLine struct {
	cartItemID string
	product    domain.Product
	quantity   int
}

// CreatePayment turns the user's cart into a Pending order, creates a
// provider invoice for it, and clears the snapshotted cart lines. A gateway
// failure leaves the order Pending with no payment id and the cart intact
// for a manual retry; the gateway call is never retried automatically.
func (s *Service) CreatePayment(ctx context.Context, userID, currency string) (*CreatePaymentResult, error) {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return nil, fmt.Errorf("%w: currency required", domain.ErrInvalid)
	}

	lines, total, err := s.readCartSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]orderrepo.CreateItemInput, len(lines))
	for i, line := range lines {
		items[i] = orderrepo.CreateItemInput{
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			Price:     line.product.Price,
		}
	}
	ord, err := s.orderRepo.CreateWithItems(ctx, orderrepo.CreateOrderInput{
		UserID:   userID,
		Total:    total,
		Currency: currency,
		Items:    items,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.Printf("payment: created order %s for user %s total=%s", ord.ID, userID, total.StringFixed(2))

	invoice, err := s.createIntent(ctx, ord, currency)
	if err != nil {
		return nil, err
	}

	// The order and invoice exist; a failed cart clear must not fail checkout.
	snapshotIDs := make([]string, len(lines))
	for i, line := range lines {
		snapshotIDs[i] = line.cartItemID
	}
	if err := s.cartRepo.DeleteByIDs(ctx, userID, snapshotIDs); err != nil {
		s.logger.Printf("payment: clear cart for user %s after order %s: %v", userID, ord.ID, err)
	}

	return &CreatePaymentResult{
		OrderID:    ord.ID,
		PaymentID:  invoice.ID,
		PaymentURL: invoice.InvoiceURL,
		Total:      total,
		Currency:   currency,
	}, nil
}

// readCartSnapshot resolves the user's cart lines against the current
// catalog. Lines whose product no longer exists are skipped rather than
// failing the checkout; the cart is considered empty if nothing survives.
func (s *Service) readCartSnapshot(ctx context.Context, userID string) ([]snapshotLine, decimal.Decimal, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return nil, decimal.Zero, domain.ErrEmptyCart
	}

	var lines []snapshotLine
	total := decimal.Zero
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("payment: skipping cart line %s, product %s no longer exists", item.ID, item.ProductID)
				continue
			}
			return nil, decimal.Zero, fmt.Errorf("resolve product %s: %w", item.ProductID, err)
		}
		lines = append(lines, snapshotLine{cartItemID: item.ID, product: *product, quantity: item.Quantity})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if len(lines) == 0 {
		return nil, decimal.Zero, domain.ErrEmptyCart
	}
	return lines, total, nil
}

// createIntent creates the provider invoice for a Pending order and persists
// the returned payment id/url. An order that already carries a payment id is
// rejected before the provider is called; this is the double-charge guard.
func (s *Service) createIntent(ctx context.Context, ord *domain.Order, currency string) (*paygate.Invoice, error) {
	if ord.PaymentID != "" {
		return nil, domain.ErrDuplicatePaymentIntent
	}

	invoice, err := s.gateway.CreateInvoice(ctx, paygate.InvoiceRequest{
		OrderID:     ord.ID,
		Amount:      ord.Total,
		PayCurrency: currency,
		Description: "Order #" + ord.ID,
	})
	if err != nil {
		s.logger.Printf("payment: create invoice for order %s: %v", ord.ID, err)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, ord.ID, invoice.ID, invoice.InvoiceURL); err != nil {
		return nil, err
	}
	s.logger.Printf("payment: order %s got payment intent %s", ord.ID, invoice.ID)
	return invoice, nil
}

// webhookEvent is the provider's structured callback shape.
type webhookEvent struct {
	EventType     string      `json:"event_type"`
	OrderID       string      `json:"order_id"`
	PaymentID     string      `json:"payment_id"`
	PaymentStatus string      `json:"payment_status"`
	PayAmount     json.Number `json:"pay_amount"`
	PayCurrency   string      `json:"pay_currency"`
}

// ApplyWebhook reconciles one provider callback into order state. It never
// returns an error: the handler acknowledges the provider regardless, so a
// local parsing or storage bug cannot trigger a provider retry storm.
// Problems are logged instead.
func (s *Service) ApplyWebhook(ctx context.Context, body []byte) {
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err == nil {
		if evt.EventType != "payment" || evt.OrderID == "" {
			s.logger.Printf("webhook: ignoring event type=%q order=%q", evt.EventType, evt.OrderID)
			return
		}
		s.applyStatus(ctx, evt.OrderID, evt.PaymentStatus)
		return
	}

	// Providers are not consistent about payload shape; fall back to a loose
	// parse and pull out whatever fields are recognizable.
	var loose map[string]any
	if err := json.Unmarshal(body, &loose); err != nil {
		s.logger.Printf("webhook: unparseable payload: %v", err)
		return
	}
	orderID, _ := loose["order_id"].(string)
	if orderID == "" {
		s.logger.Printf("webhook: payload has no order_id")
		return
	}
	status, _ := loose["payment_status"].(string)
	if status == "" {
		status = "Unknown"
	}
	s.applyStatus(ctx, orderID, status)
}

// applyStatus is a last-write-wins overwrite: redelivered and out-of-order
// events re-apply cleanly, and completedAt keeps its first value.
func (s *Service) applyStatus(ctx context.Context, orderID, providerStatus string) {
	status := domain.StatusFromProvider(providerStatus)
	var completedAt *time.Time
	if status == domain.OrderCompleted {
		now := s.now()
		completedAt = &now
	}

	if err := s.orderRepo.SetStatus(ctx, orderID, status, completedAt); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("webhook: order %s not found", orderID)
			return
		}
		s.logger.Printf("webhook: update order %s: %v", orderID, err)
		return
	}
	s.logger.Printf("webhook: order %s status set to %s", orderID, status)
}

// CheckOrder returns the order status snapshot for the owning user.
func (s *Service) CheckOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.orderRepo.GetOwned(ctx, userID, orderID)
}

// ListOrders returns the caller's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// OrderItemDetail is an order line enriched with current product data where
// the product still exists.
type OrderItemDetail struct {
	ID                 string          `json:"orderItemId"`
	ProductID          string          `json:"productId"`
	ProductName        string          `json:"productName,omitempty"`
	ProductDescription string          `json:"productDescription,omitempty"`
	ProductImageURL    string          `json:"productImageUrl,omitempty"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
}

// OrderItems lists an owned order's items. Prices are the purchase-time
// snapshot; product fields are blank when the product was deleted since.
func (s *Service) OrderItems(ctx context.Context, userID, orderID string) ([]OrderItemDetail, error) {
	if _, err := s.orderRepo.GetOwned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	items, err := s.orderRepo.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	details := make([]OrderItemDetail, 0, len(items))
	for _, item := range items {
		detail := OrderItemDetail{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		switch {
		case err == nil:
			detail.ProductName = product.Name
			detail.ProductDescription = product.Description
			detail.ProductImageURL = product.ImageURL
		case errors.Is(err, domain.ErrNotFound):
			// product deleted after purchase; the snapshot price stands
		default:
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// TestComplete marks an owned order Completed without payment. Test hook.
func (s *Service) TestComplete(ctx context.Context, userID, orderID string) error {
	if _, err := s.orderRepo.GetOwned(ctx, userID, orderID); err != nil {
		return err
	}
	now := s.now()
	return s.orderRepo.SetStatus(ctx, orderID, domain.OrderCompleted, &now)
}

// FakePayment marks any order Completed with a synthetic payment id. Admin
// escape hatch for ops and testing; an already-paid order is rejected.
func (s *Service) FakePayment(ctx context.Context, orderID string) (*domain.Order, error) {
	ord, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status == domain.OrderCompleted {
		return nil, domain.ErrAlreadyExists
	}

	fakeID := "FAKE_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	completed, err := s.orderRepo.FakeComplete(ctx, orderID, fakeID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Printf("payment: admin fake payment for order %s, payment id %s", orderID, fakeID)
	return completed, nil
}

// AdminOrdersPage is a filtered page of all orders.
type AdminOrdersPage struct {
	Orders     []domain.Order `json:"orders"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// AdminListOrders lists orders across all users with an optional status filter.
func (s *Service) AdminListOrders(ctx context.Context, status string, page, pageSize int) (*AdminOrdersPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	orders, total, err := s.orderRepo.ListAdmin(ctx, orderrepo.ListAdminInput{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	totalPages := (total + pageSize - 1) / pageSize
	return &AdminOrdersPage{
		Orders:     orders,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Currencies returns the provider's supported pay currencies, preferring the
// cache and degrading to a static list when the provider is unreachable or
// not configured.
func (s *Service) Currencies(ctx context.Context) []string {
	if s.currencies != nil {
		if cached, err := s.currencies.Get(ctx); err == nil && len(cached) > 0 {
			return cached
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("payment: currency cache read: %v", err)
		}
	}

	currencies, err := s.gateway.Currencies(ctx)
	if err != nil || len(currencies) == 0 {
		if err != nil {
			s.logger.Printf("payment: currencies from provider: %v, serving static list", err)
		}
		return staticCurrencies
	}

	if s.currencies != nil {
		if err := s.currencies.Set(ctx, currencies); err != nil {
			s.logger.Printf("payment: currency cache write: %v", err)
		}
	}
	return currencies
}
