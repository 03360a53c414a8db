package delivery

import (
	"context"
	"errors"
	"testing"

	"market-api/internal/domain"
	deliveryrepo "market-api/internal/repository/delivery"
)

type stubDeliveryRepo struct {
	byID       map[string]*domain.Delivery
	byOrder    map[string]*domain.Delivery
	byTracking map[string]*domain.Delivery
	tracking   string
	status     string
}

func (s *stubDeliveryRepo) Create(ctx context.Context, in deliveryrepo.CreateDeliveryInput) (*domain.Delivery, error) {
	if _, ok := s.byOrder[in.OrderID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	d := &domain.Delivery{ID: "d1", OrderID: in.OrderID, RecipientFullName: in.RecipientFullName}
	if s.byOrder == nil {
		s.byOrder = map[string]*domain.Delivery{}
	}
	s.byOrder[in.OrderID] = d
	return d, nil
}

func (s *stubDeliveryRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.find(s.byID, id)
}

func (s *stubDeliveryRepo) GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return s.find(s.byOrder, orderID)
}

func (s *stubDeliveryRepo) GetByTracking(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	return s.find(s.byTracking, trackingNumber)
}

func (s *stubDeliveryRepo) find(m map[string]*domain.Delivery, key string) (*domain.Delivery, error) {
	d, ok := m[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (s *stubDeliveryRepo) Update(ctx context.Context, id string, in deliveryrepo.UpdateDeliveryInput) (*domain.Delivery, error) {
	return &domain.Delivery{ID: id}, nil
}

func (s *stubDeliveryRepo) SetTracking(ctx context.Context, id, trackingNumber string) error {
	s.tracking = trackingNumber
	return nil
}

func (s *stubDeliveryRepo) SetStatus(ctx context.Context, id, status string) error {
	s.status = status
	return nil
}

type stubOrderRepo struct {
	orders map[string]*domain.Order
}

func (s *stubOrderRepo) GetOwned(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func ownedOrder() *stubOrderRepo {
	return &stubOrderRepo{orders: map[string]*domain.Order{
		"ord-1": {ID: "ord-1", UserID: "u1"},
	}}
}

func TestCreateOnePerOrder(t *testing.T) {
	svc := New(&stubDeliveryRepo{}, ownedOrder(), nil)
	in := deliveryrepo.CreateDeliveryInput{OrderID: "ord-1", RecipientFullName: "Jane Doe", RecipientPhone: "+123456789"}

	if _, err := svc.Create(context.Background(), "u1", in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateForeignOrder(t *testing.T) {
	svc := New(&stubDeliveryRepo{}, ownedOrder(), nil)
	in := deliveryrepo.CreateDeliveryInput{OrderID: "ord-1", RecipientFullName: "Jane Doe", RecipientPhone: "+123456789"}

	if _, err := svc.Create(context.Background(), "u2", in); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetTrackingValidation(t *testing.T) {
	deliveries := &stubDeliveryRepo{byID: map[string]*domain.Delivery{"d1": {ID: "d1"}}}
	svc := New(deliveries, ownedOrder(), nil)

	for _, bad := range []string{"", "1234", "123456789012345", "1234567890123a", "1234567890123 "} {
		if err := svc.SetTracking(context.Background(), "d1", bad); err == nil {
			t.Fatalf("tracking %q accepted", bad)
		}
	}
	if err := svc.SetTracking(context.Background(), "d1", "12345678901234"); err != nil {
		t.Fatalf("valid tracking rejected: %v", err)
	}
	if deliveries.tracking != "12345678901234" {
		t.Fatalf("tracking not stored: %q", deliveries.tracking)
	}
}

func TestTrackValidatesFormat(t *testing.T) {
	deliveries := &stubDeliveryRepo{byTracking: map[string]*domain.Delivery{
		"12345678901234": {ID: "d1", TrackingNumber: "12345678901234"},
	}}
	svc := New(deliveries, ownedOrder(), nil)

	if _, err := svc.Track(context.Background(), "not-a-number"); err == nil {
		t.Fatal("expected validation error")
	}
	d, err := svc.Track(context.Background(), "12345678901234")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if d.ID != "d1" {
		t.Fatalf("delivery = %+v", d)
	}
}
