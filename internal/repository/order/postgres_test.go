package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"market-api/internal/domain"
)

// The id guard rejects non-uuid input before any query runs, so these tests
// need no database.
func TestMalformedIDReadsAsNotFound(t *testing.T) {
	repo := NewPostgres(nil, nil)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetOwned(ctx, "user-1", "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetOwned err = %v, want ErrNotFound", err)
	}
	if _, err := repo.ItemsByOrder(ctx, "';DROP TABLE orders;--"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ItemsByOrder err = %v, want ErrNotFound", err)
	}
	if err := repo.SetPaymentIntent(ctx, "42", "inv-1", "https://pay.example/inv-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("SetPaymentIntent err = %v, want ErrNotFound", err)
	}
	if err := repo.SetStatus(ctx, "", domain.OrderCompleted, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("SetStatus err = %v, want ErrNotFound", err)
	}
	if _, err := repo.FakeComplete(ctx, "not-a-uuid", "FAKE_1", time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FakeComplete err = %v, want ErrNotFound", err)
	}
}

func TestMalformedIDCleanupIsNoop(t *testing.T) {
	repo := NewPostgres(nil, nil)
	ctx := context.Background()

	affected, err := repo.RemoveItemsForProduct(ctx, "not-a-uuid")
	if err != nil || len(affected) != 0 {
		t.Fatalf("RemoveItemsForProduct = %v, %v", affected, err)
	}

	deleted, err := repo.DeleteIfEmpty(ctx, "not-a-uuid")
	if err != nil || deleted {
		t.Fatalf("DeleteIfEmpty = %v, %v", deleted, err)
	}

	eligible, err := repo.HasCompletedWithProduct(ctx, "user-1", "not-a-uuid")
	if err != nil || eligible {
		t.Fatalf("HasCompletedWithProduct = %v, %v", eligible, err)
	}
}
