// Package seed inserts demo data for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"market-api/internal/domain"
	productrepo "market-api/internal/repository/product"
	userrepo "market-api/internal/repository/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Apply seeds an admin account and a small demo catalog. Products are only
// inserted into an empty catalog, so rerunning is safe.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	users := userrepo.NewPostgres(pool)
	products := productrepo.NewPostgres(pool, logger)

	if err := ensureAdmin(ctx, users, logger); err != nil {
		return err
	}

	count, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		logger.Printf("seed: catalog has %d products, skipping demo products", count)
		return nil
	}

	demo := []productrepo.CreateProductInput{
		{
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for manual testing",
			Price:       decimal.RequireFromString("19.99"),
			Category:    "apparel",
			ImageURL:    "https://placehold.co/600x400?text=tshirt",
			Specs: []productrepo.SpecInput{
				{Name: "material", Value: "cotton"},
				{Name: "fit", Value: "regular"},
			},
		},
		{
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			Price:       decimal.RequireFromString("12.99"),
			Category:    "kitchen",
			ImageURL:    "https://placehold.co/600x400?text=mug",
			Specs: []productrepo.SpecInput{
				{Name: "capacity", Value: "350ml"},
			},
		},
		{
			Name:        "Demo Sticker Pack",
			Description: "Ten assorted vinyl stickers",
			Price:       decimal.RequireFromString("4.50"),
			Category:    "accessories",
		},
	}
	for _, in := range demo {
		if _, err := products.Create(ctx, in); err != nil {
			return fmt.Errorf("create product %q: %w", in.Name, err)
		}
	}
	logger.Printf("seed: inserted %d demo products", len(demo))
	return nil
}

func ensureAdmin(ctx context.Context, users userrepo.Repository, logger *log.Logger) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = users.Create(ctx, userrepo.CreateUserInput{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		logger.Printf("seed: admin account already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Printf("seed: created admin account")
	return nil
}
