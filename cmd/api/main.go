package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"market-api/internal/cache"
	"market-api/internal/config"
	"market-api/internal/db"
	"market-api/internal/httpserver"
	"market-api/internal/httpserver/auth"
	"market-api/internal/paygate"
	cartrepo "market-api/internal/repository/cart"
	deliveryrepo "market-api/internal/repository/delivery"
	orderrepo "market-api/internal/repository/order"
	productrepo "market-api/internal/repository/product"
	reviewrepo "market-api/internal/repository/review"
	userrepo "market-api/internal/repository/user"
	wishlistrepo "market-api/internal/repository/wishlist"
	cartsvc "market-api/internal/service/cart"
	deliverysvc "market-api/internal/service/delivery"
	paymentsvc "market-api/internal/service/payment"
	productsvc "market-api/internal/service/product"
	reviewsvc "market-api/internal/service/review"
	usersvc "market-api/internal/service/user"
	wishlistsvc "market-api/internal/service/wishlist"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var currencyCache cache.CurrencyCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		currencyCache = cache.NewRedisCache(rdb, cfg.Payments.CurrenciesTTL)
		logger.Printf("currency cache enabled via redis at %s", cfg.RedisAddr)
	}

	gateway := paygate.NewClient(paygate.Config{
		BaseURL:        cfg.Payments.BaseURL,
		APIKey:         cfg.Payments.APIKey,
		IPNCallbackURL: cfg.Payments.IPNCallbackURL,
		SuccessURL:     cfg.Payments.SuccessURL,
		CancelURL:      cfg.Payments.CancelURL,
		Timeout:        cfg.Payments.Timeout,
	})

	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	userRepo := userrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	wishlistRepo := wishlistrepo.NewPostgres(dbpool)
	reviewRepo := reviewrepo.NewPostgres(dbpool)
	deliveryRepo := deliveryrepo.NewPostgres(dbpool)

	userService := usersvc.New(userRepo, cartRepo, wishlistRepo, reviewRepo, orderRepo, issuer, logger)
	productService := productsvc.New(productRepo, orderRepo, cartRepo, wishlistRepo, reviewRepo, logger)
	cartService := cartsvc.New(cartRepo, productRepo, logger)
	paymentService := paymentsvc.New(cartRepo, productRepo, orderRepo, gateway, currencyCache, logger)
	wishlistService := wishlistsvc.New(wishlistRepo, productRepo, logger)
	reviewService := reviewsvc.New(reviewRepo, productRepo, orderRepo, logger)
	deliveryService := deliverysvc.New(deliveryRepo, orderRepo, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Auth:       issuer,
		Users:      userService,
		Products:   productService,
		Carts:      cartService,
		Payments:   paymentService,
		Wishlists:  wishlistService,
		Reviews:    reviewService,
		Deliveries: deliveryService,
	}, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
