package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/dishpatch-backend/internal/config"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/delivery"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/inventory"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/order"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/promo"
	"github.com/georgemunganga/dishpatch-backend/internal/modules/restaurant"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/broker"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/logger"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/postgres"
	"github.com/georgemunganga/dishpatch-backend/migrations"
)

func main() {
	log := logger.New("dishpatch-api")
	if err := run(log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
		return err
	}
	log.Info("connected to the database")

	// ── Delivery charges, optionally cached in Redis ────────
	var deliveryRepo delivery.Repository = delivery.NewPostgresRepository(db)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		deliveryRepo = delivery.NewCachedRepository(deliveryRepo, delivery.NewRedisCache(rdb),
			cfg.Pricing.DeliveryCacheTTL, log)
	}

	// ── Order events ────────────────────────────────────────
	var events order.Publisher = broker.Discard{}
	if cfg.AMQPURL != "" {
		mq, err := broker.Connect(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer mq.Close()
		events = mq
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	pricing := cfg.Pricing

	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	restaurantService := restaurant.NewService(restaurant.NewPostgresRepository(db))
	restaurant.NewHandler(restaurantService).RegisterRoutes(router)

	deliveryService := delivery.NewService(deliveryRepo, delivery.Options{
		LateNightAreas:     pricing.LateNightAreas,
		LateNightHours:     pricing.LateNightHours,
		ExpressRestaurants: pricing.ExpressRestaurants,
		ExpressAreas:       pricing.ExpressAreas,
		ExpressMinutes:     pricing.ExpressMinutes,
		Location:           cfg.Location,
	})
	delivery.NewHandler(deliveryService).RegisterRoutes(router)

	evaluator := promo.NewEvaluator(promo.NewOrderCounter(db), cfg.Location, pricing.PromoReferenceHour)
	promoService := promo.NewService(promo.NewPostgresRepository(db), evaluator)
	promo.NewHandler(promoService).RegisterRoutes(router)

	inventoryService := inventory.NewService(inventory.NewPostgresRepository(db), inventory.NewLedger(pricing.LotRetention))

	orderService := order.NewService(order.Dependencies{
		Repo:        order.NewPostgresRepository(db),
		Catalog:     catalogService,
		Restaurants: restaurantService,
		Validator:   restaurant.NewValidator(pricing.PlatformHours, pricing.DefaultRestaurantHours, cfg.Location),
		Delivery:    deliveryService,
		Promos:      promoService,
		Inventory:   inventoryService,
		Assembler:   &order.Assembler{ServiceChargeRate: pricing.ServiceChargeRate, MaxOrderValue: pricing.MaxOrderValue},
		Events:      events,
		Log:         log,
	})
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("dishpatch API server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
