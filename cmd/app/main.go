package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/address"
	"github.com/wichananm65/easi-backend/internal/banner"
	"github.com/wichananm65/easi-backend/internal/cart"
	"github.com/wichananm65/easi-backend/internal/checkout"
	"github.com/wichananm65/easi-backend/internal/company"
	"github.com/wichananm65/easi-backend/internal/config"
	"github.com/wichananm65/easi-backend/internal/database"
	"github.com/wichananm65/easi-backend/internal/favorite"
	"github.com/wichananm65/easi-backend/internal/inventory"
	"github.com/wichananm65/easi-backend/internal/logger"
	"github.com/wichananm65/easi-backend/internal/order"
	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/recommended"
	"github.com/wichananm65/easi-backend/internal/rewards"
	"github.com/wichananm65/easi-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db := mustOpenDB(cfg.Postgres, log)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	rules := pricing.RulesFromConfig(cfg.Pricing)

	var cache product.Cache
	var sessions checkout.SessionStore = checkout.NewInMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			cache = product.NewRedisCache(rdb)
			sessions = checkout.NewCacheStore(cache, cfg.Redis.SessionTTL)
		}
	}

	productRepo := product.NewPostgresRepository(db.DB)
	productService := product.NewService(productRepo, cache, cfg.Redis.TTL, log.Named("product"))
	if cfg.Postgres.SeedCatalog {
		if err := database.SeedCatalog(ctx, productRepo, log); err != nil {
			log.Fatal("catalog seed failed", zap.Error(err))
		}
		if err := database.SeedRewards(ctx, db); err != nil {
			log.Fatal("rewards seed failed", zap.Error(err))
		}
	}

	var publisher order.Publisher = inventory.NewLocalPublisher(productService, log.Named("inventory"))
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := order.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		listener := inventory.NewKafkaListener(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, productService, log.Named("inventory"))
		defer listener.Close()
		go listener.Start(ctx)
	}

	userService := user.NewService(user.NewPostgresRepository(db.DB), log.Named("user"))
	addressService := address.NewService(address.NewPostgresRepository(db.DB))
	cartService := cart.NewService(cart.NewPostgresRepository(db.DB), productService, userService, rules, log.Named("cart"))
	orderService := order.NewService(order.NewPGRepository(db), publisher, cfg.Server.RequestTimeout, log.Named("order"))
	companyService := company.NewService(company.NewPGRepository(db), userService, cfg.Server.RequestTimeout, log.Named("company"))
	checkoutService := checkout.NewService(sessions, cartService, addressService, userService, companyService, orderService, rules, log.Named("checkout"))
	rewardsService := rewards.NewService(rewards.NewPGRepository(db, cfg.Rewards.StartingPoints), cfg.Rewards.ProcessingDelay, log.Named("rewards"))
	favoriteService := favorite.NewService(favorite.NewPostgresRepository(db.DB), productService, userService, log.Named("favorite"))
	bannerService := banner.NewService(banner.NewPostgresRepository(db.DB), rules, log.Named("banner"))

	app := fiber.New()
	setupCORS(app, cfg.Server.AllowOrigins)
	app.Use(logger.RequestLogger(log))

	userHandler := user.NewHandler(userService, cfg.JWT)
	rewardsHandler := rewards.NewHandler(rewardsService)

	userHandler.RegisterPublicRoutes(app)
	banner.NewHandler(bannerService).RegisterPublicRoutes(app)
	recommended.NewHandler(recommended.NewService(productService)).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)
	rewardsHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWT.Secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	address.NewHandler(addressService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	checkout.NewHandler(checkoutService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)
	company.NewHandler(companyService).RegisterProtectedRoutes(app)
	favorite.NewHandler(favoriteService).RegisterProtectedRoutes(app)
	rewardsHandler.RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Server.AppEnv))
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Error("server stopped", zap.Error(err))
	}

	// let in-flight redemptions settle before the stores close
	rewardsService.Wait()
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(cfg config.PostgresConfig, log *zap.Logger) *sqlx.DB {
	if cfg.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sqlx.Connect("pgx", cfg.URL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db
}
