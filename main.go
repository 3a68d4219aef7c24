package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"park-portal/internal/auth"
	"park-portal/internal/config"
	"park-portal/internal/database/migrations"
	"park-portal/internal/kafka"
	"park-portal/internal/logger"
	"park-portal/internal/rides"
	rides_db "park-portal/internal/rides/db"
	"park-portal/internal/rides/ride_api"
	tickets_db "park-portal/internal/tickets/db"
	"park-portal/internal/tickets/qr"
	tickets "park-portal/internal/tickets/service"
	"park-portal/internal/tickets/ticket_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting park portal ticket service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.Run(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))

		requiredTopics := []string{
			cfg.Kafka.Topics.TicketOrdered,
			cfg.Kafka.Topics.TicketPurchased,
			cfg.Kafka.Topics.TicketAmended,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	rideCatalog := rides.NewService(
		rides_db.New(bunDB, cfg.Database.QueryTimeout),
		rides.NewRedisCache(redisClient, cfg.Redis.CatalogTTL),
	)

	var kafkaLayer tickets.KafkaPublisher
	if producer != nil {
		kafkaLayer = producer
	}
	ticketService := tickets.NewTicketService(
		tickets_db.New(bunDB, cfg.Database.QueryTimeout),
		rideCatalog,
		kafkaLayer,
		qr.NewPassGenerator(cfg.Pricing.QRSecretKey),
		cfg.Pricing.BaseAdmission,
		log,
	)

	ticketHandler := ticket_api.NewHandler(ticketService, log)
	rideHandler := ride_api.NewHandler(rideCatalog, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// Public catalog listing.
	r.Get("/api/rides", rideHandler.ListRides)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))
		log.Info("AUTH", "OIDC middleware applied to ticket routes")

		r.Route("/api/tickets", func(r chi.Router) {
			r.Post("/order", ticketHandler.OrderTicket)
			r.Get("/current", ticketHandler.CurrentTicket)
			r.Get("/confirm", ticketHandler.ConfirmPurchase)
			r.Post("/buy", ticketHandler.BuyTicket)
			r.Post("/fast-track", ticketHandler.AddFastTrack)
			r.Get("/future", ticketHandler.FutureTickets)
			r.Get("/past", ticketHandler.PastTickets)
			r.Post("/amend", ticketHandler.AmendTicket)
			r.Get("/remaining", ticketHandler.RemainingRides)
			r.Get("/{ticketID}", ticketHandler.TicketByID)
		})
		log.Info("ROUTER", "Ticket routes registered under /api/tickets")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Park portal running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Shutdown complete")
}
