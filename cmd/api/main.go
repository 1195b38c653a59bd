package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookxe/internal/config"
	"bookxe/internal/database"
	"bookxe/internal/modules/booking"
	"bookxe/internal/modules/notification"
	"bookxe/internal/modules/vehicle"
	jwtsvc "bookxe/internal/pkg/jwt"
	"bookxe/internal/pkg/mq"
	"bookxe/internal/pkg/obs"
	"bookxe/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "bookxe-api", cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.MigrateOnStart {
		if err := database.Migrate(db, cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := notification.NewService(notificationRepo)
	if cfg.AMQPURL != "" {
		pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		notificationService.WithPublisher(pub)
		log.Printf("notification events publishing to exchange=%s", cfg.AMQPExchange)
	}
	notificationHandler := notification.NewHandler(notificationService)

	bookingService := booking.NewService(bookingRepo, notificationService)
	sweeper := booking.NewSweeper(bookingService, cfg.SweepInterval)
	bookingHandler := booking.NewHandler(bookingService, sweeper)

	stopSweeper := sweeper.WithInitialRun(cfg.SweepOnStart).Start(ctx)
	defer stopSweeper()

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(routes{
		jwt:           j,
		corsOrigins:   cfg.CORSOrigins,
		bookings:      bookingHandler,
		notifications: notificationHandler,
		vehicles:      vehicle.NewHandler(repository.NewVehicleRepository(db)),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("bookxe api listening on %s env=%s", cfg.HTTPAddr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
