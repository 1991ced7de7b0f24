package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"guardline/internal/auth"
	"guardline/internal/config"
	"guardline/internal/database"
	"guardline/internal/handler"
	"guardline/internal/middleware"
	"guardline/internal/queue"
	"guardline/internal/router"
	"guardline/internal/service"
	"guardline/internal/store"
)

func main() {
	// .env is a development convenience; in prod the variables come from
	// the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open primary store: %v", err)
	}
	primary := store.NewPrimaryStore(db)
	fallback := store.NewFallbackStore()
	st := store.NewFailover(primary, fallback, cfg.PrimaryTimeout)

	rdb := config.NewRedisClient()
	var sessions service.SessionStore
	if rdb != nil {
		sessions = auth.NewRedisSessionStore(rdb)
	} else {
		log.Printf("redis unavailable, sessions held in memory")
		sessions = auth.NewMemorySessionStore()
	}

	gateway := &service.AuthGateway{
		Primary:        primary,
		Fallback:       fallback,
		Users:          st,
		Sessions:       sessions,
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
		Timeout:        cfg.PrimaryTimeout,
	}
	bookings := service.NewBookingService(st, queue.NewAMQPPublisher())
	chat := service.NewChatService(st)
	operator := service.NewOperatorQuery(st)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.Register(e,
		handler.NewAuthHandler(gateway),
		handler.NewBookingHandler(bookings),
		handler.NewChatHandler(chat),
		handler.NewOperatorHandler(operator),
		cfg.JWTSecret,
	)

	// A failure in either the server or the consumer cancels the shared
	// context, so g.Wait can never hang on the survivor.
	g, ctx := errgroup.WithContext(context.Background())
	if cfg.ConsumerEnabled {
		g.Go(func() error { return queue.StartStatusConsumer(ctx) })
	}
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		return e.Start(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
