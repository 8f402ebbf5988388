// storefront is the local daemon behind the threadswap UI.
//
// It owns the session, caches backend reads through one query cache and
// keeps that cache consistent with local writes and with listing events
// pushed over the realtime socket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/auth"
	"github.com/threadswap/storefront/internal/config"
	"github.com/threadswap/storefront/internal/marketplace"
	mware "github.com/threadswap/storefront/internal/middleware"
	"github.com/threadswap/storefront/internal/querycache"
	"github.com/threadswap/storefront/internal/realtime"
	"github.com/threadswap/storefront/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[storefront] Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Session
	store, closeStore, err := auth.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[storefront] Session store: %v", err)
	}
	defer closeStore()

	session := auth.NewSession(store)
	if err := session.Init(ctx); err != nil {
		log.Fatalf("[storefront] Session: %v", err)
	}

	// Cache
	cache := querycache.New(querycache.Options{StaleTime: cfg.CacheStale, Logger: slog.Default()})
	session.OnLogout(cache.Clear)

	janitor := querycache.NewJanitor(cache, cfg.CacheGC, cfg.CacheGC)
	if err := janitor.Start(); err != nil {
		log.Fatalf("[storefront] Cache janitor: %v", err)
	}
	defer janitor.Stop()

	// Features
	client := api.NewClient(cfg.APIURL, cfg.HTTPTimeout, session)

	listings := marketplace.NewAPI(client)
	queries := marketplace.NewQueries(listings, cache)
	coord := marketplace.NewCoordinator(listings, cache, slog.Default())
	profiles := user.NewProfiles(client, cache)

	if cfg.SocketURL != "" {
		rt := listenForListingEvents(cfg.SocketURL, session, coord)
		go func() {
			if err := rt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrClosed) {
				slog.Error("realtime stopped", "error", err)
			}
		}()
		defer rt.Close()
	}

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(mware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, session))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "storefront"})
	})
	e.GET("/ready", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":        "ready",
			"authenticated": session.IsAuthenticated(),
			"cached":        cache.Len(),
		})
	})

	requireSession := mware.RequireSession(session)

	auth.NewHandler(auth.NewService(client, session), session).Register(e.Group("/auth", mware.AuthRateLimit()))
	marketplace.NewHandler(queries, coord, cfg.AssetBaseURL).Register(e, requireSession)
	user.NewHandler(profiles, cfg.AssetBaseURL).Register(e, requireSession)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		ReadTimeout: 30 * time.Second,
	}
	go func() {
		log.Printf("[storefront] listening on :%s (backend %s)", cfg.Port, cfg.APIURL)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[storefront] HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[storefront] Shutting down…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[storefront] Shutdown error: %v", err)
	}
	log.Println("[storefront] Stopped.")
}

func listenForListingEvents(socketURL string, tokens api.TokenSource, coord *marketplace.Coordinator) *realtime.Client {
	rt := realtime.New(socketURL, tokens)
	for _, t := range marketplace.EventTypes {
		t := t
		rt.On(string(t), func(data json.RawMessage) {
			ev, err := marketplace.DecodeEvent(t, data)
			if err == nil {
				err = coord.ApplyEvent(ev)
			}
			if err != nil {
				slog.Warn("dropping listing event", "type", t, "error", err)
			}
		})
	}
	return rt
}
