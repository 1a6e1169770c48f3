// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	jwttoken "volition/internal/jwt_token"
	"volition/internal/platform/config"
	"volition/internal/platform/httpserver"
	"volition/internal/platform/logger"
	"volition/internal/platform/metrics"
	platformmw "volition/internal/platform/middleware"
	"volition/internal/slack"
	httptransport "volition/internal/transport/http"
	"volition/internal/volition"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		slog.Info("export the SLACK_* variables (or provide config.yaml) before rerunning")
		os.Exit(1)
	}

	log := logger.New(cfg.Logger.Level)
	m := metrics.New()

	store := volition.NewMemoryStore(cfg.Volition.Capacity)
	core := volition.New(
		volition.WithStore(store),
		volition.WithTrustedWorkspaces(cfg.Slack.TrustedWorkspaceIDs...),
		volition.WithDuplicateWindow(cfg.Volition.DuplicateWindow),
		volition.WithCooldown(cfg.Volition.Cooldown),
		volition.WithLogger(log),
	)

	client := slack.NewClient(cfg.Slack.APIBaseURL, cfg.Slack.BotToken, log)
	verifier := slack.NewVerifier(cfg.Slack.SigningSecret)

	var adminValidator platformmw.TokenValidator
	if cfg.Admin.JWTSigningKey != "" {
		adminValidator = jwttoken.New(cfg.Admin.JWTSigningKey)
	} else {
		log.Warn("admin surface disabled: no jwt signing key configured")
	}

	handler := httptransport.NewHandler(core, store, client, m, log)
	router := httptransport.NewRouter(handler, verifier, rate.NewLimiter(rate.Limit(50), 100), adminValidator, log)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Best-effort startup heartbeat; a failed post must not block startup.
	go func() {
		hbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := client.Heartbeat(hbCtx, cfg.Slack.HomeChannel); err != nil {
			log.Warn("unable to post startup heartbeat", "error", err)
		}
	}()

	log.Info("starting volition server", "addr", cfg.Server.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
