package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/config"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/httpserver"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/logger"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/metrics"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/middleware"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(config.Log{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	module, err := attorney.Build(ctx, cfg, log, reg)
	if err != nil {
		log.Error("failed to initialise attorney module", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := module.Store.Ping(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable"})
			return
		}
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(reg))

	version := cfg.Server.APIVersion
	module.Handler.RegisterPublic(r, "/public/attorney"+version, cfg.Server.PublicAPI)
	module.Handler.RegisterAdmin(r, "/directives/attorney"+version)
	module.Handler.RegisterUser(r, version+"/shared/attorney")

	srv := httpserver.New(cfg.Server.Addr, r, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vg-ms-attorney",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Driver,
			"identity", cfg.Identity.Driver,
			"validator", cfg.AuthService.Driver,
			"public_api", cfg.Server.PublicAPI,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		module.Close(shutdownCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
