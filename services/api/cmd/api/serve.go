package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"golang.org/x/sync/errgroup"

	"github.com/cimillas/pro-portal/services/api/internal/adapter"
	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/clock"
	"github.com/cimillas/pro-portal/services/api/internal/imagecrop"
	"github.com/cimillas/pro-portal/services/api/internal/metric"
	"github.com/cimillas/pro-portal/services/api/internal/pcapi"
	"github.com/cimillas/pro-portal/services/api/internal/storage/postgres"
	"github.com/cimillas/pro-portal/services/api/internal/storage/redis"
	transporthttp "github.com/cimillas/pro-portal/services/api/internal/transport/http"
	"github.com/cimillas/pro-portal/services/api/migrations"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	imagePrefix       = "banners/"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	if _, err := migrations.Apply(ctx, pool, logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	prefs := redis.NewVenuePreferences(rdb, cfg.GetLastVenueTTL())

	images, err := imagecrop.OpenStore(ctx, cfg.ImageBucketURL, imagePrefix)
	if err != nil {
		return err
	}
	defer images.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := metric.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	backend := pcapi.New(cfg.PCAPIBaseURL,
		pcapi.WithAuthToken(cfg.PCAPIToken),
		pcapi.WithTimeout(cfg.GetAdapterTimeout()),
		pcapi.WithLogger(logger.Named("pcapi")),
	)
	adapters := adapter.New(backend,
		adapter.WithLogger(logger.Named("adapter")),
		adapter.WithObserver(metrics),
	)

	wizards := app.NewWizardService(
		postgres.NewSessionRepository(pool),
		prefs,
		adapters,
		clock.NewSystem(),
		app.WithWizardLogger(logger.Named("wizard")),
		app.WithWizardObserver(metrics),
		app.WithSubmitTimeout(cfg.GetAdapterTimeout()),
	)
	venues := app.NewVenueService(prefs, images, adapters, logger.Named("venue"))

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Wizards: wizards,
		Venues:  venues,
		Offers:  adapters,
		Checks: map[string]transporthttp.Pinger{
			"postgres": pool,
			"redis":    prefs,
		},
		CORS: transporthttp.CORSPolicy{
			Origins: cfg.CORSOrigins,
			MaxAge:  cfg.GetCORSMaxAge(),
		},
		Logger:   logger.Named("http"),
		Observer: metrics,
		Gatherer: reg,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
