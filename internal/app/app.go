// Package app wires the stores, services and HTTP server together.
package app

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tmercier/boutique/internal/api"
	"github.com/tmercier/boutique/internal/auth"
	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/payment"
	"github.com/tmercier/boutique/internal/memory"
	"github.com/tmercier/boutique/internal/seed"
	"github.com/tmercier/boutique/internal/snapshot"
	"github.com/tmercier/boutique/pkg/health"
	"github.com/tmercier/boutique/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pepper := []byte(cfg.SessionPepper)
	if len(pepper) == 0 {
		// Sessions live in memory anyway; a random per-process pepper only
		// means tokens do not survive a restart, which they would not.
		pepper = make([]byte, 32)
		if _, err := rand.Read(pepper); err != nil {
			return errors.Wrap(err, "generate session pepper")
		}
		lg.Warn("No session pepper configured, generated a per-process one")
	}

	stores := memory.NewStores()
	sessions := auth.NewSessionManager(pepper)
	authSvc := auth.NewService(stores.Users, sessions)
	cartSvc := cart.NewService(stores.Carts, stores.Products)
	gateway := payment.NewSimGateway()
	orderSvc := order.NewService(
		stores.Products,
		stores.Products,
		cartSvc,
		stores.Orders,
		stores.Payments,
		gateway,
		stores.Invoices,
		stores.Deliveries,
		stores.Users,
		lg.Named("order"),
	)
	exporter := snapshot.NewExporter(stores)

	if cfg.Demo {
		if err := seed.Demo(ctx, stores.Products, stores.Users); err != nil {
			return errors.Wrap(err, "seed demo data")
		}
		lg.Info("Demo catalog and accounts seeded")
	}

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("stores", time.Second, func(ctx context.Context) error {
		_, err := stores.Products.List(ctx)
		return err
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	h := api.NewHandler(authSvc, stores.Products, cartSvc, orderSvc,
		stores.Invoices, stores.Payments, stores.Users, exporter)

	root := chi.NewRouter()
	root.Get("/livez", healthSvc.LiveEndpoint)
	root.Get("/readyz", healthSvc.ReadyEndpoint)
	root.Mount("/api", h.Routes())

	handler := httpmiddleware.Wrap(root,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)
	handler = otelhttp.NewHandler(handler, "boutique-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           handler,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	return g.Wait()
}
