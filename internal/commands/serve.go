package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/handler"
	"github.com/pkordes/eldplan/internal/middleware"
	"github.com/pkordes/eldplan/internal/service"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var secureCookies bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web planner and review pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(os.Stdout, cfg.LogLevel)
		slog.SetDefault(logger)
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the session cookie Secure (serve behind TLS)")
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	slots, closeSlots, err := openSlots(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSlots()

	geo, err := newGeocoder(cfg)
	if err != nil {
		return err
	}
	logger.Info("geocoder selected", "geocoder", cfg.Geocoder, "store", cfg.StoreBackend)

	planners := service.NewPlannerRegistry(service.PlannerConfig{
		Geocoder: geo,
		Slots:    slots,
		Input: geocode.Options{
			Filters:  geocode.DefaultFilters(),
			Debounce: cfg.Debounce,
			Timeout:  cfg.GeocodeTimeout,
		},
		Map:           mountConfig(cfg),
		SubmitDelay:   cfg.SubmitDelay,
		RedirectDelay: cfg.RedirectDelay,
		IdleTTL:       cfg.PlannerIdleTTL,
		Logger:        logger,
	})
	defer planners.Close()

	review := service.NewReviewService(service.ReviewConfig{
		Slots:      slots,
		Map:        mountConfig(cfg),
		PrintDelay: cfg.PrintDelay,
		Logger:     logger,
	})

	// Session runs before SlogLogger so each request line carries session_id.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSessionHandler(secureCookies))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	handler.NewServer(handler.Deps{
		Geocoder: geo,
		Planners: func(id uuid.UUID) (handler.Planner, error) {
			p, err := planners.Get(id)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		Review:   review,
		Page:     pageConfig(cfg),
		Logger: logger,
	}).Routes(r)

	// WriteTimeout leaves room for the simulated submit and print delays.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go planners.Run(ctx, 0)

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("commands.serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("commands.serve: shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
