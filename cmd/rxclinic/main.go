package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/config"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/handler"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/service"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/tracer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rxclinic",
		Short:        "Clinical prescription service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the clinical schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Connect(cfg.Database, log, nil)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			if err := database.Migrate(db, log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if seed {
				if err := database.Seed(cmd.Context(), db, log); err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert reference doctors, medicaments and a demo patient")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func runServer(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}

	m := metrics.NewCollector(cfg.App.Name, prometheus.DefaultRegisterer)

	db, err := database.Connect(cfg.Database, log, m)
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	publisher := events.NewPublisher(cfg.Events, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("closing event publisher", zap.Error(err))
		}
	}()

	svc := service.NewPrescriptionService(
		service.Repositories{
			Patients:      postgres.NewPatientRepository(db),
			Doctors:       postgres.NewDoctorRepository(db),
			Medicaments:   postgres.NewMedicamentRepository(db),
			Prescriptions: postgres.NewPrescriptionRepository(db),
		},
		postgres.NewTransactor(db),
		publisher,
		m,
		log.Named("prescriptions"),
	)

	router := handler.NewRouter(handler.RouterDeps{
		Config:        cfg,
		Log:           log,
		Metrics:       m,
		MetricsHTTP:   metrics.Handler(),
		Prescriptions: svc,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("flushing traces", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("closing database", zap.Error(err))
	}
}
