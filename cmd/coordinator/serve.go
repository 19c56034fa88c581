package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/coordinator/internal/config"
	"github.com/cuemby/coordinator/internal/httpapi"
	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/health"
	"github.com/cuemby/coordinator/pkg/jobs"
	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/metrics"
	"github.com/cuemby/coordinator/pkg/orchestrator"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/spf13/cobra"
)

var useMemoryStore bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coordinator's REST API and background job runner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&useMemoryStore, "memory", false, "use an in-memory store instead of Postgres (local development only)")
}

// runServe wires every collaborator described in SPEC_FULL.md's ambient and
// domain stack sections together and runs them until an interrupt or a
// listener error, mirroring warren manager's bootstrap-then-select-on-signal
// shape (cmd/warren/main.go's clusterInitCmd).
func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("coordinator: load config: %w", err)
	}

	store, svc, _, closeStore, err := buildServiceGraph(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	journal := svc.Journal()

	collector := metrics.NewCollector(store)
	collector.Start()
	defer collector.Stop()
	metrics.RegisterComponent("store", true, "")
	metrics.RegisterComponent("jobs", true, "")
	metrics.RegisterComponent("api", true, "")

	apiServer := &http.Server{Addr: cfg.HTTPAddr, Handler: httpapi.New(svc, store, journal)}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsMux.Handle("/health", metrics.HealthHandler())
	metricsMux.Handle("/ready", metrics.ReadyHandler())
	metricsMux.Handle("/live", metrics.LivenessHandler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	errCh := make(chan error, 2)
	go func() {
		log.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("coordinator: API listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		log.Logger.Info().Str("addr", cfg.MetricsAddr).Msg("coordinator: metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	pollStop := startTicker(cfg.PollInterval, func() {
		if err := svc.TriggerStatusPollSweep(ctx); err != nil {
			log.Logger.Error().Err(err).Msg("coordinator: failed to enqueue status polls")
		}
	})
	defer close(pollStop)

	sweepStop := startTicker(cfg.HealthSweepInterval, func() {
		if err := svc.TriggerHealthSweep(ctx); err != nil {
			log.Logger.Error().Err(err).Msg("coordinator: failed to trigger health sweep")
		}
	})
	defer close(sweepStop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("coordinator: shutting down")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("coordinator: server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	return nil
}

// buildServiceGraph constructs the storage, journal, job dispatcher and
// orchestrator Service for the requested backend. The dispatcher and the
// Service it runs jobs against each need a reference to the other before
// either is fully built, so the Service is constructed once with no
// dispatcher and wired to the real one afterward via WithDispatcher/
// SetHandlers, rather than standing up two independent Services.
func buildServiceGraph(ctx context.Context, cfg *config.Config) (storage.Store, *orchestrator.Service, jobs.Dispatcher, func(), error) {
	broker := events.NewBroker()
	publisher := publisherFor(cfg)

	if useMemoryStore {
		store := storage.NewMemoryStore()
		journal := events.NewJournal(store, broker, publisher)
		monitor := health.NewMonitor(store, journal)

		memDispatcher := jobs.NewMemoryDispatcher(nil)
		svc := orchestrator.New(store, journal, monitor, memDispatcher).WithTaskTimeout(cfg.TaskTimeout)
		memDispatcher.SetHandlers(svc)

		log.Logger.Warn().Msg("coordinator: running with in-memory store, state does not survive a restart")
		return store, svc, memDispatcher, func() {}, nil
	}

	pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("coordinator: connect store: %w", err)
	}

	journal := events.NewJournal(pg, broker, publisher)
	monitor := health.NewMonitor(pg, journal)

	svc := orchestrator.New(pg, journal, monitor, nil).WithTaskTimeout(cfg.TaskTimeout)

	river, err := jobs.NewRiverDispatcher(ctx, pg.Pool(), svc)
	if err != nil {
		pg.Close()
		return nil, nil, nil, nil, fmt.Errorf("coordinator: start job dispatcher: %w", err)
	}
	svc.WithDispatcher(river)

	closeFn := func() {
		_ = river.Stop(ctx)
		pg.Close()
	}
	return pg, svc, river, closeFn, nil
}

func publisherFor(cfg *config.Config) events.Publisher {
	if cfg.WebhookURL == "" {
		return events.NopPublisher{}
	}
	return events.NewWebhookPublisher(cfg.WebhookURL)
}

// startTicker runs fn every interval until the returned channel is closed.
func startTicker(interval time.Duration, fn func()) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
	return stop
}
