package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	fileadapter "github.com/orderdesk/refundflow/internal/adapters/file"
	httpadapter "github.com/orderdesk/refundflow/internal/adapters/http"
	"github.com/orderdesk/refundflow/internal/adapters/memory"
	redisadapter "github.com/orderdesk/refundflow/internal/adapters/redis"
	"github.com/orderdesk/refundflow/internal/analyzer"
	"github.com/orderdesk/refundflow/internal/catalog"
	"github.com/orderdesk/refundflow/internal/config"
	"github.com/orderdesk/refundflow/internal/ledger"
	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/internal/notify"
	"github.com/orderdesk/refundflow/internal/workflow"
	"github.com/orderdesk/refundflow/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the refund workflow HTTP server",
	Long:  `Starts the RefundFlow engine in server mode, exposing the chat API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		orders, err := catalog.Load(cfg.OrdersFile)
		if err != nil {
			fmt.Printf("Error loading order catalog: %v\n", err)
			os.Exit(1)
		}
		logger.Info("order catalog loaded", "path", cfg.OrdersFile, "orders", orders.Len())

		refunds := ledger.New(cfg.LedgerFile, ledger.WithLogger(logger))

		classifier := analyzer.NewClassifier(cfg.Classifier.APIKey,
			analyzer.WithClassifierModel(cfg.Classifier.Model),
			analyzer.WithClassifierBaseURL(cfg.Classifier.BaseURL),
			analyzer.WithClassifierLogger(logger),
		)
		verifier := analyzer.NewVerifier(cfg.Vision.APIKey,
			analyzer.WithVerifierModel(cfg.Vision.Model),
			analyzer.WithVerifierBaseURL(cfg.Vision.BaseURL),
			analyzer.WithVerifierLogger(logger),
		)
		notifier := notify.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password,
			notify.WithLogger(logger),
		)

		stages := workflow.NewStages(orders, classifier, verifier, notifier, refunds,
			workflow.WithStagesLogger(logger),
		)
		engine := workflow.NewEngine(stages,
			workflow.WithLogger(logger),
			workflow.WithHooks(metricsHooks()),
		)

		sessions, err := buildSessions(cfg, logger)
		if err != nil {
			fmt.Printf("Error configuring session store: %v\n", err)
			os.Exit(1)
		}

		handler := httpadapter.NewHandler(engine, sessions, cfg.UploadsDir,
			httpadapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting server",
				"addr", srv.Addr,
				"store", cfg.Store.Backend,
				"classifier_model", cfg.Classifier.Model,
				"vision_model", cfg.Vision.Model,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding walks a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("server stopped gracefully")
		}
	},
}

// buildSessions assembles the session manager over the configured
// store backend.
func buildSessions(cfg *config.Config, logger *slog.Logger) (*session.Manager, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return session.NewManager(memory.NewStore(), session.WithLogger(logger)), nil

	case config.StoreFile:
		return session.NewManager(fileadapter.New(cfg.Store.Path), session.WithLogger(logger)), nil

	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		store := redisadapter.NewFromClient(client)

		opts := []session.Option{session.WithLogger(logger)}
		if cfg.Store.Redis.Lock {
			opts = append(opts, session.WithLocker(redisadapter.NewLocker(client, "refundflow:")))
		}
		return session.NewManager(store, opts...), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// metricsHooks exposes stage traffic and walk latency to Prometheus.
func metricsHooks() workflow.Hooks {
	stageVisits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refundflow_stage_visits_total",
		Help: "Number of times each workflow stage has executed.",
	}, []string{"stage"})
	walkDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "refundflow_walk_duration_seconds",
		Help:    "Duration of complete workflow walks.",
		Buckets: prometheus.DefBuckets,
	})
	prometheus.MustRegister(stageVisits, walkDuration)

	return workflow.Hooks{
		OnStageEnter: func(ctx context.Context, ev workflow.StageEvent) {
			stageVisits.WithLabelValues(ev.Stage).Inc()
		},
		OnWalkEnd: func(ctx context.Context, ev workflow.WalkEvent) {
			walkDuration.Observe(ev.Duration.Seconds())
		},
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
