package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/avasiliu/plantops/internal/config"
	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/domain/line"
	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/avasiliu/plantops/internal/httpapi"
	"github.com/avasiliu/plantops/internal/idgen"
	"github.com/avasiliu/plantops/internal/sqlite"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "plantopsd",
		Short: "Production scheduling backend for the plant dashboard",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	catalog, err := line.LoadCatalog(cfg.Plan.LineCatalog)
	if err != nil {
		return fmt.Errorf("line catalog error: %w", err)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	orderRepo := sqlite.NewOrderRepository(db)
	stockRepo := sqlite.NewStockRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	ids, err := seedSequence(db, cfg.Plan.OrderPrefix)
	if err != nil {
		return fmt.Errorf("seed id sequence: %w", err)
	}

	grid := line.NewGrid(cfg.Plan.StartHour, cfg.Plan.EndHour)
	activitySvc := activity.NewService(activityRepo, logger)
	orderSvc := order.NewService(
		orderRepo,
		stockRepo,
		logDispatcher{logger},
		ids,
		activityRepo,
		catalog,
		grid,
		logger,
	)

	if err := orderSvc.Refresh(context.Background()); err != nil {
		return fmt.Errorf("prime utilization grid: %w", err)
	}

	api := httpapi.NewServer(orderSvc, activitySvc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: api.Router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "lines", len(catalog.List()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
	return nil
}

// logDispatcher stands in for the downstream dispatch system; the real
// integration is a separate module of the dashboard.
type logDispatcher struct {
	logger *slog.Logger
}

func (d logDispatcher) NotifyDispatch(ctx context.Context, orderID string) error {
	d.logger.Info("order handed to dispatch", "order", orderID)
	return nil
}

// seedSequence starts the id sequence above the highest persisted order id.
func seedSequence(db *sqlite.DB, prefix string) (*idgen.Sequence, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return idgen.NewSequence(prefix, 1), nil
	}

	var maxID string
	if err := db.QueryRow(`SELECT id FROM orders ORDER BY id DESC LIMIT 1`).Scan(&maxID); err != nil {
		return nil, err
	}
	var seq int
	if _, err := fmt.Sscanf(maxID, prefix+"-%d", &seq); err != nil {
		return nil, fmt.Errorf("unparseable order id %q: %w", maxID, err)
	}
	return idgen.NewSequence(prefix, seq+1), nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
