package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/analysis"
	"github.com/wonny/frontier/internal/api"
	"github.com/wonny/frontier/internal/api/handlers"
	"github.com/wonny/frontier/internal/scheduler"
	"github.com/wonny/frontier/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `Starts the HTTP API and the price warm-up scheduler.

Endpoints:
  GET  /health              - Health check (price store, price cache)
  GET  /api/presets         - Preset portfolios and analysis defaults
  POST /api/analyze         - Run one analysis (JSON report)
  POST /api/analyze/chart   - Run one analysis (PNG chart)

Example:
  go run ./cmd/frontier serve
  go run ./cmd/frontier serve --port 9090 --no-scheduler`,
	RunE: runServe,
}

var (
	servePort        string
	serveNoScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: PORT)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "가격 warm-up 스케줄러 비활성화")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== frontier API Server ===")

	// 1. Load config + logger
	env, err := loadEnvironment(false)
	if err != nil {
		return err
	}
	if servePort != "" {
		env.cfg.Port = servePort
	}
	log := env.log

	log.WithFields(map[string]interface{}{
		"port":     env.cfg.Port,
		"env":      env.cfg.Env,
		"presets":  len(env.analysis.Presets),
		"analysis": env.cfg.AnalysisFile,
	}).Info("Initializing API server")

	// 2. Price stack (store/cache optional)
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	provider, err := env.priceProvider(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer env.Close()

	// 3. Service + handlers
	service, err := analysis.NewService(env.analysis, provider, log)
	if err != nil {
		return err
	}
	analysisHandler := handlers.NewAnalysisHandler(service, api.AnalyzeTimeout, log)
	healthHandler := handlers.NewHealthHandler(env.db, env.redis)

	// 4. Router + server
	router := api.NewRouter(analysisHandler, healthHandler, log)
	server := api.New(env.cfg, log, router)

	// 5. Scheduler
	var sched *scheduler.Scheduler
	if !serveNoScheduler && env.cfg.WarmupSchedule != "" {
		sched = scheduler.New(log)
		job := jobs.NewPriceWarmupJob(provider, env.analysis, env.cfg.WarmupSchedule, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register warm-up job: %w", err)
		}
		sched.Start()
	}

	// 6. Start server with graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", env.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	printList(os.Stdout, []string{
		"GET  /health",
		"GET  /api/presets",
		"POST /api/analyze",
		"POST /api/analyze/chart",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		if sched != nil {
			sched.Stop()
		}
		return err
	}

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
