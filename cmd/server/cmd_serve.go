package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/weatherlog/backend/internal/delivery/http"
	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/repository/memory"
	"github.com/weatherlog/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Database connection
	var repo domain.RecordRepository
	repo, err = openRepository(cmd.Context(), cfg)
	if err != nil {
		log.Printf("Warning: Could not open database: %v", err)
		log.Println("Running with in-memory history only")
		repo = memory.NewMemoryRepository()
	}
	defer repo.Close()

	// Dependency Injection: Services
	weatherSvc := service.NewWeatherService(service.WeatherConfig{
		APIKey:          cfg.OpenWeatherAPIKey,
		BaseURL:         cfg.OpenWeatherBaseURL,
		Timeout:         cfg.HTTPTimeout,
		BreakerFailures: cfg.BreakerFailures,
	})
	lookupSvc := service.NewLookupService(weatherSvc, repo)
	historySvc := service.NewHistoryService(repo)

	// Fiber App
	app := http.NewApp(http.AppConfig{
		SecretKey: cfg.SecretKey,
		AccessLog: true,
	}, http.NewHandler(lookupSvc, historySvc))

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
	return nil
}
