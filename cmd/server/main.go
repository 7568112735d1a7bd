package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/weatherlog/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "weatherlog",
	Short: "Weatherlog - weather lookup and history server",
	Long: `Weatherlog looks up current weather and a short forecast from
OpenWeatherMap, keeps every lookup in a history store and exports it as CSV.
Running without a subcommand starts the web server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using system environment")
		}
	},
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
