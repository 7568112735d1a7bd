package main

import (
	"context"
	"log"
	"time"

	"github.com/weatherlog/backend/internal/config"
	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/repository/postgres"
	"github.com/weatherlog/backend/internal/repository/sqlite"
)

// openRepository connects to PostgreSQL when DATABASE_URL is set and to the
// SQLite file otherwise, creating the schema in either case
func openRepository(ctx context.Context, cfg *config.Config) (domain.RecordRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.UsePostgres() {
		repo, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		log.Println("Connected to PostgreSQL")
		return repo, nil
	}

	repo, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Printf("Using SQLite database %s", cfg.SQLitePath)
	return repo, nil
}
