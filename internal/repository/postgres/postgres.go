package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weatherlog/backend/internal/domain"
)

//go:embed schema.sql
var schema string

const recordColumns = `id, city, country, start_date, end_date, temperature, description, icon, raw_json, created_at`

// PostgresRepository implements domain.RecordRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Connect opens a pool for dsn and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}
	return NewPostgresRepository(pool), nil
}

// Migrate creates the weather_records table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// Create persists a new weather record
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.WeatherRecord) error {
	query := `
		INSERT INTO weather_records (
			city, country, start_date, end_date, temperature, description, icon, raw_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.City, rec.Country, rec.StartDate, rec.EndDate,
		rec.Temperature, rec.Description, rec.Icon, rec.RawJSON,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weather record: %w", err)
	}

	return nil
}

// List returns all records, newest first
func (r *PostgresRepository) List(ctx context.Context) ([]domain.WeatherRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weather_records ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather records: %w", err)
	}
	defer rows.Close()

	results := make([]domain.WeatherRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather record: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate weather records: %w", err)
	}

	return results, nil
}

// Get returns the record with the given id
func (r *PostgresRepository) Get(ctx context.Context, id int64) (domain.WeatherRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weather_records WHERE id = $1`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("postgres: failed to get weather record %d: %w", id, err)
	}
	return rec, nil
}

// Update applies upd in a transaction; on any failure the row is left untouched
func (r *PostgresRepository) Update(ctx context.Context, id int64, upd domain.RecordUpdate) (domain.WeatherRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("postgres: failed to begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE weather_records
		SET city = $1,
		    start_date = $2,
		    end_date = $3,
		    temperature = COALESCE($4, temperature),
		    description = COALESCE($5, description)
		WHERE id = $6
		RETURNING ` + recordColumns

	rec, err := scanRecord(tx.QueryRow(ctx, query,
		upd.City, upd.StartDate, upd.EndDate, upd.Temperature, upd.Description, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("postgres: failed to update weather record %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("postgres: failed to commit update: %w", err)
	}
	return rec, nil
}

// Delete removes the record in a transaction
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM weather_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete weather record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit delete: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Close releases the pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (domain.WeatherRecord, error) {
	var rec domain.WeatherRecord
	err := row.Scan(
		&rec.ID, &rec.City, &rec.Country, &rec.StartDate, &rec.EndDate,
		&rec.Temperature, &rec.Description, &rec.Icon, &rec.RawJSON, &rec.CreatedAt,
	)
	return rec, err
}
