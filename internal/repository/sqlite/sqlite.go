// Package sqlite is the file-backed history store used when no
// DATABASE_URL is configured. It uses the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/weatherlog/backend/internal/domain"
)

//go:embed schema.sql
var schema string

// timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000Z"

const recordColumns = `id, city, country, start_date, end_date, temperature, description, icon, raw_json, created_at`

// SQLiteRepository implements domain.RecordRepository
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("sqlite: warning: could not set WAL mode:", err)
	}

	repo := &SQLiteRepository{db: db, now: time.Now}
	if err := repo.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the weather_records table if it does not exist
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}
	return nil
}

// Create persists a new weather record
func (r *SQLiteRepository) Create(ctx context.Context, rec *domain.WeatherRecord) error {
	createdAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO weather_records (
			city, country, start_date, end_date, temperature, description, icon, raw_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.City, rec.Country, rec.StartDate, rec.EndDate,
		rec.Temperature, rec.Description, rec.Icon, rec.RawJSON,
		createdAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save weather record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read inserted id: %w", err)
	}

	rec.ID = id
	rec.CreatedAt = createdAt.Truncate(time.Microsecond)
	return nil
}

// List returns all records, newest first
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.WeatherRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM weather_records ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query weather records: %w", err)
	}
	defer rows.Close()

	out := make([]domain.WeatherRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan weather record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate weather records: %w", err)
	}
	return out, nil
}

// Get returns the record with the given id
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (domain.WeatherRecord, error) {
	return getRecord(ctx, r.db, id)
}

// Update applies upd in a transaction; on any failure the row is left untouched
func (r *SQLiteRepository) Update(ctx context.Context, id int64, upd domain.RecordUpdate) (domain.WeatherRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("sqlite: failed to begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE weather_records
		SET city = ?,
		    start_date = ?,
		    end_date = ?,
		    temperature = COALESCE(?, temperature),
		    description = COALESCE(?, description)
		WHERE id = ?`,
		upd.City, upd.StartDate, upd.EndDate, upd.Temperature, upd.Description, id,
	)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("sqlite: failed to update weather record %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}

	rec, err := getRecord(ctx, tx, id)
	if err != nil {
		return domain.WeatherRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("sqlite: failed to commit update: %w", err)
	}
	return rec, nil
}

// Delete removes the record in a transaction
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM weather_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete weather record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit delete: %w", err)
	}
	return nil
}

// Health checks the database file is reachable
func (r *SQLiteRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q queryer, id int64) (domain.WeatherRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM weather_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("sqlite: failed to get weather record %d: %w", id, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (domain.WeatherRecord, error) {
	var (
		rec       domain.WeatherRecord
		country   sql.NullString
		startDate sql.NullString
		endDate   sql.NullString
		icon      sql.NullString
		rawJSON   sql.NullString
		createdAt string
	)
	err := s.Scan(
		&rec.ID, &rec.City, &country, &startDate, &endDate,
		&rec.Temperature, &rec.Description, &icon, &rawJSON, &createdAt,
	)
	if err != nil {
		return rec, err
	}

	rec.Country = nullable(country)
	rec.StartDate = nullable(startDate)
	rec.EndDate = nullable(endDate)
	rec.Icon = nullable(icon)
	rec.RawJSON = nullable(rawJSON)

	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return rec, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return rec, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
