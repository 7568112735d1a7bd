package domain

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when no record matches the requested id
var ErrRecordNotFound = errors.New("weather record not found")

// RecordRepository defines the interface for history persistence.
// The domain owns the contract; storage backends implement it.
type RecordRepository interface {
	// Create inserts rec and fills in its ID and CreatedAt
	Create(ctx context.Context, rec *WeatherRecord) error

	// List returns every record, newest first
	List(ctx context.Context) ([]WeatherRecord, error)

	// Get returns a single record
	Get(ctx context.Context, id int64) (WeatherRecord, error)

	// Update applies upd inside a transaction and returns the stored record
	Update(ctx context.Context, id int64, upd RecordUpdate) (WeatherRecord, error)

	// Delete removes a record inside a transaction
	Delete(ctx context.Context, id int64) error

	// Health checks storage connectivity
	Health(ctx context.Context) error

	// Close releases the underlying connections
	Close() error
}
