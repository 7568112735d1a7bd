// Package memory keeps history in process memory. It backs the demo
// mode used when no database can be opened, and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/weatherlog/backend/internal/domain"
)

// MemoryRepository implements domain.RecordRepository
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[int64]domain.WeatherRecord
	nextID  int64
	now     func() time.Time
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[int64]domain.WeatherRecord),
		nextID:  1,
		now:     time.Now,
	}
}

// Create stores a copy of rec
func (r *MemoryRepository) Create(ctx context.Context, rec *domain.WeatherRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	rec.CreatedAt = r.now().UTC()
	r.nextID++
	r.records[rec.ID] = *rec
	return nil
}

// List returns all records, newest first
func (r *MemoryRepository) List(ctx context.Context) ([]domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.WeatherRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get returns the record with the given id
func (r *MemoryRepository) Get(ctx context.Context, id int64) (domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// Update applies upd to the stored record
func (r *MemoryRepository) Update(ctx context.Context, id int64, upd domain.RecordUpdate) (domain.WeatherRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.WeatherRecord{}, domain.ErrRecordNotFound
	}
	upd.Apply(&rec)
	r.records[id] = rec
	return rec, nil
}

// Delete removes the record
func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// Health always returns nil
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}
