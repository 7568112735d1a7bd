package service

import (
	"context"
	"fmt"
	"io"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/export"
	"github.com/weatherlog/backend/internal/validation"
)

// HistoryService manages saved lookups
type HistoryService struct {
	repo domain.RecordRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(repo domain.RecordRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns every record, newest first
func (s *HistoryService) List(ctx context.Context) ([]domain.WeatherRecord, error) {
	return s.repo.List(ctx)
}

// Get returns one record or domain.ErrRecordNotFound
func (s *HistoryService) Get(ctx context.Context, id int64) (domain.WeatherRecord, error) {
	return s.repo.Get(ctx, id)
}

// Update validates the form and applies it. Empty dates are cleared; an
// empty temperature or description keeps the stored value.
func (s *HistoryService) Update(ctx context.Context, id int64, form validation.UpdateForm) (domain.WeatherRecord, error) {
	if err := form.Validate(); err != nil {
		return domain.WeatherRecord{}, err
	}

	upd := domain.RecordUpdate{
		City:        form.City,
		StartDate:   domain.StringPtr(form.StartDate),
		EndDate:     domain.StringPtr(form.EndDate),
		Description: domain.StringPtr(form.Description),
	}
	if form.Temperature != "" {
		temp, err := validation.ParseTemperature(form.Temperature)
		if err != nil {
			return domain.WeatherRecord{}, &validation.Error{Field: "Temperature", Message: "Temperature must be a number."}
		}
		upd.Temperature = &temp
	}

	return s.repo.Update(ctx, id, upd)
}

// Delete removes a record
func (s *HistoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ExportCSV writes the full history, newest first, to w
func (s *HistoryService) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("history: failed to load records for export: %w", err)
	}
	return export.WriteCSV(w, records)
}

// Health checks the underlying store
func (s *HistoryService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}
