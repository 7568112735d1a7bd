package service

import (
	"context"
	"fmt"
	"log"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/validation"
)

// WeatherProvider is the subset of the weather client used by the services
type WeatherProvider interface {
	CurrentByCity(ctx context.Context, city string) (domain.CurrentWeather, error)
	CurrentByCoords(ctx context.Context, lat, lon string) (domain.CurrentWeather, error)
	ForecastByCity(ctx context.Context, city string) ([]domain.ForecastEntry, error)
}

var _ WeatherProvider = (*WeatherService)(nil)

// LookupResult is everything the home page shows after a successful search
type LookupResult struct {
	Weather  domain.CurrentWeather
	Record   domain.WeatherRecord
	Forecast []domain.ForecastEntry
}

// LookupService runs a weather search and records it in history
type LookupService struct {
	weather WeatherProvider
	repo    domain.RecordRepository
}

// NewLookupService creates a new lookup service
func NewLookupService(weather WeatherProvider, repo domain.RecordRepository) *LookupService {
	return &LookupService{
		weather: weather,
		repo:    repo,
	}
}

// Search validates the form, fetches current weather, saves a history record
// and then fetches the forecast. Validation failures come back as
// *validation.Error and provider failures as *domain.ProviderError or
// *domain.NetworkError; in those cases nothing is stored. A failed forecast
// is logged and leaves Forecast nil.
func (s *LookupService) Search(ctx context.Context, form validation.SearchForm) (LookupResult, error) {
	if err := form.Validate(); err != nil {
		return LookupResult{}, err
	}

	current, err := s.weather.CurrentByCity(ctx, form.City)
	if err != nil {
		return LookupResult{}, err
	}

	city := current.City
	if city == "" {
		city = form.City
	}

	record := domain.WeatherRecord{
		City:        city,
		Country:     domain.StringPtr(current.Country),
		StartDate:   domain.StringPtr(form.StartDate),
		EndDate:     domain.StringPtr(form.EndDate),
		Temperature: current.Temperature,
		Description: current.Description,
		Icon:        domain.StringPtr(current.IconCode),
		RawJSON:     domain.StringPtr(current.RawJSON),
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return LookupResult{}, fmt.Errorf("lookup: failed to save weather record: %w", err)
	}

	result := LookupResult{
		Weather: current,
		Record:  record,
	}

	forecast, err := s.weather.ForecastByCity(ctx, form.City)
	if err != nil {
		log.Printf("Forecast fetch error for %q: %v", form.City, err)
		return result, nil
	}
	result.Forecast = forecast

	return result, nil
}

// ByCoords validates the coordinates and fetches current weather without
// touching history
func (s *LookupService) ByCoords(ctx context.Context, q validation.CoordsQuery) (domain.CurrentWeather, error) {
	if err := q.Validate(); err != nil {
		return domain.CurrentWeather{}, err
	}
	return s.weather.CurrentByCoords(ctx, q.Lat, q.Lon)
}
