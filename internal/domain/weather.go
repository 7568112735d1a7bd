package domain

import (
	"fmt"
	"time"
)

// CurrentWeather is the normalized result of a current-weather lookup
type CurrentWeather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	IconCode    string  `json:"-"`
	RawJSON     string  `json:"-"`
}

// ForecastEntry is one day of the short forecast
type ForecastEntry struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// WeatherRecord is a persisted weather lookup
type WeatherRecord struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Country     *string   `json:"country"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon"`
	RawJSON     *string   `json:"raw_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordUpdate carries the editable fields of a WeatherRecord.
// City and the dates are always written (nil date clears it);
// Temperature and Description are left unchanged when nil.
type RecordUpdate struct {
	City        string
	StartDate   *string
	EndDate     *string
	Temperature *float64
	Description *string
}

// Apply writes the update onto r
func (u RecordUpdate) Apply(r *WeatherRecord) {
	r.City = u.City
	r.StartDate = u.StartDate
	r.EndDate = u.EndDate
	if u.Temperature != nil {
		r.Temperature = *u.Temperature
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
}

// ProviderError is a non-200 status reported inside the provider's JSON body
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned code %d: %s", e.Code, e.Message)
}

// NetworkError wraps a transport-level failure talking to the provider
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
