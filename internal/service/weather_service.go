package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/pkg/utils"
)

const iconURLTemplate = "http://openweathermap.org/img/wn/%s@2x.png"

// WeatherConfig configures the OpenWeatherMap client
type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// BreakerFailures consecutive transport failures open the circuit;
	// zero disables tripping.
	BreakerFailures uint32
}

// WeatherService talks to the OpenWeatherMap current and forecast endpoints
type WeatherService struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewWeatherService creates a new weather service
func NewWeatherService(cfg WeatherConfig) *WeatherService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures

	return &WeatherService{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return failures > 0 && counts.ConsecutiveFailures >= failures
			},
		}),
	}
}

// statusCode accepts the provider's "cod" as either a number or a string
type statusCode int

func (c *statusCode) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = statusCode(n)
	return nil
}

// looseString accepts a JSON string or any scalar (the forecast endpoint
// reports "message": 0 on success)
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		raw = ""
	}
	*s = looseString(raw)
	return nil
}

type owCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// OpenWeatherResponse represents the current-weather payload
type OpenWeatherResponse struct {
	Cod     statusCode  `json:"cod"`
	Message looseString `json:"message"`
	Name    string      `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
}

// OpenWeatherForecastResponse represents the 5 day / 3 hour forecast payload
type OpenWeatherForecastResponse struct {
	Cod     statusCode          `json:"cod"`
	Message looseString         `json:"message"`
	List    []OpenWeatherPeriod `json:"list"`
}

// OpenWeatherPeriod is one 3-hour forecast slot
type OpenWeatherPeriod struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
}

// CurrentByCity fetches current weather for a city name
func (s *WeatherService) CurrentByCity(ctx context.Context, city string) (domain.CurrentWeather, error) {
	params := url.Values{}
	params.Set("q", city)
	return s.current(ctx, params)
}

// CurrentByCoords fetches current weather for a latitude/longitude pair
func (s *WeatherService) CurrentByCoords(ctx context.Context, lat, lon string) (domain.CurrentWeather, error) {
	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	return s.current(ctx, params)
}

// ForecastByCity fetches the forecast for a city and keeps one entry per day
func (s *WeatherService) ForecastByCity(ctx context.Context, city string) ([]domain.ForecastEntry, error) {
	params := url.Values{}
	params.Set("q", city)

	body, err := s.get(ctx, "forecast", params)
	if err != nil {
		return nil, err
	}

	var payload OpenWeatherForecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("weather: failed to decode forecast response: %w", err)
	}
	if payload.Cod != http.StatusOK {
		return nil, providerError(payload.Cod, payload.Message)
	}

	return DailyForecast(payload.List), nil
}

func (s *WeatherService) current(ctx context.Context, params url.Values) (domain.CurrentWeather, error) {
	body, err := s.get(ctx, "weather", params)
	if err != nil {
		return domain.CurrentWeather{}, err
	}

	var payload OpenWeatherResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.CurrentWeather{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}
	if payload.Cod != http.StatusOK {
		return domain.CurrentWeather{}, providerError(payload.Cod, payload.Message)
	}

	cond := firstCondition(payload.Weather)
	return domain.CurrentWeather{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: utils.RoundTo(payload.Main.Temp, 1),
		Description: utils.Capitalize(cond.Description),
		Icon:        IconURL(cond.Icon),
		IconCode:    cond.Icon,
		RawJSON:     string(body),
	}, nil
}

// get performs one bounded GET and returns the raw body. Transport failures
// come back as *domain.NetworkError; the HTTP status is ignored because the
// provider reports its own status inside the JSON.
func (s *WeatherService) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s?%s", s.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to create request: %w", err)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("weather: unexpected result type %T", result)
	}
	return body, nil
}

// DailyForecast keeps the first period seen for each calendar date, in
// provider order. Periods without a dt_txt are skipped.
func DailyForecast(periods []OpenWeatherPeriod) []domain.ForecastEntry {
	entries := make([]domain.ForecastEntry, 0, 6)
	seen := make(map[string]struct{})

	for _, p := range periods {
		date, _, _ := strings.Cut(p.DtTxt, " ")
		if date == "" {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		cond := firstCondition(p.Weather)
		entries = append(entries, domain.ForecastEntry{
			Date:        date,
			Temperature: utils.RoundTo(p.Main.Temp, 1),
			Description: utils.Capitalize(cond.Description),
			Icon:        IconURL(cond.Icon),
		})
	}

	return entries
}

// IconURL maps a provider icon code to its image URL; empty codes have no icon
func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURLTemplate, code)
}

func firstCondition(items []owCondition) owCondition {
	if len(items) == 0 {
		return owCondition{}
	}
	return items[0]
}

func providerError(code statusCode, message looseString) *domain.ProviderError {
	msg := string(message)
	if msg == "" {
		msg = "Unknown error"
	}
	return &domain.ProviderError{Code: int(code), Message: msg}
}
