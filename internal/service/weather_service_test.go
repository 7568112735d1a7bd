package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/weatherlog/backend/internal/domain"
)

const londonJSON = `{"cod":200,"name":"London","sys":{"country":"GB"},"main":{"temp":15.34},
"weather":[{"icon":"01d","description":"clear sky"}]}`

const forecastJSON = `{"cod":"200","message":0,"list":[
{"dt_txt":"2024-05-01 12:00:00","main":{"temp":14.06},"weather":[{"icon":"02d","description":"few clouds"}]},
{"dt_txt":"2024-05-01 15:00:00","main":{"temp":16.0},"weather":[{"icon":"03d","description":"scattered clouds"}]},
{"dt_txt":"","main":{"temp":1},"weather":[]},
{"dt_txt":"2024-05-02 00:00:00","main":{"temp":9.97},"weather":[{"icon":"10n","description":"light rain"}]},
{"dt_txt":"2024-05-02 03:00:00","main":{"temp":8.0},"weather":[{"icon":"10n","description":"light rain"}]},
{"dt_txt":"2024-05-03 00:00:00","main":{"temp":7.0},"weather":[]}
]}`

func newTestWeatherService(t *testing.T, handler http.HandlerFunc) (*WeatherService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewWeatherService(WeatherConfig{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		Timeout:         2 * time.Second,
		BreakerFailures: 5,
	}), srv
}

func TestCurrentByCity(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "London" || q.Get("appid") != "test-key" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(londonJSON))
	})

	got, err := svc.CurrentByCity(context.Background(), "London")
	if err != nil {
		t.Fatalf("CurrentByCity failed: %v", err)
	}

	if got.City != "London" || got.Country != "GB" {
		t.Errorf("unexpected location %s/%s", got.City, got.Country)
	}
	if got.Temperature != 15.3 {
		t.Errorf("expected 15.3, got %v", got.Temperature)
	}
	if got.Description != "Clear sky" {
		t.Errorf("expected capitalized description, got %q", got.Description)
	}
	if got.IconCode != "01d" || got.Icon != "http://openweathermap.org/img/wn/01d@2x.png" {
		t.Errorf("unexpected icon %q / %q", got.IconCode, got.Icon)
	}
	if got.RawJSON != londonJSON {
		t.Error("expected raw body to be kept verbatim")
	}
}

func TestCurrentByCityProviderError(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := svc.CurrentByCity(context.Background(), "Atlantis")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Code != 404 || perr.Message != "city not found" {
		t.Errorf("unexpected provider error %+v", perr)
	}
}

func TestCurrentMissingCodIsUnknownError(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := svc.CurrentByCity(context.Background(), "Nowhere")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Code != 0 || perr.Message != "Unknown error" {
		t.Errorf("unexpected provider error %+v", perr)
	}
}

func TestCurrentByCoords(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "51.5" || q.Get("lon") != "-0.12" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("q") {
			t.Error("coordinate lookup must not send q")
		}
		w.Write([]byte(londonJSON))
	})

	got, err := svc.CurrentByCoords(context.Background(), "51.5", "-0.12")
	if err != nil {
		t.Fatalf("CurrentByCoords failed: %v", err)
	}
	if got.City != "London" {
		t.Errorf("expected London, got %s", got.City)
	}
}

func TestNetworkError(t *testing.T) {
	svc, srv := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := svc.CurrentByCity(context.Background(), "London")
	var nerr *domain.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	svc := NewWeatherService(WeatherConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := svc.CurrentByCity(context.Background(), "London")
	var nerr *domain.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError on timeout, got %v", err)
	}
}

func TestMalformedBodyIsNotNetworkError(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := svc.CurrentByCity(context.Background(), "London")
	if err == nil {
		t.Fatal("expected decode error")
	}
	var nerr *domain.NetworkError
	var perr *domain.ProviderError
	if errors.As(err, &nerr) || errors.As(err, &perr) {
		t.Errorf("expected plain decode error, got %T", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewWeatherService(WeatherConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second, BreakerFailures: 2})

	for i := 0; i < 3; i++ {
		_, err := svc.CurrentByCity(context.Background(), "London")
		var nerr *domain.NetworkError
		if !errors.As(err, &nerr) {
			t.Fatalf("attempt %d: expected NetworkError, got %v", i, err)
		}
	}

	if state := svc.breaker.State().String(); state != "open" {
		t.Errorf("expected open breaker, got %s", state)
	}
}

func TestProviderErrorsDoNotTripBreaker(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	for i := 0; i < 10; i++ {
		svc.CurrentByCity(context.Background(), "Atlantis")
	}
	if state := svc.breaker.State().String(); state != "closed" {
		t.Errorf("expected closed breaker, got %s", state)
	}
}

func TestForecastByCity(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(forecastJSON))
	})

	got, err := svc.ForecastByCity(context.Background(), "London")
	if err != nil {
		t.Fatalf("ForecastByCity failed: %v", err)
	}

	wantDates := []string{"2024-05-01", "2024-05-02", "2024-05-03"}
	if len(got) != len(wantDates) {
		t.Fatalf("expected %d entries, got %d", len(wantDates), len(got))
	}
	for i, d := range wantDates {
		if got[i].Date != d {
			t.Errorf("entry %d: expected %s, got %s", i, d, got[i].Date)
		}
	}

	first := got[0]
	if first.Temperature != 14.1 || first.Description != "Few clouds" || first.Icon != IconURL("02d") {
		t.Errorf("expected first-seen period to win, got %+v", first)
	}
	if got[1].Temperature != 10 {
		t.Errorf("expected 10, got %v", got[1].Temperature)
	}
	if got[2].Icon != "" || got[2].Description != "" {
		t.Errorf("expected no icon for empty weather, got %+v", got[2])
	}
}

func TestForecastProviderError(t *testing.T) {
	svc, _ := newTestWeatherService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod":"401","message":"Invalid API key"}`))
	})

	_, err := svc.ForecastByCity(context.Background(), "London")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Code != 401 {
		t.Fatalf("expected 401 ProviderError, got %v", err)
	}
}

func TestDailyForecastNeverRepeatsDates(t *testing.T) {
	periods := []OpenWeatherPeriod{
		{DtTxt: "2024-01-02 00:00:00"},
		{DtTxt: "2024-01-01 21:00:00"},
		{DtTxt: "2024-01-02 03:00:00"},
		{DtTxt: "2024-01-01 00:00:00"},
	}

	got := DailyForecast(periods)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Date != "2024-01-02" || got[1].Date != "2024-01-01" {
		t.Errorf("expected first-seen order, got %s, %s", got[0].Date, got[1].Date)
	}
}

func TestIconURL(t *testing.T) {
	if IconURL("") != "" {
		t.Error("expected empty icon URL for empty code")
	}
	if got := IconURL("10n"); got != "http://openweathermap.org/img/wn/10n@2x.png" {
		t.Errorf("unexpected icon URL %s", got)
	}
}
