package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/repository/repotest"
)

func openTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "weather_test.db")

	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) domain.RecordRepository {
		return openTestRepository(t)
	})
}

func TestSQLiteListOrdersByCreatedAt(t *testing.T) {
	repo := openTestRepository(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour)}
	i := 0
	repo.now = func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	newest := repotest.NewRecord("Newest", 1)
	oldest := repotest.NewRecord("Oldest", 2)
	middle := repotest.NewRecord("Middle", 3)
	for _, rec := range []*domain.WeatherRecord{newest, oldest, middle} {
		if err := repo.Create(context.Background(), rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"Newest", "Middle", "Oldest"}
	for i, city := range want {
		if list[i].City != city {
			t.Errorf("position %d: expected %s, got %s", i, city, list[i].City)
		}
	}
	if !list[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected created_at to round-trip, got %v", list[0].CreatedAt)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "weather_test.db")

	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	rec := repotest.NewRecord("London", 15.3)
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = repo.Close()

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.City != "London" {
		t.Errorf("expected London, got %s", got.City)
	}
}

func TestSQLiteNullableColumns(t *testing.T) {
	repo := openTestRepository(t)

	rec := &domain.WeatherRecord{City: "Nowhere", Temperature: 0, Description: "Mist"}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Country != nil || got.StartDate != nil || got.Icon != nil || got.RawJSON != nil {
		t.Errorf("expected NULL columns to scan as nil, got %+v", got)
	}
}
