// Package repotest holds the behaviour every domain.RecordRepository
// backend must share. Backend packages call Run from their own tests.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/weatherlog/backend/internal/domain"
)

// Factory returns an empty repository; it is called once per subtest
type Factory func(t *testing.T) domain.RecordRepository

// Run executes the repository contract against newRepo
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAssignsIDAndTimestamp", func(t *testing.T) { testCreate(t, newRepo(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListOrder(t, newRepo(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newRepo(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newRepo(t)) })
	t.Run("UpdatePartial", func(t *testing.T) { testUpdatePartial(t, newRepo(t)) })
	t.Run("UpdateClearsDates", func(t *testing.T) { testUpdateClearsDates(t, newRepo(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newRepo(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("DeleteMissing", func(t *testing.T) { testDeleteMissing(t, newRepo(t)) })
	t.Run("Health", func(t *testing.T) {
		if err := newRepo(t).Health(context.Background()); err != nil {
			t.Errorf("expected healthy repository: %v", err)
		}
	})
}

// NewRecord builds a record the way a successful lookup would
func NewRecord(city string, temp float64) *domain.WeatherRecord {
	return &domain.WeatherRecord{
		City:        city,
		Country:     domain.StringPtr("GB"),
		StartDate:   domain.StringPtr("2024-05-01"),
		EndDate:     domain.StringPtr("2024-05-03"),
		Temperature: temp,
		Description: "Clear sky",
		Icon:        domain.StringPtr("01d"),
		RawJSON:     domain.StringPtr(`{"cod":200}`),
	}
}

func mustCreate(t *testing.T, repo domain.RecordRepository, rec *domain.WeatherRecord) {
	t.Helper()
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func testCreate(t *testing.T, repo domain.RecordRepository) {
	rec := NewRecord("London", 15.3)
	mustCreate(t, repo, rec)

	if rec.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.City != "London" || got.Temperature != 15.3 || got.Description != "Clear sky" {
		t.Errorf("unexpected record %+v", got)
	}
	if domain.StringValue(got.Country) != "GB" || domain.StringValue(got.Icon) != "01d" {
		t.Errorf("unexpected optional fields %+v", got)
	}
	if domain.StringValue(got.RawJSON) != `{"cod":200}` {
		t.Errorf("unexpected raw json %q", domain.StringValue(got.RawJSON))
	}
}

func testListOrder(t *testing.T, repo domain.RecordRepository) {
	first := NewRecord("London", 10)
	second := NewRecord("London", 11)
	third := NewRecord("Paris", 12)
	mustCreate(t, repo, first)
	mustCreate(t, repo, second)
	mustCreate(t, repo, third)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}

	want := []int64{third.ID, second.ID, first.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, list[i].ID)
		}
	}
	if first.ID >= second.ID || second.ID >= third.ID {
		t.Errorf("expected increasing ids, got %d, %d, %d", first.ID, second.ID, third.ID)
	}
}

func testListEmpty(t *testing.T, repo domain.RecordRepository) {
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no records, got %d", len(list))
	}
}

func testGetMissing(t *testing.T, repo domain.RecordRepository) {
	_, err := repo.Get(context.Background(), 4242)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func testUpdatePartial(t *testing.T, repo domain.RecordRepository) {
	rec := NewRecord("London", 15.3)
	mustCreate(t, repo, rec)

	updated, err := repo.Update(context.Background(), rec.ID, domain.RecordUpdate{
		City:      "Leeds",
		StartDate: domain.StringPtr("2024-06-01"),
		EndDate:   domain.StringPtr("2024-06-02"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.City != "Leeds" || domain.StringValue(updated.StartDate) != "2024-06-01" {
		t.Errorf("expected city and dates to change, got %+v", updated)
	}
	if updated.Temperature != 15.3 || updated.Description != "Clear sky" {
		t.Errorf("expected temperature and description unchanged, got %+v", updated)
	}

	temp := -2.5
	desc := "Snow"
	updated, err = repo.Update(context.Background(), rec.ID, domain.RecordUpdate{
		City:        "Leeds",
		Temperature: &temp,
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Temperature != -2.5 || got.Description != "Snow" {
		t.Errorf("expected temperature and description to change, got %+v", got)
	}
	if got.ID != rec.ID || !got.CreatedAt.Equal(updated.CreatedAt) {
		t.Errorf("expected id and created_at to be immutable, got %+v", got)
	}
}

func testUpdateClearsDates(t *testing.T, repo domain.RecordRepository) {
	rec := NewRecord("London", 15.3)
	mustCreate(t, repo, rec)

	got, err := repo.Update(context.Background(), rec.ID, domain.RecordUpdate{City: "London"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.StartDate != nil || got.EndDate != nil {
		t.Errorf("expected dates to be cleared, got %v / %v", got.StartDate, got.EndDate)
	}
}

func testUpdateMissing(t *testing.T, repo domain.RecordRepository) {
	_, err := repo.Update(context.Background(), 4242, domain.RecordUpdate{City: "Nowhere"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, repo domain.RecordRepository) {
	keep := NewRecord("London", 1)
	drop := NewRecord("Paris", 2)
	mustCreate(t, repo, keep)
	mustCreate(t, repo, drop)

	if err := repo.Delete(context.Background(), drop.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("expected only record %d to remain, got %+v", keep.ID, list)
	}

	if _, err := repo.Get(context.Background(), drop.ID); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected deleted record to be gone, got %v", err)
	}
}

func testDeleteMissing(t *testing.T, repo domain.RecordRepository) {
	if err := repo.Delete(context.Background(), 4242); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
