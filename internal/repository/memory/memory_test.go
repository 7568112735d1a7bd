package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/internal/repository/repotest"
)

func TestMemoryRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) domain.RecordRepository {
		return NewMemoryRepository()
	})
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	rec := repotest.NewRecord("London", 15.3)
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec.City = "Mutated"

	got, _ := repo.Get(context.Background(), rec.ID)
	if got.City != "London" {
		t.Errorf("expected stored record to be unaffected, got %s", got.City)
	}
}

func TestMemoryRepositoryConcurrentCreate(t *testing.T) {
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(context.Background(), repotest.NewRecord("London", 1))
		}()
	}
	wg.Wait()

	list, _ := repo.List(context.Background())
	if len(list) != 50 {
		t.Fatalf("expected 50 records, got %d", len(list))
	}
	seen := make(map[int64]bool)
	for _, rec := range list {
		if seen[rec.ID] {
			t.Errorf("duplicate id %d", rec.ID)
		}
		seen[rec.ID] = true
	}
}
