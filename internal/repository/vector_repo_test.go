package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"harmony-match/internal/domain"
)

func TestMemoryVectorRepoUnknownUser(t *testing.T) {
	repo := NewMemoryVectorRepository()
	if _, err := repo.Get(context.Background(), "nobody"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestMemoryVectorRepoCloneSemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()

	v := domain.NewPersonalityVector()
	v.Values[0] = 0.9
	if err := repo.Save(ctx, "user-1", v); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutar el vector del llamador después de guardar no toca lo persistido.
	v.Values[0] = 0.1
	got, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Values[0] != 0.9 {
		t.Fatalf("stored vector aliased the caller's slice: %f", got.Values[0])
	}

	// Mutar lo leído tampoco.
	got.Values[0] = 0.2
	again, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Values[0] != 0.9 {
		t.Fatalf("reads alias the stored vector: %f", again.Values[0])
	}
}

func TestMemoryVectorRepoAppendHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()

	records := []domain.UpdateRecord{
		{Timestamp: time.Now().UTC(), Dimension: 13, OldValue: 0.5, NewValue: 0.55, Source: domain.SourceConversation},
		{Timestamp: time.Now().UTC(), Dimension: 15, OldValue: 0.5, NewValue: 0.45, Source: domain.SourceFeedback},
	}
	if err := repo.AppendHistory(ctx, "user-1", records[:1]); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.AppendHistory(ctx, "user-1", records[1:]); err != nil {
		t.Fatalf("append: %v", err)
	}

	repo.mu.RLock()
	n := len(repo.history["user-1"])
	repo.mu.RUnlock()
	if n != 2 {
		t.Fatalf("expected 2 history records, got %d", n)
	}
}

func TestMemoryVectorRepoSearchSimilarOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()

	probe := domain.NewPersonalityVector()
	for i := range probe.Values {
		probe.Values[i] = float64(i%10) / 10.0
	}

	twin := probe.Clone()
	far := domain.NewPersonalityVector()
	for i := range far.Values {
		far.Values[i] = 1 - probe.Values[i]
	}

	if err := repo.Save(ctx, "far", far); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "twin", twin); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.SearchSimilar(ctx, probe, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].ID != "twin" {
		t.Fatalf("expected the twin first, got %s", got[0].ID)
	}
}

func TestMemoryVectorRepoSearchSimilarHonorsLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVectorRepository()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Save(ctx, id, domain.NewPersonalityVector()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.SearchSimilar(ctx, domain.NewPersonalityVector(), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the limit to cap results at 2, got %d", len(got))
	}
}
