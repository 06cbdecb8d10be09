package service

import (
	"context"
	"testing"

	"harmony-match/internal/domain"
)

func TestMemoryWeightsStoreDefaultsForUnknownUser(t *testing.T) {
	store := NewMemoryWeightsStore()
	w, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defaults := domain.DefaultWeights()
	for cat, want := range defaults {
		if w.Weights[cat] != want {
			t.Fatalf("weight %s: expected default %f, got %f", cat, want, w.Weights[cat])
		}
	}
}

func TestMemoryWeightsStoreCopySemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryWeightsStore()

	w := domain.NewPersonalizedWeights("user-1")
	w.Weights[domain.WeightValues] = 0.5
	if err := store.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutar el original después de guardar no debe tocar lo persistido.
	w.Weights[domain.WeightValues] = 0.05
	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Weights[domain.WeightValues] != 0.5 {
		t.Fatalf("stored weights aliased the caller's map: %f", got.Weights[domain.WeightValues])
	}

	// Mutar lo leído tampoco debe tocar lo persistido.
	got.Weights[domain.WeightValues] = 0.6
	again, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Weights[domain.WeightValues] != 0.5 {
		t.Fatalf("reads alias the stored map: %f", again.Weights[domain.WeightValues])
	}
}

func TestMemoryWeightsStoreIgnoresEmptyUser(t *testing.T) {
	store := NewMemoryWeightsStore()
	if err := store.Save(context.Background(), &domain.PersonalizedWeights{UserID: "  "}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}
}
