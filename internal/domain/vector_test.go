package domain

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewPersonalityVectorIsNeutral(t *testing.T) {
	v := NewPersonalityVector()
	if len(v.Values) != VectorDimensions {
		t.Fatalf("expected %d values, got %d", VectorDimensions, len(v.Values))
	}
	for i := range v.Values {
		if v.Values[i] != 0.5 {
			t.Fatalf("dimension %d: expected neutral 0.5, got %f", i, v.Values[i])
		}
		if v.Confidence[i] != 0 {
			t.Fatalf("dimension %d: expected zero confidence, got %f", i, v.Confidence[i])
		}
		if v.Source[i] != SourceUnset {
			t.Fatalf("dimension %d: expected UNSET source, got %s", i, v.Source[i])
		}
	}
	if v.UpdateCount != 0 {
		t.Fatalf("expected zero update count, got %d", v.UpdateCount)
	}
}

func TestSetClampsToUnitInterval(t *testing.T) {
	v := NewPersonalityVector()

	if err := v.Set(0, 1.7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v.Values[0] != 1 {
		t.Fatalf("expected clamp to 1, got %f", v.Values[0])
	}

	if err := v.Set(1, -0.4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v.Values[1] != 0 {
		t.Fatalf("expected clamp to 0, got %f", v.Values[1])
	}

	if err := v.Set(2, math.NaN()); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v.Values[2] != 0 {
		t.Fatalf("expected NaN clamped to 0, got %f", v.Values[2])
	}

	if v.UpdateCount != 3 {
		t.Fatalf("expected update count 3, got %d", v.UpdateCount)
	}
	if v.LastUpdated.IsZero() {
		t.Fatal("expected LastUpdated to be set")
	}
}

func TestSetOutOfRangeFails(t *testing.T) {
	v := NewPersonalityVector()
	if err := v.Set(-1, 0.5); err == nil {
		t.Fatal("expected error for negative index")
	}
	if err := v.Set(VectorDimensions, 0.5); err == nil {
		t.Fatal("expected error for index past the end")
	}
	if v.UpdateCount != 0 {
		t.Fatalf("failed writes must not bump the counter, got %d", v.UpdateCount)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 1000; trial++ {
		v := NewPersonalityVector()
		for i := range v.Values {
			v.Values[i] = rng.Float64()
		}

		decoded, err := Decode(v.Encode())
		if err != nil {
			t.Fatalf("trial %d: decode: %v", trial, err)
		}
		for i := range v.Values {
			diff := math.Abs(decoded.Values[i] - v.Values[i])
			if diff > 1.0/255+1e-12 {
				t.Fatalf("trial %d dimension %d: round-trip error %f exceeds 1/255", trial, i, diff)
			}
		}
	}
}

func TestEncodeIsIdempotentAfterRoundTrip(t *testing.T) {
	v := NewPersonalityVector()
	rng := rand.New(rand.NewSource(7))
	for i := range v.Values {
		v.Values[i] = rng.Float64()
	}

	first := v.Encode()
	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second := decoded.Encode()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("dimension %d: re-encoding changed byte %d -> %d", i, first[i], second[i])
		}
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, VectorDimensions-1)); err == nil {
		t.Fatal("expected error for short payload")
	}
	if _, err := Decode(make([]byte, VectorDimensions+1)); err == nil {
		t.Fatal("expected error for long payload")
	}
}

func TestCategoryCompatibilitySymmetricAndBounded(t *testing.T) {
	a := NewPersonalityVector()
	b := NewPersonalityVector()
	rng := rand.New(rand.NewSource(11))
	for i := range a.Values {
		a.Values[i] = rng.Float64()
		b.Values[i] = rng.Float64()
	}

	for _, category := range Categories() {
		ab, err := a.CategoryCompatibility(b, category)
		if err != nil {
			t.Fatalf("category %s: %v", category, err)
		}
		ba, err := b.CategoryCompatibility(a, category)
		if err != nil {
			t.Fatalf("category %s: %v", category, err)
		}
		if math.Abs(ab-ba) > 1e-12 {
			t.Fatalf("category %s: asymmetric compatibility %f vs %f", category, ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("category %s: compatibility %f outside [0,1]", category, ab)
		}
	}

	self, err := a.CategoryCompatibility(a, CategoryValues)
	if err != nil {
		t.Fatalf("self compatibility: %v", err)
	}
	if self != 1 {
		t.Fatalf("identical vectors must score 1, got %f", self)
	}
}

func TestCategoryCompatibilityUnknownCategory(t *testing.T) {
	a := NewPersonalityVector()
	if _, err := a.CategoryCompatibility(NewPersonalityVector(), "NO_SUCH_CATEGORY"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	zero := &PersonalityVector{
		Values:     make([]float64, VectorDimensions),
		Confidence: make([]float64, VectorDimensions),
		Source:     make([]string, VectorDimensions),
	}
	other := NewPersonalityVector()
	if sim := zero.CosineSimilarity(other); sim != 0 {
		t.Fatalf("zero-norm vector must yield 0, got %f", sim)
	}
	if sim := other.CosineSimilarity(zero); sim != 0 {
		t.Fatalf("zero-norm vector must yield 0, got %f", sim)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := NewPersonalityVector()
	_ = v.Set(10, 0.9)
	v.AppendHistory(UpdateRecord{Dimension: 10, OldValue: 0.5, NewValue: 0.9})

	clone := v.Clone()
	_ = clone.Set(10, 0.1)
	clone.AppendHistory(UpdateRecord{Dimension: 10})

	if v.Values[10] != 0.9 {
		t.Fatalf("mutating the clone changed the original: %f", v.Values[10])
	}
	if len(v.History) != 1 {
		t.Fatalf("mutating the clone changed the original history: %d entries", len(v.History))
	}
}
