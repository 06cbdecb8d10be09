package service

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

func TestReconcilerAppliesBoundedEMA(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	// orderliness (dim 7) es CORE_TRAITS: learning rate 0.08.
	records := r.Apply(v, []domain.AdjustmentProposal{{
		Dimension:      7,
		Direction:      domain.DirectionIncrease,
		Strength:       1.0,
		Confidence:     0.5,
		SourceCategory: domain.SourceConversation,
	}})

	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	// target = 0.5 + 1.0*0.3 = 0.8; alpha = 0.08*0.5 = 0.04
	// new = 0.5*0.96 + 0.8*0.04 = 0.512
	want := 0.512
	if math.Abs(v.Values[7]-want) > 1e-9 {
		t.Fatalf("expected %f after EMA, got %f", want, v.Values[7])
	}
	if records[0].OldValue != 0.5 || math.Abs(records[0].NewValue-want) > 1e-9 {
		t.Fatalf("record mismatch: %+v", records[0])
	}
	if v.Source[7] != domain.SourceConversation {
		t.Fatalf("expected CONVERSATION provenance, got %s", v.Source[7])
	}
	if len(v.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(v.History))
	}
}

func TestReconcilerCategoryRatesDiffer(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	proposal := func(dim int) domain.AdjustmentProposal {
		return domain.AdjustmentProposal{
			Dimension:      dim,
			Direction:      domain.DirectionIncrease,
			Strength:       1.0,
			Confidence:     1.0,
			SourceCategory: domain.SourceConversation,
		}
	}
	// dim 7 = CORE_TRAITS (0.08), dim 198 = INTERESTS (0.30).
	r.Apply(v, []domain.AdjustmentProposal{proposal(7), proposal(198)})

	coreDelta := v.Values[7] - 0.5
	interestDelta := v.Values[198] - 0.5
	if interestDelta <= coreDelta {
		t.Fatalf("interests must adapt faster than core traits: %f vs %f", interestDelta, coreDelta)
	}
}

func TestReconcilerSingleMessageNeverSaturates(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	r.Apply(v, []domain.AdjustmentProposal{{
		Dimension:      198,
		Direction:      domain.DirectionIncrease,
		Strength:       1.0,
		Confidence:     1.0,
		SourceCategory: domain.SourceConversation,
	}})

	// Incluso con strength y confianza máximas en la categoría más rápida,
	// el movimiento queda muy por debajo del tope 0.8.
	if v.Values[198] >= 0.8 {
		t.Fatalf("single message moved dimension to %f", v.Values[198])
	}
}

func TestReconcilerAgreementSumsStrengths(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	records := r.Apply(v, []domain.AdjustmentProposal{
		{Dimension: 198, Direction: domain.DirectionIncrease, Strength: 0.4, Confidence: 0.5, SourceCategory: domain.SourceConversation},
		{Dimension: 198, Direction: domain.DirectionIncrease, Strength: 0.8, Confidence: 0.7, SourceCategory: domain.SourceConversation},
	})

	// Strengths 0.4+0.8 capean en 1.0; confianza max = 0.7.
	// target = 0.5 + 1.0*0.3 = 0.8; alpha = 0.30*0.7 = 0.21
	// new = 0.5*0.79 + 0.8*0.21 = 0.563
	want := 0.563
	if math.Abs(v.Values[198]-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, v.Values[198])
	}
	if len(records) != 1 {
		t.Fatalf("agreeing proposals must collapse to one write, got %d", len(records))
	}
	if v.Confidence[198] != 0.7 {
		t.Fatalf("expected confidence 0.7, got %f", v.Confidence[198])
	}
}

func TestReconcilerConflictHighestConfidenceWins(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	r.Apply(v, []domain.AdjustmentProposal{
		{Dimension: 7, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.9, SourceCategory: domain.SourceConversation},
		{Dimension: 7, Direction: domain.DirectionDecrease, Strength: 0.5, Confidence: 0.3, SourceCategory: domain.SourceFeedback},
	})

	if v.Values[7] <= 0.5 {
		t.Fatalf("higher-confidence increase must win, got %f", v.Values[7])
	}
}

func TestReconcilerConflictExactTieAveragesTargets(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	r.Apply(v, []domain.AdjustmentProposal{
		{Dimension: 7, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.6, SourceCategory: domain.SourceConversation},
		{Dimension: 7, Direction: domain.DirectionDecrease, Strength: 0.5, Confidence: 0.6, SourceCategory: domain.SourceConversation},
	})

	// Targets simétricos (0.65 y 0.35) promedian al valor actual: sin
	// movimiento.
	if math.Abs(v.Values[7]-0.5) > 1e-9 {
		t.Fatalf("symmetric tie must not move the value, got %f", v.Values[7])
	}
}

func TestReconcilerDropsUnknownDimensions(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	records := r.Apply(v, []domain.AdjustmentProposal{
		{Dimension: -1, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.5, SourceCategory: domain.SourceConversation},
		{Dimension: domain.VectorDimensions, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.5, SourceCategory: domain.SourceConversation},
		{Dimension: 7, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.5, SourceCategory: domain.SourceConversation},
	})

	// El batch no aborta: la propuesta válida se aplica igual.
	if len(records) != 1 {
		t.Fatalf("expected exactly one applied record, got %d", len(records))
	}
	if records[0].Dimension != 7 {
		t.Fatalf("expected dimension 7, got %d", records[0].Dimension)
	}
}

func TestReconcilerConfidenceMonotonicExceptCrossValidation(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	r.Apply(v, []domain.AdjustmentProposal{{
		Dimension: 7, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.8, SourceCategory: domain.SourceConversation,
	}})
	if v.Confidence[7] != 0.8 {
		t.Fatalf("expected confidence 0.8, got %f", v.Confidence[7])
	}

	// Una propuesta normal con menor confianza no la baja.
	r.Apply(v, []domain.AdjustmentProposal{{
		Dimension: 7, Direction: domain.DirectionIncrease, Strength: 0.5, Confidence: 0.3, SourceCategory: domain.SourceConversation,
	}})
	if v.Confidence[7] != 0.8 {
		t.Fatalf("lower-confidence write must not reduce confidence, got %f", v.Confidence[7])
	}

	// La validación cruzada sí puede bajarla.
	r.Apply(v, []domain.AdjustmentProposal{{
		Dimension: 7, Direction: domain.DirectionDecrease, Strength: 0.5, Confidence: 0.6, SourceCategory: domain.SourceCrossValidation,
	}})
	if v.Confidence[7] != 0.6 {
		t.Fatalf("cross-validation must write confidence directly, got %f", v.Confidence[7])
	}
}

func TestReconcilerRepeatedEvidenceConverges(t *testing.T) {
	r := NewUpdateReconciler(zap.NewNop())
	v := domain.NewPersonalityVector()

	proposal := domain.AdjustmentProposal{
		Dimension:      198,
		Direction:      domain.DirectionIncrease,
		Strength:       1.0,
		Confidence:     1.0,
		SourceCategory: domain.SourceConversation,
	}
	prev := v.Values[198]
	for i := 0; i < 200; i++ {
		r.Apply(v, []domain.AdjustmentProposal{proposal})
		if v.Values[198] < prev {
			t.Fatalf("iteration %d: value moved backwards %f -> %f", i, prev, v.Values[198])
		}
		prev = v.Values[198]
	}
	// El EMA hacia old+0.3 converge por debajo de 1: el refuerzo repetido
	// satura sin desbordar.
	if v.Values[198] > 1 {
		t.Fatalf("value escaped the unit interval: %f", v.Values[198])
	}
	if v.Values[198] < 0.9 {
		t.Fatalf("repeated reinforcement should approach saturation, got %f", v.Values[198])
	}
}

func TestSummarizeEvidenceTruncates(t *testing.T) {
	long := make([]string, 100)
	for i := range long {
		long[i] = "evidence-token"
	}
	if got := summarizeEvidence(long); len(got) > 240 {
		t.Fatalf("summary length %d exceeds cap", len(got))
	}
}
