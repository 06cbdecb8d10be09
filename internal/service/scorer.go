package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

const (
	// Umbral de |impacto| a partir del cual un factor participa del
	// aprendizaje de pesos.
	learnImpactThreshold = 0.05

	// Umbrales de etiquetado de la explicación.
	strengthTagThreshold = 0.80
	concernTagThreshold  = 0.30
)

// complementaryDims son dimensiones elegidas a mano donde una divergencia
// moderada (0.2-0.5) representa atracción y no incompatibilidad.
var complementaryDims = []int{
	3,  // adventurousness
	14, // assertiveness
	16, // excitement_seeking
	36, // spontaneity
	96, // directness
	99, // humor
}

var factorDescriptions = map[string]string{
	domain.WeightCoreTraits:         "core personality profiles align",
	domain.WeightValues:             "shared values and priorities",
	domain.WeightCommunication:      "communication styles in sync",
	domain.WeightLifestyle:          "day-to-day lifestyles match",
	domain.WeightHealthyDifferences: "complementary differences add spark",

	domain.WeightValuesConflict:       "major value disagreements",
	domain.WeightCommunicationBarrier: "communication styles clash",
	domain.WeightLifestyleConflict:    "incompatible daily routines",
}

// CompatibilityScorer implementa el algoritmo Harmony: balance de fuerzas
// de atracción y repulsión entre dos vectores, con pesos globales o
// personalizados por solicitante.
type CompatibilityScorer struct {
	weights      WeightsStore
	learningRate float64
	logger       *zap.Logger
}

func NewCompatibilityScorer(weights WeightsStore, learningRate float64, logger *zap.Logger) *CompatibilityScorer {
	if learningRate <= 0 {
		learningRate = 0.05
	}
	return &CompatibilityScorer{weights: weights, learningRate: learningRate, logger: logger}
}

// Score puntúa el par (a, b) con pesos globales por defecto. Con pesos
// idénticos el resultado es simétrico: Score(a,b) == Score(b,a).
func (s *CompatibilityScorer) Score(a, b *domain.PersonalityVector) domain.CompatibilityResult {
	return s.scoreWith(a, b, domain.DefaultWeights())
}

// ScoreFor puntúa el par usando los pesos personalizados del solicitante,
// si existen; sin store o sin usuario cae a los globales.
func (s *CompatibilityScorer) ScoreFor(ctx context.Context, a, b *domain.PersonalityVector, requesterID string) domain.CompatibilityResult {
	weights := domain.DefaultWeights()
	if s.weights != nil && requesterID != "" {
		pw, err := s.weights.Get(ctx, requesterID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("personalized weights unavailable, using defaults",
					zap.String("user_id", requesterID), zap.Error(err))
			}
		} else {
			weights = pw.Weights
		}
	}
	return s.scoreWith(a, b, weights)
}

func (s *CompatibilityScorer) scoreWith(a, b *domain.PersonalityVector, weights map[string]float64) domain.CompatibilityResult {
	positives := map[string]float64{
		domain.WeightCoreTraits:         mustCategoryCompat(a, b, domain.CategoryCoreTraits),
		domain.WeightValues:             mustCategoryCompat(a, b, domain.CategoryValues),
		domain.WeightCommunication:      mustCategoryCompat(a, b, domain.CategoryCommunication),
		domain.WeightLifestyle:          mustCategoryCompat(a, b, domain.CategoryLifestyle),
		domain.WeightHealthyDifferences: healthyDifferences(a, b),
	}
	conflicts := map[string]float64{
		domain.WeightValuesConflict:       conflictScore(a, b, domain.CategoryValues, 0.60),
		domain.WeightCommunicationBarrier: conflictScore(a, b, domain.CategoryCommunication, 0.50),
		domain.WeightLifestyleConflict:    conflictScore(a, b, domain.CategoryLifestyle, 0.55),
	}

	var attraction, repulsion float64
	perCategory := make(map[string]float64, len(positives)+len(conflicts))
	var factors []domain.CompatibilityFactor

	for cat, f := range positives {
		w := weights[cat]
		impact := w * f
		attraction += impact
		perCategory[cat] = f
		factor := domain.CompatibilityFactor{
			Category:     cat,
			Description:  factorDescriptions[cat],
			SignedImpact: impact,
		}
		if f >= strengthTagThreshold {
			factor.Tag = domain.FactorTagStrength
		}
		factors = append(factors, factor)
	}
	for cat, c := range conflicts {
		w := math.Abs(weights[cat])
		impact := w * c
		repulsion += impact
		perCategory[cat] = c
		factor := domain.CompatibilityFactor{
			Category:     cat,
			Description:  factorDescriptions[cat],
			SignedImpact: -impact,
		}
		if c >= concernTagThreshold {
			factor.Tag = domain.FactorTagConcern
		}
		factors = append(factors, factor)
	}

	// Ecuación Harmony: la atracción fuerte compone superlinealmente y el
	// conflicto suprime superlinealmente; la sigmoide acota con curva
	// suave en vez de recorte duro.
	harmony := math.Pow(attraction, 1.2) / (1 + math.Pow(repulsion, 1.5))
	overall := sigmoid(harmony*2 - 1)

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].SignedImpact) > math.Abs(factors[j].SignedImpact)
	})

	return domain.CompatibilityResult{
		Overall:          overall,
		Band:             domain.BandFor(overall),
		PerCategoryScore: perCategory,
		AttractionForce:  attraction,
		RepulsionForce:   repulsion,
		Confidence:       scoreConfidence(a, b, positives),
		Factors:          factors,
	}
}

// LearnFromOutcome ajusta multiplicativamente los pesos del solicitante
// según el resultado (liked) de un match presentado: cada categoría cuyo
// factor tuvo |impacto| relevante se escala por (1 + lr*±1) y se recorta a
// la banda configurada. Reaplicar el mismo resultado converge al tope del
// recorte y deja de cambiar: el único aprendizaje entre sesiones del
// scorer.
func (s *CompatibilityScorer) LearnFromOutcome(ctx context.Context, requesterID string, result domain.CompatibilityResult, liked bool) (*domain.PersonalizedWeights, error) {
	if s.weights == nil {
		return nil, fmt.Errorf("learn from outcome: no weights store configured")
	}
	pw, err := s.weights.Get(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load weights for %s: %w", requesterID, err)
	}

	direction := 1.0
	if !liked {
		direction = -1.0
	}
	for _, f := range result.Factors {
		if math.Abs(f.SignedImpact) < learnImpactThreshold {
			continue
		}
		w, ok := pw.Weights[f.Category]
		if !ok {
			continue
		}
		pw.Weights[f.Category] = domain.ClampWeight(w * (1 + s.learningRate*direction))
	}

	if err := s.weights.Save(ctx, pw); err != nil {
		return nil, fmt.Errorf("save weights for %s: %w", requesterID, err)
	}
	return pw, nil
}

func mustCategoryCompat(a, b *domain.PersonalityVector, category string) float64 {
	score, err := a.CategoryCompatibility(b, category)
	if err != nil {
		// Las categorías del scorer están fijas en el esquema; un fallo
		// aquí es un bug de programación, no un dato inválido.
		panic(err)
	}
	return score
}

// healthyDifferences premia la divergencia moderada (0.2-0.5) en las
// dimensiones complementarias: ahí una diferencia pequeña es atracción.
func healthyDifferences(a, b *domain.PersonalityVector) float64 {
	var sum float64
	for _, d := range complementaryDims {
		diff := math.Abs(a.Values[d] - b.Values[d])
		switch {
		case diff >= 0.2 && diff <= 0.5:
			sum += 1
		case diff < 0.2:
			sum += 0.75 + 1.25*diff
		default:
			v := 1 - 2*(diff-0.5)
			if v < 0 {
				v = 0
			}
			sum += v
		}
	}
	return sum / float64(len(complementaryDims))
}

// conflictScore mide el exceso de divergencia sobre un umbral, promediado
// en el rango de la categoría y normalizado a [0,1].
func conflictScore(a, b *domain.PersonalityVector, category string, threshold float64) float64 {
	r, err := domain.RangeOf(category)
	if err != nil {
		panic(err)
	}
	var sum float64
	for i := r.Start; i < r.End; i++ {
		excess := math.Abs(a.Values[i]-b.Values[i]) - threshold
		if excess > 0 {
			sum += excess / (1 - threshold)
		}
	}
	return sum / float64(r.Len())
}

// scoreConfidence parte de 0.8, baja con vectores poco observados y sube
// cuando los factores positivos son internamente consistentes.
func scoreConfidence(a, b *domain.PersonalityVector, positives map[string]float64) float64 {
	conf := 0.8

	minCount := a.UpdateCount
	if b.UpdateCount < minCount {
		minCount = b.UpdateCount
	}
	if minCount < 20 {
		conf -= 0.3 * (1 - float64(minCount)/20)
	}

	var mean float64
	for _, f := range positives {
		mean += f
	}
	mean /= float64(len(positives))
	var variance float64
	for _, f := range positives {
		variance += (f - mean) * (f - mean)
	}
	variance /= float64(len(positives))
	if variance < 0.01 {
		conf += 0.1
	}

	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
