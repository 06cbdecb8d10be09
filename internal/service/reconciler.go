package service

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

// maxStepPerMessage acota el movimiento de una dimensión por mensaje.
// Es fijo e independiente de la confianza: un solo mensaje nunca satura
// una dimensión.
const maxStepPerMessage = 0.3

// categoryLearningRates codifica que los rasgos estables no deben
// sacudirse por una frase mientras que las preferencias situacionales
// adaptan rápido: core lento, estilo social medio, preferencias declaradas
// más rápido, conductuales lo más rápido.
var categoryLearningRates = map[string]float64{
	domain.CategoryCoreTraits:     0.08,
	domain.CategoryCognitiveStyle: 0.10,
	domain.CategoryEmotionalIntel: 0.10,
	domain.CategoryValues:         0.12,
	domain.CategoryCommunication:  0.15,
	domain.CategoryRelationship:   0.15,
	domain.CategoryLifestyle:      0.25,
	domain.CategoryInterests:      0.30,
}

// UpdateReconciler convierte lotes de propuestas en escrituras durables
// sobre el vector. Es el único mutador del PersonalityVector.
type UpdateReconciler struct {
	logger *zap.Logger
}

func NewUpdateReconciler(logger *zap.Logger) *UpdateReconciler {
	return &UpdateReconciler{logger: logger}
}

// resolved es el resultado de colapsar las propuestas de una dimensión.
type resolved struct {
	dimension  int
	target     float64
	confidence float64
	source     string
	evidence   []string
}

// Apply reconcilia y aplica un batch de propuestas. Propuestas sobre
// dimensiones desconocidas se descartan con warning y nunca abortan el
// batch: las heurísticas de extracción fallan de vez en cuando y el
// sistema degrada en vez de romper la actualización del usuario.
// Devuelve los registros de historial de las escrituras efectuadas.
func (r *UpdateReconciler) Apply(vector *domain.PersonalityVector, proposals []domain.AdjustmentProposal) []domain.UpdateRecord {
	groups := make(map[int][]domain.AdjustmentProposal)
	for _, p := range proposals {
		if p.Dimension < 0 || p.Dimension >= domain.VectorDimensions {
			if r.logger != nil {
				r.logger.Warn("dropped proposal: unknown dimension",
					zap.Int("dimension", p.Dimension),
					zap.String("source", p.SourceCategory))
			}
			continue
		}
		groups[p.Dimension] = append(groups[p.Dimension], p)
	}

	dims := make([]int, 0, len(groups))
	for dim := range groups {
		dims = append(dims, dim)
	}
	sort.Ints(dims)

	var records []domain.UpdateRecord
	now := time.Now().UTC()
	for _, dim := range dims {
		res := resolveGroup(dim, vector.Values[dim], groups[dim])

		category, err := domain.CategoryOf(dim)
		if err != nil {
			continue
		}
		rate := categoryLearningRates[category]

		old := vector.Values[dim]
		alpha := rate * res.confidence
		newValue := old*(1-alpha) + res.target*alpha
		_ = vector.Set(dim, newValue)

		// La confianza solo baja mediante corrección de validación
		// cruzada; cualquier otra fuente es monótona no decreciente.
		if res.source == domain.SourceCrossValidation {
			_ = vector.SetConfidence(dim, res.confidence)
		} else if res.confidence > vector.Confidence[dim] {
			_ = vector.SetConfidence(dim, res.confidence)
		}
		vector.Source[dim] = res.source

		rec := domain.UpdateRecord{
			Timestamp:       now,
			Dimension:       dim,
			OldValue:        old,
			NewValue:        vector.Values[dim],
			Source:          res.source,
			EvidenceSummary: summarizeEvidence(res.evidence),
		}
		vector.AppendHistory(rec)
		records = append(records, rec)
	}
	return records
}

// resolveGroup colapsa las propuestas de una dimensión:
//   - direcciones coincidentes: las strengths se suman con tope 1.0
//     (la evidencia que refuerza aumenta el efecto pero satura);
//   - direcciones en conflicto: gana la propuesta de mayor confianza;
//     ante empate exacto se promedian los valores objetivo.
func resolveGroup(dim int, old float64, group []domain.AdjustmentProposal) resolved {
	agree := true
	for _, p := range group[1:] {
		if p.Direction != group[0].Direction {
			agree = false
			break
		}
	}

	if agree {
		var strength float64
		var confidence float64
		var evidence []string
		for _, p := range group {
			strength += p.Strength
			if p.Confidence > confidence {
				confidence = p.Confidence
			}
			evidence = append(evidence, p.Evidence...)
		}
		if strength > 1 {
			strength = 1
		}
		return resolved{
			dimension:  dim,
			target:     targetValue(old, group[0].Direction, strength),
			confidence: confidence,
			source:     group[0].SourceCategory,
			evidence:   evidence,
		}
	}

	best := group[0]
	tied := []domain.AdjustmentProposal{group[0]}
	for _, p := range group[1:] {
		switch {
		case p.Confidence > best.Confidence:
			best = p
			tied = []domain.AdjustmentProposal{p}
		case p.Confidence == best.Confidence:
			tied = append(tied, p)
		}
	}

	if len(tied) > 1 {
		var sum float64
		var evidence []string
		for _, p := range tied {
			sum += targetValue(old, p.Direction, p.Strength)
			evidence = append(evidence, p.Evidence...)
		}
		return resolved{
			dimension:  dim,
			target:     sum / float64(len(tied)),
			confidence: best.Confidence,
			source:     best.SourceCategory,
			evidence:   evidence,
		}
	}

	return resolved{
		dimension:  dim,
		target:     targetValue(old, best.Direction, best.Strength),
		confidence: best.Confidence,
		source:     best.SourceCategory,
		evidence:   best.Evidence,
	}
}

func targetValue(old float64, direction string, strength float64) float64 {
	switch direction {
	case domain.DirectionIncrease:
		return old + strength*maxStepPerMessage
	case domain.DirectionDecrease:
		return old - strength*maxStepPerMessage
	default:
		return old
	}
}

func summarizeEvidence(evidence []string) string {
	const maxLen = 240
	s := strings.Join(evidence, ", ")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
