package service

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

const (
	// Divergencia máxima tolerada respecto a la media del grupo.
	coherenceThreshold = 0.4

	// Confianza media con la que se emiten correcciones.
	correctionConfidence = 0.6

	// Una sola pasada correctiva por batch. Con más pasadas dos
	// dimensiones mutuamente correctivas podrían oscilar sin terminar.
	maxCorrectionPasses = 1
)

// ConsistencyValidator revisa grupos de dimensiones relacionadas después
// de cada batch y propone correcciones para outliers implausibles. Sus
// propuestas vuelven a pasar por el reconciliador, una única vez.
type ConsistencyValidator struct {
	groups map[string][]int
	logger *zap.Logger
}

func NewConsistencyValidator(logger *zap.Logger) *ConsistencyValidator {
	return &ConsistencyValidator{
		groups: domain.CoherenceGroups(),
		logger: logger,
	}
}

// Validate devuelve propuestas correctivas para toda dimensión que
// diverge más de coherenceThreshold de la media de su grupo de
// coherencia. La corrección tira el outlier hasta mitad de camino hacia
// la media, con confianza media y fuente de validación cruzada.
func (v *ConsistencyValidator) Validate(vector *domain.PersonalityVector) []domain.AdjustmentProposal {
	var proposals []domain.AdjustmentProposal

	for name, dims := range v.groups {
		if len(dims) < 2 {
			continue
		}
		var sum float64
		for _, d := range dims {
			sum += vector.Values[d]
		}
		mean := sum / float64(len(dims))

		for _, d := range dims {
			diff := vector.Values[d] - mean
			if math.Abs(diff) <= coherenceThreshold {
				continue
			}
			direction := domain.DirectionDecrease
			if diff < 0 {
				direction = domain.DirectionIncrease
			}
			// Mitad de camino hacia la media, expresado como strength
			// sobre el paso máximo del reconciliador.
			strength := math.Abs(diff) / 2 / maxStepPerMessage
			if strength > 1 {
				strength = 1
			}
			proposals = append(proposals, domain.AdjustmentProposal{
				Dimension:  d,
				Direction:  direction,
				Strength:   strength,
				Confidence: correctionConfidence,
				Evidence: []string{
					fmt.Sprintf("coherence:%s mean=%.2f value=%.2f", name, mean, vector.Values[d]),
				},
				SourceCategory: domain.SourceCrossValidation,
			})
		}
	}

	if len(proposals) > 0 && v.logger != nil {
		v.logger.Info("consistency corrections proposed",
			zap.Int("count", len(proposals)))
	}
	return proposals
}

// MaxPasses expone el tope de pasadas correctivas por batch.
func (v *ConsistencyValidator) MaxPasses() int {
	return maxCorrectionPasses
}
