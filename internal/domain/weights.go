package domain

// Categorías sintéticas del scorer: factores positivos y de conflicto.
// Las positivas mapean sobre rangos del esquema; "healthy_differences"
// opera sobre dimensiones complementarias elegidas a mano.
const (
	WeightCoreTraits         = "core_traits_match"
	WeightValues             = "values_alignment"
	WeightCommunication      = "communication_sync"
	WeightLifestyle          = "lifestyle_match"
	WeightHealthyDifferences = "healthy_differences"

	WeightValuesConflict       = "major_values_conflict"
	WeightCommunicationBarrier = "communication_barriers"
	WeightLifestyleConflict    = "lifestyle_conflict"
)

// Banda de recorte para pesos personalizados.
const (
	WeightMin = 0.05
	WeightMax = 0.60
)

// PersonalizedWeights son los pesos por categoría de un usuario,
// inicializados desde los globales y ajustados por feedback de resultados.
type PersonalizedWeights struct {
	UserID  string             `json:"user_id"`
	Weights map[string]float64 `json:"weights"`
}

// DefaultWeights devuelve los pesos globales de fábrica. Los de conflicto
// entran a la repulsión por valor absoluto.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		WeightCoreTraits:         0.20,
		WeightValues:             0.25,
		WeightCommunication:      0.20,
		WeightLifestyle:          0.15,
		WeightHealthyDifferences: 0.20,

		WeightValuesConflict:       0.40,
		WeightCommunicationBarrier: 0.30,
		WeightLifestyleConflict:    0.30,
	}
}

// NewPersonalizedWeights crea pesos por usuario desde los globales.
func NewPersonalizedWeights(userID string) *PersonalizedWeights {
	return &PersonalizedWeights{
		UserID:  userID,
		Weights: DefaultWeights(),
	}
}

// ClampWeight recorta un peso a la banda configurada.
func ClampWeight(w float64) float64 {
	if w < WeightMin {
		return WeightMin
	}
	if w > WeightMax {
		return WeightMax
	}
	return w
}
