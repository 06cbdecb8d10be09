package domain

// Etiquetas de los factores de la explicación.
const (
	FactorTagStrength = "STRENGTH"
	FactorTagConcern  = "CONCERN"
)

// Bandas de compatibilidad sobre overall. La forma sigmoid(2h-1) acota el
// score a (0.269, 0.731); las bandas se calibran dentro de ese rango.
const (
	BandExceptional = "EXCEPTIONAL"
	BandStrong      = "STRONG"
	BandModerate    = "MODERATE"
	BandLow         = "LOW"
)

// CompatibilityFactor es un aporte con signo de una categoría al score,
// ordenado por contribución absoluta en la explicación.
type CompatibilityFactor struct {
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	SignedImpact float64 `json:"signed_impact"`
	Tag          string  `json:"tag,omitempty"`
}

// CompatibilityResult es la salida efímera del scorer de armonía.
type CompatibilityResult struct {
	Overall          float64               `json:"overall"`
	Band             string                `json:"band"`
	PerCategoryScore map[string]float64    `json:"per_category_score"`
	AttractionForce  float64               `json:"attraction_force"`
	RepulsionForce   float64               `json:"repulsion_force"`
	Confidence       float64               `json:"confidence"`
	Factors          []CompatibilityFactor `json:"factors"`
}

// BandFor clasifica un overall dentro de las bandas de compatibilidad.
func BandFor(overall float64) string {
	switch {
	case overall >= 0.65:
		return BandExceptional
	case overall >= 0.55:
		return BandStrong
	case overall >= 0.45:
		return BandModerate
	default:
		return BandLow
	}
}
