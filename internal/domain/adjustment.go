package domain

// Dirección propuesta para el ajuste de una dimensión.
const (
	DirectionIncrease = "INCREASE"
	DirectionDecrease = "DECREASE"
	DirectionMaintain = "MAINTAIN"
)

// AdjustmentProposal es un cambio sugerido y efímero sobre una dimensión,
// previo a la reconciliación. Evidence lista los tokens/frases exactos que
// dispararon la propuesta, para que toda edición automática sea auditable.
type AdjustmentProposal struct {
	Dimension      int      `json:"dimension"`
	Direction      string   `json:"direction"`
	Strength       float64  `json:"strength"`
	Confidence     float64  `json:"confidence"`
	Evidence       []string `json:"evidence"`
	SourceCategory string   `json:"source_category"`
}

// ExtractionResult agrupa las propuestas de una pasada de extracción.
// LowConfidence no es un error: señala al llamador que conviene pedir una
// aclaración en vez de confiar en la actualización.
type ExtractionResult struct {
	Proposals     []AdjustmentProposal `json:"proposals"`
	LowConfidence bool                 `json:"low_confidence"`
	TokenCount    int                  `json:"token_count"`
}
