package domain

import (
	"fmt"
	"math"
	"time"
)

// Fuentes de procedencia de la última escritura por dimensión.
const (
	SourceConversation     = "CONVERSATION"
	SourceFeedback         = "FEEDBACK"
	SourceProfileInference = "PROFILE_INFERENCE"
	SourceCrossValidation  = "CROSS_VALIDATION"
	SourceUnset            = "UNSET"
)

// UpdateRecord es una entrada inmutable del historial de un vector.
type UpdateRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	Dimension       int       `json:"dimension"`
	OldValue        float64   `json:"old_value"`
	NewValue        float64   `json:"new_value"`
	Source          string    `json:"source"`
	EvidenceSummary string    `json:"evidence_summary"`
}

// PersonalityVector es el perfil numérico de un usuario: 256 valores en
// [0,1] con confianza y procedencia por dimensión, más historial de
// escrituras. Se muta únicamente a través del reconciliador.
type PersonalityVector struct {
	Values      []float64      `json:"values"`
	Confidence  []float64      `json:"confidence"`
	Source      []string       `json:"source"`
	History     []UpdateRecord `json:"history,omitempty"`
	UpdateCount int            `json:"update_count"`
	LastUpdated time.Time      `json:"last_updated"`
}

// NewPersonalityVector crea un vector neutral: todos los valores en 0.5
// (prior sin evidencia) y confianza 0.
func NewPersonalityVector() *PersonalityVector {
	v := &PersonalityVector{
		Values:     make([]float64, VectorDimensions),
		Confidence: make([]float64, VectorDimensions),
		Source:     make([]string, VectorDimensions),
	}
	for i := range v.Values {
		v.Values[i] = 0.5
		v.Source[i] = SourceUnset
	}
	return v
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Get devuelve el valor de la dimensión i.
func (v *PersonalityVector) Get(i int) (float64, error) {
	if i < 0 || i >= len(v.Values) {
		return 0, &SchemaError{Detail: fmt.Sprintf("dimension %d out of range [0,%d)", i, len(v.Values))}
	}
	return v.Values[i], nil
}

// Set escribe value (recortado a [0,1]) en la dimensión i y actualiza los
// contadores de ciclo de vida. No toca confianza ni procedencia: eso es
// responsabilidad del reconciliador.
func (v *PersonalityVector) Set(i int, value float64) error {
	if i < 0 || i >= len(v.Values) {
		return &SchemaError{Detail: fmt.Sprintf("dimension %d out of range [0,%d)", i, len(v.Values))}
	}
	v.Values[i] = clamp01(value)
	v.UpdateCount++
	v.LastUpdated = time.Now().UTC()
	return nil
}

// SetConfidence escribe la confianza (recortada a [0,1]) de la dimensión i.
func (v *PersonalityVector) SetConfidence(i int, c float64) error {
	if i < 0 || i >= len(v.Confidence) {
		return &SchemaError{Detail: fmt.Sprintf("dimension %d out of range [0,%d)", i, len(v.Confidence))}
	}
	v.Confidence[i] = clamp01(c)
	return nil
}

// CategoryCompatibility devuelve el promedio de 1-|a-b| sobre el rango de
// la categoría. Simétrica, acotada en [0,1], vale 1 sii ambos vectores son
// idénticos en la categoría.
func (v *PersonalityVector) CategoryCompatibility(other *PersonalityVector, category string) (float64, error) {
	r, err := RangeOf(category)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := r.Start; i < r.End; i++ {
		sum += 1 - math.Abs(v.Values[i]-other.Values[i])
	}
	return sum / float64(r.Len()), nil
}

// Distance devuelve la distancia euclídea entre ambos vectores.
func (v *PersonalityVector) Distance(other *PersonalityVector) float64 {
	var sum float64
	for i := range v.Values {
		d := v.Values[i] - other.Values[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineSimilarity devuelve la similitud coseno. Si alguno de los vectores
// tiene norma cero devuelve 0, nunca NaN.
func (v *PersonalityVector) CosineSimilarity(other *PersonalityVector) float64 {
	var dot, na, nb float64
	for i := range v.Values {
		dot += v.Values[i] * other.Values[i]
		na += v.Values[i] * v.Values[i]
		nb += other.Values[i] * other.Values[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Clone devuelve una copia profunda para snapshots de lectura.
func (v *PersonalityVector) Clone() *PersonalityVector {
	out := &PersonalityVector{
		Values:      make([]float64, len(v.Values)),
		Confidence:  make([]float64, len(v.Confidence)),
		Source:      make([]string, len(v.Source)),
		History:     make([]UpdateRecord, len(v.History)),
		UpdateCount: v.UpdateCount,
		LastUpdated: v.LastUpdated,
	}
	copy(out.Values, v.Values)
	copy(out.Confidence, v.Confidence)
	copy(out.Source, v.Source)
	copy(out.History, v.History)
	return out
}

// AppendHistory agrega un registro al historial. El historial es append-only
// dentro de la vida del proceso; los consumidores pueden truncar copias.
func (v *PersonalityVector) AppendHistory(rec UpdateRecord) {
	v.History = append(v.History, rec)
}

// Encode serializa el vector a un byte por dimensión (round(value*255)).
// Es el único contrato bit-exacto del núcleo: Decode(Encode(v)) reproduce
// cada dimensión con error <= 1/255.
func (v *PersonalityVector) Encode() []byte {
	out := make([]byte, len(v.Values))
	for i, val := range v.Values {
		out[i] = byte(math.Round(clamp01(val) * 255))
	}
	return out
}

// EncodeConfidence serializa la confianza con el mismo esquema compacto.
func (v *PersonalityVector) EncodeConfidence() []byte {
	out := make([]byte, len(v.Confidence))
	for i, c := range v.Confidence {
		out[i] = byte(math.Round(clamp01(c) * 255))
	}
	return out
}

// Decode reconstruye un vector desde la codificación compacta de Encode.
func Decode(data []byte) (*PersonalityVector, error) {
	if len(data) != VectorDimensions {
		return nil, fmt.Errorf("decode vector: expected %d bytes, got %d", VectorDimensions, len(data))
	}
	v := NewPersonalityVector()
	for i, b := range data {
		v.Values[i] = float64(b) / 255
	}
	return v, nil
}

// DecodeConfidence vuelca la confianza compacta sobre el vector.
func (v *PersonalityVector) DecodeConfidence(data []byte) error {
	if len(data) != len(v.Confidence) {
		return fmt.Errorf("decode confidence: expected %d bytes, got %d", len(v.Confidence), len(data))
	}
	for i, b := range data {
		v.Confidence[i] = float64(b) / 255
	}
	return nil
}
