package domain

import "fmt"

// Categorías del esquema dimensional. Cada una ocupa un rango contiguo
// de 32 dimensiones dentro del vector de 256.
const (
	CategoryCoreTraits     = "CORE_TRAITS"
	CategoryCognitiveStyle = "COGNITIVE_STYLE"
	CategoryValues         = "VALUES"
	CategoryCommunication  = "COMMUNICATION_STYLE"
	CategoryRelationship   = "RELATIONSHIP_STYLE"
	CategoryLifestyle      = "LIFESTYLE"
	CategoryInterests      = "INTERESTS"
	CategoryEmotionalIntel = "EMOTIONAL_INTELLIGENCE"
)

// VectorDimensions es el ancho fijo del vector de personalidad.
const VectorDimensions = 256

const categoryWidth = 32

// SchemaError indica un error de programación: índice fuera de rango o
// faceta desconocida. Los llamadores no deben coaccionar en silencio.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Detail
}

// DimensionRange es un rango contiguo [Start, End) de índices.
type DimensionRange struct {
	Start int
	End   int
}

// Len devuelve la cantidad de dimensiones del rango.
func (r DimensionRange) Len() int {
	return r.End - r.Start
}

// categoryOrder fija el orden de los rangos dentro del vector.
var categoryOrder = []string{
	CategoryCoreTraits,
	CategoryCognitiveStyle,
	CategoryValues,
	CategoryCommunication,
	CategoryRelationship,
	CategoryLifestyle,
	CategoryInterests,
	CategoryEmotionalIntel,
}

// facetTable mapea nombre de faceta -> índice absoluto. Las facetas de
// CORE_TRAITS siguen el modelo NEO: seis sub-facetas por rasgo Big Five.
// Los índices sin nombre quedan reservados dentro de su categoría.
var facetTable = map[string]int{
	// Openness (0-5)
	"imagination":       0,
	"artistic_interest": 1,
	"emotionality":      2,
	"adventurousness":   3,
	"intellect":         4,
	"liberalism":        5,
	// Conscientiousness (6-11)
	"self_efficacy":        6,
	"orderliness":          7,
	"dutifulness":          8,
	"achievement_striving": 9,
	"self_discipline":      10,
	"cautiousness":         11,
	// Extraversion (12-17)
	"warmth":             12,
	"gregariousness":     13,
	"assertiveness":      14,
	"activity_level":     15,
	"excitement_seeking": 16,
	"cheerfulness":       17,
	// Agreeableness (18-23)
	"trust":       18,
	"honesty":     19,
	"altruism":    20,
	"cooperation": 21,
	"modesty":     22,
	"sympathy":    23,
	// Neuroticism (24-29)
	"anxiety":            24,
	"anger":              25,
	"depression":         26,
	"self_consciousness": 27,
	"immoderation":       28,
	"vulnerability":      29,

	// Cognitive style (32+)
	"analytical_thinking": 32,
	"intuition":           33,
	"creativity":          34,
	"planning":            35,
	"spontaneity":         36,
	"curiosity":           37,

	// Values (64+)
	"family_orientation": 64,
	"ambition":           65,
	"tradition":          66,
	"spirituality":       67,
	"integrity":          68,
	"loyalty":            69,
	"independence":       70,
	"generosity":         71,

	// Communication style (96+)
	"directness":         96,
	"expressiveness":     97,
	"active_listening":   98,
	"humor":              99,
	"conflict_avoidance": 100,
	"verbal_affection":   101,

	// Relationship style (128+)
	"attachment_security": 128,
	"commitment":          129,
	"jealousy":            130,
	"autonomy_need":       131,
	"romanticism":         132,
	"partner_trust":       133,

	// Lifestyle (160+)
	"social_life":       160,
	"nightlife":         161,
	"healthy_living":    162,
	"fitness":           163,
	"work_life_balance": 164,
	"punctuality":       165,
	"tidiness":          166,
	"travel_appetite":   167,

	// Interests (192+)
	"sports":     192,
	"arts":       193,
	"music":      194,
	"reading":    195,
	"travel":     196,
	"cooking":    197,
	"gaming":     198,
	"outdoors":   199,
	"animals":    200,
	"technology": 201,

	// Emotional intelligence (224+)
	"empathy":              224,
	"self_awareness":       225,
	"emotional_control":    226,
	"emotional_expression": 227,
	"supportiveness":       228,
	"patience":             229,
}

// coherenceGroups agrupa sub-facetas que deberían moverse juntas. El
// validador de consistencia las usa para detectar divergencias implausibles.
var coherenceGroups = map[string][]int{
	"openness":               {0, 1, 2, 3, 4, 5},
	"conscientiousness":      {6, 7, 8, 9, 10, 11},
	"extraversion":           {12, 13, 14, 15, 16, 17},
	"agreeableness":          {18, 19, 20, 21, 22, 23},
	"neuroticism":            {24, 25, 26, 27, 28, 29},
	"emotional_intelligence": {224, 225, 226, 228, 229},
}

// CategoryOf devuelve la categoría del índice dado.
func CategoryOf(index int) (string, error) {
	if index < 0 || index >= VectorDimensions {
		return "", &SchemaError{Detail: fmt.Sprintf("dimension %d out of range [0,%d)", index, VectorDimensions)}
	}
	return categoryOrder[index/categoryWidth], nil
}

// RangeOf devuelve el rango contiguo de índices de una categoría.
func RangeOf(category string) (DimensionRange, error) {
	for i, c := range categoryOrder {
		if c == category {
			return DimensionRange{Start: i * categoryWidth, End: (i + 1) * categoryWidth}, nil
		}
	}
	return DimensionRange{}, &SchemaError{Detail: "unknown category " + category}
}

// DimensionOf devuelve el índice absoluto de una faceta nombrada.
func DimensionOf(facetName string) (int, error) {
	idx, ok := facetTable[facetName]
	if !ok {
		return 0, &SchemaError{Detail: "unknown facet " + facetName}
	}
	return idx, nil
}

// FacetNameOf devuelve el nombre de la faceta en el índice, o "" si el
// índice está reservado (sin nombre).
func FacetNameOf(index int) string {
	for name, idx := range facetTable {
		if idx == index {
			return name
		}
	}
	return ""
}

// Categories devuelve las categorías en orden de rango.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// CoherenceGroups devuelve los grupos de coherencia declarados. El mapa
// retornado es una copia superficial; los slices no deben mutarse.
func CoherenceGroups() map[string][]int {
	out := make(map[string][]int, len(coherenceGroups))
	for name, dims := range coherenceGroups {
		out[name] = dims
	}
	return out
}
