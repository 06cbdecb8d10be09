package service

import (
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"harmony-match/internal/domain"
)

// Pesos base de un match: las frases multi-palabra pesan aprox. el doble
// que una keyword suelta.
const (
	keywordWeight = 0.3
	phraseWeight  = 0.6

	// Ventana de tokens previos donde se buscan modificadores y negación.
	modifierWindow = 3

	// Mínimos de tokens normalizados antes de proponer algo.
	minStatementTokens = 10
	minFeedbackTokens  = 3
)

// FeedbackExtractor convierte texto libre en propuestas de ajuste por
// dimensión. Es una heurística de tablas de patrones, no un modelo NLP:
// no garantiza corrección lingüística y los conflictos dentro del mismo
// mensaje se emiten sin resolver (eso es del reconciliador).
type FeedbackExtractor struct {
	patterns []PatternEntry
	logger   *zap.Logger
}

func NewFeedbackExtractor(patterns []PatternEntry, logger *zap.Logger) *FeedbackExtractor {
	if len(patterns) == 0 {
		patterns = DefaultPatternTable()
	}
	return &FeedbackExtractor{patterns: patterns, logger: logger}
}

// ExtractFromStatement procesa una declaración conversacional del usuario,
// usada para poblar facetas aún desconocidas del propio perfil.
func (e *FeedbackExtractor) ExtractFromStatement(text string) domain.ExtractionResult {
	return e.extract(text, domain.SourceConversation)
}

// ExtractFromMatchFeedback procesa feedback libre sobre un candidato
// presentado, usado para refinar facetas de preferencia.
func (e *FeedbackExtractor) ExtractFromMatchFeedback(text string) domain.ExtractionResult {
	return e.extract(text, domain.SourceFeedback)
}

type matchKey struct {
	dimension int
	direction string
}

type matchAccum struct {
	strength   float64
	confidence float64
	evidence   []string
}

// matchCollector acumula matches por (dimensión, dirección). Direcciones
// opuestas sobre la misma dimensión quedan como buckets separados y salen
// como propuestas en conflicto, a resolver por el reconciliador.
type matchCollector struct {
	tokens         []string
	sourceCategory string
	buckets        map[matchKey]*matchAccum
}

func (c *matchCollector) record(dim, pos int, matched string, weight float64, baseDirection string) {
	window := precedingWindow(c.tokens, pos)
	direction := baseDirection
	evidence := []string{matched}

	negated := hasMarker(window, negationMarkers)
	excess := hasMarker(window, excessMarkers)

	switch c.sourceCategory {
	case domain.SourceConversation:
		// En declaraciones, la negación invierte la lectura literal:
		// "i am not organized" baja orderliness.
		if negated {
			direction = flipDirection(direction)
			evidence = append(evidence, "neg:"+firstMarker(window, negationMarkers))
		}
	case domain.SourceFeedback:
		// En feedback sobre un candidato, "too X" invierte: demasiado X
		// baja la preferencia por X. La negación NO invierte: "not
		// reliable" como queja implica que el usuario valora la faceta,
		// así que la dirección afirmativa se mantiene. Escaneo grueso a
		// propósito, sin scoping gramatical.
		if excess {
			direction = flipDirection(direction)
			evidence = append(evidence, "excess:"+firstMarker(window, excessMarkers))
		} else if negated {
			evidence = append(evidence, "neg:"+firstMarker(window, negationMarkers))
		}
	}

	// Modificadores de intensidad sobre strength.
	scale := 1.0
	switch {
	case hasMarker(window, intensityHigh):
		scale = 1.5
		evidence = append(evidence, "intensity:high")
	case hasMarker(window, intensityMed):
		scale = 1.2
		evidence = append(evidence, "intensity:medium")
	case hasMarker(window, intensityLow):
		scale = 0.5
		evidence = append(evidence, "intensity:low")
	}

	// Modificadores de certeza sobre confidence.
	confScale := 1.0
	switch {
	case hasMarker(window, certaintyUp):
		confScale = 1.3
	case hasMarker(window, certaintyDown):
		confScale = 0.7
	}

	baseConf := 0.5
	if weight >= phraseWeight {
		baseConf = 0.65
	}

	key := matchKey{dimension: dim, direction: direction}
	acc, ok := c.buckets[key]
	if !ok {
		acc = &matchAccum{}
		c.buckets[key] = acc
	}
	acc.strength += weight * scale
	if conf := baseConf * confScale; conf > acc.confidence {
		acc.confidence = conf
	}
	acc.evidence = append(acc.evidence, evidence...)
}

func (e *FeedbackExtractor) extract(text, sourceCategory string) domain.ExtractionResult {
	tokens := tokenize(text)
	result := domain.ExtractionResult{TokenCount: len(tokens)}

	// Texto vacío o muy corto: cero propuestas y bandera de baja confianza
	// en vez de adivinar. El umbral es más laxo para feedback porque las
	// reacciones a un candidato son naturalmente breves.
	minTokens := minStatementTokens
	if sourceCategory == domain.SourceFeedback {
		minTokens = minFeedbackTokens
	}
	if len(tokens) < minTokens {
		result.LowConfidence = true
		return result
	}

	joined := " " + strings.Join(tokens, " ") + " "
	collector := &matchCollector{
		tokens:         tokens,
		sourceCategory: sourceCategory,
		buckets:        make(map[matchKey]*matchAccum),
	}

	for _, entry := range e.patterns {
		dim, err := domain.DimensionOf(entry.Facet)
		if err != nil {
			// Una faceta desconocida en la tabla es un mismatch de la
			// heurística: se descarta con warning, nunca aborta el batch.
			if e.logger != nil {
				e.logger.Warn("dropped proposal: unknown facet in pattern table",
					zap.String("facet", entry.Facet))
			}
			continue
		}
		for _, kw := range entry.Keywords {
			nkw := normalizeText(kw)
			if strings.Contains(nkw, " ") {
				// Keyword con puntuación normalizada a varias palabras
				// (p.ej. "laid-back"): se matchea como frase con peso de
				// keyword.
				if pos, ok := phrasePosition(joined, tokens, nkw); ok {
					collector.record(dim, pos, nkw, keywordWeight, entry.Direction)
				}
				continue
			}
			for i, tok := range tokens {
				if tok == nkw {
					collector.record(dim, i, nkw, keywordWeight, entry.Direction)
				}
			}
		}
		for _, ph := range entry.Phrases {
			nph := normalizeText(ph)
			if pos, ok := phrasePosition(joined, tokens, nph); ok {
				collector.record(dim, pos, nph, phraseWeight, entry.Direction)
			}
		}
	}

	if len(collector.buckets) == 0 {
		result.LowConfidence = true
		return result
	}

	for key, acc := range collector.buckets {
		strength := acc.strength
		if strength > 1 {
			strength = 1
		}
		conf := acc.confidence
		if conf > 0.95 {
			conf = 0.95
		}
		if conf < 0.05 {
			conf = 0.05
		}
		result.Proposals = append(result.Proposals, domain.AdjustmentProposal{
			Dimension:      key.dimension,
			Direction:      key.direction,
			Strength:       strength,
			Confidence:     conf,
			Evidence:       acc.evidence,
			SourceCategory: sourceCategory,
		})
	}

	// Orden estable por dimensión para que el pipeline sea determinista.
	sort.Slice(result.Proposals, func(i, j int) bool {
		a, b := result.Proposals[i], result.Proposals[j]
		if a.Dimension != b.Dimension {
			return a.Dimension < b.Dimension
		}
		return a.Direction < b.Direction
	})
	return result
}

// phrasePosition devuelve el índice del primer token de la frase si la
// frase aparece como substring delimitado del texto normalizado.
func phrasePosition(joined string, tokens []string, phrase string) (int, bool) {
	if phrase == "" || !strings.Contains(joined, " "+phrase+" ") {
		return 0, false
	}
	first := strings.Fields(phrase)[0]
	for i, tok := range tokens {
		if tok == first {
			return i, true
		}
	}
	return 0, true
}

func flipDirection(d string) string {
	switch d {
	case domain.DirectionIncrease:
		return domain.DirectionDecrease
	case domain.DirectionDecrease:
		return domain.DirectionIncrease
	default:
		return d
	}
}

func hasMarker(window []string, markers []string) bool {
	for _, w := range window {
		for _, m := range markers {
			if w == m {
				return true
			}
		}
	}
	return false
}

func firstMarker(window []string, markers []string) string {
	for _, w := range window {
		for _, m := range markers {
			if w == m {
				return m
			}
		}
	}
	return ""
}

func precedingWindow(tokens []string, pos int) []string {
	start := pos - modifierWindow
	if start < 0 {
		start = 0
	}
	return tokens[start:pos]
}

// tokenize normaliza y separa en tokens.
func tokenize(text string) []string {
	return strings.Fields(normalizeText(text))
}

// normalizeText baja a minúsculas, elimina diacríticos y reemplaza la
// puntuación por espacios.
func normalizeText(s string) string {
	s = norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
