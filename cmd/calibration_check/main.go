package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Escenario de extracción: texto de entrada y el ajuste que la tabla de
// patrones de producción debería producir.
type extractionScenario struct {
	Kind      string
	Input     string
	Facet     string
	Direction string
}

// Chequeo de calibración offline: corre escenarios de extracción y pares
// sintéticos por el scorer, sin base de datos. Pensado para validar una
// tabla de patrones o una recalibración de bandas antes de desplegar.
func main() {
	logger := zap.NewNop()

	patterns := service.DefaultPatternTable()
	if len(os.Args) > 1 {
		loaded, err := service.LoadPatternTable(os.Args[1])
		if err != nil {
			fmt.Printf("%s[FAIL]%s pattern table %s: %v\n", colorRed, colorReset, os.Args[1], err)
			os.Exit(1)
		}
		patterns = loaded
	}
	extractor := service.NewFeedbackExtractor(patterns, logger)

	scenarios := []extractionScenario{
		{service.TextKindStatement, "I really love meeting new people and going to parties every weekend", "gregariousness", domain.DirectionIncrease},
		{service.TextKindStatement, "I am not a very organized person and my plans always fall apart", "orderliness", domain.DirectionDecrease},
		{service.TextKindFeedback, "She's way too energetic for me, I need someone calmer", "activity_level", domain.DirectionDecrease},
		{service.TextKindFeedback, "I wish he was more adventurous and open to travel", "adventurousness", domain.DirectionIncrease},
	}

	failures := 0
	for _, sc := range scenarios {
		fmt.Printf("%s[Input]%s %s\n", colorCyan, colorReset, sc.Input)

		var result domain.ExtractionResult
		if sc.Kind == service.TextKindFeedback {
			result = extractor.ExtractFromMatchFeedback(sc.Input)
		} else {
			result = extractor.ExtractFromStatement(sc.Input)
		}

		wantDim, err := domain.DimensionOf(sc.Facet)
		if err != nil {
			fmt.Printf("%s[FAIL]%s unknown facet %s\n", colorRed, colorReset, sc.Facet)
			failures++
			continue
		}

		found := false
		for _, p := range result.Proposals {
			if p.Dimension == wantDim && p.Direction == sc.Direction {
				fmt.Printf("%s[OK]%s   %s %s (strength %.2f, confidence %.2f)\n",
					colorGreen, colorReset, sc.Facet, p.Direction, p.Strength, p.Confidence)
				found = true
				break
			}
		}
		if !found {
			fmt.Printf("%s[FAIL]%s expected %s %s, got %d proposals\n",
				colorRed, colorReset, sc.Facet, sc.Direction, len(result.Proposals))
			failures++
		}
	}

	failures += checkBands()

	if failures > 0 {
		fmt.Printf("\n%s%d check(s) failed%s\n", colorRed, failures, colorReset)
		os.Exit(1)
	}
	fmt.Printf("\n%sall checks passed%s\n", colorGreen, colorReset)
}

// checkBands valida que las bandas sigan ancladas: un par casi idéntico
// cae en EXCEPTIONAL y un par opuesto en valores cae fuera de STRONG.
func checkBands() int {
	scorer := service.NewCompatibilityScorer(service.NewMemoryWeightsStore(), 0.05, zap.NewNop())

	twin := domain.NewPersonalityVector()
	for i := range twin.Confidence {
		twin.Confidence[i] = 0.8
	}
	result := scorer.Score(twin, twin.Clone())
	failures := 0
	if result.Band != domain.BandExceptional {
		fmt.Printf("%s[FAIL]%s twin pair scored %.3f [%s], want EXCEPTIONAL\n",
			colorRed, colorReset, result.Overall, result.Band)
		failures++
	} else {
		fmt.Printf("%s[OK]%s   twin pair scored %.3f [%s]\n",
			colorGreen, colorReset, result.Overall, result.Band)
	}

	clash := twin.Clone()
	valuesRange, _ := domain.RangeOf(domain.CategoryValues)
	for i := valuesRange.Start; i < valuesRange.End; i++ {
		_ = clash.Set(i, 0.95)
	}
	low := domain.NewPersonalityVector()
	for i := range low.Confidence {
		low.Confidence[i] = 0.8
	}
	for i := valuesRange.Start; i < valuesRange.End; i++ {
		_ = low.Set(i, 0.05)
	}
	result = scorer.Score(clash, low)
	if result.Band == domain.BandExceptional || result.Band == domain.BandStrong {
		fmt.Printf("%s[FAIL]%s clashing pair scored %.3f [%s], want below STRONG\n",
			colorRed, colorReset, result.Overall, result.Band)
		failures++
	} else {
		fmt.Printf("%s[OK]%s   clashing pair scored %.3f [%s]\n",
			colorGreen, colorReset, result.Overall, result.Band)
	}
	return failures
}
