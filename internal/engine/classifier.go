package engine

import (
	"math"
	"strings"

	"licitia/internal/models"
)

// Classify decides whether a tender belongs to the road-supervision
// specialty. It is a pure function of the tender and the engine
// configuration: no input ever makes it fail. A tender without object
// text scores 0 and is not relevant.
func (e *Engine) Classify(t models.Tender) (score float64, relevant bool) {
	if strings.TrimSpace(t.ObjectText) == "" {
		return 0, false
	}

	text := Normalize(t.ObjectText + " " + t.EntityName)

	pos := countHits(text, e.cfg.PositiveTerms)
	neg := countHits(text, e.cfg.NegativeTerms)

	// Hit-rate curve of the original classifier: 0.3 base plus 0.1 per
	// vocabulary hit, capped at 0.8 before the contract-type prior.
	if pos > 0 {
		score = math.Min(0.3+0.1*float64(pos), 0.8)
	}

	if e.contractTypePrior(t.ContractType) {
		score += e.cfg.ContractTypePrior
	}

	score -= e.cfg.NegativePenalty * float64(neg)
	score = clamp01(score)

	return score, score >= e.cfg.RelevanceThreshold
}

func (e *Engine) contractTypePrior(contractType *string) bool {
	if contractType == nil {
		return false
	}
	ct := Normalize(*contractType)
	if ct == "" {
		return false
	}
	for _, term := range e.cfg.PriorContractTypes {
		if strings.Contains(ct, term) {
			return true
		}
	}
	return false
}

func countHits(text string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			hits++
		}
	}
	return hits
}
