package engine

import (
	"math"
	"strings"

	"licitia/internal/models"
)

// The four sub-score comparators. All of them are total functions over
// [0,1]: missing or malformed fields degrade to a 0 score, they never
// fail the pipeline.

// KeywordScore measures token overlap between the tender's descriptive
// text and the experience's derived keyword set.
func (e *Engine) KeywordScore(t models.Tender, x models.Experience) float64 {
	if len(x.Keywords) == 0 {
		return 0
	}

	text := t.ObjectText
	if t.ContractType != nil {
		text += " " + *t.ContractType
	}
	tokens := tokenSet(Tokenize(text))
	if len(tokens) == 0 {
		return 0
	}

	hits := 0
	for _, kw := range x.Keywords {
		if _, ok := tokens[kw]; ok {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}

	ratio := float64(hits) / float64(len(x.Keywords))

	// Multiple independent hits are stronger evidence than the ratio
	// alone suggests.
	switch {
	case hits >= 3:
		ratio *= 1.3
	case hits >= 2:
		ratio *= 1.2
	}

	return clamp01(ratio)
}

// AmountScore compares monetary amounts on a logarithmic scale: equal
// amounts score 1, the score tapers linearly to 0 as the ratio reaches
// AmountLogBound orders of magnitude. A missing amount on either side
// scores 0 so that absent data never fabricates confidence.
func (e *Engine) AmountScore(t models.Tender, x models.Experience) float64 {
	if t.Amount == nil || x.Amount == nil || *t.Amount <= 0 || *x.Amount <= 0 {
		return 0
	}

	d := math.Abs(math.Log10(*t.Amount / *x.Amount))
	return clamp01(1 - d/e.cfg.AmountLogBound)
}

// EntityScore compares contracting entity names after normalization.
func (e *Engine) EntityScore(t models.Tender, x models.Experience) float64 {
	if x.ContractingEntity == nil {
		return 0
	}

	a := Normalize(t.EntityName)
	b := Normalize(*x.ContractingEntity)
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.7
	}

	at := tokenSet(strings.Fields(a))
	bt := tokenSet(strings.Fields(b))
	common := 0
	for tok := range at {
		if _, ok := bt[tok]; ok {
			common++
		}
	}
	smaller := len(at)
	if len(bt) < smaller {
		smaller = len(bt)
	}
	if smaller == 0 || common == 0 {
		return 0
	}

	// Overlap coefficient, scaled below the containment tier.
	return 0.6 * float64(common) / float64(smaller)
}

// CategoryScore compares the tender's inferred category against the
// experience's declared category or engineering area. Equal canonical
// categories score 1, related categories earn the configured partial
// credit, anything else scores 0.
func (e *Engine) CategoryScore(t models.Tender, x models.Experience) float64 {
	expText := joinOptional(x.Category, x.EngineeringArea)
	expCat := e.canonicalCategory(expText)
	if expCat == "" {
		return 0
	}

	tenderCat := e.canonicalCategory(joinOptional(t.ContractType, t.ContractModality))
	if tenderCat == "" {
		// Fall back to the classified domain of the object text.
		tenderCat = e.canonicalCategory(t.ObjectText)
	}
	if tenderCat == "" {
		return 0
	}

	if tenderCat == expCat {
		return 1
	}
	for _, rel := range e.cfg.RelatedCredits {
		if (rel.A == tenderCat && rel.B == expCat) || (rel.A == expCat && rel.B == tenderCat) {
			return clamp01(rel.Credit)
		}
	}
	return 0
}

// canonicalCategory resolves free text to the first configured category
// group one of whose terms occurs in the normalized text. Group order is
// fixed by configuration, keeping resolution deterministic.
func (e *Engine) canonicalCategory(text string) string {
	norm := Normalize(text)
	if norm == "" {
		return ""
	}
	for _, group := range e.cfg.CategoryGroups {
		for _, term := range group.Terms {
			if strings.Contains(norm, term) {
				return group.Name
			}
		}
	}
	return ""
}

func joinOptional(parts ...*string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(*p)
	}
	return b.String()
}
