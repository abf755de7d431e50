package engine

import (
	"sort"

	"licitia/internal/models"
)

// MatchAll scores one tender against every supplied experience and
// returns the comparisons best-first. Equal composite scores order by
// experience id so repeated runs over identical inputs produce identical
// results.
func (e *Engine) MatchAll(t models.Tender, experiences []models.Experience) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(experiences))

	for _, x := range experiences {
		sub := models.SubScores{
			Keyword:  e.KeywordScore(t, x),
			Amount:   e.AmountScore(t, x),
			Entity:   e.EntityScore(t, x),
			Category: e.CategoryScore(t, x),
		}

		w := e.cfg.Weights
		composite := clamp01(w.Keyword*sub.Keyword + w.Amount*sub.Amount + w.Entity*sub.Entity + w.Category*sub.Category)

		results = append(results, models.MatchResult{
			ExperienceId:       x.Id,
			ProjectDescription: truncate(x.ProjectDescription, 100),
			ContractingEntity:  x.ContractingEntity,
			Amount:             x.Amount,
			Score:              composite,
			Scores:             sub,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ExperienceId < results[j].ExperienceId
	})

	return results
}

// BestScore returns the maximum composite score of a MatchAll result, or
// nil when no experience was evaluated. The distinction matters: "no
// experiences" must not read as "matched with score zero".
func BestScore(results []models.MatchResult) *float64 {
	if len(results) == 0 {
		return nil
	}
	best := results[0].Score
	return &best
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
