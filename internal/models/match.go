package models

// SubScores is the per-comparator breakdown behind a composite match
// score. Every value lies in [0,1] and is independently reproducible.
type SubScores struct {
	Keyword  float64 `json:"keyword"`
	Amount   float64 `json:"amount"`
	Entity   float64 `json:"entity"`
	Category float64 `json:"category"`
}

// MatchResult is the outcome of comparing one tender against one
// experience. The experience fields are denormalized for display only.
type MatchResult struct {
	ExperienceId       string    `json:"experience_id"`
	ProjectDescription string    `json:"project_description"`
	ContractingEntity  *string   `json:"contracting_entity"`
	Amount             *float64  `json:"amount"`
	Score              float64   `json:"score"`
	Scores             SubScores `json:"scores"`
}
