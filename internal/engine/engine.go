package engine

import (
	"fmt"
	"math"
)

// Engine is the relevance classification and experience matching core.
// It holds immutable configuration only, so a single instance is safe
// for concurrent use from any number of scoring goroutines.
type Engine struct {
	cfg Config
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Weights blend the four sub-scores into the composite match score.
// They must sum to 1.
type Weights struct {
	Keyword  float64
	Amount   float64
	Entity   float64
	Category float64
}

// CategoryGroup names one canonical engagement/area category and the
// normalized terms that resolve to it. Groups are checked in order.
type CategoryGroup struct {
	Name  string
	Terms []string
}

// CategoryRelation grants partial credit when tender and experience
// resolve to different but related canonical categories.
type CategoryRelation struct {
	A      string
	B      string
	Credit float64
}

type Config struct {
	RelevanceThreshold float64
	ContractTypePrior  float64
	NegativePenalty    float64
	AmountLogBound     float64
	Weights            Weights

	// Classifier vocabulary: normalized phrases matched against the
	// tender's descriptive text.
	PositiveTerms      []string
	NegativeTerms      []string
	PriorContractTypes []string

	// Keyword extraction vocabulary: single normalized tokens.
	Vocabulary []string
	Stopwords  []string

	CategoryGroups []CategoryGroup
	RelatedCredits []CategoryRelation
}

func (cfg Config) validate() error {
	sum := cfg.Weights.Keyword + cfg.Weights.Amount + cfg.Weights.Entity + cfg.Weights.Category
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("sub-score weights must sum to 1, got %v", sum)
	}
	if cfg.Weights.Keyword < 0 || cfg.Weights.Amount < 0 || cfg.Weights.Entity < 0 || cfg.Weights.Category < 0 {
		return fmt.Errorf("sub-score weights must be non-negative")
	}
	if cfg.RelevanceThreshold < 0 || cfg.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance threshold must lie in [0,1], got %v", cfg.RelevanceThreshold)
	}
	if cfg.AmountLogBound <= 0 {
		return fmt.Errorf("amount log bound must be positive, got %v", cfg.AmountLogBound)
	}
	return nil
}

// DefaultConfig returns the built-in road-supervision vocabulary and the
// default scoring knobs. Callers override the numeric knobs from the
// process configuration before constructing the engine.
func DefaultConfig() Config {
	return Config{
		RelevanceThreshold: 0.5,
		ContractTypePrior:  0.2,
		NegativePenalty:    0.15,
		AmountLogBound:     2.0,
		Weights: Weights{
			Keyword:  0.4,
			Amount:   0.2,
			Entity:   0.25,
			Category: 0.15,
		},

		PositiveTerms: []string{
			"interventoria",
			"vial",
			"vias",
			"carretera",
			"malla vial",
			"supervision de vias",
			"obra vial",
			"infraestructura vial",
			"supervision",
		},
		NegativeTerms: []string{
			"vigilancia y seguridad",
			"aseo y cafeteria",
			"suministro de papeleria",
			"alimentacion escolar",
			"licencias de software",
			"dotacion de uniformes",
		},
		PriorContractTypes: []string{"interventoria"},

		Vocabulary: []string{
			"interventoria", "supervision",
			"vial", "vias", "carretera", "malla",
			"obra", "obras", "construccion",
			"mantenimiento", "mejoramiento", "rehabilitacion",
			"diseno", "estudio", "estudios",
			"tecnica", "administrativa", "ambiental",
			"puente", "puentes", "infraestructura",
		},
		Stopwords: []string{"para", "del", "los", "las", "con", "por", "que", "una", "uno"},

		CategoryGroups: []CategoryGroup{
			{Name: "interventoria", Terms: []string{"interventoria", "supervision"}},
			{Name: "obra", Terms: []string{"obra", "construccion"}},
			{Name: "consultoria", Terms: []string{"consultoria", "estudio", "diseno"}},
			{Name: "vial", Terms: []string{"vial", "vias", "carretera", "malla"}},
		},
		RelatedCredits: []CategoryRelation{
			{A: "interventoria", B: "consultoria", Credit: 0.6},
			{A: "interventoria", B: "obra", Credit: 0.4},
			{A: "obra", B: "vial", Credit: 0.5},
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
