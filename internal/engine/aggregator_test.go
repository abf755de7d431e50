package engine

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"licitia/internal/models"

	gofakeit "github.com/brianvoe/gofakeit/v7"
)

func randomExperiences(e *Engine, faker *gofakeit.Faker, n int) []models.Experience {
	experiences := make([]models.Experience, 0, n)
	for i := 0; i < n; i++ {
		desc := faker.Sentence(12)
		experiences = append(experiences, models.Experience{
			Id:                 faker.UUID(),
			CompanyName:        "Consultores Viales SAS",
			ProjectDescription: desc,
			ContractingEntity:  sptr(faker.Company()),
			Amount:             fptr(faker.Float64Range(1e6, 1e12)),
			Category:           sptr(faker.RandomString([]string{"Interventoría", "Obra", "Consultoría"})),
			Keywords:           e.ExtractKeywords(desc),
		})
	}
	return experiences
}

func TestMatchAllDeterministicOrder(t *testing.T) {
	e := NewTestEngine(t)
	faker := gofakeit.New(31)

	tender := models.Tender{
		EntityName: faker.Company(),
		ObjectText: "Interventoría técnica para el mejoramiento de la malla vial",
		Amount:     fptr(800_000_000),
	}
	experiences := randomExperiences(e, faker, 25)

	first := e.MatchAll(tender, experiences)
	for i := 0; i < 5; i++ {
		again := e.MatchAll(tender, experiences)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Match results differ between identical runs")
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1].Score < first[i].Score {
			t.Fatalf("Results are not sorted best-first at index %d", i)
		}
		if first[i-1].Score == first[i].Score && first[i-1].ExperienceId >= first[i].ExperienceId {
			t.Fatalf("Tied scores are not ordered by experience id at index %d", i)
		}
	}
}

func TestMatchAllCompositeIsWeightedSum(t *testing.T) {
	e := NewTestEngine(t)
	faker := gofakeit.New(37)

	tender := models.Tender{
		EntityName: faker.Company(),
		ObjectText: faker.Sentence(15),
		Amount:     fptr(faker.Float64Range(1e6, 1e12)),
	}
	results := e.MatchAll(tender, randomExperiences(e, faker, 30))

	w := DefaultConfig().Weights
	for _, res := range results {
		want := w.Keyword*res.Scores.Keyword + w.Amount*res.Scores.Amount +
			w.Entity*res.Scores.Entity + w.Category*res.Scores.Category
		if math.Abs(res.Score-want) > 1e-9 {
			t.Fatalf("Composite %v does not equal weighted sum %v", res.Score, want)
		}
		if res.Score < 0 || res.Score > 1 {
			t.Fatalf("Composite score out of [0,1]: %v", res.Score)
		}
	}
}

func TestBestScoreWithoutExperiences(t *testing.T) {
	e := NewTestEngine(t)

	results := e.MatchAll(models.Tender{ObjectText: "Interventoría vial"}, nil)
	if len(results) != 0 {
		t.Fatalf("Expected no results without experiences, got %d", len(results))
	}
	if best := BestScore(results); best != nil {
		t.Errorf("Best score without experiences must be nil, got %v", *best)
	}
}

func TestBestScorePicksMaximum(t *testing.T) {
	e := NewTestEngine(t)
	faker := gofakeit.New(41)

	tender := models.Tender{
		EntityName: "INVIAS",
		ObjectText: "Interventoría para el mantenimiento de vías",
		Amount:     fptr(500_000_000),
	}
	results := e.MatchAll(tender, randomExperiences(e, faker, 10))

	best := BestScore(results)
	if best == nil {
		t.Fatal("Expected a best score for non-empty results")
	}
	for _, res := range results {
		if res.Score > *best {
			t.Fatalf("Best score %v is below result %v", *best, res.Score)
		}
	}
}

func TestMatchResultDescriptionTruncated(t *testing.T) {
	e := NewTestEngine(t)

	long := strings.Repeat("interventoría ", 20)
	results := e.MatchAll(models.Tender{ObjectText: "Interventoría"}, []models.Experience{{
		Id:                 "x",
		ProjectDescription: long,
		Keywords:           []string{"interventoria"},
	}})

	if len(results) != 1 {
		t.Fatalf("Expected one result, got %d", len(results))
	}
	desc := []rune(results[0].ProjectDescription)
	if len(desc) != 103 || !strings.HasSuffix(results[0].ProjectDescription, "...") {
		t.Errorf("Expected description truncated to 100 runes plus ellipsis, got %d runes", len(desc))
	}
}
