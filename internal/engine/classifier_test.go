package engine

import (
	"math"
	"testing"

	"licitia/internal/models"

	gofakeit "github.com/brianvoe/gofakeit/v7"
)

func TestClassifyEmptyObjectText(t *testing.T) {
	e := NewTestEngine(t)

	score, relevant := e.Classify(models.Tender{EntityName: "INVIAS"})
	if score != 0 || relevant {
		t.Errorf("Empty object text should score 0 and be irrelevant, got %v, %v", score, relevant)
	}
}

func TestClassifyRoadSupervisionTender(t *testing.T) {
	e := NewTestEngine(t)

	tender := models.Tender{
		EntityName: "Alcaldía de Pereira",
		ObjectText: "Interventoría para el mantenimiento de la malla vial urbana",
	}

	// Positive hits: interventoria, vial, malla vial.
	score, relevant := e.Classify(tender)
	if math.Abs(score-0.6) > 1e-9 {
		t.Errorf("Expected score 0.6, got %v", score)
	}
	if !relevant {
		t.Error("Road supervision tender should be classified as relevant")
	}
}

func TestClassifyContractTypePrior(t *testing.T) {
	e := NewTestEngine(t)

	contractType := "Interventoría"
	tender := models.Tender{
		EntityName: "Gobernación de Antioquia",
		ObjectText: "Supervisión técnica del proyecto",
	}

	withoutPrior, relevant := e.Classify(tender)
	if relevant {
		t.Errorf("Single-hit tender without the prior should stay below threshold, scored %v", withoutPrior)
	}

	tender.ContractType = &contractType
	withPrior, relevant := e.Classify(tender)
	if math.Abs(withPrior-withoutPrior-0.2) > 1e-9 {
		t.Errorf("Contract type prior should add 0.2: %v -> %v", withoutPrior, withPrior)
	}
	if !relevant {
		t.Error("Prior should lift the tender over the relevance threshold")
	}
}

func TestClassifyNegativePenalty(t *testing.T) {
	e := NewTestEngine(t)

	tender := models.Tender{
		EntityName: "Municipio de Neiva",
		ObjectText: "Interventoría del contrato de vigilancia y seguridad privada",
	}

	score, relevant := e.Classify(tender)
	if math.Abs(score-0.25) > 1e-9 {
		t.Errorf("Expected one positive and one negative hit to score 0.25, got %v", score)
	}
	if relevant {
		t.Error("Penalized tender should not be relevant")
	}
}

func TestClassifyBaseScoreCap(t *testing.T) {
	e := NewTestEngine(t)

	tender := models.Tender{
		EntityName: "INVIAS",
		ObjectText: "Interventoría y supervisión de vías: obra vial, malla vial, carretera e infraestructura vial del corredor",
	}

	score, _ := e.Classify(tender)
	if score > 0.8 {
		t.Errorf("Base score without prior must cap at 0.8, got %v", score)
	}
}

func TestClassifyBoundsAndThreshold(t *testing.T) {
	e := NewTestEngine(t)
	faker := gofakeit.New(7)

	for i := 0; i < 200; i++ {
		tender := models.Tender{
			EntityName: faker.Company(),
			ObjectText: faker.Sentence(12),
		}
		if faker.Bool() {
			ct := faker.RandomString([]string{"Interventoría", "Obra pública", "Consultoría", "Suministro"})
			tender.ContractType = &ct
		}

		score, relevant := e.Classify(tender)
		if score < 0 || score > 1 {
			t.Fatalf("Score out of [0,1]: %v for %q", score, tender.ObjectText)
		}
		if relevant != (score >= 0.5) {
			t.Fatalf("Relevance flag disagrees with threshold: score %v, relevant %v", score, relevant)
		}
	}
}

func TestClassifyTracksConfiguredThreshold(t *testing.T) {
	for _, threshold := range []float64{0.3, 0.5, 0.7} {
		cfg := DefaultConfig()
		cfg.RelevanceThreshold = threshold

		e, err := New(cfg)
		if err != nil {
			t.Fatalf("Could not build engine with threshold %v: %s", threshold, err)
		}
		faker := gofakeit.New(13)

		for i := 0; i < 200; i++ {
			tender := models.Tender{
				EntityName: faker.Company(),
				ObjectText: faker.RandomString([]string{
					faker.Sentence(12),
					"Interventoría para el mantenimiento de la malla vial urbana",
					"Interventoría técnica del contrato de vigilancia y seguridad",
					"Suministro de papelería para la sede administrativa",
				}),
			}
			if faker.Bool() {
				ct := faker.RandomString([]string{"Interventoría", "Obra pública", "Consultoría"})
				tender.ContractType = &ct
			}

			score, relevant := e.Classify(tender)
			if relevant != (score >= threshold) {
				t.Fatalf("Relevance flag disagrees with threshold %v: score %v, relevant %v for %q",
					threshold, score, relevant, tender.ObjectText)
			}
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	e := NewTestEngine(t)
	faker := gofakeit.New(11)

	for i := 0; i < 50; i++ {
		tender := models.Tender{
			EntityName: faker.Company(),
			ObjectText: faker.Sentence(20),
		}

		first, firstRel := e.Classify(tender)
		for j := 0; j < 5; j++ {
			again, againRel := e.Classify(tender)
			if first != again || firstRel != againRel {
				t.Fatalf("Classification is not deterministic for %q", tender.ObjectText)
			}
		}
	}
}
