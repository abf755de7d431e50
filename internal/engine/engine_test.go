package engine

import (
	"reflect"
	"testing"
)

func NewTestEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("Could not build engine from default config: %s", err)
	}
	return e
}

func TestNewRejectsBrokenWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Keyword = 0.9

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for weights not summing to 1, got nil")
	}
}

func TestNewRejectsNegativeLogBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmountLogBound = -1

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for negative amount log bound, got nil")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Interventoría":                     "interventoria",
		"  MALLA   VIAL  ":                  "malla vial",
		"construcción, mejoramiento (vías)": "construccion mejoramiento vias",
		"":                                  "",
		"---":                               "",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	e := NewTestEngine(t)

	text := "Interventoría técnica y administrativa para el mejoramiento de la malla vial urbana del municipio"

	first := e.ExtractKeywords(text)
	if len(first) == 0 {
		t.Fatal("Expected keywords to be extracted, got none")
	}

	for i := 0; i < 10; i++ {
		again := e.ExtractKeywords(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Keyword extraction is not deterministic: %v vs %v", first, again)
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1] >= first[i] {
			t.Fatalf("Keywords are not sorted and deduplicated: %v", first)
		}
	}
}

func TestExtractKeywordsVocabularyHits(t *testing.T) {
	e := NewTestEngine(t)

	keywords := e.ExtractKeywords("Interventoría vial", "Obras de mantenimiento")

	want := map[string]bool{"interventoria": true, "vial": true, "obras": true, "mantenimiento": true}
	for _, kw := range keywords {
		delete(want, kw)
	}
	if len(want) > 0 {
		t.Errorf("Vocabulary tokens missing from keyword set %v: %v", keywords, want)
	}
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	e := NewTestEngine(t)

	if kws := e.ExtractKeywords("", "  ", "\t"); len(kws) != 0 {
		t.Errorf("Expected no keywords from blank input, got %v", kws)
	}
}
