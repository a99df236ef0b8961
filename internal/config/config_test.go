package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.APIPort)
	}
	if cfg.FusionRRFK != 60 {
		t.Fatalf("expected default RRF constant 60, got %d", cfg.FusionRRFK)
	}
	if cfg.MaxHistoryWindow != 20 {
		t.Fatalf("expected default history window 20, got %d", cfg.MaxHistoryWindow)
	}
	if cfg.NATSConsolidateSubject != "memory.consolidate" {
		t.Fatalf("unexpected consolidate subject %q", cfg.NATSConsolidateSubject)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("SEARCH_TOP_K", "25")
	t.Setenv("OLLAMA_GEN_MODEL", "custom-model")

	cfg := Load()

	if cfg.APIPort != "9999" {
		t.Fatalf("expected overridden port, got %q", cfg.APIPort)
	}
	if cfg.SearchTopK != 25 {
		t.Fatalf("expected overridden top-k, got %d", cfg.SearchTopK)
	}
	if cfg.OllamaGenModel != "custom-model" {
		t.Fatalf("expected overridden model, got %q", cfg.OllamaGenModel)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("RERANK_TOP_N", "not-a-number")

	cfg := Load()

	if cfg.RerankTopN != 3 {
		t.Fatalf("expected fallback for malformed int, got %d", cfg.RerankTopN)
	}
}
