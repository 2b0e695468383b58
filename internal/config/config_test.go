package config

import "testing"

func validConfig() *Config {
	return &Config{
		Port:                "8000",
		Env:                 "development",
		DatabaseURL:         "postgres://localhost/lifeline",
		AssistantMode:       AssistantModeOffline,
		ChatFunctionResults: FunctionResultsFirst,
	}
}

func TestValidate_OfflineMode(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_GeminiRequiresKey(t *testing.T) {
	cfg := validConfig()
	cfg.AssistantMode = AssistantModeGemini
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when GEMINI_API_KEY is missing")
	}
	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownAssistantMode(t *testing.T) {
	cfg := validConfig()
	cfg.AssistantMode = "auto"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown assistant mode")
	}
}

func TestValidate_FunctionResults(t *testing.T) {
	cfg := validConfig()
	cfg.ChatFunctionResults = "some"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown function result mode")
	}
	cfg.ChatFunctionResults = FunctionResultsAll
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_LedgerRequiresAlgodURL(t *testing.T) {
	cfg := validConfig()
	cfg.LedgerEnabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when ALGOD_URL is missing")
	}
	cfg.AlgodURL = "http://localhost:4001"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
