package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GeminiModel != defaultGeminiModel {
		t.Fatalf("model = %q, want default", cfg.GeminiModel)
	}
	if cfg.AnalysisLimit != DefaultAnalysisLimit {
		t.Fatalf("analysis limit = %d, want %d", cfg.AnalysisLimit, DefaultAnalysisLimit)
	}
	if cfg.MaxTokens != 8192 {
		t.Fatalf("max tokens = %d, want 8192", cfg.MaxTokens)
	}
}

func TestLoadConfig_FillsGapsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "steam_api_key: abc\nsteam_id: \"76561198000000000\"\nanalysis_limit: 0\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SteamAPIKey != "abc" {
		t.Fatalf("steam key = %q, want abc", cfg.SteamAPIKey)
	}
	if cfg.SteamID != "76561198000000000" {
		t.Fatalf("steam id = %q", cfg.SteamID)
	}
	if cfg.GeminiBaseURL != defaultGeminiBaseURL {
		t.Fatalf("base url = %q, want default", cfg.GeminiBaseURL)
	}
	if cfg.AnalysisLimit != DefaultAnalysisLimit {
		t.Fatalf("zero limit should fall back to default, got %d", cfg.AnalysisLimit)
	}
}

func TestLoadConfig_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("steam_api_key: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSaveConfig_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	want := DefaultConfig()
	want.SteamAPIKey = "key"
	want.SteamID = "76561198000000000"
	want.GeminiAPIKey = "gkey"
	want.RefreshSchedule = "@hourly"
	if err := SaveConfig(want, path); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
