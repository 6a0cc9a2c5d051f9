package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Cathesth/SHELF/internal/app"
)

func TestApplyEnvOverrides_FillsEmptyCredentials(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "env-steam-key")
	t.Setenv("STEAM_ID", "76561198000000000")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg := app.DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.SteamAPIKey != "env-steam-key" {
		t.Fatalf("steam key = %q, want env fallback", cfg.SteamAPIKey)
	}
	if cfg.SteamID != "76561198000000000" {
		t.Fatalf("steam id = %q, want env fallback", cfg.SteamID)
	}
	if cfg.GeminiAPIKey != "env-gemini-key" {
		t.Fatalf("gemini key = %q, want env fallback", cfg.GeminiAPIKey)
	}
}

func TestRunFetch_EmptyLibraryIsAWarningNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{}}`))
	}))
	defer server.Close()

	cfg := app.DefaultConfig()
	cfg.SteamAPIKey = "key"
	cfg.SteamID = "76561198000000000"
	cfg.SteamBaseURL = server.URL

	var out bytes.Buffer
	if err := runFetch(context.Background(), app.NewApplication(cfg), false, &out); err != nil {
		t.Fatalf("empty library should not fail the command: %v", err)
	}
	if !strings.Contains(out.String(), "No games found") {
		t.Fatalf("missing warning copy: %q", out.String())
	}
}

func TestRunFetch_MissingCredentialsErrors(t *testing.T) {
	var out bytes.Buffer
	err := runFetch(context.Background(), app.NewApplication(app.DefaultConfig()), false, &out)
	if err == nil || !strings.Contains(err.Error(), "steam_api_key") {
		t.Fatalf("err = %v, want a credential error", err)
	}
}

func TestApplyEnvOverrides_ConfigFileWins(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "env-steam-key")

	cfg := app.DefaultConfig()
	cfg.SteamAPIKey = "file-steam-key"
	applyEnvOverrides(&cfg)

	if cfg.SteamAPIKey != "file-steam-key" {
		t.Fatalf("steam key = %q, config file should win", cfg.SteamAPIKey)
	}
}
