package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchOwnedGames_MissingCredentialMakesNoCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	tests := []struct {
		name    string
		apiKey  string
		steamID string
	}{
		{name: "no api key", apiKey: "", steamID: "76561198000000000"},
		{name: "no steam id", apiKey: "k", steamID: ""},
		{name: "neither", apiKey: "", steamID: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := NewSteamClient(tc.apiKey, server.URL)
			_, err := client.FetchOwnedGames(context.Background(), tc.steamID)
			if !errors.Is(err, ErrMissingCredential) {
				t.Fatalf("err = %v, want ErrMissingCredential", err)
			}
		})
	}
	if calls != 0 {
		t.Fatalf("expected zero network calls, got %d", calls)
	}
}

func TestFetchOwnedGames_ParsesRecordsInSourceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("include_appinfo"); got != "1" {
			t.Errorf("include_appinfo = %q, want 1", got)
		}
		if got := r.URL.Query().Get("include_played_free_games"); got != "1" {
			t.Errorf("include_played_free_games = %q, want 1", got)
		}
		w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":620,"name":"Portal 2","playtime_forever":125,"img_icon_url":"abc123"},
			{"appid":440,"name":"Team Fortress 2","playtime_forever":9000}
		]}}`))
	}))
	defer server.Close()

	client := NewSteamClient("key", server.URL)
	games, err := client.FetchOwnedGames(context.Background(), "76561198000000000")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 {
		t.Fatalf("len = %d, want 2", len(games))
	}
	if games[0].Name != "Portal 2" || games[1].Name != "Team Fortress 2" {
		t.Fatalf("source order not preserved: %v, %v", games[0].Name, games[1].Name)
	}
	wantIcon := "http://media.steampowered.com/steamcommunity/public/images/apps/620/abc123.jpg"
	if games[0].IconURL != wantIcon {
		t.Fatalf("icon url = %q, want %q", games[0].IconURL, wantIcon)
	}
	if games[1].IconURL != "" {
		t.Fatalf("expected empty icon url without fragment, got %q", games[1].IconURL)
	}
}

func TestFetchOwnedGames_MissingGamesListIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{}}`))
	}))
	defer server.Close()

	client := NewSteamClient("key", server.URL)
	games, err := client.FetchOwnedGames(context.Background(), "76561198000000000")
	if err != nil {
		t.Fatalf("expected empty result without error, got %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("len = %d, want 0", len(games))
	}
}

func TestFetchOwnedGames_HTTPErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewSteamClient("key", server.URL)
	games, err := client.FetchOwnedGames(context.Background(), "76561198000000000")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if games != nil {
		t.Fatalf("expected nil games on failure, got %v", games)
	}
}

func TestFetchGameDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"620":{"success":true,"data":{
			"name":"Portal 2","short_description":"A puzzle game.",
			"release_date":{"date":"19 Apr, 2011"},"developers":["Valve"]}}}`))
	}))
	defer server.Close()

	client := NewSteamClient("key", "")
	client.StoreBaseURL = server.URL

	details, err := client.FetchGameDetails(context.Background(), 620)
	if err != nil {
		t.Fatal(err)
	}
	if details.Name != "Portal 2" || details.Developers != "Valve" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestFetchGameDetails_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewSteamClient("key", "")
	client.StoreBaseURL = server.URL

	if _, err := client.FetchGameDetails(context.Background(), 620); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
