package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrMissingCredential disables the dependent feature only; the rest of the
// dashboard keeps working without it.
var ErrMissingCredential = errors.New("missing credential")

// ErrRateLimited is returned by the store details endpoint, which throttles
// aggressively.
var ErrRateLimited = errors.New("steam store rate limit exceeded")

const (
	defaultSteamBaseURL = "http://api.steampowered.com"
	defaultStoreBaseURL = "https://store.steampowered.com"
	steamIconURLFormat  = "http://media.steampowered.com/steamcommunity/public/images/apps/%d/%s.jpg"
)

type SteamClient struct {
	APIKey       string
	BaseURL      string
	StoreBaseURL string
	HTTP         *http.Client
}

func NewSteamClient(apiKey, baseURL string) *SteamClient {
	if baseURL == "" {
		baseURL = defaultSteamBaseURL
	}
	return &SteamClient{
		APIKey:       apiKey,
		BaseURL:      baseURL,
		StoreBaseURL: defaultStoreBaseURL,
		// One bounded attempt per call; slow profiles should fail, not hang.
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID           int    `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
			ImgIconURL      string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// FetchOwnedGames returns the owned-games list for a Steam ID in source
// order. An empty (or private) profile yields an empty slice and no error;
// transport and HTTP failures yield an error. No retries are attempted.
func (c *SteamClient) FetchOwnedGames(ctx context.Context, steamID string) ([]Game, error) {
	if c.APIKey == "" || steamID == "" {
		return nil, fmt.Errorf("steam: %w", ErrMissingCredential)
	}

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("steamid", steamID)
	params.Set("format", "json")
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")
	endpoint := c.BaseURL + "/IPlayerService/GetOwnedGames/v0001/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("steam request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("steam api error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("steam response read failed: %w", err)
	}

	var decoded ownedGamesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("steam response decode failed: %w", err)
	}

	// A body without the nested games list is a valid empty/private profile,
	// not a transport failure.
	games := make([]Game, 0, len(decoded.Response.Games))
	for _, g := range decoded.Response.Games {
		game := Game{
			AppID:           g.AppID,
			Name:            g.Name,
			PlaytimeMinutes: g.PlaytimeForever,
		}
		if g.ImgIconURL != "" {
			game.IconURL = fmt.Sprintf(steamIconURLFormat, g.AppID, g.ImgIconURL)
		}
		games = append(games, game)
	}
	return games, nil
}

type GameDetails struct {
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	ReleaseDate      string `json:"release_date"`
	Developers       string `json:"developers"`
}

type appDetailsEntry struct {
	Success bool `json:"success"`
	Data    struct {
		Name             string `json:"name"`
		ShortDescription string `json:"short_description"`
		ReleaseDate      struct {
			Date string `json:"date"`
		} `json:"release_date"`
		Developers []string `json:"developers"`
	} `json:"data"`
}

// FetchGameDetails looks up store metadata for one app. The store endpoint
// needs no API key but enforces strict rate limits; a 429 surfaces as
// ErrRateLimited so callers can back off instead of retrying blindly.
func (c *SteamClient) FetchGameDetails(ctx context.Context, appID int) (*GameDetails, error) {
	params := url.Values{}
	params.Set("appids", fmt.Sprintf("%d", appID))
	endpoint := c.StoreBaseURL + "/api/appdetails?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("steam store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("steam store error: status %d", resp.StatusCode)
	}

	var decoded map[string]appDetailsEntry
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("steam store decode failed: %w", err)
	}

	entry, ok := decoded[fmt.Sprintf("%d", appID)]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("steam store has no details for app %d", appID)
	}

	details := &GameDetails{
		Name:             entry.Data.Name,
		ShortDescription: entry.Data.ShortDescription,
		ReleaseDate:      entry.Data.ReleaseDate.Date,
	}
	if len(entry.Data.Developers) > 0 {
		details.Developers = entry.Data.Developers[0]
	}
	return details, nil
}
