package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type Phase string

const (
	PhaseEmpty    Phase = "empty"
	PhaseFetching Phase = "fetching"
	PhaseReady    Phase = "ready"
)

const (
	DefaultAnalysisLimit = 50
	AnalysisMilestone    = 100
)

// ErrEmptyLibrary reports a valid but empty (or private) profile. Callers
// surface it as a warning, not a failure.
var ErrEmptyLibrary = errors.New("no games found in library")

// SessionState holds everything one dashboard session owns: the labeled
// record set, the analysis limit, and the chat history. It lives for one
// interactive session and is never persisted.
type SessionState struct {
	ID      string
	SteamID string
	Phase   Phase

	Games         []Game
	AnalysisLimit int
	History       []Turn

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Controller is the sole writer of its SessionState. All mutation happens
// through it; the TUI only reads what it exposes. The mutex covers the
// state, not the pipeline: network calls run unlocked so accessors never
// block behind a slow fetch.
type Controller struct {
	steam       *SteamClient
	classifier  *Classifier
	recommender *Recommender
	logger      *Logger

	mu    sync.RWMutex
	state *SessionState
}

func NewController(id, steamID string, steam *SteamClient, classifier *Classifier, recommender *Recommender, logger *Logger) *Controller {
	now := time.Now()
	return &Controller{
		steam:       steam,
		classifier:  classifier,
		recommender: recommender,
		logger:      logger,
		state: &SessionState{
			ID:            id,
			SteamID:       steamID,
			Phase:         PhaseEmpty,
			AnalysisLimit: DefaultAnalysisLimit,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func (c *Controller) ID() string { return c.state.ID }

func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Phase
}

// Games returns the committed record set. Refresh replaces the slice
// wholesale instead of mutating it, so a returned slice stays stable.
func (c *Controller) Games() []Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Games
}

func (c *Controller) AnalysisLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.AnalysisLimit
}

func (c *Controller) Stats() LibraryStats {
	return ComputeStats(c.Games())
}

// History returns the exact ordered sequence replayed into the next
// recommendation request.
func (c *Controller) History() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.History
}

// Visible returns the analyzed top-N slice shown in the table.
func (c *Controller) Visible() []Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	limit := c.state.AnalysisLimit
	if limit > len(c.state.Games) {
		limit = len(c.state.Games)
	}
	return c.state.Games[:limit]
}

func (c *Controller) Distribution() []GenreShare {
	return GenreDistribution(c.Games())
}

func (c *Controller) setPhase(phase Phase) {
	c.mu.Lock()
	c.state.Phase = phase
	c.mu.Unlock()
}

// Refresh runs the full fetch → derive → classify → merge pipeline. On any
// failure the session returns to the empty phase with the previous record
// set discarded; chat history always survives.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.state.Phase = PhaseFetching
	c.state.Games = nil
	steamID := c.state.SteamID
	limit := c.state.AnalysisLimit
	c.mu.Unlock()

	games, err := c.steam.FetchOwnedGames(ctx, steamID)
	if err != nil {
		c.setPhase(PhaseEmpty)
		return err
	}
	if len(games) == 0 {
		c.setPhase(PhaseEmpty)
		return ErrEmptyLibrary
	}

	for i := range games {
		games[i].HoursPlayed = HoursFromMinutes(games[i].PlaytimeMinutes)
	}
	SortByPlaytime(games)

	if limit > len(games) {
		limit = len(games)
	}

	names := make([]string, 0, limit)
	for _, g := range games[:limit] {
		names = append(names, g.Name)
	}

	result := c.classifier.Classify(ctx, names)
	mergeLabels(games, result.Labels)
	if len(result.Labels) == 0 {
		c.logger.Warn("classification degraded, falling back to sentinel labels", map[string]interface{}{
			"session": c.state.ID,
			"games":   len(games),
		})
	}

	c.mu.Lock()
	c.state.Games = games
	c.state.AnalysisLimit = limit
	c.state.Phase = PhaseReady
	c.state.UpdatedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("library refreshed", map[string]interface{}{
		"session":  c.state.ID,
		"games":    len(games),
		"analyzed": limit,
		"labeled":  len(result.Labels),
	})
	return nil
}

// RaiseLimit moves the analysis limit up to the fixed milestone or to the
// full library ("all"), never to an arbitrary value and never down. Raising
// it re-runs the whole pipeline for the new top-N rather than classifying
// only the delta; already-labeled games are paid for again.
func (c *Controller) RaiseLimit(ctx context.Context, target int) error {
	c.mu.Lock()
	total := len(c.state.Games)
	if target != AnalysisMilestone && target != total {
		c.mu.Unlock()
		return fmt.Errorf("analysis limit may only be raised to %d or to the full library", AnalysisMilestone)
	}
	if target > total {
		target = total
	}
	if target <= c.state.AnalysisLimit {
		current := c.state.AnalysisLimit
		c.mu.Unlock()
		return fmt.Errorf("analysis limit %d is not above the current %d", target, current)
	}
	c.state.AnalysisLimit = target
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Ask answers a recommendation query. The user and assistant turns join the
// model-context history only after a successful reply, so a failed call
// leaves no orphaned user turn behind.
func (c *Controller) Ask(ctx context.Context, query string) (string, error) {
	c.mu.RLock()
	games := c.state.Games
	history := c.state.History
	c.mu.RUnlock()

	reply, err := c.recommender.Respond(ctx, query, LibrarySummary(games), history)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.state.History = append(c.state.History,
		Turn{Role: RoleUser, Text: query},
		Turn{Role: RoleAssistant, Text: reply},
	)
	c.state.UpdatedAt = time.Now()
	c.mu.Unlock()
	return reply, nil
}

// GameDetails proxies a store lookup for one row of the table.
func (c *Controller) GameDetails(ctx context.Context, appID int) (*GameDetails, error) {
	return c.steam.FetchGameDetails(ctx, appID)
}

// mergeLabels stamps a label triple onto every record. Labels match records
// by normalized name; duplicate names in the response are last-write-wins.
// Everything unmatched gets the sentinel triple.
func mergeLabels(games []Game, labels []ClassificationLabel) {
	byName := make(map[string]ClassificationLabel, len(labels))
	for _, label := range labels {
		byName[normalizeName(label.GameName)] = label
	}
	for i := range games {
		if label, ok := byName[normalizeName(games[i].Name)]; ok {
			games[i].Genre = label.Genre
			games[i].Style = label.PlayStyle
			games[i].Vibe = label.Vibe
			continue
		}
		games[i].Genre = SentinelLabel
		games[i].Style = SentinelLabel
		games[i].Vibe = SentinelLabel
	}
}
