package app

import (
	"context"
	"encoding/json"
	"strings"
)

const classifierSystemPrompt = `You are a Steam game expert. Classify the given games into Genre, Play Style, and Vibe.

Rules:
1. Return one entry per game, with game_name copied exactly from the input
2. genre is a single established genre label (e.g. "Roguelike", "City Builder")
3. play_style is one of: Singleplayer, Multiplayer, Co-op, Competitive
4. vibe is a short mood descriptor (e.g. "Cozy", "Intense", "Atmospheric")

Return a strict JSON object:
{"games":[{"game_name":"...","genre":"...","play_style":"...","vibe":"..."}]}`

type ClassificationLabel struct {
	GameName  string `json:"game_name"`
	Genre     string `json:"genre"`
	PlayStyle string `json:"play_style"`
	Vibe      string `json:"vibe"`
}

type ClassificationResult struct {
	Labels []ClassificationLabel `json:"labels"`
}

type classificationPayload struct {
	Games []ClassificationLabel `json:"games"`
}

// Classifier labels game names via Gemini. It never fails its caller: any
// backend or parse problem degrades to an empty result, and the session
// pipeline falls back to sentinel labels.
type Classifier struct {
	gemini *GeminiClient
	logger *Logger
}

func NewClassifier(gemini *GeminiClient, logger *Logger) *Classifier {
	return &Classifier{gemini: gemini, logger: logger}
}

// Classify requests one label triple per input name in a single call. The
// parse is fail-closed: either the whole payload validates or no labels are
// returned. Partial per-game coverage is the session controller's business,
// produced by matching labels against the full record set.
func (c *Classifier) Classify(ctx context.Context, names []string) ClassificationResult {
	if len(names) == 0 {
		return ClassificationResult{}
	}
	if c.gemini == nil || !c.gemini.Configured() {
		return ClassificationResult{}
	}

	prompt := "Classify these games:\n" + strings.Join(names, ", ")
	raw, err := c.gemini.GenerateJSON(ctx, classifierSystemPrompt, prompt)
	if err != nil {
		c.logger.Warn("classification request failed", map[string]interface{}{
			"error": err.Error(),
			"games": len(names),
		})
		return ClassificationResult{}
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		c.logger.Warn("classification response is not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return ClassificationResult{}
	}
	if len(payload.Games) == 0 {
		c.logger.Warn("classification response carried no games", nil)
		return ClassificationResult{}
	}
	for _, label := range payload.Games {
		if label.GameName == "" || label.Genre == "" || label.PlayStyle == "" || label.Vibe == "" {
			c.logger.Warn("classification response failed schema validation", map[string]interface{}{
				"game": label.GameName,
			})
			return ClassificationResult{}
		}
	}
	return ClassificationResult{Labels: payload.Games}
}

// stripCodeFence unwraps a fenced block when the model ignores the JSON
// response mode and wraps its output in markdown.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
