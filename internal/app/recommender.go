package app

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in the recommendation dialogue. History is an ordered,
// append-only sequence owned by the session controller.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const recommenderSystemPrompt = `You are a helpful Steam library assistant. You have access to the user's game library stats and AI classifications.
Recommend games from the user's own library when possible, explain briefly why each pick fits the request, and keep replies conversational.`

// Recommender answers free-text queries grounded in a library summary. It is
// pure with respect to history: the caller decides what gets appended, and
// only after a successful reply.
type Recommender struct {
	gemini *GeminiClient
}

func NewRecommender(gemini *GeminiClient) *Recommender {
	return &Recommender{gemini: gemini}
}

func (r *Recommender) Respond(ctx context.Context, query, librarySummary string, history []Turn) (string, error) {
	if r.gemini == nil || !r.gemini.Configured() {
		return "", fmt.Errorf("recommender: %w", ErrMissingCredential)
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("recommender: empty query")
	}

	system := recommenderSystemPrompt
	if strings.TrimSpace(librarySummary) != "" {
		system += "\n\nContext about the user's library:\n" + librarySummary
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: query}},
	})

	reply, err := r.gemini.GenerateChat(ctx, system, contents)
	if err != nil {
		return "", fmt.Errorf("recommendation failed: %w", err)
	}
	return reply, nil
}
