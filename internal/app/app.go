package app

import "strings"

// Application wires the clients, the classifier, the recommender, and the
// session registry together. One instance backs the whole process.
type Application struct {
	Config      Config
	Logger      *Logger
	Steam       *SteamClient
	Gemini      *GeminiClient
	Classifier  *Classifier
	Recommender *Recommender
	Sessions    *Registry
}

func NewApplication(cfg Config) *Application {
	logger := NewLogger(DefaultLogWriter())
	steam := NewSteamClient(cfg.SteamAPIKey, cfg.SteamBaseURL)
	gemini := NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.MaxTokens)

	return &Application{
		Config:      cfg,
		Logger:      logger,
		Steam:       steam,
		Gemini:      gemini,
		Classifier:  NewClassifier(gemini, logger),
		Recommender: NewRecommender(gemini),
		Sessions:    NewRegistry(),
	}
}

// NewSession registers a controller for the configured Steam ID. The caller
// picks the analysis limit through config; everything else is defaulted.
func (a *Application) NewSession() *Controller {
	ctrl := a.Sessions.Create(a.Config.SteamID, a.Steam, a.Classifier, a.Recommender, a.Logger)
	if a.Config.AnalysisLimit > 0 {
		ctrl.mu.Lock()
		ctrl.state.AnalysisLimit = a.Config.AnalysisLimit
		ctrl.mu.Unlock()
	}
	return ctrl
}

// HasSteamCredentials reports whether fetching can work at all. When false
// the fetch feature is disabled with its own message instead of failing
// mid-pipeline.
func (a *Application) HasSteamCredentials() bool {
	return strings.TrimSpace(a.Config.SteamAPIKey) != "" && strings.TrimSpace(a.Config.SteamID) != ""
}

// HasGeminiCredentials reports whether classification and recommendations
// are available. Without them the dashboard still shows raw playtime data.
func (a *Application) HasGeminiCredentials() bool {
	return strings.TrimSpace(a.Config.GeminiAPIKey) != ""
}
