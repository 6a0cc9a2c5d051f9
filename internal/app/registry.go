package app

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds one controller per active session key, arena-style. The TUI
// drives a single session; embedders that serve several profiles get
// isolation per key instead of shared state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Controller)}
}

func (r *Registry) Create(steamID string, steam *SteamClient, classifier *Classifier, recommender *Recommender, logger *Logger) *Controller {
	key := uuid.NewString()
	ctrl := NewController(key, steamID, steam, classifier, recommender, logger)

	r.mu.Lock()
	r.sessions[key] = ctrl
	r.mu.Unlock()
	return ctrl
}

func (r *Registry) Get(key string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctrl, ok := r.sessions[key]
	return ctrl, ok
}

func (r *Registry) Delete(key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
