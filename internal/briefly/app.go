package briefly

import (
	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/colonyops/briefly/internal/core/config"
	"github.com/colonyops/briefly/internal/core/eventbus"
	"github.com/colonyops/briefly/internal/core/kv"
	"github.com/colonyops/briefly/internal/data/db"
	"github.com/rs/zerolog"
)

// App is the central entry point for all briefly operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Records *RecordService

	Config *config.Config
	DB     *db.DB // nil when running on the in-memory fallback store
	Store  kv.KV
	Bus    *eventbus.EventBus
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, database *db.DB, store kv.KV, bus *eventbus.EventBus, log zerolog.Logger) *App {
	return &App{
		Records: NewRecordService(store, cfg.Namespace, log),
		Config:  cfg,
		DB:      database,
		Store:   store,
		Bus:     bus,
	}
}

// Durable reports whether records survive process restarts.
func (a *App) Durable() bool {
	return a.DB != nil
}

// NewSession builds a session service for one user over the given topics.
// The profile may be nil when the engagement collaborator is not configured.
func (a *App) NewSession(userID string, topics []briefing.Topic, profile Profile, log zerolog.Logger) *SessionService {
	persister := NewPersister(
		a.Store,
		a.Config.Namespace,
		userID,
		a.Config.RetentionDays,
		a.Config.Session.PersistQueue,
		log,
	)
	engagement := NewEngagementNotifier(profile, userID, log)

	return NewSessionService(a.Config, userID, topics, persister, engagement, a.Bus, log)
}
