// Package redline wires the review engine's services together.
package redline

import (
	"github.com/colonyops/redline/internal/core/config"
	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/internal/data/db"
)

// App is the central entry point for all redline operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Reviews *ReviewService

	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(store suggestion.Store, cfg *config.Config, database *db.DB) *App {
	return &App{
		Reviews: NewReviewService(store, cfg.Review.RejectionThreshold),
		Config:  cfg,
		DB:      database,
	}
}
