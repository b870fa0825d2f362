package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rs/zerolog"
)

// Invalidator drops cached public responses after an admin write
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// changeFeed announces admin writes and clears the public cache
type changeFeed struct {
	publisher events.Publisher
	cache     Invalidator
	logger    zerolog.Logger
}

func newChangeFeed(p events.Publisher, c Invalidator, logger zerolog.Logger) changeFeed {
	if p == nil {
		p = events.Noop{}
	}
	return changeFeed{publisher: p, cache: c, logger: logger}
}

func (f changeFeed) record(ctx context.Context, entity events.Entity, action events.Action, id, projectID uuid.UUID) {
	if f.cache != nil {
		f.cache.Invalidate(ctx)
	}
	change := events.Change{Entity: entity, Action: action, ID: id, ProjectID: projectID, At: time.Now().UTC()}
	if err := f.publisher.Publish(ctx, change); err != nil {
		f.logger.Warn().Err(err).
			Str("entity", string(entity)).
			Str("action", string(action)).
			Str("id", id.String()).
			Msg("could not publish change event")
	}
}
