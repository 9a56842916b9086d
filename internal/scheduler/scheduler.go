// Package scheduler wires up the cron job that periodically prunes the
// in-memory rate-limit store so the key map stays bounded.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/AlexFilippov-it/scanrole-api/internal/ratelimit"
)

// Janitor wraps robfig/cron and manages the prune loop. Only the memory
// backend needs it; redis keys expire on their own.
type Janitor struct {
	cron  *cron.Cron
	store *ratelimit.MemoryStore
	spec  string
	log   zerolog.Logger
}

// NewJanitor creates a Janitor pruning on the given cron spec, e.g.
// "@every 10m".
func NewJanitor(store *ratelimit.MemoryStore, spec string, logger zerolog.Logger) *Janitor {
	return &Janitor{
		cron:  cron.New(),
		store: store,
		spec:  spec,
		log:   logger.With().Str("component", "janitor").Logger(),
	}
}

// Start registers the prune job and starts the scheduler.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if pruned := j.store.Prune(); pruned > 0 {
			j.log.Debug().Int("pruned", pruned).Msg("pruned expired rate-limit windows")
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	j.cron.Start()
	j.log.Info().Str("spec", j.spec).Msg("janitor started")
	return nil
}

// Stop gracefully shuts down the scheduler.
func (j *Janitor) Stop() {
	j.cron.Stop()
}
