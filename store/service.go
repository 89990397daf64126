package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"incoin/domain/interfaces"
)

// Observer receives the outcome of every remote store operation
type Observer interface {
	RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) RecordStoreOperation(context.Context, string, time.Duration, error) {}

// Service owns the per-guild record caches for the lifetime of the bot
type Service struct {
	uowFactory interfaces.UnitOfWorkFactory
	observer   Observer

	mu     sync.Mutex
	guilds map[int64]*GuildStore
}

// New creates the cache service. A nil observer disables operation reporting.
func New(uowFactory interfaces.UnitOfWorkFactory, observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		uowFactory: uowFactory,
		observer:   observer,
		guilds:     make(map[int64]*GuildStore),
	}
}

// Guild returns the store of a guild, creating an empty cache on first use
func (s *Service) Guild(guildID int64) *GuildStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		g = newGuildStore(guildID, s.uowFactory, s.observer)
		s.guilds[guildID] = g
	}
	return g
}

// Resync reloads a guild from the remote store
func (s *Service) Resync(ctx context.Context, guildID int64) (*ResyncReport, error) {
	return s.Guild(guildID).Resync(ctx)
}

// Forget drops the cache of a guild the bot left
func (s *Service) Forget(guildID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guilds, guildID)
}

// Stats reports the cache contents of every known guild ordered by guild id
func (s *Service) Stats() []GuildStats {
	s.mu.Lock()
	guilds := make([]*GuildStore, 0, len(s.guilds))
	for _, g := range s.guilds {
		guilds = append(guilds, g)
	}
	s.mu.Unlock()

	stats := make([]GuildStats, 0, len(guilds))
	for _, g := range guilds {
		stats = append(stats, g.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].GuildID < stats[j].GuildID })
	return stats
}
