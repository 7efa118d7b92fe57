// Package rotation picks the next wallpaper so that no image repeats until the
// whole pool has been shown.
package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

// Lister enumerates the current pool
type Lister interface {
	List() ([]pool.ImageRecord, error)
}

// Selector samples the pool without replacement per cycle
type Selector struct {
	pool   Lister
	used   interfaces.UsedStore
	rnd    *rand.Rand
	logger *slog.Logger
}

// Option configures a Selector
type Option func(*Selector)

// WithRand sets the random source, mainly for deterministic tests
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) {
		s.rnd = r
	}
}

// NewSelector creates a selector over p that tracks shown images in used
func NewSelector(p Lister, used interfaces.UsedStore, logger *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		pool:   p,
		used:   used,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectNext returns a random image not shown since the last reset. When every
// image has been shown the used set is cleared and a new cycle starts. An empty
// pool yields errors.ErrPoolEmpty.
func (s *Selector) SelectNext(ctx context.Context) (pool.ImageRecord, error) {
	records, err := s.pool.List()
	if err != nil {
		return pool.ImageRecord{}, err
	}

	usedIDs, err := s.used.Used(ctx)
	if err != nil {
		return pool.ImageRecord{}, err
	}
	// ids of deleted files may linger in the used set; they never match a record
	used := make(map[string]struct{}, len(usedIDs))
	for _, id := range usedIDs {
		used[id] = struct{}{}
	}

	available := make([]pool.ImageRecord, 0, len(records))
	for _, r := range records {
		if _, ok := used[r.ID]; !ok {
			available = append(available, r)
		}
	}

	if len(available) == 0 {
		if err := s.used.ResetUsed(ctx); err != nil {
			return pool.ImageRecord{}, err
		}
		if len(records) > 0 {
			s.logger.Info("Rotation cycle complete, starting over", "pool_size", len(records))
		}
		available = records
	}

	if len(available) == 0 {
		s.logger.Warn("No images available")
		return pool.ImageRecord{}, errors.ErrPoolEmpty
	}

	chosen := available[s.rnd.IntN(len(available))]
	if err := s.used.MarkUsed(ctx, chosen.ID); err != nil {
		return pool.ImageRecord{}, fmt.Errorf("mark %s used: %w", chosen.ID, err)
	}

	s.logger.Info("Selected image", "image", chosen.ID, "remaining", len(available)-1)
	return chosen, nil
}

// Release removes record from the used set so a later call can pick it again
func (s *Selector) Release(ctx context.Context, record pool.ImageRecord) error {
	if err := s.used.UnmarkUsed(ctx, record.ID); err != nil {
		return fmt.Errorf("release %s: %w", record.ID, err)
	}
	s.logger.Debug("Released image", "image", record.ID)
	return nil
}

// MemoryUsedStore keeps the used set for the lifetime of the process only
type MemoryUsedStore struct {
	ids map[string]struct{}
}

// NewMemoryUsedStore creates an empty in-memory used set
func NewMemoryUsedStore() *MemoryUsedStore {
	return &MemoryUsedStore{ids: make(map[string]struct{})}
}

// Used returns the identifiers in the set
func (m *MemoryUsedStore) Used(context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkUsed adds id to the set
func (m *MemoryUsedStore) MarkUsed(_ context.Context, id string) error {
	m.ids[id] = struct{}{}
	return nil
}

// UnmarkUsed removes id from the set
func (m *MemoryUsedStore) UnmarkUsed(_ context.Context, id string) error {
	delete(m.ids, id)
	return nil
}

// ResetUsed clears the set
func (m *MemoryUsedStore) ResetUsed(context.Context) error {
	clear(m.ids)
	return nil
}
