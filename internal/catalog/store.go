package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vetty/storefront/internal/domain"
	apperrors "github.com/vetty/storefront/pkg/errors"
)

// FetchStatus describes the lifecycle of a kind's snapshot.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusReady   FetchStatus = "ready"
	StatusFailed  FetchStatus = "failed"
)

// Fetcher retrieves all catalog entries of one kind from the backend.
type Fetcher interface {
	FetchCatalog(ctx context.Context, kind domain.ItemKind) ([]domain.CatalogEntry, error)
}

// snapshot is the immutable state held per kind. A successful load replaces
// the whole snapshot; a failed load leaves the previous entries in place so
// readers keep serving the last good data.
type snapshot struct {
	entries   []domain.CatalogEntry
	byID      map[string]domain.CatalogEntry
	status    FetchStatus
	err       error
	fetchedAt time.Time
}

// Store holds one snapshot per item kind and keeps them consistent under
// concurrent loads. Each kind is refreshed independently; a product refresh
// never touches the service snapshot.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu    sync.RWMutex
	kinds map[domain.ItemKind]*snapshot

	// nextSeq hands out a ticket per load; appliedSeq records the newest
	// load applied per kind. A load that finishes after a newer one started
	// is superseded and its result is discarded.
	nextSeq    uint64
	appliedSeq map[domain.ItemKind]uint64
}

// NewStore creates an empty catalog store. All kinds start idle with no
// entries; call Load before serving reads.
func NewStore(fetcher Fetcher, logger *slog.Logger) *Store {
	kinds := make(map[domain.ItemKind]*snapshot, len(domain.Kinds()))
	for _, k := range domain.Kinds() {
		kinds[k] = &snapshot{
			entries: []domain.CatalogEntry{},
			byID:    map[string]domain.CatalogEntry{},
			status:  StatusIdle,
		}
	}
	return &Store{
		fetcher:    fetcher,
		logger:     logger,
		kinds:      kinds,
		appliedSeq: make(map[domain.ItemKind]uint64, len(kinds)),
	}
}

// Load fetches the catalog for one kind and atomically swaps the kind's
// snapshot. On fetch failure the previous entries are retained and the error
// is recorded. If a newer Load for the same kind started while this one was
// in flight, the stale result is discarded.
func (s *Store) Load(ctx context.Context, kind domain.ItemKind) error {
	if !kind.Valid() {
		return apperrors.InvalidInput("unknown item kind: " + string(kind))
	}

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.kinds[kind].status = StatusLoading
	s.mu.Unlock()

	entries, err := s.fetcher.FetchCatalog(ctx, kind)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq[kind] {
		s.logger.Debug("discarding superseded catalog load",
			slog.String("kind", string(kind)))
		return nil
	}
	s.appliedSeq[kind] = seq

	prev := s.kinds[kind]
	if err != nil {
		s.logger.Error("catalog fetch failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		s.kinds[kind] = &snapshot{
			entries:   prev.entries,
			byID:      prev.byID,
			status:    StatusFailed,
			err:       err,
			fetchedAt: prev.fetchedAt,
		}
		return apperrors.CatalogUnavailable(string(kind))
	}

	byID := make(map[string]domain.CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	s.kinds[kind] = &snapshot{
		entries:   entries,
		byID:      byID,
		status:    StatusReady,
		fetchedAt: time.Now().UTC(),
	}

	s.logger.Info("catalog loaded",
		slog.String("kind", string(kind)),
		slog.Int("entries", len(entries)))
	return nil
}

// LoadAll loads every kind. Errors are collected; one kind failing does not
// stop the others.
func (s *Store) LoadAll(ctx context.Context) error {
	var firstErr error
	for _, k := range domain.Kinds() {
		if err := s.Load(ctx, k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetEntry looks up one entry by identity. It satisfies domain.EntryLookup.
func (s *Store) GetEntry(kind domain.ItemKind, id string) (domain.CatalogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.kinds[kind]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	entry, ok := snap.byID[id]
	return entry, ok
}

// List returns the current entries for one kind. The returned slice is a
// copy; callers may not observe later swaps through it.
func (s *Store) List(kind domain.ItemKind) []domain.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.kinds[kind]
	if !ok {
		return nil
	}
	out := make([]domain.CatalogEntry, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// Status reports the fetch status and last error for one kind.
func (s *Store) Status(kind domain.ItemKind) (FetchStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.kinds[kind]
	if !ok {
		return StatusIdle, nil
	}
	return snap.status, snap.err
}

// Ready reports whether every kind has at least one successful load behind
// it. Used as a readiness check.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range domain.Kinds() {
		if s.kinds[k].fetchedAt.IsZero() {
			return false
		}
	}
	return true
}
