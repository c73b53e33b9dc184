// Package store is the client-side data layer: it owns the fetched planner
// collections, applies local edits and derives the dashboard.
//
// Guests and inbox messages are server-confirmed: every change round-trips and
// the server's copy is installed. Budget, gifts and tasks are edited
// optimistically in memory and only reach the server when the matching Save
// method is called, so local and remote state may diverge until then. Edits
// from several goroutines are serialized but never reconciled with each other.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/engine"
	"github.com/tartampluch/go-wedding/internal/model"
	"github.com/tartampluch/go-wedding/internal/observe"
	"github.com/tartampluch/go-wedding/internal/stats"
)

var (
	// ErrNotFound is returned when an id does not match any local entry.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when adding an entry whose id is already used.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrNotPersisted is returned when updating a guest the server never assigned an id to.
	ErrNotPersisted = errors.New("guest has no server id")
	// ErrMissingServerID is returned when the server confirms a guest without an id.
	ErrMissingServerID = errors.New("server response carries no id")
	// ErrIDMismatch is returned when the server answers an update for another guest.
	ErrIDMismatch = errors.New("server answered for another id")
)

// Backend is the part of the remote API the store consumes.
type Backend interface {
	LoadGuests(ctx context.Context) ([]model.Guest, error)
	AddGuest(ctx context.Context, g model.Guest) (model.Guest, error)
	UpdateGuest(ctx context.Context, g model.Guest) (model.Guest, error)
	LoadBudget(ctx context.Context) (model.BudgetData, error)
	SaveBudget(ctx context.Context, b model.BudgetData) error
	LoadGifts(ctx context.Context) (model.GiftData, error)
	SaveGifts(ctx context.Context, g model.GiftData) error
	LoadTasks(ctx context.Context) (model.TaskData, error)
	SaveTasks(ctx context.Context, t model.TaskData) error
	LoadMessages(ctx context.Context) ([]model.Message, error)
	MarkMessageRead(ctx context.Context, id model.ServerID) error
}

// Snapshot is an immutable copy of the store handed to readers and listeners.
type Snapshot struct {
	Guests    []model.Guest
	Budget    model.BudgetData
	Gifts     []model.Gift
	Tasks     []model.WeddingTask
	Messages  []model.Message
	Loading   bool
	LastError string
	// Version increases with every change; listeners never see it go back.
	Version uint64
}

// Dashboard derives the summary of the snapshot.
func (s Snapshot) Dashboard(now time.Time) stats.DashboardStats {
	return stats.Dashboard(s.Guests, s.Budget, s.Gifts, s.Tasks, s.Messages, now)
}

// Store owns every planner collection. All state changes happen under one
// lock, network calls happen outside it.
type Store struct {
	// FormatError turns failures into the message kept in LastError.
	// Set it before the first operation.
	FormatError func(error) string
	// Clock stamps completion and update dates.
	Clock engine.Clock

	backend Backend

	mu             sync.Mutex
	guests         []model.Guest
	budget         model.BudgetData
	gifts          []model.Gift
	giftsUpdatedAt time.Time
	tasks          []model.WeddingTask
	tasksUpdatedAt time.Time
	messages       []model.Message
	pending        int
	lastErr        error
	lastError      string

	// reopened remembers the completion date of tasks toggled back to open,
	// so toggling again restores it.
	reopened map[model.ClientID]time.Time
	version  uint64

	// pubMu orders deliveries; published is the last version handed out.
	pubMu     sync.Mutex
	published uint64
	changes   observe.Hub[Snapshot]
}

// New creates an empty store backed by backend.
func New(backend Backend) *Store {
	return &Store{
		FormatError: api.Describe,
		Clock:       engine.RealClock{},
		backend:     backend,
		reopened:    make(map[model.ClientID]time.Time),
	}
}

// LoadAll fetches guests, budget, gifts and tasks concurrently. A failing
// fetch records its error and leaves its collection untouched; the others
// still install their result. Loading stays true until the slowest fetch has
// finished. The returned error joins every failure.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.pending++
	snap := s.changedLocked()
	s.mu.Unlock()
	s.publish(snap)

	loaders := []func(context.Context) error{
		s.loadGuests,
		s.loadBudget,
		s.loadGifts,
		s.loadTasks,
	}
	errs := make([]error, len(loaders))

	var wg sync.WaitGroup
	for i, load := range loaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = load(ctx)
		}()
	}
	wg.Wait()

	s.mu.Lock()
	s.pending--
	snap = s.changedLocked()
	s.mu.Unlock()
	s.publish(snap)

	err := errors.Join(errs...)
	if err == nil {
		slog.Info(config.MsgLoadComplete,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyGuests, len(snap.Guests),
			config.LogKeyTasks, len(snap.Tasks),
			config.LogKeyGifts, len(snap.Gifts))
	}
	return err
}

// Loading reports whether a LoadAll is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// LastError returns the message of the most recent failure, or "".
// New failures overwrite older ones.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Err returns the most recent failure itself.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError empties the error slot.
func (s *Store) ClearError() {
	_ = s.mutate("", func() error {
		s.lastErr = nil
		s.lastError = ""
		return nil
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// DashboardStats recomputes the summary from the current collections.
func (s *Store) DashboardStats() stats.DashboardStats {
	return s.Snapshot().Dashboard(s.Clock.Now())
}

// OnChange registers fn to receive a snapshot after every change, in version
// order. A snapshot older than one already delivered is skipped. fn runs on
// the mutating goroutine and must not change the store itself.
func (s *Store) OnChange(fn func(Snapshot)) (cancel func()) {
	return s.changes.Subscribe(fn)
}

// mutate runs fn under the lock, records its error and notifies listeners.
func (s *Store) mutate(op string, fn func() error) error {
	s.mu.Lock()
	err := fn()
	if err != nil {
		s.setErrorLocked(op, err)
	}
	snap := s.changedLocked()
	s.mu.Unlock()

	s.publish(snap)
	return err
}

// changedLocked bumps the version and returns the new state.
func (s *Store) changedLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

// publish delivers snap unless a newer snapshot already went out.
func (s *Store) publish(snap Snapshot) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if snap.Version <= s.published {
		return
	}
	s.published = snap.Version
	s.changes.Publish(snap)
}

// commit installs the outcome of a network call: apply on success, the error
// otherwise.
func (s *Store) commit(op string, err error, apply func()) error {
	return s.mutate(op, func() error {
		if err != nil {
			return err
		}
		apply()
		return nil
	})
}

func (s *Store) setErrorLocked(op string, err error) {
	s.lastErr = err
	if s.FormatError != nil {
		s.lastError = s.FormatError(err)
	} else {
		s.lastError = err.Error()
	}
	slog.Warn(config.MsgStoreOpFailed,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyOperation, op,
		config.LogKeyError, err)
}

func (s *Store) now() time.Time {
	return s.Clock.Now()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Guests:    slices.Clone(s.guests),
		Budget:    s.budget.Clone(),
		Messages:  slices.Clone(s.messages),
		Loading:   s.pending > 0,
		LastError: s.lastError,
		Version:   s.version,
	}
	if s.gifts != nil {
		snap.Gifts = make([]model.Gift, len(s.gifts))
		for i, g := range s.gifts {
			snap.Gifts[i] = cloneGift(g)
		}
	}
	if s.tasks != nil {
		snap.Tasks = make([]model.WeddingTask, len(s.tasks))
		for i, t := range s.tasks {
			snap.Tasks[i] = t.Clone()
		}
	}
	return snap
}

// indexOf returns the position of the first element matching id.
func indexOf[T any, ID comparable](items []T, id ID, key func(T) ID) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

// uniqueBy keeps the first element for every id.
func uniqueBy[T any, ID comparable](items []T, key func(T) ID) []T {
	out := make([]T, 0, len(items))
	seen := make(map[ID]bool, len(items))
	for _, it := range items {
		id := key(it)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	return out
}

// replaced returns a copy of items with position i set to v.
func replaced[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

// removed returns a copy of items without position i.
func removed[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// appended returns a copy of items with v at the end.
func appended[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, v)
}
