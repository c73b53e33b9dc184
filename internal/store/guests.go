package store

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

func guestKey(g model.Guest) model.ServerID { return g.ID }

// Guests returns a copy of the guest list.
func (s *Store) Guests() []model.Guest {
	return s.Snapshot().Guests
}

// Guest looks up a guest by server id.
func (s *Store) Guest(id model.ServerID) (model.Guest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.guests, id, guestKey); i >= 0 {
		return s.guests[i], true
	}
	return model.Guest{}, false
}

func (s *Store) loadGuests(ctx context.Context) error {
	guests, err := s.backend.LoadGuests(ctx)
	return s.commit(config.OpLoadGuests, err, func() {
		s.guests = uniqueBy(guests, guestKey)
	})
}

// AddGuest sends a new guest to the server and installs the confirmed copy,
// whose id and creation date come from the server. Nothing changes locally
// when the call fails.
func (s *Store) AddGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	if err := g.Validate(); err != nil {
		return model.Guest{}, s.mutate(config.OpAddGuest, func() error { return err })
	}
	g.ID = 0

	saved, err := s.backend.AddGuest(ctx, g)
	if err == nil && !saved.ID.IsPersisted() {
		err = ErrMissingServerID
	}
	if err := s.commit(config.OpAddGuest, err, func() { s.upsertGuestLocked(saved) }); err != nil {
		return model.Guest{}, err
	}
	return saved, nil
}

// UpdateGuest sends the edited guest to the server and installs the copy it
// returns.
func (s *Store) UpdateGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	err := g.Validate()
	if err == nil && !g.ID.IsPersisted() {
		err = ErrNotPersisted
	}
	if err != nil {
		return model.Guest{}, s.mutate(config.OpUpdateGuest, func() error { return err })
	}

	saved, err := s.backend.UpdateGuest(ctx, g)
	if err == nil && saved.ID != g.ID {
		err = fmt.Errorf("%w: sent %s, got %s", ErrIDMismatch, g.ID, saved.ID)
	}
	if err := s.commit(config.OpUpdateGuest, err, func() { s.upsertGuestLocked(saved) }); err != nil {
		return model.Guest{}, err
	}
	return saved, nil
}

func (s *Store) upsertGuestLocked(g model.Guest) {
	if i := indexOf(s.guests, g.ID, guestKey); i >= 0 {
		s.guests = replaced(s.guests, i, g)
		return
	}
	s.guests = appended(s.guests, g)
}
