package store

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

func giftKey(g model.Gift) model.ClientID { return g.ID }

// Gifts returns a copy of the gift log.
func (s *Store) Gifts() []model.Gift {
	return s.Snapshot().Gifts
}

func (s *Store) loadGifts(ctx context.Context) error {
	data, err := s.backend.LoadGifts(ctx)
	return s.commit(config.OpLoadGifts, err, func() {
		gifts := make([]model.Gift, 0, len(data.Gifts))
		for _, g := range data.Gifts {
			gifts = append(gifts, normalizedGift(g))
		}
		s.gifts = uniqueBy(gifts, giftKey)
		s.giftsUpdatedAt = data.UpdatedAt
	})
}

// SaveGifts pushes the local gift log to the server.
func (s *Store) SaveGifts(ctx context.Context) error {
	s.mu.Lock()
	data := model.GiftData{Gifts: s.snapshotLocked().Gifts, UpdatedAt: s.giftsUpdatedAt}
	s.mu.Unlock()
	if data.Gifts == nil {
		data.Gifts = []model.Gift{}
	}

	if err := s.backend.SaveGifts(ctx, data); err != nil {
		return s.mutate(config.OpSaveGifts, func() error { return err })
	}
	return nil
}

// AddGift records a gift and returns its id.
func (s *Store) AddGift(g model.Gift) (model.ClientID, error) {
	g = normalizedGift(g)
	err := s.mutate(config.OpAddGift, func() error {
		if err := g.Validate(); err != nil {
			return err
		}
		if indexOf(s.gifts, g.ID, giftKey) >= 0 {
			return fmt.Errorf("%w: gift %s", ErrDuplicateID, g.ID)
		}
		s.gifts = appended(s.gifts, g)
		s.giftsUpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return "", err
	}
	return g.ID, nil
}

// UpdateGift replaces the gift with the same id.
func (s *Store) UpdateGift(g model.Gift) error {
	g = g.Normalized()
	return s.mutate(config.OpUpdateGift, func() error {
		if err := g.Validate(); err != nil {
			return err
		}
		i := indexOf(s.gifts, g.ID, giftKey)
		if i < 0 {
			return fmt.Errorf("%w: gift %s", ErrNotFound, g.ID)
		}
		s.gifts = replaced(s.gifts, i, g)
		s.giftsUpdatedAt = s.now()
		return nil
	})
}

// DeleteGift removes a gift from the log.
func (s *Store) DeleteGift(id model.ClientID) error {
	return s.mutate(config.OpDeleteGift, func() error {
		i := indexOf(s.gifts, id, giftKey)
		if i < 0 {
			return fmt.Errorf("%w: gift %s", ErrNotFound, id)
		}
		s.gifts = removed(s.gifts, i)
		s.giftsUpdatedAt = s.now()
		return nil
	})
}

func normalizedGift(g model.Gift) model.Gift {
	g = g.Normalized()
	if g.ID.IsZero() {
		g.ID = model.NewClientID()
	}
	return g
}

// cloneGift copies the amount pointer.
func cloneGift(g model.Gift) model.Gift {
	if g.Amount != nil {
		a := *g.Amount
		g.Amount = &a
	}
	return g
}
