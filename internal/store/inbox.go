package store

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

func messageKey(m model.Message) model.ServerID { return m.ID }

// Messages returns a copy of the inbox.
func (s *Store) Messages() []model.Message {
	return s.Snapshot().Messages
}

// LoadInbox fetches the contact-form messages. It is separate from LoadAll.
func (s *Store) LoadInbox(ctx context.Context) error {
	msgs, err := s.backend.LoadMessages(ctx)
	return s.commit(config.OpLoadInbox, err, func() {
		s.messages = msgs
	})
}

// MarkMessageRead flags a message as read once the server confirms it.
func (s *Store) MarkMessageRead(ctx context.Context, id model.ServerID) error {
	s.mu.Lock()
	known := indexOf(s.messages, id, messageKey) >= 0
	s.mu.Unlock()
	if !known {
		return s.mutate(config.OpMarkRead, func() error {
			return fmt.Errorf("%w: message %s", ErrNotFound, id)
		})
	}

	err := s.backend.MarkMessageRead(ctx, id)
	return s.commit(config.OpMarkRead, err, func() {
		// the inbox may have been reloaded meanwhile
		if i := indexOf(s.messages, id, messageKey); i >= 0 {
			m := s.messages[i]
			m.IsRead = true
			s.messages = replaced(s.messages, i, m)
		}
	})
}
