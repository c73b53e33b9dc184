package model

import (
	"strconv"

	"github.com/google/uuid"
)

// ServerID identifies a resource whose identity is assigned by the remote API
// (guests, messages, users). The zero value marks a draft that has not been
// persisted yet.
type ServerID int64

// IsPersisted reports whether the server has assigned this identifier.
func (id ServerID) IsPersisted() bool {
	return id > 0
}

func (id ServerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ClientID identifies a sub-resource created on this device (budget
// categories and items, gifts, tasks). It stays stable for the lifetime of
// the resource and is sent as-is when the owning collection is saved.
type ClientID string

// NewClientID returns a fresh random identifier.
func NewClientID() ClientID {
	return ClientID(uuid.NewString())
}

// IsZero reports whether the identifier has not been assigned.
func (id ClientID) IsZero() bool {
	return id == ""
}
