package model

import (
	"fmt"
	"strings"
	"time"
)

// GiftCategory classifies what was received.
type GiftCategory string

const (
	GiftMoney   GiftCategory = "money"
	GiftItem    GiftCategory = "item"
	GiftService GiftCategory = "service"
	GiftOther   GiftCategory = "other"
)

// Valid reports whether c is a known category.
func (c GiftCategory) Valid() bool {
	switch c {
	case GiftMoney, GiftItem, GiftService, GiftOther:
		return true
	}
	return false
}

// Gift is an entry of the gift log. Amount is only meaningful for money gifts.
type Gift struct {
	ID           ClientID     `json:"id"`
	GuestName    string       `json:"guestName"`
	Amount       *float64     `json:"amount,omitempty"`
	Description  string       `json:"description,omitempty"`
	ReceivedDate time.Time    `json:"receivedDate"`
	Category     GiftCategory `json:"category"`
	Notes        string       `json:"notes,omitempty"`
}

// Validate checks the gift against its category.
func (g Gift) Validate() error {
	if strings.TrimSpace(g.GuestName) == "" {
		return ErrNameRequired
	}
	if !g.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, g.Category)
	}
	if g.Category == GiftMoney {
		if g.Amount == nil {
			return ErrMissingAmount
		}
		if *g.Amount < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

// Normalized drops the amount of non-money gifts and copies pointer fields.
func (g Gift) Normalized() Gift {
	out := g
	if g.Category != GiftMoney || g.Amount == nil {
		out.Amount = nil
		return out
	}
	a := *g.Amount
	out.Amount = &a
	return out
}

// MoneyValue returns the amount of a money gift, 0 otherwise.
func (g Gift) MoneyValue() float64 {
	if g.Category != GiftMoney || g.Amount == nil {
		return 0
	}
	return *g.Amount
}

// GiftData is the gift log as stored on the server.
type GiftData struct {
	Gifts     []Gift    `json:"gifts"`
	UpdatedAt time.Time `json:"updatedAt"`
}
