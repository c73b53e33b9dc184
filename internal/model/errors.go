package model

import "errors"

// Validation errors returned by the Validate methods.
var (
	ErrNameRequired      = errors.New("name is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidAttendance = errors.New("attendance must be yes, no or maybe")
	ErrInvalidGuestCount = errors.New("guest count must be at least 1")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrInvalidCategory   = errors.New("unknown category")
	ErrInvalidPriority   = errors.New("unknown priority")
	ErrMissingAmount     = errors.New("money gifts require an amount")
)
