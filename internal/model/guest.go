package model

import (
	"fmt"
	"strings"
	"time"
)

// Attendance is a guest's RSVP answer.
type Attendance string

const (
	AttendanceYes   Attendance = "yes"
	AttendanceNo    Attendance = "no"
	AttendanceMaybe Attendance = "maybe"
)

// Valid reports whether a is one of the known answers.
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceYes, AttendanceNo, AttendanceMaybe:
		return true
	}
	return false
}

// Guest is one RSVP entry. GuestCount includes the guest themself.
type Guest struct {
	ID         ServerID   `json:"id"`
	FullName   string     `json:"fullName"`
	Phone      string     `json:"phone,omitempty"`
	Attendance Attendance `json:"attendance"`
	GuestCount int        `json:"guestCount"`
	Message    string     `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Group      string     `json:"group,omitempty"`
}

// Validate checks the fields the server would otherwise reject.
func (g Guest) Validate() error {
	if strings.TrimSpace(g.FullName) == "" {
		return ErrNameRequired
	}
	if !g.Attendance.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAttendance, g.Attendance)
	}
	if g.GuestCount < 1 {
		return ErrInvalidGuestCount
	}
	return nil
}

// Headcount is the number of seats the guest needs when attending.
func (g Guest) Headcount() int {
	if g.Attendance != AttendanceYes {
		return 0
	}
	return g.GuestCount
}

// GuestList is the payload of the RSVP listing endpoint.
type GuestList struct {
	Guests []Guest `json:"guests"`
}
