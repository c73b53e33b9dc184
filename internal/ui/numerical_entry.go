package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
// Pasted text is not filtered; read it through IntValue.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a digits-only entry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything that is not 0-9.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the number pad on mobile.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// IntValue parses the text. ok is false for empty or non-numeric content.
func (e *NumericalEntry) IntValue() (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(e.Text))
	return n, err == nil
}
