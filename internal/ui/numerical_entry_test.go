package ui_test

import (
	"testing"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-wedding/internal/ui"
)

func TestNumericalEntry_TypedRune(t *testing.T) {
	entry := ui.NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	tests := []struct {
		name     string
		input    rune
		accepted bool
	}{
		{"Digit_Zero", '0', true},
		{"Digit_Nine", '9', true},
		{"Digit_Five", '5', true},
		{"Letter_a", 'a', false},
		{"Letter_Z", 'Z', false},
		{"Symbol_Dash", '-', false},
		{"Symbol_Space", ' ', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry.SetText("")
			test.Type(entry, string(tt.input))

			if tt.accepted {
				assert.Equal(t, string(tt.input), entry.Text)
			} else {
				assert.Empty(t, entry.Text)
			}
		})
	}
}

func TestNumericalEntry_Keyboard(t *testing.T) {
	entry := ui.NewNumericalEntry()
	assert.Equal(t, mobile.NumberKeyboard, entry.Keyboard())
}

// SetText bypasses TypedRune, so pasted text reaches the entry unfiltered.
func TestNumericalEntry_IntValue(t *testing.T) {
	entry := ui.NewNumericalEntry()

	entry.SetText(" 42 ")
	n, ok := entry.IntValue()
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	entry.SetText("abc")
	assert.Equal(t, "abc", entry.Text)
	_, ok = entry.IntValue()
	assert.False(t, ok)

	entry.SetText("")
	_, ok = entry.IntValue()
	assert.False(t, ok)
}
