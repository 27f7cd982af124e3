package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paketomat/internal/portal"
)

func TestShouldUseInteractiveMode(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		quiet    bool
		explicit bool
		isTTY    bool
		expected bool
	}{
		{"explicit flag in a terminal", "json", true, true, true, true},
		{"explicit flag without terminal", "table", false, true, false, false},
		{"auto-detect: table in a terminal", "table", false, false, true, true},
		{"auto-detect: json disables picker", "json", false, false, true, false},
		{"auto-detect: quiet disables picker", "table", true, false, true, false},
		{"auto-detect: not a TTY", "table", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldUseInteractiveMode(tt.format, tt.quiet, tt.explicit, tt.isTTY)
			assert.Equal(t, tt.expected, result)
		})
	}
}

var pickerSenders = []portal.Sender{
	{ID: 17, Name: "Shop GmbH", Address: "Gasse 2, 1010 Wien", Depot: "06"},
	{ID: 23, Name: "Lager Süd", Address: "Industriestraße 9, 8020 Graz", Depot: "08"},
}

func pressKeys(t *testing.T, m SenderPicker, keys ...tea.KeyMsg) SenderPicker {
	t.Helper()
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	picker, ok := model.(SenderPicker)
	require.True(t, ok)
	return picker
}

func TestSenderPicker(t *testing.T) {
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	down := tea.KeyMsg{Type: tea.KeyDown}

	t.Run("selects the first row", func(t *testing.T) {
		m := pressKeys(t, NewSenderPicker(pickerSenders, false), enter)

		sender, ok := m.Selected()
		require.True(t, ok)
		assert.Equal(t, 17, sender.ID)
	})

	t.Run("moves the cursor", func(t *testing.T) {
		m := pressKeys(t, NewSenderPicker(pickerSenders, false), down, enter)

		sender, ok := m.Selected()
		require.True(t, ok)
		assert.Equal(t, 23, sender.ID)
	})

	t.Run("cancel selects nothing", func(t *testing.T) {
		m := pressKeys(t, NewSenderPicker(pickerSenders, false), tea.KeyMsg{Type: tea.KeyEsc})

		_, ok := m.Selected()
		assert.False(t, ok)
		assert.Empty(t, m.View())
	})

	t.Run("view lists senders", func(t *testing.T) {
		view := NewSenderPicker(pickerSenders, true).View()

		assert.Contains(t, view, "Choose a sender")
		assert.Contains(t, view, "Shop GmbH")
	})
}

func TestPickSender_SingleSender(t *testing.T) {
	sender, err := pickSender(pickerSenders[:1])
	require.NoError(t, err)
	assert.Equal(t, 17, sender.ID)

	_, err = pickSender(nil)
	assert.Error(t, err)
}
