package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) *pickerModel {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m.(*pickerModel)
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyJ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
)

func sampleItems() []Item {
	return []Item{
		{Label: "Remove trailing whitespace"},
		{Label: "Convert indentation to spaces"},
		{Label: "Suppress 'tab-indent' for line", LowPriority: true},
	}
}

func TestPickerMovesAndSelects(t *testing.T) {
	m := press(t, NewPickerModel("Quick fixes", sampleItems()), keyDown, keyJ, keyDown, keyUp, keyEnter)
	if got := m.Chosen(); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if !m.done {
		t.Fatal("expected model to finish")
	}
}

func TestPickerCursorStaysInRange(t *testing.T) {
	m := press(t, NewPickerModel("Quick fixes", sampleItems()), keyUp, keyUp)
	if m.cursor != 0 {
		t.Fatalf("cursor moved above the list: %d", m.cursor)
	}
	m = press(t, m, keyDown, keyDown, keyDown, keyDown)
	if m.cursor != 2 {
		t.Fatalf("cursor moved past the list: %d", m.cursor)
	}
}

func TestPickerCancel(t *testing.T) {
	m := press(t, NewPickerModel("Quick fixes", sampleItems()), keyDown, keyEsc)
	if m.Chosen() != -1 {
		t.Fatalf("expected no selection, got %d", m.Chosen())
	}
}

func TestPickerView(t *testing.T) {
	m := NewPickerModel("Quick fixes", sampleItems())
	view := m.View()
	for _, want := range []string{"Quick fixes", "1. Remove trailing whitespace", "3. Suppress 'tab-indent' for line"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"abcdefghij", 6, "abc..."},
		{"Convert indentation to spaces (tab width 4)", 20, "Convert indentati..."},
		{"abc", 6, "abc"},
		{"abcdef", 6, "abcdef"},
		{"abcdef", 3, "abc"},
		{"日本語テキスト", 9, "日本語..."},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		got := truncate(tt.value, tt.width)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
		if tt.width > 0 && runewidth.StringWidth(got) > tt.width {
			t.Errorf("truncate(%q, %d) is %d cells wide", tt.value, tt.width, runewidth.StringWidth(got))
		}
	}
}
