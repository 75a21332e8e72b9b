package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ErrCancelled is returned by Pick when the user leaves without choosing.
var ErrCancelled = errors.New("selection cancelled")

// Item is one row of the picker.
type Item struct {
	Label       string
	Family      string
	LowPriority bool
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc/q", "cancel"),
	),
}

type pickerModel struct {
	title    string
	items    []Item
	cursor   int
	chosen   int
	done     bool
	width    int
	keys     keyMap
	help     help.Model
	selected lipgloss.Style
	normal   lipgloss.Style
	dimmed   lipgloss.Style
	header   lipgloss.Style
}

// NewPickerModel returns a Bubble Tea model listing items for selection.
func NewPickerModel(title string, items []Item) tea.Model {
	return &pickerModel{
		title:    title,
		items:    items,
		chosen:   -1,
		width:    80,
		keys:     defaultKeys,
		help:     help.New(),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		dimmed:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				m.chosen = m.cursor
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.help.Width = msg.Width
		}
	}
	return m, nil
}

func (m *pickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header.Render(m.title))
	b.WriteString("\n\n")

	labelWidth := m.width - 6
	if labelWidth < 20 {
		labelWidth = 20
	}
	for i, item := range m.items {
		marker := "  "
		style := m.normal
		if item.LowPriority {
			style = m.dimmed
		}
		if i == m.cursor {
			marker = "> "
			style = m.selected
		}
		line := fmt.Sprintf("%s%d. %s", marker, i+1, truncate(item.Label, labelWidth))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Chosen returns the selected index, or -1 when nothing was chosen.
func (m *pickerModel) Chosen() int {
	return m.chosen
}

// Pick shows items and blocks until the user chooses one or cancels.
func Pick(title string, items []Item, opts ...tea.ProgramOption) (int, error) {
	if len(items) == 0 {
		return -1, ErrCancelled
	}
	model := NewPickerModel(title, items)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return -1, err
	}
	chosen := final.(*pickerModel).Chosen()
	if chosen < 0 {
		return -1, ErrCancelled
	}
	return chosen, nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// tail counts towards width
	return runewidth.Truncate(value, width, "...")
}
