package preview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/feed-relay/internal/relay"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
	RequestViewMode
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model represents the Bubble Tea model for the preview TUI
type Model struct {
	posts         []relay.PendingPost
	visibility    string
	cursor        int
	viewMode      ViewMode
	width         int
	height        int
	selectedIndex int // Index of the post currently being viewed in detail
}

// NewModel creates a new preview model
func NewModel(posts []relay.PendingPost, visibility string) Model {
	return Model{
		posts:         posts,
		visibility:    visibility,
		viewMode:      ListViewMode,
		selectedIndex: -1,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case DetailViewMode, RequestViewMode:
			return m.updateDetailView(msg)
		}
	}

	return m, nil
}

func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.posts)-1 {
			m.cursor++
		}

	case "enter":
		m.selectedIndex = m.cursor
		m.viewMode = DetailViewMode

	case "r":
		m.selectedIndex = m.cursor
		m.viewMode = RequestViewMode
	}

	return m, nil
}

func (m Model) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.viewMode = ListViewMode

	case "r":
		if m.viewMode == DetailViewMode {
			m.viewMode = RequestViewMode
		} else {
			m.viewMode = DetailViewMode
		}
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case ListViewMode:
		return m.renderListView()
	case DetailViewMode:
		return m.renderSelected("", FormatDetailedItem, "esc: back to list • r: request view • q: quit")
	case RequestViewMode:
		return m.renderSelected("Status Request", func(p relay.PendingPost) string {
			return FormatRequest(p, m.visibility)
		}, "esc: back to list • r: detail view • q: quit")
	}
	return ""
}

// visibleRange keeps the cursor in the middle of the screen when the list is taller
// than the terminal
func (m Model) visibleRange() (int, int) {
	start, end := 0, len(m.posts)
	if m.height <= 0 {
		return start, end
	}

	maxVisible := m.height - 6 // header, footer and padding
	if maxVisible <= 0 || maxVisible >= len(m.posts) {
		return start, end
	}

	start = max(m.cursor-maxVisible/2, 0)
	end = start + maxVisible
	if end > len(m.posts) {
		end = len(m.posts)
		start = max(end-maxVisible, 0)
	}
	return start, end
}

func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Post Preview (%d pending, visibility %s)", len(m.posts), m.visibility)))
	b.WriteString("\n\n")

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.posts[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: view post • r: request view • q: quit"))

	return b.String()
}

func (m Model) renderSelected(title string, render func(relay.PendingPost) string, footer string) string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.posts) {
		return "No post selected"
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n\n")
	}
	b.WriteString(render(m.posts[m.selectedIndex]))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(posts []relay.PendingPost, visibility string) error {
	if len(posts) == 0 {
		fmt.Println("No new posts to preview")
		return nil
	}

	p := tea.NewProgram(NewModel(posts, visibility), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
