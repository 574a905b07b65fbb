package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	maxTitleLen   = 60
	maxConfirmLen = 50
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	unreadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	readStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	searchStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)
)

func (m appModel) renderHeader() string {
	filterText := "All"
	if m.opts.UnreadOnly {
		filterText = "Unread"
	}

	header := fmt.Sprintf("pins  [Filter: %s]  [%d bookmarks]", filterText, len(m.bookmarks))
	if m.opts.Q != "" {
		header += fmt.Sprintf("  [Search: %s]", m.opts.Q)
	}
	return headerStyle.Render(header)
}

func (m appModel) renderSearchBar() string {
	return searchStyle.Width(m.width - 2).Render("/" + m.searchQuery)
}

func (m appModel) renderList() string {
	if m.confirmDelete {
		return m.renderDeleteConfirmation()
	}

	if len(m.bookmarks) == 0 {
		return "No bookmarks found. Press '/' to search or 'q' to quit."
	}

	var b strings.Builder
	listHeight := m.height - 6 // header, search and status bar

	// Scroll so the selection stays visible.
	start := 0
	if listHeight > 0 && m.selected >= listHeight {
		start = m.selected - listHeight + 1
	}
	for i := start; i < len(m.bookmarks); i++ {
		if listHeight > 0 && i-start >= listHeight {
			break
		}
		b.WriteString(renderBookmark(m.bookmarks[i], i == m.selected))
		b.WriteString("\n")
	}

	return b.String()
}

func renderBookmark(bm *model.Bookmark, selected bool) string {
	statusIcon := "●"
	statusColor := readStyle
	if bm.Unread {
		statusIcon = "○"
		statusColor = unreadStyle
	}

	tagsStr := ""
	if len(bm.TagNames) > 0 {
		tagsStr = " " + formatTags(bm.TagNames)
	}

	line := fmt.Sprintf("%s %s %s%s",
		statusColor.Render(statusIcon),
		urlStyle.Render(truncate(displayTitle(bm), maxTitleLen)),
		readStyle.Render(formatAge(bm.DateAdded)),
		tagStyle.Render(tagsStr),
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return " " + line
}

func (m appModel) renderStatusBar() string {
	var parts []string

	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	} else if len(m.bookmarks) > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", m.selected+1, len(m.bookmarks)))
	}

	parts = append(parts, "[o]pen [d]one [u]nread [r]emove [/]search [tab]filter [q]uit")

	return statusBarStyle.Width(m.width).Render(strings.Join(parts, "  |  "))
}

func (m appModel) renderDeleteConfirmation() string {
	var title string
	if bm := m.current(); bm != nil {
		title = truncate(displayTitle(bm), maxConfirmLen)
	}

	confirmText := fmt.Sprintf("Delete bookmark: %s?\n\n[y]es / [n]o", title)
	return selectedStyle.Width(m.width-4).Padding(1, 2).Render(confirmText)
}

func displayTitle(bm *model.Bookmark) string {
	if bm.Title == "" {
		return bm.URL
	}
	return bm.Title
}

func formatTags(names []string) string {
	tags := make([]string, len(names))
	for i, name := range names {
		tags[i] = "#" + name
	}
	return strings.Join(tags, " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
