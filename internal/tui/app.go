package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bunchhieng/pins/internal/cli"
	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
	"github.com/bunchhieng/pins/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

const statusTTL = 3 * time.Second

type appModel struct {
	storage       storage.Storage
	bookmarks     []*model.Bookmark
	selected      int
	opts          search.Options
	searchQuery   string
	searchMode    bool
	confirmDelete bool
	deleteID      int64
	width         int
	height        int
	err           error
	statusMsg     string
}

type loadBookmarksMsg struct {
	bookmarks []*model.Bookmark
	err       error
}

type statusMsg struct {
	message string
}

// changedMsg reports a completed write; the list is reloaded after it.
type changedMsg struct {
	message string
}

func initialModel(s storage.Storage) appModel {
	return appModel{
		storage:   s,
		bookmarks: []*model.Bookmark{},
		opts:      search.DefaultOptions(),
		width:     80,
		height:    24,
	}
}

func (m appModel) Init() tea.Cmd {
	return loadBookmarks(m.storage, m.opts)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirmDelete {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.handleDeleteConfirmation(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchInput(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			m.moveDown()

		case "k", "up":
			m.moveUp()

		case "g":
			m.selected = 0

		case "G":
			m.selected = max(len(m.bookmarks)-1, 0)

		case "o", "enter":
			return m, m.openBookmark()

		case "d":
			return m, m.setUnread(false)

		case "u":
			return m, m.setUnread(true)

		case "r":
			if b := m.current(); b != nil {
				m.confirmDelete = true
				m.deleteID = b.ID
			}

		case "/":
			m.searchMode = true
			m.searchQuery = m.opts.Q

		case "esc":
			if m.opts.Q == "" {
				return m, nil
			}
			m.opts.Q = ""
			m.selected = 0
			return m, loadBookmarks(m.storage, m.opts)

		case "tab":
			m.opts.UnreadOnly = !m.opts.UnreadOnly
			m.selected = 0
			return m, loadBookmarks(m.storage, m.opts)

		case "?":
			return m, status("q=quit j/k=nav o=open d=done u=unread r=remove /=search tab=filter")

		case "ctrl+l":
			return m, loadBookmarks(m.storage, m.opts)
		}
		return m, nil

	case loadBookmarksMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.bookmarks = msg.bookmarks
		m.clampSelection()
		return m, nil

	case changedMsg:
		return m, tea.Batch(loadBookmarks(m.storage, m.opts), status(msg.message))

	case statusMsg:
		m.statusMsg = msg.message
		if msg.message == "" {
			return m, nil
		}
		return m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
			return statusMsg{}
		})
	}

	return m, nil
}

func (m appModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.searchMode {
		b.WriteString(m.renderSearchBar())
		b.WriteString("\n")
	}
	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *appModel) current() *model.Bookmark {
	if m.selected < 0 || m.selected >= len(m.bookmarks) {
		return nil
	}
	return m.bookmarks[m.selected]
}

func (m *appModel) moveDown() {
	if m.selected < len(m.bookmarks)-1 {
		m.selected++
	}
}

func (m *appModel) moveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

func (m *appModel) clampSelection() {
	if m.selected >= len(m.bookmarks) {
		m.selected = len(m.bookmarks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// handleSearchInput edits the query; enter runs it against the store using
// the same syntax as the API's q parameter.
func (m appModel) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
		return m, nil

	case tea.KeyEnter:
		m.searchMode = false
		m.opts.Q = strings.TrimSpace(m.searchQuery)
		m.selected = 0
		return m, loadBookmarks(m.storage, m.opts)

	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
		return m, nil

	case tea.KeySpace:
		m.searchQuery += " "
		return m, nil

	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
	}
	return m, nil
}

func (m appModel) handleDeleteConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.deleteID
		m.confirmDelete = false
		m.deleteID = 0
		s := m.storage
		return m, func() tea.Msg {
			if err := s.Delete(context.Background(), id); err != nil {
				return statusMsg{fmt.Sprintf("Error: %v", err)}
			}
			return changedMsg{"Deleted bookmark"}
		}

	case "n", "N", "esc":
		m.confirmDelete = false
		m.deleteID = 0
	}
	return m, nil
}

func (m appModel) openBookmark() tea.Cmd {
	b := m.current()
	if b == nil {
		return nil
	}
	url := b.URL
	return func() tea.Msg {
		if err := cli.OpenURL(url); err != nil {
			return statusMsg{fmt.Sprintf("Error: %v", err)}
		}
		return statusMsg{fmt.Sprintf("Opened: %s", url)}
	}
}

// setUnread rewrites the selected bookmark with its unread flag flipped.
func (m appModel) setUnread(unread bool) tea.Cmd {
	b := m.current()
	if b == nil {
		return nil
	}
	if b.Unread == unread {
		if unread {
			return status("Already unread")
		}
		return status("Already marked as read")
	}

	req := b.Request()
	req.Unread = unread
	id, s := b.ID, m.storage
	return func() tea.Msg {
		if _, err := s.Update(context.Background(), id, req); err != nil {
			return statusMsg{fmt.Sprintf("Error: %v", err)}
		}
		if unread {
			return changedMsg{"Marked as unread"}
		}
		return changedMsg{"Marked as read"}
	}
}

func status(message string) tea.Cmd {
	return func() tea.Msg { return statusMsg{message} }
}

func loadBookmarks(s storage.Storage, opts search.Options) tea.Cmd {
	return func() tea.Msg {
		bookmarks, err := s.List(context.Background(), opts)
		return loadBookmarksMsg{bookmarks: bookmarks, err: err}
	}
}

// Run starts the TUI application
func Run(s storage.Storage) error {
	p := tea.NewProgram(initialModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
