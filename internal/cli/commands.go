package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bunchhieng/pins/internal/interchange"
	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
	"github.com/bunchhieng/pins/internal/storage"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Format names an interchange format.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = ""
	// FormatLinkding is linkding's JSON export.
	FormatLinkding Format = "linkding"
	// FormatNetscape is the Netscape bookmark HTML file.
	FormatNetscape Format = "netscape"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatLinkding, FormatNetscape:
		return f, nil
	case "json":
		return FormatLinkding, nil
	case "html":
		return FormatNetscape, nil
	default:
		return "", fmt.Errorf("unknown format %q (want linkding or netscape)", s)
	}
}

// DetectFormat picks a format from a file name.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatNetscape
	default:
		return FormatLinkding
	}
}

// Commands handles all CLI command execution.
type Commands struct {
	storage storage.Storage
	out     io.Writer
}

// NewCommands creates a new Commands instance writing to out.
func NewCommands(s storage.Storage, out io.Writer) *Commands {
	if out == nil {
		out = os.Stdout
	}
	return &Commands{storage: s, out: out}
}

// ImportReport summarizes an import.
type ImportReport struct {
	Imported int
	Failed   []string
}

// Import creates one bookmark per entry of the file at path. An entry that
// fails is reported and does not stop the rest.
func (c *Commands) Import(ctx context.Context, path string, format Format) (*ImportReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var reqs []model.BookmarkRequest
	switch format {
	case FormatNetscape:
		reqs, err = interchange.ReadNetscape(file)
	default:
		reqs, err = interchange.ReadLinkding(file)
	}
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for _, req := range reqs {
		if _, err := c.storage.Create(ctx, req); err != nil {
			reason := "error"
			if errors.Is(err, model.ErrDuplicate) {
				reason = "duplicate"
			}
			report.Failed = append(report.Failed, fmt.Sprintf("%s (%s)", req.URL, reason))
			continue
		}
		report.Imported++
	}

	fmt.Fprintf(c.out, "%s %s entries.\n",
		successStyle.Render("Imported"), boldStyle.Render(strconv.Itoa(report.Imported)))
	if len(report.Failed) > 0 {
		fmt.Fprintf(c.out, "%s\n  %s\n",
			errorStyle.Render("Failed to import:"), strings.Join(report.Failed, "\n  "))
	}
	return report, nil
}

// Export writes every bookmark to w, newest first.
func (c *Commands) Export(ctx context.Context, w io.Writer, format Format) error {
	bookmarks, err := c.storage.List(ctx, search.Options{})
	if err != nil {
		return fmt.Errorf("export bookmarks: %w", err)
	}

	if format == FormatLinkding {
		return interchange.WriteLinkding(w, bookmarks)
	}
	return interchange.WriteNetscape(w, bookmarks)
}

// List prints the bookmarks selected by opts as a table.
func (c *Commands) List(ctx context.Context, opts search.Options) error {
	bookmarks, err := c.storage.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}

	if len(bookmarks) == 0 {
		warn(c.out, "No bookmarks found.")
		return nil
	}

	printBookmarksTable(c.out, bookmarks)
	return nil
}

// Open opens a bookmark in the default browser.
func (c *Commands) Open(ctx context.Context, id int64) error {
	b, err := c.storage.Get(ctx, storage.ByID(id))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("bookmark %s not found", boldStyle.Render(strconv.FormatInt(id, 10)))
		}
		return fmt.Errorf("get bookmark: %w", err)
	}

	if err := openURL(b.URL).Run(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}

	fmt.Fprintf(c.out, "%s %s\n", successStyle.Render("Opened:"), urlStyle.Render(b.URL))
	return nil
}

// Remove deletes one or more bookmarks.
func (c *Commands) Remove(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one ID required")
	}

	var deleted, failed []string
	for _, id := range ids {
		label := strconv.FormatInt(id, 10)
		if err := c.storage.Delete(ctx, id); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", label, err))
			continue
		}
		deleted = append(deleted, label)
	}

	if len(deleted) > 0 {
		fmt.Fprintf(c.out, "%s %d bookmark(s): %s\n",
			errorStyle.Render("Deleted"), len(deleted), boldStyle.Render(strings.Join(deleted, ", ")))
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to delete: %s", strings.Join(failed, ", "))
	}
	return nil
}

// ParseID parses a bookmark id argument.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

// openURL returns the platform command that opens url in a browser.
func openURL(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// OpenURL starts the platform browser on url without waiting for it.
func OpenURL(url string) error {
	return openURL(url).Start()
}

func warn(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render(msg))
}
