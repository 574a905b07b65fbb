package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bunchhieng/pins/internal/model"
)

const (
	maxURLLen   = 60
	maxTitleLen = 40
	maxTagsLen  = 30
	ellipsisLen = 3
)

type column struct {
	header string
	width  int
	cell   func(*model.Bookmark) string
	render func(...string) string
}

func printBookmarksTable(w io.Writer, bookmarks []*model.Bookmark) {
	cols := []*column{
		{header: "ID", cell: func(b *model.Bookmark) string { return strconv.FormatInt(b.ID, 10) }, render: boldStyle.Render},
		{header: "URL", cell: func(b *model.Bookmark) string { return truncateString(b.URL, maxURLLen) }, render: urlStyle.Render},
		{header: "TITLE", cell: func(b *model.Bookmark) string { return truncateString(b.Title, maxTitleLen) }},
		{header: "ADDED", cell: func(b *model.Bookmark) string { return formatTime(b.DateAdded) }, render: dimStyle.Render},
		{header: "UNREAD", cell: func(b *model.Bookmark) string { return unreadMark(b.Unread) }},
		{header: "TAGS", cell: func(b *model.Bookmark) string {
			return truncateString(strings.Join(b.TagNames, ","), maxTagsLen)
		}, render: tagStyle.Render},
	}

	// Column widths follow the widest cell; styles are applied after padding.
	for _, col := range cols {
		col.width = len(col.header)
		for _, b := range bookmarks {
			if n := len(col.cell(b)); n > col.width {
				col.width = n
			}
		}
	}

	segments := make([]string, len(cols))
	for i, col := range cols {
		segments[i] = strings.Repeat("─", col.width+2)
	}
	border := func(left, mid, right string) string {
		return dimStyle.Render(left + strings.Join(segments, mid) + right)
	}
	row := func(cells []string) string {
		return dimStyle.Render("│") + " " + strings.Join(cells, " "+dimStyle.Render("│")+" ") + " " + dimStyle.Render("│")
	}

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = boldStyle.Render(pad(col.header, col.width))
	}

	fmt.Fprintln(w, border("┌", "┬", "┐"))
	fmt.Fprintln(w, row(headers))
	fmt.Fprintln(w, border("├", "┼", "┤"))
	for _, b := range bookmarks {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = pad(col.cell(b), col.width)
			if col.render != nil {
				cells[i] = col.render(cells[i])
			}
		}
		fmt.Fprintln(w, row(cells))
	}
	fmt.Fprintln(w, border("└", "┴", "┘"))
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-ellipsisLen] + "..."
}

func unreadMark(unread bool) string {
	if unread {
		return "yes"
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
