// Package interchange converts bookmarks to and from other managers'
// export formats.
package interchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bunchhieng/pins/internal/model"
)

// LinkdingBookmark is one entry of a linkding JSON export.
type LinkdingBookmark struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	Notes        *string  `json:"notes"`
	Unread       bool     `json:"unread"`
	TagNames     []string `json:"tag_names"`
	DateAdded    string   `json:"date_added"`
	DateModified string   `json:"date_modified"`
}

// Request converts the entry. Dates that are not RFC3339 are left unset,
// so the store stamps them with the import time.
func (l LinkdingBookmark) Request() model.BookmarkRequest {
	return model.BookmarkRequest{
		URL:          l.URL,
		Title:        l.Title,
		Description:  l.Description,
		Notes:        l.Notes,
		Unread:       l.Unread,
		TagNames:     l.TagNames,
		DateAdded:    epochSeconds(l.DateAdded),
		DateModified: epochSeconds(l.DateModified),
	}
}

func epochSeconds(rfc3339 string) *int64 {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return nil
	}
	secs := t.Unix()
	return &secs
}

// ReadLinkding decodes a linkding JSON export.
func ReadLinkding(r io.Reader) ([]model.BookmarkRequest, error) {
	var entries []LinkdingBookmark
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode linkding JSON: %w", err)
	}

	reqs := make([]model.BookmarkRequest, len(entries))
	for i, e := range entries {
		reqs[i] = e.Request()
	}
	return reqs, nil
}

// WriteLinkding encodes bookmarks in linkding's JSON export format.
func WriteLinkding(w io.Writer, bookmarks []*model.Bookmark) error {
	entries := make([]LinkdingBookmark, len(bookmarks))
	for i, b := range bookmarks {
		tags := b.TagNames
		if tags == nil {
			tags = []string{}
		}
		entries[i] = LinkdingBookmark{
			URL:          b.URL,
			Title:        b.Title,
			Description:  b.Description,
			Notes:        b.Notes,
			Unread:       b.Unread,
			TagNames:     tags,
			DateAdded:    b.DateAdded.UTC().Format(time.RFC3339),
			DateModified: b.DateModified.UTC().Format(time.RFC3339),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
