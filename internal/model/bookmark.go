package model

import (
	"strings"
	"time"
)

// Bookmark is a saved URL with its metadata and tag names.
type Bookmark struct {
	ID           int64
	URL          string
	Title        string
	Description  *string
	Notes        *string
	Unread       bool
	TagNames     []string
	DateAdded    time.Time
	DateModified time.Time
}

// Tag is a named label shared by any number of bookmarks.
type Tag struct {
	ID        int64
	Name      string
	DateAdded time.Time
}

// BookmarkRequest carries the client-supplied fields of a create or update.
// DateAdded and DateModified are epoch seconds and are only set by importers;
// nil means "now".
type BookmarkRequest struct {
	URL          string
	Title        string
	Description  *string
	Notes        *string
	Unread       bool
	TagNames     []string
	DateAdded    *int64
	DateModified *int64
}

// Validate checks the fields the store cannot accept.
func (r *BookmarkRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrInvalidURL
	}
	return nil
}

// CheckResult is the answer to "is this URL already saved?".
type CheckResult struct {
	URL      string
	Bookmark *Bookmark
}

// Request returns a request that would recreate b as it is now.
func (b *Bookmark) Request() BookmarkRequest {
	added := b.DateAdded.Unix()
	modified := b.DateModified.Unix()
	return BookmarkRequest{
		URL:          b.URL,
		Title:        b.Title,
		Description:  b.Description,
		Notes:        b.Notes,
		Unread:       b.Unread,
		TagNames:     append([]string(nil), b.TagNames...),
		DateAdded:    &added,
		DateModified: &modified,
	}
}

// HasTag reports whether name is one of the bookmark's tags.
func (b *Bookmark) HasTag(name string) bool {
	for _, t := range b.TagNames {
		if t == name {
			return true
		}
	}
	return false
}

// TagSeparator joins aggregated tag names. It is the ASCII unit separator,
// so names may contain commas.
const TagSeparator = "\x1f"

// SplitTagNames splits a TagSeparator-joined tag list.
func SplitTagNames(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, TagSeparator)
}

// StringPtr returns nil for an empty string and &s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
