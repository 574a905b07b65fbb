package api

import (
	"time"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
)

// BookmarkView is the wire form of a bookmark.
type BookmarkView struct {
	ID           int64    `json:"id"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	Unread       bool     `json:"unread"`
	TagNames     []string `json:"tag_names"`
	DateAdded    string   `json:"date_added"`
	DateModified string   `json:"date_modified"`
}

func newBookmarkView(b *model.Bookmark) BookmarkView {
	tags := b.TagNames
	if tags == nil {
		tags = []string{}
	}
	return BookmarkView{
		ID:           b.ID,
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

func newBookmarkViews(bookmarks []*model.Bookmark) []BookmarkView {
	views := make([]BookmarkView, len(bookmarks))
	for i, b := range bookmarks {
		views[i] = newBookmarkView(b)
	}
	return views
}

// BookmarkRequest is the body of POST and PUT. Timestamps cannot be set
// over HTTP.
type BookmarkRequest struct {
	URL         string   `json:"url" binding:"required"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
	Unread      bool     `json:"unread"`
	TagNames    []string `json:"tag_names" binding:"omitempty,dive,required"`
}

func (r BookmarkRequest) toModel() model.BookmarkRequest {
	return model.BookmarkRequest{
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
		Notes:       r.Notes,
		Unread:      r.Unread,
		TagNames:    r.TagNames,
	}
}

type listParams struct {
	Q      string  `form:"q"`
	Limit  *uint64 `form:"limit" binding:"omitempty,max=9223372036854775807"`
	Offset uint64  `form:"offset" binding:"max=9223372036854775807"`
	Unread string  `form:"unread" binding:"omitempty,oneof=yes no"`
}

func (p listParams) options() search.Options {
	opts := search.DefaultOptions()
	opts.Q = p.Q
	if p.Limit != nil {
		opts.Limit = *p.Limit
	}
	opts.Offset = p.Offset
	opts.UnreadOnly = p.Unread == "yes"
	return opts
}

type checkParams struct {
	URL string `form:"url" binding:"required"`
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// CheckMetadata echoes the checked URL.
type CheckMetadata struct {
	URL string `json:"url"`
}

// CheckResponse answers GET /bookmarks/check.
type CheckResponse struct {
	Bookmark *BookmarkView `json:"bookmark"`
	Metadata CheckMetadata `json:"metadata"`
	AutoTags []string      `json:"auto_tags"`
}

// TagView is the wire form of a tag.
type TagView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DateAdded string `json:"date_added"`
}

func newTagViews(tags []*model.Tag) []TagView {
	views := make([]TagView, len(tags))
	for i, t := range tags {
		views[i] = TagView{
			ID:        t.ID,
			Name:      t.Name,
			DateAdded: t.DateAdded.UTC().Format(time.RFC3339),
		}
	}
	return views
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}
