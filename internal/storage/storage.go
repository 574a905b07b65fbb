package storage

import (
	"context"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
)

// Storage defines the bookmark store.
type Storage interface {
	// Get retrieves one bookmark by id or by URL.
	Get(ctx context.Context, by Lookup) (*model.Bookmark, error)

	// Create inserts a bookmark and links its tags, returning the new id.
	Create(ctx context.Context, req model.BookmarkRequest) (int64, error)

	// Update replaces a bookmark's fields and tag set.
	Update(ctx context.Context, id int64, req model.BookmarkRequest) (*model.Bookmark, error)

	// Delete removes a bookmark. Deleting a missing bookmark is not an error.
	Delete(ctx context.Context, id int64) error

	// Check reports whether a URL is already saved.
	Check(ctx context.Context, url string) (*model.CheckResult, error)

	// List returns a page of bookmarks matching opts.
	List(ctx context.Context, opts search.Options) ([]*model.Bookmark, error)

	// Tags returns every tag in use.
	Tags(ctx context.Context) ([]*model.Tag, error)

	// Count returns the total number of bookmarks.
	Count(ctx context.Context) (int, error)

	// Close closes the storage connection.
	Close() error
}

// Lookup identifies a single bookmark. It is either ByID or ByURL.
type Lookup interface {
	condition() sq.Sqlizer
	String() string
}

// ByID looks a bookmark up by its id.
type ByID int64

// ByURL looks a bookmark up by its exact URL.
type ByURL string

func (id ByID) condition() sq.Sqlizer { return sq.Eq{"bookmarks.id": int64(id)} }

func (id ByID) String() string { return "id " + strconv.FormatInt(int64(id), 10) }

func (u ByURL) condition() sq.Sqlizer { return sq.Eq{"bookmarks.url": string(u)} }

func (u ByURL) String() string { return "url " + string(u) }
