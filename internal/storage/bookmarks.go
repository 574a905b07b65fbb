package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
	"github.com/rs/zerolog"
)

type bookmarkRow struct {
	ID           int64          `db:"id"`
	URL          string         `db:"url"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Notes        sql.NullString `db:"notes"`
	Unread       bool           `db:"unread"`
	DateAdded    int64          `db:"date_added"`
	DateModified int64          `db:"date_modified"`
	TagNames     sql.NullString `db:"tag_names"`
}

func (r *bookmarkRow) toBookmark() *model.Bookmark {
	b := &model.Bookmark{
		ID:           r.ID,
		URL:          r.URL,
		Title:        r.Title,
		Unread:       r.Unread,
		TagNames:     model.SplitTagNames(r.TagNames.String),
		DateAdded:    time.Unix(r.DateAdded, 0).UTC(),
		DateModified: time.Unix(r.DateModified, 0).UTC(),
	}
	if r.Description.Valid {
		b.Description = &r.Description.String
	}
	if r.Notes.Valid {
		b.Notes = &r.Notes.String
	}
	return b
}

// Get retrieves a bookmark by id or URL.
func (s *SQLiteStorage) Get(ctx context.Context, by Lookup) (*model.Bookmark, error) {
	query, args, err := search.BaseSelect().Where(by.condition()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var row bookmarkRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark by %s: %w", by, err)
	}
	return row.toBookmark(), nil
}

// Create inserts a bookmark and links its tags. Timestamps default to now
// unless the request carries them.
func (s *SQLiteStorage) Create(ctx context.Context, req model.BookmarkRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (url, title, description, notes, unread, date_added, date_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.URL, req.Title, req.Description, req.Notes, req.Unread,
		valueOr(req.DateAdded, now), valueOr(req.DateModified, now))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create bookmark %s: %w", req.URL, model.ErrDuplicate)
		}
		return 0, fmt.Errorf("create bookmark: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create bookmark: %w", err)
	}

	if err := s.Reconcile(ctx, id, req.TagNames); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("bookmark_id", id).Msg("bookmark created with incomplete tags")
	}
	return id, nil
}

// Update replaces the bookmark's fields and tags and returns the stored
// result. date_added is never changed.
func (s *SQLiteStorage) Update(ctx context.Context, id int64, req model.BookmarkRequest) (*model.Bookmark, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookmarks
		SET url = ?, title = ?, description = ?, notes = ?, unread = ?, date_modified = ?
		WHERE id = ?
	`, req.URL, req.Title, req.Description, req.Notes, req.Unread, s.timestamp(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update bookmark %d: %w", id, model.ErrDuplicate)
		}
		return nil, fmt.Errorf("update bookmark %d: %w", id, err)
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}

	if err := s.Reconcile(ctx, id, req.TagNames); err != nil {
		var partial *ReconcileError
		if !errors.As(err, &partial) {
			return nil, fmt.Errorf("update bookmark %d: %w", id, err)
		}
		zerolog.Ctx(ctx).Error().Err(err).Int64("bookmark_id", id).Msg("bookmark updated with incomplete tags")
	}

	return s.Get(ctx, ByID(id))
}

// Delete removes a bookmark and any tag it leaves unused. A missing
// bookmark is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, id int64) error {
	tagIDs, err := s.tagIDsOf(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}

	for _, tagID := range tagIDs {
		if _, err := s.DeleteTagIfOrphaned(ctx, tagID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("bookmark_id", id).Int64("tag_id", tagID).
				Msg("could not collect tag of deleted bookmark")
		}
	}
	return nil
}

// Check looks up url. A missing bookmark gives a result with a nil Bookmark.
func (s *SQLiteStorage) Check(ctx context.Context, url string) (*model.CheckResult, error) {
	result := &model.CheckResult{URL: url}
	b, err := s.Get(ctx, ByURL(url))
	switch {
	case errors.Is(err, model.ErrNotFound):
		return result, nil
	case err != nil:
		return result, err
	}
	result.Bookmark = b
	return result, nil
}

// List returns the page of bookmarks selected by opts, newest first.
func (s *SQLiteStorage) List(ctx context.Context, opts search.Options) ([]*model.Bookmark, error) {
	query, args, err := search.Compile(opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []bookmarkRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	bookmarks := make([]*model.Bookmark, len(rows))
	for i := range rows {
		bookmarks[i] = rows[i].toBookmark()
	}
	return bookmarks, nil
}

// Count returns the number of stored bookmarks.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM bookmarks"); err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return n, nil
}

func checkRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}
