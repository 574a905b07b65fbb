package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bunchhieng/pins/internal/model"
)

type tagRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	DateAdded int64  `db:"date_added"`
}

func (r *tagRow) toTag() *model.Tag {
	return &model.Tag{
		ID:        r.ID,
		Name:      r.Name,
		DateAdded: time.Unix(r.DateAdded, 0).UTC(),
	}
}

// FindOrCreateTag returns the id of the tag called name, creating it if it
// does not exist yet. Names are matched exactly.
func (s *SQLiteStorage) FindOrCreateTag(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, model.ErrEmptyTag
	}

	id, found, err := s.findTag(ctx, name)
	if err != nil || found {
		return id, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (name, date_added) VALUES (?, ?)", name, s.timestamp())
	if err != nil {
		if !isUniqueViolation(err) {
			return 0, fmt.Errorf("insert tag %q: %w", name, err)
		}
		// Another request created it between our lookup and insert.
		id, found, err = s.findTag(ctx, name)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, fmt.Errorf("insert tag %q: conflicting tag disappeared", name)
		}
		return id, nil
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert tag %q: %w", name, err)
	}
	return id, nil
}

func (s *SQLiteStorage) findTag(ctx context.Context, name string) (int64, bool, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, "SELECT id FROM tags WHERE name = ?", name); err != nil {
		return 0, false, fmt.Errorf("find tag %q: %w", name, err)
	}
	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	default:
		return 0, false, fmt.Errorf("find tag %q: %w", name, model.ErrTagAmbiguous)
	}
}

// DeleteTagIfOrphaned deletes the tag when no bookmark references it any
// more. The reference check and the delete are one statement.
func (s *SQLiteStorage) DeleteTagIfOrphaned(ctx context.Context, tagID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tags
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM bookmark_tags WHERE tag_id = ?)
	`, tagID, tagID)
	if err != nil {
		return false, fmt.Errorf("delete orphaned tag %d: %w", tagID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

// Tags returns all tags ordered by name.
func (s *SQLiteStorage) Tags(ctx context.Context) ([]*model.Tag, error) {
	var rows []tagRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT id, name, date_added FROM tags ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := make([]*model.Tag, len(rows))
	for i := range rows {
		tags[i] = rows[i].toTag()
	}
	return tags, nil
}

func (s *SQLiteStorage) tagIDsOf(ctx context.Context, bookmarkID int64) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids,
		"SELECT tag_id FROM bookmark_tags WHERE bookmark_id = ?", bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("tags of bookmark %d: %w", bookmarkID, err)
	}
	return ids, nil
}
