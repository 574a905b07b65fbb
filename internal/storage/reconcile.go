package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// ReconcileError lists the tags that could not be linked or unlinked. The
// remaining tags were reconciled normally.
type ReconcileError struct {
	BookmarkID int64
	Errs       []error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile tags of bookmark %d: %v", e.BookmarkID, errors.Join(e.Errs...))
}

func (e *ReconcileError) Unwrap() []error {
	return e.Errs
}

// Reconcile makes the bookmark's tag set equal to desired. Missing tags are
// created, unwanted links are removed and tags left without bookmarks are
// deleted.
//
// Each tag is handled on its own: a failure is logged and collected into a
// *ReconcileError without undoing the other tags. Failing to read the
// current tag set aborts before any change.
func (s *SQLiteStorage) Reconcile(ctx context.Context, bookmarkID int64, desired []string) error {
	current, err := s.tagIDsOf(ctx, bookmarkID)
	if err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx).With().Int64("bookmark_id", bookmarkID).Logger()
	var errs []error
	fail := func(tag, action string, err error) {
		err = fmt.Errorf("%s tag %q: %w", action, tag, err)
		logger.Warn().Err(err).Str("tag", tag).Msg("tag reconciliation step failed")
		errs = append(errs, err)
	}

	stale := make(map[int64]struct{}, len(current))
	for _, id := range current {
		stale[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(desired))
	for _, name := range desired {
		tagID, err := s.FindOrCreateTag(ctx, name)
		if err != nil {
			fail(name, "resolve", err)
			continue
		}
		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}

		if _, linked := stale[tagID]; linked {
			delete(stale, tagID)
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO bookmark_tags (bookmark_id, tag_id) VALUES (?, ?)",
			bookmarkID, tagID); err != nil {
			fail(name, "link", err)
		}
	}

	for tagID := range stale {
		label := strconv.FormatInt(tagID, 10)
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM bookmark_tags WHERE bookmark_id = ? AND tag_id = ?",
			bookmarkID, tagID); err != nil {
			fail(label, "unlink", err)
			continue
		}
		if _, err := s.DeleteTagIfOrphaned(ctx, tagID); err != nil {
			fail(label, "collect", err)
		}
	}

	if len(errs) > 0 {
		return &ReconcileError{BookmarkID: bookmarkID, Errs: errs}
	}
	return nil
}
