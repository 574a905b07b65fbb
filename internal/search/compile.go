package search

import (
	"math"

	sq "github.com/Masterminds/squirrel"
)

// DefaultLimit is the page size used when the caller gives none.
const DefaultLimit = 100

// MaxRange is the largest limit or offset SQLite accepts; larger values are
// clamped to it.
const MaxRange uint64 = math.MaxInt64

// Options selects a page of bookmarks.
type Options struct {
	Q          string
	Limit      uint64 // 0 means no limit
	Offset     uint64
	UnreadOnly bool
}

// DefaultOptions returns options for the first default-sized page of
// everything.
func DefaultOptions() Options {
	return Options{Limit: DefaultLimit}
}

// Columns selected for every bookmark row. tag_names is the bookmark's tag
// names joined with char(31), model.TagSeparator.
var Columns = []string{
	"bookmarks.id AS id",
	"bookmarks.url AS url",
	"bookmarks.title AS title",
	"bookmarks.description AS description",
	"bookmarks.notes AS notes",
	"bookmarks.unread AS unread",
	"bookmarks.date_added AS date_added",
	"bookmarks.date_modified AS date_modified",
	"GROUP_CONCAT(tags.name, char(31)) AS tag_names",
}

// BaseSelect selects bookmarks joined with their tags, one row per bookmark.
func BaseSelect() sq.SelectBuilder {
	return sq.Select(Columns...).
		From("bookmarks").
		LeftJoin("bookmark_tags ON bookmark_tags.bookmark_id = bookmarks.id").
		LeftJoin("tags ON tags.id = bookmark_tags.tag_id").
		GroupBy("bookmarks.id")
}

// Condition builds the filter for q and the unread flag. It returns nil
// when nothing is filtered.
//
// Tag names are ORed together. When both tag names and text are present
// the bookmark id must be in both result sets.
func Condition(q Query, unreadOnly bool) sq.Sqlizer {
	var conds sq.And
	if len(q.TagNames) > 0 {
		tagged := sq.Select("bookmark_tags.bookmark_id").
			From("bookmark_tags").
			Join("tags ON tags.id = bookmark_tags.tag_id").
			Where(sq.Eq{"tags.name": q.TagNames})
		conds = append(conds, sq.Expr("bookmarks.id IN (?)", tagged))
	}
	if len(q.Text) > 0 {
		matched := sq.Select("rowid").
			From("bookmarks_fts").
			Where("bookmarks_fts MATCH ?", q.MatchExpr())
		conds = append(conds, sq.Expr("bookmarks.id IN (?)", matched))
	}
	if unreadOnly {
		conds = append(conds, sq.Eq{"bookmarks.unread": true})
	}
	if len(conds) == 0 {
		return nil
	}
	return conds
}

// Compile builds the list select for opts, newest first.
func Compile(opts Options) sq.SelectBuilder {
	b := BaseSelect()
	if cond := Condition(Parse(opts.Q), opts.UnreadOnly); cond != nil {
		b = b.Where(cond)
	}
	b = b.OrderBy("bookmarks.date_added DESC", "bookmarks.id DESC")

	limit, offset := min(opts.Limit, MaxRange), min(opts.Offset, MaxRange)
	switch {
	case limit > 0:
		b = b.Limit(limit)
		if offset > 0 {
			b = b.Offset(offset)
		}
	case offset > 0:
		// SQLite only accepts OFFSET after a LIMIT; -1 is unbounded.
		b = b.Suffix("LIMIT -1 OFFSET ?", offset)
	}
	return b
}
