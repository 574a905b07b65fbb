package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/search"
)

// tickingClock advances one second per call so insertion order is visible
// in date_added.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	clock := &tickingClock{now: time.Unix(1700000000, 0)}
	dbPath := filepath.Join(t.TempDir(), "pins.db")
	storage, err := NewSQLiteStorage(dbPath, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func mustCreate(t *testing.T, s *SQLiteStorage, url string, tags ...string) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), model.BookmarkRequest{
		URL:      url,
		Title:    "title of " + url,
		TagNames: tags,
	})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", url, err)
	}
	return id
}

func mustGet(t *testing.T, s *SQLiteStorage, id int64) *model.Bookmark {
	t.Helper()
	b, err := s.Get(context.Background(), ByID(id))
	if err != nil {
		t.Fatalf("Get(%d) failed: %v", id, err)
	}
	return b
}

func tagNames(t *testing.T, s *SQLiteStorage) []string {
	t.Helper()
	tags, err := s.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

func ids(bookmarks []*model.Bookmark) []int64 {
	out := make([]int64, len(bookmarks))
	for i, b := range bookmarks {
		out[i] = b.ID
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	desc := "a description"
	id, err := s.Create(ctx, model.BookmarkRequest{
		URL:         "https://example.com",
		Title:       "Example",
		Description: &desc,
		Unread:      true,
		TagNames:    []string{"web", "example"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	b := mustGet(t, s, id)
	if b.URL != "https://example.com" || b.Title != "Example" {
		t.Errorf("unexpected bookmark: %+v", b)
	}
	if b.Description == nil || *b.Description != desc {
		t.Errorf("Expected description %q, got %v", desc, b.Description)
	}
	if b.Notes != nil {
		t.Errorf("Expected no notes, got %q", *b.Notes)
	}
	if !b.Unread {
		t.Error("Expected unread bookmark")
	}
	if got := sorted(b.TagNames); !slices.Equal(got, []string{"example", "web"}) {
		t.Errorf("Expected tags [example web], got %v", got)
	}
	if b.DateAdded.IsZero() || !b.DateAdded.Equal(b.DateModified) {
		t.Errorf("Expected equal non-zero timestamps, got %v / %v", b.DateAdded, b.DateModified)
	}

	byURL, err := s.Get(ctx, ByURL("https://example.com"))
	if err != nil {
		t.Fatalf("Get by URL failed: %v", err)
	}
	if byURL.ID != id {
		t.Errorf("Expected id %d, got %d", id, byURL.ID)
	}
}

func TestCreateWithoutTags(t *testing.T) {
	s := setupTestDB(t)
	id := mustCreate(t, s, "https://example.com")

	b := mustGet(t, s, id)
	if b.TagNames == nil || len(b.TagNames) != 0 {
		t.Errorf("Expected empty tag list, got %#v", b.TagNames)
	}
}

func TestCreateDuplicateURL(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://example.com")

	_, err := s.Create(context.Background(), model.BookmarkRequest{URL: "https://example.com"})
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestCreateEmptyURL(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.Create(context.Background(), model.BookmarkRequest{Title: "no url"})
	if !errors.Is(err, model.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL, got %v", err)
	}
}

func TestCreateKeepsSuppliedTimestamps(t *testing.T) {
	s := setupTestDB(t)
	added, modified := int64(1577836800), int64(1580515200)

	id, err := s.Create(context.Background(), model.BookmarkRequest{
		URL:          "https://example.com/old",
		DateAdded:    &added,
		DateModified: &modified,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	b := mustGet(t, s, id)
	if b.DateAdded.Unix() != added || b.DateModified.Unix() != modified {
		t.Errorf("Expected %d/%d, got %d/%d", added, modified, b.DateAdded.Unix(), b.DateModified.Unix())
	}
}

func TestGetNotFound(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, ByID(42)); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, ByURL("https://nowhere.test")); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	id := mustCreate(t, s, "https://example.com", "a")
	before := mustGet(t, s, id)

	notes := "read later"
	updated, err := s.Update(ctx, id, model.BookmarkRequest{
		URL:      "https://example.org",
		Title:    "Changed",
		Notes:    &notes,
		Unread:   true,
		TagNames: []string{"b"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.URL != "https://example.org" || updated.Title != "Changed" || !updated.Unread {
		t.Errorf("fields not replaced: %+v", updated)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("Expected notes %q, got %v", notes, updated.Notes)
	}
	if !slices.Equal(updated.TagNames, []string{"b"}) {
		t.Errorf("Expected tags [b], got %v", updated.TagNames)
	}
	if !updated.DateAdded.Equal(before.DateAdded) {
		t.Errorf("date_added changed from %v to %v", before.DateAdded, updated.DateAdded)
	}
	if !updated.DateModified.After(before.DateModified) {
		t.Errorf("date_modified did not advance: %v -> %v", before.DateModified, updated.DateModified)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.Update(context.Background(), 99, model.BookmarkRequest{URL: "https://example.com"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDuplicateURL(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://one.test")
	id := mustCreate(t, s, "https://two.test")

	_, err := s.Update(context.Background(), id, model.BookmarkRequest{URL: "https://one.test"})
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestUpdateCollectsOrphanedTags(t *testing.T) {
	s := setupTestDB(t)
	id := mustCreate(t, s, "https://example.com", "A", "B")

	if _, err := s.Update(context.Background(), id, model.BookmarkRequest{
		URL:      "https://example.com",
		TagNames: []string{"B", "C"},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := tagNames(t, s); !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("Expected tags [B C], got %v", got)
	}
}

func TestSharedTagSurvivesUntilLastReference(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	x := mustCreate(t, s, "https://x.test", "A")
	y := mustCreate(t, s, "https://y.test", "A")

	if _, err := s.Update(ctx, x, model.BookmarkRequest{URL: "https://x.test"}); err != nil {
		t.Fatalf("Update x failed: %v", err)
	}
	if got := tagNames(t, s); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("Expected A to survive, got %v", got)
	}

	if _, err := s.Update(ctx, y, model.BookmarkRequest{URL: "https://y.test"}); err != nil {
		t.Fatalf("Update y failed: %v", err)
	}
	if got := tagNames(t, s); len(got) != 0 {
		t.Errorf("Expected no tags, got %v", got)
	}
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://example.com", "Go", "go")

	if got := tagNames(t, s); !slices.Equal(got, []string{"Go", "go"}) {
		t.Errorf("Expected [Go go], got %v", got)
	}
}

func TestTagNamesMayContainCommas(t *testing.T) {
	s := setupTestDB(t)
	id := mustCreate(t, s, "https://example.com", "a,b", "c")

	if got := sorted(mustGet(t, s, id).TagNames); !slices.Equal(got, []string{"a,b", "c"}) {
		t.Errorf("Expected [a,b c], got %v", got)
	}
	if got := tagNames(t, s); !slices.Equal(got, []string{"a,b", "c"}) {
		t.Errorf("Expected tags [a,b c], got %v", got)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	id := mustCreate(t, s, "https://example.com", "gone", "kept")
	mustCreate(t, s, "https://other.test", "kept")

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, ByID(id)); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if got := tagNames(t, s); !slices.Equal(got, []string{"kept"}) {
		t.Errorf("Expected [kept], got %v", got)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("Second delete should succeed, got %v", err)
	}
	if err := s.Delete(ctx, 12345); err != nil {
		t.Errorf("Deleting unknown id should succeed, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	res, err := s.Check(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Bookmark != nil || res.URL != "https://example.com" {
		t.Errorf("Expected empty result for unknown URL, got %+v", res)
	}

	id := mustCreate(t, s, "https://example.com")
	res, err = s.Check(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Bookmark == nil || res.Bookmark.ID != id {
		t.Errorf("Expected bookmark %d, got %+v", id, res.Bookmark)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := setupTestDB(t)
	first := mustCreate(t, s, "https://1.test")
	second := mustCreate(t, s, "https://2.test")
	third := mustCreate(t, s, "https://3.test")

	got, err := s.List(context.Background(), search.DefaultOptions())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []int64{third, second, first}; !slices.Equal(ids(got), want) {
		t.Errorf("Expected %v, got %v", want, ids(got))
	}
}

func TestListTagsAreORed(t *testing.T) {
	s := setupTestDB(t)
	a := mustCreate(t, s, "https://a.test", "A")
	b := mustCreate(t, s, "https://b.test", "B")
	mustCreate(t, s, "https://c.test", "C")

	got, err := s.List(context.Background(), search.Options{Q: "#A #B", Limit: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []int64{b, a}; !slices.Equal(ids(got), want) {
		t.Errorf("Expected %v, got %v", want, ids(got))
	}
}

func TestListKeepsAllTagsOfMatches(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://a.test", "A", "other")

	got, err := s.List(context.Background(), search.Options{Q: "#A"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || !slices.Equal(sorted(got[0].TagNames), []string{"A", "other"}) {
		t.Errorf("Expected one bookmark tagged [A other], got %+v", got)
	}
}

func TestListTagAndTextIntersect(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	notes := "zeta"

	x, err := s.Create(ctx, model.BookmarkRequest{URL: "https://x.test", Notes: &notes, TagNames: []string{"A"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Create(ctx, model.BookmarkRequest{URL: "https://y.test", Notes: &notes}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	mustCreate(t, s, "https://z.test", "A")

	got, err := s.List(ctx, search.Options{Q: "#A zeta", Limit: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(got), []int64{x}) {
		t.Errorf("Expected only %d, got %v", x, ids(got))
	}
}

func TestListFullText(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	id, err := s.Create(ctx, model.BookmarkRequest{URL: "https://tokio.rs", Title: "Tokio async runtime"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	mustCreate(t, s, "https://example.com")

	got, err := s.List(ctx, search.Options{Q: "runtime"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(got), []int64{id}) {
		t.Errorf("Expected [%d], got %v", id, ids(got))
	}

	if _, err := s.Update(ctx, id, model.BookmarkRequest{URL: "https://tokio.rs", Title: "Tokio scheduler"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = s.List(ctx, search.Options{Q: "runtime"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected stale index entry to be gone, got %v", ids(got))
	}
}

func TestListUnreadOnly(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	mustCreate(t, s, "https://read.test")
	unread, err := s.Create(ctx, model.BookmarkRequest{URL: "https://unread.test", Unread: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.List(ctx, search.Options{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(got), []int64{unread}) {
		t.Errorf("Expected [%d], got %v", unread, ids(got))
	}
}

func TestListPagination(t *testing.T) {
	s := setupTestDB(t)
	var created []int64
	for i := 0; i < 5; i++ {
		created = append(created, mustCreate(t, s, fmt.Sprintf("https://%d.test", i)))
	}
	slices.Reverse(created)
	ctx := context.Background()

	page, err := s.List(ctx, search.Options{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(page), created[2:4]) {
		t.Errorf("Expected %v, got %v", created[2:4], ids(page))
	}

	rest, err := s.List(ctx, search.Options{Offset: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(rest), created[3:]) {
		t.Errorf("Expected %v, got %v", created[3:], ids(rest))
	}
}

func TestListMalformedTextQuery(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://example.com")

	if _, err := s.List(context.Background(), search.Options{Q: `"unterminated`}); err == nil {
		t.Error("Expected an error for a malformed full-text query")
	}
}

func TestCount(t *testing.T) {
	s := setupTestDB(t)
	mustCreate(t, s, "https://1.test")
	mustCreate(t, s, "https://2.test")

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pins.db")
	s, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	id := mustCreate(t, s, "https://example.com", "kept")
	s.Close()

	s, err = NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if b := mustGet(t, s, id); !slices.Equal(b.TagNames, []string{"kept"}) {
		t.Errorf("Expected tags [kept], got %v", b.TagNames)
	}
}

func TestMemoryDatabase(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()

	id := mustCreate(t, s, "https://example.com", "mem")
	got, err := s.List(context.Background(), search.Options{Q: "#mem"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids(got), []int64{id}) {
		t.Errorf("Expected [%d], got %v", id, ids(got))
	}
}
