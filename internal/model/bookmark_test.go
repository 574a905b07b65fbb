package model

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"https://example.com", nil},
		{"abcde", nil},
		{"", ErrInvalidURL},
		{"   ", ErrInvalidURL},
	}
	for _, tt := range tests {
		r := BookmarkRequest{URL: tt.url}
		if err := r.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("Validate(%q) = %v, want %v", tt.url, err, tt.want)
		}
	}
}

func TestSplitTagNames(t *testing.T) {
	if got := SplitTagNames(""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
	got := SplitTagNames("a\x1fb,c\x1fd")
	if len(got) != 3 || got[0] != "a" || got[1] != "b,c" || got[2] != "d" {
		t.Errorf("unexpected split: %v", got)
	}
}

func TestRequestKeepsTimestamps(t *testing.T) {
	added := time.Unix(1700000000, 0)
	b := &Bookmark{
		URL:          "https://example.com",
		Title:        "Example",
		Unread:       true,
		TagNames:     []string{"go"},
		DateAdded:    added,
		DateModified: added.Add(time.Hour),
	}
	req := b.Request()
	if *req.DateAdded != 1700000000 {
		t.Errorf("DateAdded = %d", *req.DateAdded)
	}
	if *req.DateModified != 1700003600 {
		t.Errorf("DateModified = %d", *req.DateModified)
	}
	req.TagNames[0] = "changed"
	if !b.HasTag("go") {
		t.Error("Request must copy tag names")
	}
}
