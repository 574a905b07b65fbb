package interchange

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bunchhieng/pins/internal/model"
	"github.com/microcosm-cc/bluemonday"
)

var netscapeTemplate = template.Must(template.New("netscape").Funcs(template.FuncMap{
	"join":  strings.Join,
	"label": label,
	"note":  note,
}).Parse(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
{{- range .}}
<DT><A HREF="{{.URL}}" ADD_DATE="{{.DateAdded.Unix}}" LAST_MODIFIED="{{.DateModified.Unix}}"{{if .Unread}} TOREAD="1"{{end}} TAGS="{{join .TagNames ","}}">{{label .}}</A>
{{- with note .}}
<DD>{{.}}
{{- end}}
{{- end}}
</DL><p>
`))

func label(b *model.Bookmark) string {
	if b.Title != "" {
		return b.Title
	}
	return b.URL
}

// note joins the description and notes with a blank line.
func note(b *model.Bookmark) string {
	var parts []string
	for _, p := range []*string{b.Description, b.Notes} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WriteNetscape renders bookmarks as a Netscape bookmark file, the format
// browsers and most bookmark services import.
func WriteNetscape(w io.Writer, bookmarks []*model.Bookmark) error {
	if err := netscapeTemplate.Execute(w, bookmarks); err != nil {
		return fmt.Errorf("render bookmark file: %w", err)
	}
	return nil
}

// ReadNetscape parses a Netscape bookmark file. Each DT anchor is one
// bookmark; a DD right after it becomes the description with any markup
// removed. Folders are ignored.
func ReadNetscape(r io.Reader) ([]model.BookmarkRequest, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmark file: %w", err)
	}

	policy := bluemonday.StrictPolicy()
	var (
		reqs    []model.BookmarkRequest
		current *model.BookmarkRequest
	)
	doc.Find("dt a,dd").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "a":
			href, ok := s.Attr("href")
			if !ok {
				current = nil
				return
			}
			reqs = append(reqs, model.BookmarkRequest{
				URL:          href,
				Title:        strings.TrimSpace(s.Text()),
				Unread:       s.AttrOr("toread", "") == "1",
				TagNames:     splitTags(s.AttrOr("tags", "")),
				DateAdded:    unixAttr(s, "add_date"),
				DateModified: unixAttr(s, "last_modified"),
			})
			current = &reqs[len(reqs)-1]
		case "dd":
			if current == nil {
				return
			}
			markup, err := s.Html()
			if err != nil {
				markup = html.EscapeString(s.Text())
			}
			text := strings.TrimSpace(html.UnescapeString(policy.Sanitize(markup)))
			current.Description = model.StringPtr(text)
			current = nil
		}
	})
	return reqs, nil
}

func splitTags(attr string) []string {
	var tags []string
	for _, t := range strings.Split(attr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func unixAttr(s *goquery.Selection, name string) *int64 {
	v, ok := s.Attr(name)
	if !ok {
		return nil
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return nil
	}
	return &secs
}
