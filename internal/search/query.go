// Package search turns the hybrid "#tag free text" query syntax into
// filtered, paginated bookmark selects.
package search

import "strings"

// TagSigil marks a query token as a tag name.
const TagSigil = "#"

// Query is a parsed search string.
type Query struct {
	TagNames []string
	Text     []string
}

// Parse splits raw on whitespace. Tokens starting with "#" become tag names
// with the sigil removed; everything else is kept verbatim as text.
func Parse(raw string) Query {
	q := Query{TagNames: []string{}, Text: []string{}}
	for _, tok := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(tok, TagSigil); ok {
			q.TagNames = append(q.TagNames, name)
			continue
		}
		q.Text = append(q.Text, tok)
	}
	return q
}

// IsEmpty reports whether the query has neither tags nor text.
func (q Query) IsEmpty() bool {
	return len(q.TagNames) == 0 && len(q.Text) == 0
}

// MatchExpr is the full-text expression built from the text tokens.
func (q Query) MatchExpr() string {
	return strings.Join(q.Text, " ")
}

// String renders the query back into its textual form.
func (q Query) String() string {
	parts := make([]string, 0, len(q.TagNames)+len(q.Text))
	for _, t := range q.TagNames {
		parts = append(parts, TagSigil+t)
	}
	parts = append(parts, q.Text...)
	return strings.Join(parts, " ")
}
