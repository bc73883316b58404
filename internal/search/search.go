// Package search holds the site search index: the entries served at
// /query-index.json and the query filter applied to them.
package search

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultLimit is the maximum number of results a query returns.
const DefaultLimit = 10

// DefaultIndexPath is where the index is served and fetched from.
const DefaultIndexPath = "/query-index.json"

// Entry is one searchable page.
type Entry struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Index is the JSON document served at DefaultIndexPath.
type Index struct {
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Data   []Entry `json:"data"`
}

// NewIndex returns an index over entries, sorted by path.
func NewIndex(entries []Entry) *Index {
	data := append([]Entry(nil), entries...)
	sort.Slice(data, func(i, j int) bool { return data[i].Path < data[j].Path })
	return &Index{Total: len(data), Limit: len(data), Data: data}
}

// Decode reads either an index document ({"data": [...]}) or a bare array of
// entries.
func Decode(b []byte) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var entries []Entry
		if err := json.Unmarshal(b, &entries); err != nil {
			return nil, fmt.Errorf("decode search entries: %w", err)
		}
		return entries, nil
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("decode search index: %w", err)
	}
	return idx.Data, nil
}

// Terms splits a query into lower-cased whitespace separated terms.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Filter returns the first limit entries whose title, description and path
// together contain every term of query. An empty query matches nothing.
func Filter(entries []Entry, query string, limit int) []Entry {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var out []Entry
	for _, e := range entries {
		if matches(e, terms) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func matches(e Entry, terms []string) bool {
	text := strings.ToLower(e.Title + " " + e.Description + " " + e.Path)
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// DisplayTitle is the title shown for a result, falling back to the path.
func (e Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Path
}
