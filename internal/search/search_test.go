package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entries = []Entry{
	{Path: "/products/cloud", Title: "Cloud Platform", Description: "Managed hosting"},
	{Path: "/products/data", Title: "Data Services", Description: "Analytics and cloud storage"},
	{Path: "/about", Title: "About us"},
	{Path: "/blog/cloud-costs", Description: "Cutting your bill"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single term", "cloud", []string{"/products/cloud", "/products/data", "/blog/cloud-costs"}},
		{"all terms required", "cloud storage", []string{"/products/data"}},
		{"case insensitive", "ABOUT", []string{"/about"}},
		{"path matches", "blog", []string{"/blog/cloud-costs"}},
		{"no match", "pricing", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range Filter(entries, tt.query, DefaultLimit) {
				got = append(got, e.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterLimit(t *testing.T) {
	var many []Entry
	for i := 0; i < 25; i++ {
		many = append(many, Entry{Path: fmt.Sprintf("/page-%02d", i), Title: "Page"})
	}
	assert.Len(t, Filter(many, "page", 0), DefaultLimit)
	got := Filter(many, "page", 3)
	require.Len(t, got, 3)
	assert.Equal(t, "/page-00", got[0].Path)
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte(`{"total":1,"data":[{"path":"/a","title":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Path: "/a", Title: "A"}}, got)

	got, err = Decode([]byte(` [{"path":"/b"}]`))
	require.NoError(t, err)
	assert.Equal(t, "/b", got[0].DisplayTitle())

	_, err = Decode([]byte(`{"data": 5}`))
	assert.Error(t, err)
}

func TestNewIndexSorts(t *testing.T) {
	idx := NewIndex(entries)
	assert.Equal(t, 4, idx.Total)
	assert.Equal(t, "/about", idx.Data[0].Path)
	assert.Equal(t, "/products/cloud", entries[0].Path, "input is not mutated")
}
