package assets

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		contains    string
	}{
		{"blockkit.js", "application/javascript; charset=utf-8", "data-on"},
		{"blockkit.css", "text/css; charset=utf-8", ".carousel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ct, err := Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, ct)
			assert.Contains(t, string(data), tt.contains)
		})
	}
}

func TestGet_Invalid(t *testing.T) {
	for _, name := range []string{"", "missing.js", "../assets.go", "/blockkit.js"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Get(name)
			assert.Error(t, err)
		})
	}
}

// The client must understand every attribute and action the decorators emit.
func TestClientProtocol(t *testing.T) {
	data, _, err := Get("blockkit.js")
	require.NoError(t, err)
	js := string(data)
	for _, want := range []string{
		"data-live", "data-on", "data-index", "data-prevent", "data-prevent-keys",
		"data-listen", "data-tool", "data-breakpoint", "data-body-class",
		"data-observe", "data-layout", "data-layout-container", "data-layout-item",
		"doc-keydown", "doc-click", "viewport", "visible", "layout",
		"showModal", "\":body\"", "/ws?page=", "reload",
	} {
		assert.True(t, strings.Contains(js, want), "client is missing %q", want)
	}
}

func TestClientFS(t *testing.T) {
	fsys := ClientFS()
	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"blockkit.css", "blockkit.js"}, names)
}
