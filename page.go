package blockkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/widget"
)

// ParseFile parses a markdown (.md) or block markup (.html) file and creates
// a Page whose ID is the file name without extension.
func ParseFile(path string) (*Page, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	page, err := parse(id, src, isHTML(path))
	if err != nil {
		return nil, withSource(err, absPath, src)
	}
	page.SourceFile = absPath
	return page, nil
}

// ParseString parses markdown content from a string and creates a Page.
func ParseString(id, src string) (*Page, error) {
	page, err := parse(id, []byte(src), false)
	if err != nil {
		return nil, withSource(err, "", []byte(src))
	}
	return page, nil
}

func parse(id string, src []byte, htmlInput bool) (*Page, error) {
	if htmlInput {
		body, err := ParseHTML(src)
		if err != nil {
			return nil, err
		}
		return newPage(id, nil, body), nil
	}
	fm, body, err := ParseMarkdown(src)
	if err != nil {
		return nil, err
	}
	return newPage(id, fm, body), nil
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// RenderOptions configures Render.
type RenderOptions struct {
	Registry *blocks.Registry
	Env      blocks.Env
}

// renderEpoch is the virtual start time of static renders.
var renderEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Render decorates every block and returns the page body as HTML. Blocks are
// rendered in their initial state; instances are destroyed once their
// markup is built, so Render starts no timers and is deterministic. Blocks
// without a decorator pass through unchanged.
func (p *Page) Render(opts RenderOptions) string {
	if opts.Registry == nil {
		opts.Registry = blocks.NewRegistry()
	}
	env := opts.Env
	if env.Options == (blocks.Options{}) {
		env.Options = blocks.DefaultOptions()
	}
	env.Clock = widget.NewManualClock(renderEpoch)

	body := dom.Clone(p.body)
	for _, n := range topLevelBlocks(body) {
		res := opts.Registry.Decorate(content.FromNode(n), &env)
		if res.Instance != nil {
			res.Instance.Destroy()
		}
		dom.ReplaceWith(n, res.Node)
	}
	return dom.InnerHTML(body)
}
