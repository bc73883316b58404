package blockkit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
)

// Frontmatter represents the YAML frontmatter at the top of a markdown file.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	// Index controls whether the page is listed in the search index.
	Index *bool `yaml:"index"`
}

// Indexed reports whether the page belongs in the search index (default: true).
func (fm *Frontmatter) Indexed() bool {
	return fm == nil || fm.Index == nil || *fm.Index
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(),
	),
)

// ParseMarkdown parses a markdown document into its frontmatter and a body
// fragment. Tables whose first header cell is a block label ("Carousel
// (autoplay)") and whose other header cells are empty become block markup;
// every block gets a data-block-id of the form <name>-<n>.
func ParseMarkdown(src []byte) (*Frontmatter, *html.Node, error) {
	fm, body, offset, err := extractFrontmatter(src)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, nil, NewParseError("", offset+1, fmt.Sprintf("failed to render markdown: %v", err))
	}

	root, err := parseBody(buf.String())
	if err != nil {
		return nil, nil, err
	}
	blockifyTables(root)
	if err := assignBlockIDs(root, body, offset); err != nil {
		return nil, nil, err
	}
	return fm, root, nil
}

// ParseHTML parses block markup authored directly as HTML.
func ParseHTML(src []byte) (*html.Node, error) {
	root, err := parseBody(string(src))
	if err != nil {
		return nil, err
	}
	if err := assignBlockIDs(root, src, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func parseBody(s string) (*html.Node, error) {
	nodes, err := dom.ParseFragment(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	root := dom.Element("main")
	return dom.Append(root, nodes...), nil
}

// extractFrontmatter extracts YAML frontmatter from the beginning of content.
// It returns the parsed frontmatter, the remaining content and the number of
// lines the frontmatter occupied.
func extractFrontmatter(src []byte) (*Frontmatter, []byte, int, error) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return &Frontmatter{}, src, 0, nil
	}

	if bytes.HasPrefix(src[4:], []byte("---")) {
		return &Frontmatter{}, bytes.TrimPrefix(src[7:], []byte("\n")), 2, nil
	}
	endIdx := bytes.Index(src[4:], []byte("\n---"))
	if endIdx == -1 {
		return nil, nil, 0, NewParseError("", 1, "unclosed frontmatter").
			WithHint("close the frontmatter with a line containing only ---")
	}

	yamlContent := src[4 : 4+endIdx]
	rest := src[4+endIdx+4:]
	rest = bytes.TrimPrefix(rest, []byte("\n"))
	lines := bytes.Count(src[:len(src)-len(rest)], []byte("\n"))

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlContent, &fm); err != nil {
		return nil, nil, 0, NewParseError("", yamlErrorLine(err)+1, fmt.Sprintf("invalid frontmatter: %v", err))
	}
	return &fm, rest, lines, nil
}

// yamlErrorLine extracts the line from "yaml: line N: ..." messages.
func yamlErrorLine(err error) int {
	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return 1
	}
	end := strings.IndexByte(msg[i+5:], ':')
	if end < 0 {
		return 1
	}
	n, convErr := strconv.Atoi(msg[i+5 : i+5+end])
	if convErr != nil {
		return 1
	}
	return n
}

// blockifyTables converts block tables into block markup.
func blockifyTables(root *html.Node) {
	for _, table := range dom.FindAll(root, dom.ByTag("table")) {
		label, ok := blockLabel(table)
		if !ok {
			continue
		}
		name, variants, data := content.ParseLabel(label)
		if name == "" {
			continue
		}
		b := &content.Block{Name: name, Variants: variants, Data: data}
		n := content.ToNode(b)
		if tbody := dom.Find(table, dom.ByTag("tbody")); tbody != nil {
			for _, tr := range dom.Children(tbody) {
				if tr.Data != "tr" {
					continue
				}
				row := dom.Element("div")
				for _, td := range dom.Children(tr) {
					if td.Data != "td" {
						continue
					}
					dom.Append(row, dom.Append(dom.Element("div"), dom.CloneChildren(td)...))
				}
				dom.Append(n, row)
			}
		}
		dom.ReplaceWith(table, n)
	}
}

// blockLabel returns the label of a block table: a single header row whose
// first cell has text and whose remaining cells are empty.
func blockLabel(table *html.Node) (string, bool) {
	thead := dom.Find(table, dom.ByTag("thead"))
	if thead == nil {
		return "", false
	}
	rows := dom.FindAll(thead, dom.ByTag("tr"))
	if len(rows) != 1 {
		return "", false
	}
	cells := dom.FindAll(rows[0], dom.ByTag("th"))
	if len(cells) == 0 {
		return "", false
	}
	label := strings.TrimSpace(dom.TextContent(cells[0]))
	if label == "" {
		return "", false
	}
	for _, c := range cells[1:] {
		if strings.TrimSpace(dom.TextContent(c)) != "" {
			return "", false
		}
	}
	return label, true
}

// assignBlockIDs gives every block without a data-block-id the id
// <name>-<n>, counting per name in document order. Authored ids must be
// unique; src and offset locate a duplicate in the authored text.
func assignBlockIDs(root *html.Node, src []byte, offset int) error {
	counts := make(map[string]int)
	seen := make(map[string]bool)
	blocks := topLevelBlocks(root)
	for _, n := range blocks {
		if id := dom.GetAttr(n, "data-block-id"); id != "" {
			if seen[id] {
				return NewParseError("", offset+lineOf(src, `data-block-id="`+id+`"`, 2), fmt.Sprintf("duplicate block id %q", id)).
					WithHint("every data-block-id on a page must be unique")
			}
			seen[id] = true
		}
	}
	for _, n := range blocks {
		if dom.GetAttr(n, "data-block-id") != "" {
			continue
		}
		name := content.FromNode(n).Name
		if name == "" {
			name = content.MarkerClass
		}
		var id string
		for {
			counts[name]++
			id = name + "-" + strconv.Itoa(counts[name])
			if !seen[id] {
				break
			}
		}
		seen[id] = true
		dom.SetAttr(n, "data-block-id", id)
	}
	return nil
}

// lineOf returns the line of the nth occurrence of needle in src, or 1.
func lineOf(src []byte, needle string, nth int) int {
	pos := 0
	for i := 0; i < nth; i++ {
		j := bytes.Index(src[pos:], []byte(needle))
		if j < 0 {
			return 1
		}
		pos += j
		if i < nth-1 {
			pos += len(needle)
		}
	}
	return bytes.Count(src[:pos], []byte("\n")) + 1
}
