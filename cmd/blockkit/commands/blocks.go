package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/livetemplate/blockkit"
	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/content"
)

func newBlocksCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "blocks [directory]",
		Short: "List the blocks on every page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := siteDir(args)
			if err != nil {
				return err
			}
			return inspectBlocks(dir, verbose, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show rows and options of each block")
	return cmd
}

type fileBlockInfo struct {
	file   string
	blocks []*content.Block
}

func inspectBlocks(dir string, verbose bool, out io.Writer) error {
	files, err := pageFiles(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "🔍 Inspecting blocks in: %s\n\n", dir)

	registry := blocks.NewRegistry()
	var (
		infos   []fileBlockInfo
		total   int
		unknown int
		byName  = make(map[string]int)
	)
	for _, path := range files {
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			relPath = path
		}
		page, err := blockkit.ParseFile(path)
		if err != nil {
			fmt.Fprintf(out, "⚠️  %s: Failed to parse:\n%v\n\n", relPath, err)
			continue
		}
		bs := page.Blocks()
		if len(bs) == 0 {
			continue
		}
		infos = append(infos, fileBlockInfo{file: filepath.ToSlash(relPath), blocks: bs})
		for _, b := range bs {
			total++
			byName[b.Name]++
			if _, ok := registry.Lookup(b.Name); !ok {
				unknown++
			}
		}
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No blocks found.")
		return nil
	}

	for _, fb := range infos {
		fmt.Fprintf(out, "%s:\n", fb.file)
		for _, b := range fb.blocks {
			printBlock(out, registry, b, verbose)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprint(out, strings.Repeat("─", 60)+"\n")
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  Total blocks: %d\n", total)
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %d\n", name, byName[name])
	}
	if unknown > 0 {
		fmt.Fprintf(out, "  Without decorator: %d\n", unknown)
	}
	return nil
}

func printBlock(out io.Writer, registry *blocks.Registry, b *content.Block, verbose bool) {
	kind := b.Name
	if len(b.Variants) > 0 {
		kind += ", " + strings.Join(b.Variants, ", ")
	}
	marker := ""
	if _, ok := registry.Lookup(b.Name); !ok {
		marker = " [no decorator]"
	}
	fmt.Fprintf(out, "  %s (%s)%s\n", b.ID, kind, marker)
	if !verbose {
		return
	}

	fmt.Fprintf(out, "    Rows: %d\n", b.Len())
	if len(b.Data) > 0 {
		keys := make([]string, 0, len(b.Data))
		for k := range b.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "    %s: %s\n", k, b.Data[k])
		}
	}
	for i, row := range b.Rows {
		var cells []string
		for _, c := range row.Cells {
			cells = append(cells, truncateString(c.Text()))
		}
		fmt.Fprintf(out, "    %d: %s\n", i+1, strings.Join(cells, " | "))
	}
}

// truncateString shortens s to 40 runes for table output.
func truncateString(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return s
}
