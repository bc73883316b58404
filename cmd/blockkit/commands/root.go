// Package commands implements the blockkit CLI.
package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the blockkit command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "blockkit",
		Short: "Interactive CMS content blocks, decorated on the server",
		Long: `blockkit turns block tables in Markdown and HTML pages into carousels,
navigation headers, galleries, tabs, accordions, counters and more.

Examples:
  blockkit serve                  # Serve current directory
  blockkit serve ./site --watch   # Serve with live reload
  blockkit render page.md -o out.html
  blockkit blocks . --verbose     # Inventory of blocks per page`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newBlocksCmd(),
		newVersionCmd(version),
	)
	return root
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blockkit version %s\n", version)
		},
	}
}

// siteDir resolves the optional directory argument to an absolute path.
func siteDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory does not exist: %s", dir)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absDir, nil
}

// pageFiles lists the page sources under dir, skipping directories that
// start with _ or . and plain fragments.
func pageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".html", ".htm":
			if !strings.HasSuffix(path, ".plain.html") {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}
