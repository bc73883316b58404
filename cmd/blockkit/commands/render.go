package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/livetemplate/blockkit"
	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/config"
	"github.com/livetemplate/blockkit/internal/logging"
)

func newRenderCmd() *cobra.Command {
	var (
		output     string
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a page with every block in its initial state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.LoadFromDir(filepath.Dir(args[0]))
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return render(args[0], cfg, w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: blockkit.yaml next to the page)")
	return cmd
}

// render decorates one page. Output is deterministic for a given input.
func render(path string, cfg *config.Config, w io.Writer) error {
	page, err := blockkit.ParseFile(path)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	html := page.Render(blockkit.RenderOptions{
		Registry: blocks.NewRegistry(),
		Env: blocks.Env{
			Options: cfg.BlockOptions(),
			Logger:  logger,
		},
	})
	if _, err := io.WriteString(w, html); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
