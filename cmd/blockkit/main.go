// Command blockkit serves and renders pages built from CMS content blocks.
package main

import (
	"fmt"
	"os"

	"github.com/livetemplate/blockkit/cmd/blockkit/commands"
)

const version = "0.1.0-dev"

func main() {
	if err := commands.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
