package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// demoFiles is a tiny Node.js project with deliberate failures: a
// crashing main file and a script that exits non-zero.
var demoFiles = map[string]string{
	"package.json": `{
  "name": "sentinel-demo",
  "version": "1.0.0",
  "scripts": {
    "start": "node index.js",
    "broken": "node missing.js"
  }
}
`,
	"index.js": `const config = undefined;
console.log("starting demo app");
console.log(config.port); // TypeError: cannot read properties of undefined
`,
}

func newDemoCmd() *cobra.Command {
	opts := &rootOptions{format: "markdown", assumeYes: true}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run sentinel against a built-in sample buggy project",
		Long:  "Materializes a small Node.js project with known bugs into a temporary directory and analyzes it, so you can see what a report looks like without pointing sentinel at your own code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.MkdirTemp("", "sentinel-demo-")
			if err != nil {
				return fmt.Errorf("creating demo project: %w", err)
			}
			defer os.RemoveAll(dir)

			for name, content := range demoFiles {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
					return fmt.Errorf("writing demo file %s: %w", name, err)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing demo project in %s\n\n", dir)
			return runAnalysis(cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "Report format: markdown or json")

	return cmd
}
