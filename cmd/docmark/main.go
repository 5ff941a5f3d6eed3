package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark/cmd/docmark/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docmark: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &bootstrap.Options{}

	root := &cobra.Command{
		Use:   "docmark",
		Short: "Compile extended markdown documents into HTML",
		Long: `docmark compiles markdown with include directives, token placeholders
and legacy headings into HTML, and records the files each document
depends on so incremental builds know what to rebuild.

Examples:
  docmark compile --base-dir docs --out site
  docmark render guide/intro.md --token product=Docmark
  docmark affected shared/note.md --db file:deps.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.BaseDir, "base-dir", ".", "Base directory anchoring document paths")
	flags.StringVar(&opts.TemplateDir, "template-dir", "", "Template directory passed to customizers")
	flags.StringSliceVar(&opts.FallbackFolders, "fallback", nil, "Fallback folders searched for includes, in order")
	flags.StringToStringVar(&opts.Tokens, "token", nil, "Placeholder replacement as name=value")
	flags.BoolVar(&opts.Legacy, "legacy", false, "Use the legacy dialect")
	flags.BoolVar(&opts.RawHTML, "raw-html", false, "Pass inline HTML through to the output")
	flags.BoolVar(&opts.NoSourceInfo, "no-source-info", false, "Do not export source line attributes")
	flags.StringVar(&opts.DatabaseDSN, "db", "", "Dependency store DSN; enables dependency tracking")
	flags.StringVar(&opts.DatabaseDriver, "db-driver", "sqlite3", "Dependency store driver (sqlite3, postgres)")
	flags.StringVar(&opts.LogProvider, "log-provider", "", "Logging provider (console, gologger); empty disables logging")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "Logging level")
	flags.StringVar(&opts.LogFormat, "log-format", "", "go-logger format (json, console, pretty)")

	root.AddCommand(
		newCompileCommand(opts),
		newRenderCommand(opts),
		newAffectedCommand(opts),
	)
	return root
}
