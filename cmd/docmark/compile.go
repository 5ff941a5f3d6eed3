package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/cmd/docmark/internal/bootstrap"
)

func newCompileCommand(opts *bootstrap.Options) *cobra.Command {
	var (
		directory string
		pattern   string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "compile [document...]",
		Short: "Compile documents and record their dependencies",
		Long: `Compile the named documents, or every document below --dir matching
--pattern when none are named. Rendered HTML is written under --out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleBuilder(*opts)
			if err != nil {
				return err
			}
			defer module.Close()

			var (
				summary docmark.CompileSummary
				runErr  error
			)
			if len(args) == 0 {
				summary, runErr = module.CompileDirectory(cmd.Context(), directory, pattern)
			} else {
				for _, path := range args {
					outcome, err := module.CompileDocument(cmd.Context(), path)
					if outcome.Path == "" {
						outcome.Path = path
					}
					if err != nil {
						outcome.Err = err
						summary.Failed++
						runErr = err
					} else {
						summary.Compiled++
						summary.Diagnostics += len(outcome.Diagnostics)
						summary.Dependencies += len(outcome.Dependencies)
					}
					summary.Documents = append(summary.Documents, outcome)
				}
			}

			if err := writeSummary(cmd.OutOrStdout(), format, summary); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "Directory receiving rendered HTML")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent compilations (0 uses GOMAXPROCS)")
	cmd.Flags().StringVar(&directory, "dir", "", "Directory to compile, relative to the base directory")
	cmd.Flags().StringVar(&pattern, "pattern", "*.md", "File name glob selecting documents")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func writeSummary(w io.Writer, format string, summary docmark.CompileSummary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "text", "":
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	for _, doc := range summary.Documents {
		if doc.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", doc.Path, doc.Err)
			continue
		}
		line := "ok   " + doc.Path
		if doc.Output != "" {
			line += " -> " + doc.Output
		}
		fmt.Fprintln(w, line)
		for _, diag := range doc.Diagnostics {
			fmt.Fprintf(w, "     %s\n", diag)
		}
	}
	fmt.Fprintf(w, "%d compiled, %d failed, %d diagnostics\n", summary.Compiled, summary.Failed, summary.Diagnostics)
	return nil
}
