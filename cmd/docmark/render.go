package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/cmd/docmark/internal/bootstrap"
)

func newRenderCommand(opts *bootstrap.Options) *cobra.Command {
	var noValidate bool

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render one document to stdout without recording dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleBuilder(*opts)
			if err != nil {
				return err
			}
			defer module.Close()

			path := filepath.ToSlash(args[0])
			source, err := os.ReadFile(filepath.Join(opts.BaseDir, filepath.FromSlash(path)))
			if err != nil {
				return err
			}

			result, err := module.Compile(cmd.Context(), string(source), path, docmark.WithValidation(!noValidate))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.HTML)
			for _, diag := range result.Diagnostics {
				fmt.Fprintln(cmd.ErrOrStderr(), diag)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip token tree validation")
	return cmd
}
