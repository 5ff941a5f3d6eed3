package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docmark/cmd/docmark/internal/bootstrap"
)

func newAffectedCommand(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "affected <file...>",
		Short: "List documents that depend on the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleBuilder(*opts)
			if err != nil {
				return err
			}
			defer module.Close()

			docs, err := module.AffectedDocuments(cmd.Context(), args...)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				fmt.Fprintln(cmd.OutOrStdout(), doc)
			}
			return nil
		},
	}
}
