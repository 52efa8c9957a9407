package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookscout/internal/report"
)

func newBookCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "book <book-id>",
		Short: "Show the report for a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			builder := report.NewBuilder(env.src, env.cfg.Recommend.ReportShelves, env.logger)
			reports := builder.BuildIDs(cmd.Context(), args[:1])
			if len(reports) == 0 {
				return fmt.Errorf("could not load book %s", args[0])
			}
			printReports(cmd.OutOrStdout(), reports)
			return nil
		},
	}
}
