package main

import (
	"errors"

	"github.com/spf13/cobra"

	"bookscout/internal/lists"
	"bookscout/internal/report"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags filterFlags
	var listNames []string
	var shelfNames []string
	var bookIDs []string
	var sectionName string
	var outputFile string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Filter books collected from lists, shelves, or explicit ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(listNames) == 0 && len(shelfNames) == 0 && len(bookIDs) == 0 {
				return errors.New("nothing to scan: pass --list, --shelf, or --book")
			}

			pred, err := flags.predicate()
			if err != nil {
				return err
			}

			env, err := ctx.newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			if !cmd.Flags().Changed("output") {
				outputFile = env.cfg.Paths.OutputFile
			}

			builder := report.NewBuilder(env.src, env.cfg.Recommend.ReportShelves, env.logger)
			scanner := lists.NewScanner(env.src, builder, env.cfg.Scan.ListPages, env.logger)

			reports, err := scanner.Scan(cmd.Context(), lists.Sources{
				BookIDs: bookIDs,
				Lists:   listNames,
				Shelves: shelfNames,
			}, pred)
			if err != nil {
				return err
			}

			sink := report.NewSink(outputFile, env.logger)
			if err := sink.Append(sectionName, reports, true); err != nil {
				return err
			}

			report.Sort(reports)
			printReports(cmd.OutOrStdout(), reports)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&listNames, "list", nil, "Curated list to collect books from (repeatable)")
	cmd.Flags().StringArrayVar(&shelfNames, "shelf", nil, "Public shelf to collect books from (repeatable)")
	cmd.Flags().StringArrayVar(&bookIDs, "book", nil, "Explicit book id to include (repeatable)")
	cmd.Flags().StringVar(&sectionName, "name", "Scan", "Section name in the report file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report file to append to (default from config)")
	return cmd
}
