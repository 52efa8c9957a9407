package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookscout/internal/filter"
	"bookscout/internal/recommend"
	"bookscout/internal/report"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var flags filterFlags
	var maxResults int
	var minAverageRating float64
	var outputFile string

	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "Recommend books based on what co-readers of your favorites enjoyed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
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

			if !cmd.Flags().Changed("max-results") {
				maxResults = env.cfg.Recommend.MaxResults
			}
			if !cmd.Flags().Changed("min-average-rating") {
				minAverageRating = env.cfg.Recommend.MinAverageRating
			}
			if !cmd.Flags().Changed("output") {
				outputFile = env.cfg.Paths.OutputFile
			}

			engine := recommend.NewEngine(env.src, env.snapshots, recommend.Options{
				ReviewPages:       env.cfg.Recommend.ReviewPages,
				LikedThreshold:    env.cfg.Recommend.LikedThreshold,
				ReviewerMinRating: env.cfg.Recommend.ReviewerMinRating,
			}, env.logger)

			ranked, err := engine.Recommendations(cmd.Context(), userID, minAverageRating)
			if err != nil {
				return err
			}

			builder := report.NewBuilder(env.src, env.cfg.Recommend.ReportShelves, env.logger)
			sink := report.NewSink(outputFile, env.logger)

			rawIDs := make([]string, 0, maxResults)
			for _, entry := range ranked {
				if len(rawIDs) >= maxResults {
					break
				}
				rawIDs = append(rawIDs, entry.BookID)
			}
			rawReports := builder.BuildIDs(cmd.Context(), rawIDs)
			// ranked order is the recommendation, so sections are never
			// resorted
			if err := sink.Append("Raw", rawReports, false); err != nil {
				return err
			}

			if pred == nil {
				printReports(cmd.OutOrStdout(), rawReports)
				return nil
			}

			pipeline := filter.NewPipeline(env.src, env.logger)
			accepted, err := pipeline.Apply(cmd.Context(), ranked, pred, maxResults)
			if err != nil {
				return err
			}
			filtered := builder.BuildEntities(cmd.Context(), accepted)
			if err := sink.Append("Filtered", filtered, false); err != nil {
				return err
			}
			printReports(cmd.OutOrStdout(), filtered)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of recommendations (default from config)")
	cmd.Flags().Float64Var(&minAverageRating, "min-average-rating", 0, "Discard candidates below this average rating (default from config)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report file to append to (default from config)")
	return cmd
}
