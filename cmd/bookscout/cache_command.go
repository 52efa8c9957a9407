package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Page cache utilities",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "invalidate <path>",
		Short: "Drop a cached page so the next run refetches it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.src.Invalidate(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invalidated %s\n", args[0])
			return nil
		},
	})

	return cacheCmd
}
