package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Score snapshot utilities",
	}

	snapshotCmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user's score snapshot to force recomputation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			env, err := ctx.newEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.snapshots.Delete(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot for user %d\n", userID)
			return nil
		},
	})

	return snapshotCmd
}
