package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <bounty-id>",
	Short: "Purge all local state for a bounty",
	Long: `Unconditionally remove a bounty's registry entry, keychain secret,
and watch file, and deregister the scheduler job if nothing active remains.
Individual failures are tolerated; the remote bounty is not touched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		if err := ctrl.Cleanup(cmd.Context(), args[0]); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("Cleaned up local state for %s\n", args[0])
	},
}
