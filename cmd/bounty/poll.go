package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Reconcile all local bounties against the remote platform",
	Long: `Fetch the remote match status for every locally-known bounty.
Terminal bounties (fulfilled, expired, rejected) are purged from the local
registry, keychain, and watch directory. If nothing active remains, the
recurring scheduler job is deregistered.

This is the command the external scheduler runs on its recurring job.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctrl := newController()
		report, err := ctrl.Poll(cmd.Context())
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(report)
			return
		}

		fmt.Printf("Checked %d bounties\n", report.Checked)
		for _, p := range report.PendingMatch {
			fmt.Printf("  %s: pending match with %d candidate(s) — run 'bounty select %s'\n", p.BountyID, p.Candidates, p.BountyID)
		}
		for _, id := range report.Cleaned {
			fmt.Printf("  %s: finished, local state cleaned up\n", id)
		}
		for _, e := range report.Errors {
			WarnError("%s: %s", e.BountyID, e.Err)
		}
	},
}
