package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hiveline/bounty/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status <bounty-id>",
	Short: "Check one bounty against the remote platform",
	Long: `Sync and fetch the remote status of a single bounty. A terminal
status purges the local state; pending_match lists the matched candidates
and, on a terminal, offers to select one right away.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bountyID := args[0]
		ctrl := newController()
		res, err := ctrl.Status(cmd.Context(), bountyID)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(res)
			return
		}

		if res.Cleaned {
			fmt.Printf("Bounty %s is %s; local state cleaned up.\n", bountyID, res.Status)
			return
		}

		fmt.Printf("Bounty %s: %s\n", bountyID, res.Status)
		if res.Status != types.StatusPendingMatch {
			return
		}

		printCandidates(res.Candidates)
		if !isInteractive() {
			fmt.Printf("Run 'bounty select %s' to pick a candidate.\n", bountyID)
			return
		}

		var selectNow bool
		if err := huh.NewConfirm().
			Title("Select a candidate now?").
			Value(&selectNow).
			Run(); err != nil || !selectNow {
			return
		}
		if err := interactiveSelect(cmd, ctrl, bountyID, res.Candidates); err != nil {
			FatalError("%v", err)
		}
	},
}

func printCandidates(candidates []types.Candidate) {
	fmt.Printf("%d candidate(s) matched:\n", len(candidates))
	for i := range candidates {
		c := &candidates[i]
		line := fmt.Sprintf("  %d. %s", i+1, c.OfferingName())
		if price := c.PriceDisplay(); price != "" {
			line += " (" + price + ")"
		}
		if wallet := c.WalletAddress(); wallet != "" {
			line += " — " + wallet
		}
		fmt.Println(line)
	}
}
