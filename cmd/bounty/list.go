package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hiveline/bounty/internal/registry"
	"github.com/hiveline/bounty/internal/types"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	openStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	claimedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	terminalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List locally-known bounties",
	Run: func(cmd *cobra.Command, args []string) {
		reg := registry.New(resolveDir())
		bounties, err := reg.List()
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(bounties)
			return
		}

		if len(bounties) == 0 {
			fmt.Println("No bounties. Post one with 'bounty create'.")
			return
		}

		fmt.Printf("%s\n", headerStyle.Render(fmt.Sprintf("%-14s %-14s %-10s %-8s %s", "ID", "STATUS", "CATEGORY", "BUDGET", "TITLE")))
		for _, b := range bounties {
			fmt.Printf("%-14s %-14s %-10s %-8s %s\n",
				b.BountyID,
				statusStyle(b.Status).Render(string(b.Status)),
				b.Category,
				strconv.FormatFloat(b.Budget, 'f', -1, 64),
				b.Title,
			)
		}
	},
}

func statusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusOpen:
		return openStyle
	case types.StatusPendingMatch:
		return pendingStyle
	case types.StatusClaimed:
		return claimedStyle
	}
	return terminalStyle
}
