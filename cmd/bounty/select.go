package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hiveline/bounty/internal/controller"
	"github.com/hiveline/bounty/internal/types"
)

var selectCmd = &cobra.Command{
	Use:   "select <bounty-id>",
	Short: "Choose a matched candidate (or reject them all)",
	Long: `Pick one of the candidates matched to a pending bounty. Choosing a
candidate creates the remote job, confirms the match, and marks the bounty
claimed. Choice 0 rejects all candidates and returns the bounty to open.

Service requirements come from --requirements (a JSON object, or free text
wrapped verbatim), or from interactive prompts when the candidate declares
a requirement schema.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bountyID := args[0]
		choice, _ := cmd.Flags().GetInt("choice")
		requirementsFlag, _ := cmd.Flags().GetString("requirements")

		ctrl := newController()

		if choice < 0 {
			if !isInteractive() {
				FatalErrorWithHint("no candidate chosen",
					"pass --choice N (or --choice 0 to reject all candidates)")
			}
			candidates, err := ctrl.Candidates(cmd.Context(), bountyID)
			if err != nil {
				FatalError("%v", err)
			}
			if err := interactiveSelect(cmd, ctrl, bountyID, candidates); err != nil {
				FatalError("%v", err)
			}
			return
		}

		if err := ctrl.Select(cmd.Context(), bountyID, choice, requirementResolver(requirementsFlag)); err != nil {
			FatalError("%v", err)
		}
		printSelectOutcome(bountyID, choice)
	},
}

func init() {
	selectCmd.Flags().Int("choice", -1, "1-based candidate index, 0 to reject all")
	selectCmd.Flags().String("requirements", "", "service requirements (JSON object or free text)")
}

func printSelectOutcome(bountyID string, choice int) {
	if choice == 0 {
		fmt.Printf("Rejected all candidates; bounty %s is open for rematching.\n", bountyID)
		return
	}
	fmt.Printf("Confirmed candidate %d; bounty %s is claimed.\n", choice, bountyID)
}

// interactiveSelect prompts for a candidate choice and drives the selection.
func interactiveSelect(cmd *cobra.Command, ctrl *controller.Controller, bountyID string, candidates []types.Candidate) error {
	options := []huh.Option[int]{
		huh.NewOption("Reject all candidates (rematch)", 0),
	}
	for i := range candidates {
		c := &candidates[i]
		label := c.OfferingName()
		if label == "" {
			label = fmt.Sprintf("candidate %s", c.ID)
		}
		if price := c.PriceDisplay(); price != "" {
			label += " (" + price + ")"
		}
		options = append(options, huh.NewOption(label, i+1))
	}

	var choice int
	if err := huh.NewSelect[int]().
		Title("Choose a candidate").
		Options(options...).
		Value(&choice).
		Run(); err != nil {
		return err
	}

	requirementsFlag, _ := cmd.Flags().GetString("requirements")
	if err := ctrl.Select(cmd.Context(), bountyID, choice, requirementResolver(requirementsFlag)); err != nil {
		return err
	}
	printSelectOutcome(bountyID, choice)
	return nil
}

// requirementResolver decides where the service requirements come from, in
// priority order: the --requirements flag, an interactive schema-driven
// prompt, then the candidate's free-text requirements field.
func requirementResolver(flagValue string) controller.RequirementResolver {
	return func(c *types.Candidate) (map[string]any, error) {
		if strings.TrimSpace(flagValue) != "" {
			return types.ParseRequirements(flagValue), nil
		}
		if c.RequirementSchema != nil && isInteractive() {
			return controller.ResolveFromSchema(c.RequirementSchema, promptRequirement)
		}
		return types.ParseRequirements(c.RequirementsText()), nil
	}
}

// promptRequirement asks for one schema-declared requirement value.
func promptRequirement(name string, prop types.RequirementProperty, required bool) (string, error) {
	title := name
	if required {
		title += " (required)"
	}
	var value string
	input := huh.NewInput().
		Title(title).
		Description(prop.Description).
		Value(&value)
	if required {
		input = input.Validate(nonEmpty(name))
	}
	if err := input.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
