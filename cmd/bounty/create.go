package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hiveline/bounty/internal/types"
)

var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"post"},
	Short:   "Post a new bounty to the marketplace",
	Long: `Post a new bounty. Supply the fields as flags, or run interactively
on a terminal to be prompted for them.

On success the bounty is recorded locally, its poster secret is stored in
the OS keychain, a watch file is written for the external scheduler, and
the recurring poll job is registered (best effort).`,
	Run: func(cmd *cobra.Command, args []string) {
		poster, _ := cmd.Flags().GetString("poster")
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		budget, _ := cmd.Flags().GetFloat64("budget")
		category, _ := cmd.Flags().GetString("category")
		tagsFlag, _ := cmd.Flags().GetString("tags")

		missing := poster == "" || title == "" || description == "" || budget == 0 || category == ""
		if missing {
			if !isInteractive() {
				FatalErrorWithHint("missing required flags",
					"supply --poster, --title, --description, --budget and --category, or run on a terminal for prompts")
			}
			var err error
			poster, title, description, budget, category, tagsFlag, err = createForm(poster, title, description, budget, category, tagsFlag)
			if err != nil {
				FatalError("%v", err)
			}
		}

		cat, err := types.ParseCategory(category)
		if err != nil {
			FatalError("%v", err)
		}

		ctrl := newController()
		b, err := ctrl.Create(cmd.Context(), types.CreateInput{
			PosterName:  poster,
			Title:       title,
			Description: description,
			Budget:      budget,
			Category:    cat,
			Tags:        splitTags(tagsFlag),
		})
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(b)
			return
		}
		fmt.Printf("Created bounty %s (%s, budget %v)\n", b.BountyID, b.Status, b.Budget)
		if b.SchedulerWatchPath != "" {
			fmt.Printf("Watch file: %s\n", b.SchedulerWatchPath)
		}
	},
}

func init() {
	createCmd.Flags().String("poster", "", "poster name")
	createCmd.Flags().StringP("title", "t", "", "bounty title")
	createCmd.Flags().StringP("description", "d", "", "what the bounty asks for")
	createCmd.Flags().Float64P("budget", "b", 0, "budget (positive number)")
	createCmd.Flags().StringP("category", "c", "", "category: digital or physical")
	createCmd.Flags().String("tags", "", "comma-separated tags")
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// createForm prompts for any fields not already supplied via flags.
func createForm(poster, title, description string, budget float64, category, tags string) (string, string, string, float64, string, string, error) {
	budgetStr := ""
	if budget != 0 {
		budgetStr = strconv.FormatFloat(budget, 'f', -1, 64)
	}
	if category == "" {
		category = string(types.CategoryDigital)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poster name").
				Value(&poster).
				Validate(nonEmpty("poster name")),

			huh.NewInput().
				Title("Title").
				Placeholder("e.g., Translate whitepaper to Japanese").
				Value(&title).
				Validate(nonEmpty("title")),

			huh.NewText().
				Title("Description").
				Placeholder("What exactly should the provider deliver?").
				Value(&description).
				Validate(nonEmpty("description")),

			huh.NewInput().
				Title("Budget").
				Value(&budgetStr).
				Validate(func(s string) error {
					n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("budget must be a positive number")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Category").
				Options(
					huh.NewOption("Digital", string(types.CategoryDigital)),
					huh.NewOption("Physical", string(types.CategoryPhysical)),
				).
				Value(&category),

			huh.NewInput().
				Title("Tags").
				Description("Comma-separated, optional").
				Value(&tags),
		),
	)

	if err := form.Run(); err != nil {
		return "", "", "", 0, "", "", err
	}
	budget, _ = strconv.ParseFloat(strings.TrimSpace(budgetStr), 64)
	return poster, title, description, budget, category, tags, nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
