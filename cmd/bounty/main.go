// Command bounty is a poster-side CLI for the remote bounty marketplace:
// post bounties, poll match status, pick a candidate, and keep the local
// cache (registry, keychain secret, scheduler watch files) in sync with the
// platform.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hiveline/bounty/internal/acp"
	"github.com/hiveline/bounty/internal/controller"
	"github.com/hiveline/bounty/internal/debug"
	"github.com/hiveline/bounty/internal/registry"
	"github.com/hiveline/bounty/internal/scheduler"
	"github.com/hiveline/bounty/internal/secrets"
)

var (
	bountyDir  string
	jsonOutput bool
	verbose    bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	envOnce sync.Once
)

var rootCmd = &cobra.Command{
	Use:   "bounty",
	Short: "Post and manage service bounties",
	Long: `bounty posts service bounties to the remote marketplace and tracks
them locally: a JSON registry, a keychain entry holding the poster secret,
and a watch file per active bounty so the external scheduler knows to keep
polling. Terminal bounties (fulfilled, expired, rejected) are cleaned up
from all three stores automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verbose)
	},
}

// bindRootEnv wires the process-wide environment overrides exactly once.
func bindRootEnv() {
	envOnce.Do(func() {
		_ = viper.BindEnv("api_url", "BOUNTY_API_URL")
		_ = viper.BindEnv("dir", "BOUNTY_DIR")
	})
}

// resolveDir picks the bounty state directory: --dir flag, then BOUNTY_DIR,
// then ~/.bounty.
func resolveDir() string {
	bindRootEnv()
	if bountyDir != "" {
		return bountyDir
	}
	if dir := viper.GetString("dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		FatalError("cannot determine home directory: %v", err)
	}
	return filepath.Join(home, ".bounty")
}

// newController wires the controller with its real collaborators.
func newController() *controller.Controller {
	bindRootEnv()
	dir := resolveDir()
	reg := registry.New(dir)
	sched := scheduler.New(dir, reg.HasActive)
	client := acp.NewClient(viper.GetString("api_url"))
	ctrl := controller.New(reg, secrets.New(), sched, client)
	ctrl.Warnf = WarnError
	return ctrl
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	rootCmd.PersistentFlags().StringVar(&bountyDir, "dir", "", "bounty state directory (default ~/.bounty, env BOUNTY_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(rootCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
