// Package scheduler registers and removes the recurring poll job with the
// external machine scheduler. Registration is idempotent: the persisted job
// id in the metadata file makes repeated Ensure calls no-ops, and removal
// is refused while any non-terminal bounty remains.
//
// The integration shells out through two command templates, each fully
// overridable via environment variables, and can be disabled entirely. All
// of it is best effort: callers treat errors here as warnings and never
// abort the bounty operation itself.
package scheduler

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/hiveline/bounty/internal/configfile"
	"github.com/hiveline/bounty/internal/debug"
)

// Environment overrides. Each template substitutes {jobId}, {schedule},
// and {command} before execution.
const (
	EnvDisable   = "BOUNTY_SCHED_DISABLE"
	EnvJobID     = "BOUNTY_SCHED_JOB_ID"
	EnvSchedule  = "BOUNTY_SCHED_SCHEDULE"
	EnvPollCmd   = "BOUNTY_SCHED_POLL_CMD"
	EnvAddCmd    = "BOUNTY_SCHED_ADD_CMD"
	EnvRemoveCmd = "BOUNTY_SCHED_REMOVE_CMD"
)

const (
	defaultJobID    = "bounty-poll"
	defaultSchedule = "*/10 * * * *"
	defaultPollCmd  = "bounty poll --json"
	defaultAddCmd   = `cronctl add {jobId} --schedule "{schedule}" --command "{command}"`
	defaultRemove   = `cronctl remove {jobId}`
)

var bindOnce sync.Once

// bindEnv wires the overrides exactly once per process.
func bindEnv() {
	bindOnce.Do(func() {
		for key, env := range map[string]string{
			"sched.disable":    EnvDisable,
			"sched.job_id":     EnvJobID,
			"sched.schedule":   EnvSchedule,
			"sched.poll_cmd":   EnvPollCmd,
			"sched.add_cmd":    EnvAddCmd,
			"sched.remove_cmd": EnvRemoveCmd,
		} {
			_ = viper.BindEnv(key, env)
		}
		viper.SetDefault("sched.job_id", defaultJobID)
		viper.SetDefault("sched.schedule", defaultSchedule)
		viper.SetDefault("sched.poll_cmd", defaultPollCmd)
		viper.SetDefault("sched.add_cmd", defaultAddCmd)
		viper.SetDefault("sched.remove_cmd", defaultRemove)
	})
}

// EnsureResult reports what Ensure did.
type EnsureResult struct {
	Enabled bool `json:"enabled"`
	Created bool `json:"created"`
}

// RemoveResult reports what RemoveIfUnused did.
type RemoveResult struct {
	Enabled bool `json:"enabled"`
	Removed bool `json:"removed"`
}

// Registration manages the external poll job for one bounty directory.
type Registration struct {
	Dir string

	// Runner executes a rendered shell command line. Injectable for tests;
	// the default runs through `sh -c`.
	Runner func(cmdline string) error

	// ActiveCheck reports whether any non-terminal bounty remains. Wired to
	// the local registry by the controller.
	ActiveCheck func() (bool, error)
}

func New(dir string, activeCheck func() (bool, error)) *Registration {
	return &Registration{
		Dir:         dir,
		Runner:      runShell,
		ActiveCheck: activeCheck,
	}
}

func runShell(cmdline string) error {
	out, err := exec.Command("sh", "-c", cmdline).CombinedOutput()
	if err != nil {
		return fmt.Errorf("scheduler command %q failed: %w (output: %s)", cmdline, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func render(template, jobID string) string {
	bindEnv()
	return strings.NewReplacer(
		"{jobId}", jobID,
		"{schedule}", viper.GetString("sched.schedule"),
		"{command}", viper.GetString("sched.poll_cmd"),
	).Replace(template)
}

// Ensure registers the recurring poll job unless it is disabled or already
// registered. Calling it repeatedly without an intervening RemoveIfUnused
// runs the external command at most once.
func (r *Registration) Ensure() (EnsureResult, error) {
	bindEnv()
	if viper.GetBool("sched.disable") {
		return EnsureResult{Enabled: false}, nil
	}

	cfg, err := configfile.Load(r.Dir)
	if err != nil {
		return EnsureResult{Enabled: true}, err
	}
	if cfg == nil {
		cfg = &configfile.Config{}
	}
	if cfg.SchedulerJobID != "" {
		debug.Logf("scheduler job %s already registered\n", cfg.SchedulerJobID)
		return EnsureResult{Enabled: true, Created: false}, nil
	}

	jobID := viper.GetString("sched.job_id")
	if err := r.Runner(render(viper.GetString("sched.add_cmd"), jobID)); err != nil {
		return EnsureResult{Enabled: true}, err
	}

	cfg.SchedulerJobID = jobID
	if err := cfg.Save(r.Dir); err != nil {
		return EnsureResult{Enabled: true, Created: true}, err
	}
	return EnsureResult{Enabled: true, Created: true}, nil
}

// RemoveIfUnused deregisters the poll job, but only once no non-terminal
// bounty remains in the registry. Removing while bounties remain, or when
// nothing was ever registered, is a no-op.
func (r *Registration) RemoveIfUnused() (RemoveResult, error) {
	bindEnv()
	if viper.GetBool("sched.disable") {
		return RemoveResult{Enabled: false}, nil
	}

	if r.ActiveCheck != nil {
		active, err := r.ActiveCheck()
		if err != nil {
			return RemoveResult{Enabled: true}, err
		}
		if active {
			return RemoveResult{Enabled: true, Removed: false}, nil
		}
	}

	cfg, err := configfile.Load(r.Dir)
	if err != nil {
		return RemoveResult{Enabled: true}, err
	}
	if cfg == nil || cfg.SchedulerJobID == "" {
		return RemoveResult{Enabled: true, Removed: false}, nil
	}

	if err := r.Runner(render(viper.GetString("sched.remove_cmd"), cfg.SchedulerJobID)); err != nil {
		return RemoveResult{Enabled: true}, err
	}

	cfg.SchedulerJobID = ""
	if err := cfg.Save(r.Dir); err != nil {
		return RemoveResult{Enabled: true, Removed: true}, err
	}
	return RemoveResult{Enabled: true, Removed: true}, nil
}
