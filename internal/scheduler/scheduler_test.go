package scheduler

import (
	"errors"
	"strings"
	"testing"

	"github.com/hiveline/bounty/internal/configfile"
)

func newTestRegistration(t *testing.T, active bool) (*Registration, *[]string) {
	t.Helper()
	var ran []string
	r := New(t.TempDir(), func() (bool, error) { return active, nil })
	r.Runner = func(cmdline string) error {
		ran = append(ran, cmdline)
		return nil
	}
	return r, &ran
}

func TestEnsureRegistersOnce(t *testing.T) {
	r, ran := newTestRegistration(t, true)

	res, err := r.Ensure()
	if err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}
	if !res.Enabled || !res.Created {
		t.Errorf("first Ensure() = %+v, want enabled+created", res)
	}
	if len(*ran) != 1 {
		t.Fatalf("runner called %d times, want 1", len(*ran))
	}

	// Second Ensure without an intervening removal is a no-op.
	res, err = r.Ensure()
	if err != nil {
		t.Fatalf("second Ensure() failed: %v", err)
	}
	if !res.Enabled || res.Created {
		t.Errorf("second Ensure() = %+v, want enabled, not created", res)
	}
	if len(*ran) != 1 {
		t.Errorf("runner called %d times after second Ensure, want still 1", len(*ran))
	}

	cfg, err := configfile.Load(r.Dir)
	if err != nil || cfg == nil || cfg.SchedulerJobID == "" {
		t.Errorf("job id not persisted: cfg=%+v err=%v", cfg, err)
	}
}

func TestEnsureRendersTemplate(t *testing.T) {
	r, ran := newTestRegistration(t, true)
	if _, err := r.Ensure(); err != nil {
		t.Fatal(err)
	}
	cmdline := (*ran)[0]
	if strings.Contains(cmdline, "{jobId}") || strings.Contains(cmdline, "{schedule}") || strings.Contains(cmdline, "{command}") {
		t.Errorf("placeholders left unsubstituted: %q", cmdline)
	}
	if !strings.Contains(cmdline, "bounty-poll") {
		t.Errorf("job id missing from rendered command: %q", cmdline)
	}
}

func TestEnsureDisabled(t *testing.T) {
	t.Setenv(EnvDisable, "true")
	r, ran := newTestRegistration(t, true)

	res, err := r.Ensure()
	if err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}
	if res.Enabled || res.Created {
		t.Errorf("Ensure() with disable flag = %+v, want neither", res)
	}
	if len(*ran) != 0 {
		t.Errorf("runner should not run when disabled")
	}
}

func TestEnsureRunnerFailureDoesNotPersist(t *testing.T) {
	r := New(t.TempDir(), func() (bool, error) { return true, nil })
	r.Runner = func(string) error { return errors.New("cronctl not found") }

	if _, err := r.Ensure(); err == nil {
		t.Fatal("Ensure() should surface the runner error")
	}

	cfg, err := configfile.Load(r.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil && cfg.SchedulerJobID != "" {
		t.Errorf("job id persisted despite failed registration: %+v", cfg)
	}
}

func TestRemoveIfUnusedKeepsJobWhileActive(t *testing.T) {
	r, ran := newTestRegistration(t, true)
	if _, err := r.Ensure(); err != nil {
		t.Fatal(err)
	}

	res, err := r.RemoveIfUnused()
	if err != nil {
		t.Fatalf("RemoveIfUnused() failed: %v", err)
	}
	if res.Removed {
		t.Error("RemoveIfUnused() removed the job while bounties remain")
	}
	if len(*ran) != 1 {
		t.Errorf("remove command ran despite active bounties")
	}
}

func TestRemoveIfUnusedRemovesWhenIdle(t *testing.T) {
	var ran []string
	active := true
	r := New(t.TempDir(), func() (bool, error) { return active, nil })
	r.Runner = func(cmdline string) error {
		ran = append(ran, cmdline)
		return nil
	}

	if _, err := r.Ensure(); err != nil {
		t.Fatal(err)
	}

	active = false
	res, err := r.RemoveIfUnused()
	if err != nil {
		t.Fatalf("RemoveIfUnused() failed: %v", err)
	}
	if !res.Removed {
		t.Error("RemoveIfUnused() should remove the job once idle")
	}
	if len(ran) != 2 {
		t.Fatalf("runner called %d times, want add+remove", len(ran))
	}
	if !strings.Contains(ran[1], "remove") {
		t.Errorf("second command should be the removal: %q", ran[1])
	}

	cfg, err := configfile.Load(r.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil && cfg.SchedulerJobID != "" {
		t.Errorf("job id not cleared after removal: %+v", cfg)
	}
}

func TestRemoveIfUnusedNothingRegistered(t *testing.T) {
	r, ran := newTestRegistration(t, false)
	res, err := r.RemoveIfUnused()
	if err != nil {
		t.Fatalf("RemoveIfUnused() failed: %v", err)
	}
	if res.Removed {
		t.Error("nothing was registered, nothing should be removed")
	}
	if len(*ran) != 0 {
		t.Error("runner should not run when no job id is persisted")
	}
}
