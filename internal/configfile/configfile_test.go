package configfile

import (
	"testing"
)

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() returned error for nonexistent config: %v", err)
	}
	if cfg != nil {
		t.Errorf("Load() = %+v, want nil for missing file", cfg)
	}
}

func TestLoadSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{SchedulerJobID: "bounty-poll"}
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() returned nil config")
	}
	if loaded.SchedulerJobID != "bounty-poll" {
		t.Errorf("SchedulerJobID = %q, want bounty-poll", loaded.SchedulerJobID)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/bounty"
	if err := (&Config{SchedulerJobID: "x"}).Save(dir); err != nil {
		t.Fatalf("Save() should create the directory: %v", err)
	}
}
