// Package configfile persists the small amount of CLI metadata that is not
// bounty state: currently just the external scheduler's job id.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

type Config struct {
	// SchedulerJobID is set once the recurring poll job has been
	// registered with the external scheduler. Empty means not registered.
	SchedulerJobID string `json:"scheduler_job_id,omitempty"`
}

func ConfigPath(bountyDir string) string {
	return filepath.Join(bountyDir, ConfigFileName)
}

// Load reads the metadata file. A missing file returns (nil, nil).
func Load(bountyDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(bountyDir)) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Save(bountyDir string) error {
	if err := os.MkdirAll(bountyDir, 0750); err != nil {
		return fmt.Errorf("creating bounty directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(bountyDir), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
