// Package registry persists the set of locally-known bounties as a single
// JSON mapping from bounty id to record, plus one watch marker file per
// active bounty for external scheduler visibility.
//
// The file is loaded fully into memory on every call. There is no
// cross-process locking: the CLI assumes a single operator on a single
// machine, and concurrent invocations against the same bounty id are
// last-write-wins.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hiveline/bounty/internal/types"
)

const (
	RegistryFileName = "bounties.json"
	watchDirName     = "watch"
)

type Registry struct {
	dir string
}

func New(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) registryPath() string {
	return filepath.Join(r.dir, RegistryFileName)
}

func (r *Registry) load() (map[string]types.Bounty, error) {
	data, err := os.ReadFile(r.registryPath()) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return map[string]types.Bounty{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var bounties map[string]types.Bounty
	if err := json.Unmarshal(data, &bounties); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if bounties == nil {
		bounties = map[string]types.Bounty{}
	}
	return bounties, nil
}

func (r *Registry) store(bounties map[string]types.Bounty) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return fmt.Errorf("creating bounty directory: %w", err)
	}

	data, err := json.MarshalIndent(bounties, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}

	if err := os.WriteFile(r.registryPath(), data, 0600); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// List returns all locally-known bounties, oldest first.
func (r *Registry) List() ([]types.Bounty, error) {
	bounties, err := r.load()
	if err != nil {
		return nil, err
	}

	list := make([]types.Bounty, 0, len(bounties))
	for _, b := range bounties {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].BountyID < list[j].BountyID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// Get returns the bounty with the given id, or (nil, nil) when absent.
func (r *Registry) Get(bountyID string) (*types.Bounty, error) {
	bounties, err := r.load()
	if err != nil {
		return nil, err
	}
	b, ok := bounties[bountyID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// Save upserts a bounty record, replacing any prior record wholesale.
func (r *Registry) Save(b *types.Bounty) error {
	if b.BountyID == "" {
		return fmt.Errorf("bounty id is required")
	}
	bounties, err := r.load()
	if err != nil {
		return err
	}
	bounties[b.BountyID] = *b
	return r.store(bounties)
}

// Remove deletes a bounty record. Removing an absent id is a no-op.
func (r *Registry) Remove(bountyID string) error {
	bounties, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := bounties[bountyID]; !ok {
		return nil
	}
	delete(bounties, bountyID)
	return r.store(bounties)
}

// HasActive reports whether any non-terminal bounty remains. The scheduler
// registration stays active exactly as long as this is true.
func (r *Registry) HasActive() (bool, error) {
	bounties, err := r.load()
	if err != nil {
		return false, err
	}
	for _, b := range bounties {
		if !b.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

// watchFile is the marker content the external scheduler reads to know a
// bounty needs periodic polling.
type watchFile struct {
	BountyID  string       `json:"bountyId"`
	Status    types.Status `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	Query     string       `json:"query"`
	Title     string       `json:"title"`
	Budget    float64      `json:"budget"`
}

func (r *Registry) watchPath(bountyID string) string {
	return filepath.Join(r.dir, watchDirName, bountyID+".json")
}

// WriteWatchFile creates (or refreshes) the watch marker for a bounty and
// returns its path.
func (r *Registry) WriteWatchFile(b *types.Bounty) (string, error) {
	if err := os.MkdirAll(filepath.Join(r.dir, watchDirName), 0750); err != nil {
		return "", fmt.Errorf("creating watch directory: %w", err)
	}

	data, err := json.MarshalIndent(watchFile{
		BountyID:  b.BountyID,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		Query:     b.Query(),
		Title:     b.Title,
		Budget:    b.Budget,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling watch file: %w", err)
	}

	path := r.watchPath(b.BountyID)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing watch file: %w", err)
	}
	return path, nil
}

// RemoveWatchFile deletes the watch marker. Missing files are not an error:
// cleanup must never block on state that is already gone.
func (r *Registry) RemoveWatchFile(bountyID string) error {
	err := os.Remove(r.watchPath(bountyID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing watch file: %w", err)
	}
	return nil
}
