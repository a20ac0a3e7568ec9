// Package types defines the core data types for the bounty CLI: bounty
// records, lifecycle statuses, and the candidates returned by the remote
// matching service.
package types

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is a bounty lifecycle status. The local registry caches the last
// observed status; the remote platform is authoritative and local state is
// only reconciled on explicit poll/status calls.
type Status string

const (
	StatusOpen         Status = "open"
	StatusPendingMatch Status = "pending_match"
	StatusClaimed      Status = "claimed"
	StatusFulfilled    Status = "fulfilled"
	StatusExpired      Status = "expired"
	StatusRejected     Status = "rejected"
)

// IsTerminal reports whether the status admits no further transitions.
// A terminal status triggers full local cleanup (registry entry, secret,
// watch file).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFulfilled, StatusExpired, StatusRejected:
		return true
	}
	return false
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusPendingMatch, StatusClaimed,
		StatusFulfilled, StatusExpired, StatusRejected:
		return true
	}
	return false
}

// Reconcile merges a remotely observed status into the locally cached one.
// The remote value wins, except that a terminal local status may never be
// left: observing anything else afterwards indicates corrupted state.
func Reconcile(local, remote Status) (Status, error) {
	if !remote.Valid() {
		return local, fmt.Errorf("unknown remote status %q", remote)
	}
	if local.IsTerminal() && remote != local {
		return local, fmt.Errorf("status %q is terminal, cannot transition to %q", local, remote)
	}
	return remote, nil
}

// Category classifies what kind of deliverable a bounty asks for.
type Category string

const (
	CategoryDigital  Category = "digital"
	CategoryPhysical Category = "physical"
)

// ParseCategory validates and normalizes a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDigital:
		return CategoryDigital, nil
	case CategoryPhysical:
		return CategoryPhysical, nil
	}
	return "", fmt.Errorf("invalid category %q (must be digital or physical)", s)
}

// Bounty is the locally cached record for a remotely issued bounty.
// BountyID is externally issued and is the sole key across all three local
// stores (registry entry, keychain secret, watch file).
type Bounty struct {
	BountyID    string   `json:"bountyId"`
	Status      Status   `json:"status"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Category    Category `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	PosterName  string   `json:"posterName"`

	// KeychainAccountRef is the lookup key into the OS credential vault.
	// It is derived, never the secret itself.
	KeychainAccountRef string `json:"keychainAccountRef"`

	// SchedulerWatchPath is set while the bounty needs periodic polling;
	// cleared once the bounty is claimed or cleaned up.
	SchedulerWatchPath string `json:"schedulerWatchPath,omitempty"`

	SelectedCandidateID string `json:"selectedCandidateId,omitempty"`
	ACPJobID            string `json:"acpJobId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccountRef derives the deterministic keychain account reference for a
// bounty. Poster names are normalized so the same poster always maps to the
// same vault entry.
func AccountRef(bountyID, posterName string) string {
	poster := strings.ToLower(strings.TrimSpace(posterName))
	poster = strings.ReplaceAll(poster, " ", "-")
	return poster + "/" + bountyID
}

// Query returns the searchable text for a bounty, used in the watch file so
// the external scheduler can display what it is polling for.
func (b *Bounty) Query() string {
	parts := []string{b.Title}
	parts = append(parts, b.Tags...)
	return strings.Join(parts, " ")
}

// CreateInput holds the poster-supplied fields for a new bounty.
type CreateInput struct {
	PosterName  string
	Title       string
	Description string
	Budget      float64
	Category    Category
	Tags        []string
}

// ValidateCreateInput checks poster input before any remote call is made.
func ValidateCreateInput(in CreateInput) error {
	if strings.TrimSpace(in.PosterName) == "" {
		return fmt.Errorf("poster name is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if math.IsNaN(in.Budget) || math.IsInf(in.Budget, 0) || in.Budget <= 0 {
		return fmt.Errorf("budget must be a finite positive number, got %v", in.Budget)
	}
	if _, err := ParseCategory(string(in.Category)); err != nil {
		return err
	}
	return nil
}
