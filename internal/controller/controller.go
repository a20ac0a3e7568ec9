// Package controller orchestrates the bounty lifecycle across the local
// registry, the OS keychain, the external scheduler registration, and the
// remote bounty platform.
//
// The remote platform is the source of truth for bounty status; the local
// registry is an advisory cache that is reconciled only on explicit poll or
// status calls. Once a bounty reaches a terminal status all three local
// stores are purged, and the scheduler registration is dropped when no
// non-terminal bounty remains.
package controller

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hiveline/bounty/internal/acp"
	"github.com/hiveline/bounty/internal/scheduler"
	"github.com/hiveline/bounty/internal/types"
)

// RegistryStore is the local bounty registry plus its watch markers.
type RegistryStore interface {
	List() ([]types.Bounty, error)
	Get(bountyID string) (*types.Bounty, error)
	Save(b *types.Bounty) error
	Remove(bountyID string) error
	HasActive() (bool, error)
	WriteWatchFile(b *types.Bounty) (string, error)
	RemoveWatchFile(bountyID string) error
}

// SecretStore is the OS credential vault for poster secrets.
type SecretStore interface {
	Store(account, secret string) error
	Read(account string) (secret string, ok bool)
	Delete(account string)
}

// SchedulerRegistration manages the external recurring poll job.
type SchedulerRegistration interface {
	Ensure() (scheduler.EnsureResult, error)
	RemoveIfUnused() (scheduler.RemoveResult, error)
}

// BountyAPI is the remote bounty platform.
type BountyAPI interface {
	CreateBounty(ctx context.Context, in acp.CreateBountyInput) (*acp.CreateBountyResult, error)
	GetMatchStatus(ctx context.Context, bountyID string) (*acp.MatchStatus, error)
	ConfirmMatch(ctx context.Context, in acp.ConfirmMatchInput) error
	RejectCandidates(ctx context.Context, in acp.AuthInput) error
	SyncJobStatus(ctx context.Context, in acp.AuthInput) error
	CreateJob(ctx context.Context, in acp.CreateJobInput) (string, error)
}

type Controller struct {
	Registry  RegistryStore
	Secrets   SecretStore
	Scheduler SchedulerRegistration
	Client    BountyAPI

	// Warnf reports non-fatal failures (secret store, scheduler, sync).
	// Defaults to stderr.
	Warnf func(format string, args ...interface{})

	// now is injectable for tests.
	now func() time.Time
}

func New(reg RegistryStore, sec SecretStore, sched SchedulerRegistration, client BountyAPI) *Controller {
	return &Controller{
		Registry:  reg,
		Secrets:   sec,
		Scheduler: sched,
		Client:    client,
		Warnf: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
		now: time.Now,
	}
}

// Create validates poster input, posts the bounty remotely, and records it
// locally: registry entry, keychain secret, watch file, and (best effort)
// the scheduler registration. Only the remote call and the registry write
// are fatal.
func (c *Controller) Create(ctx context.Context, in types.CreateInput) (*types.Bounty, error) {
	if err := types.ValidateCreateInput(in); err != nil {
		return nil, err
	}

	res, err := c.Client.CreateBounty(ctx, acp.CreateBountyInput{
		PosterName:  in.PosterName,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Category:    in.Category,
		Tags:        in.Tags,
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	b := &types.Bounty{
		BountyID:           res.BountyID,
		Status:             types.StatusOpen,
		Title:              in.Title,
		Description:        in.Description,
		Budget:             in.Budget,
		Category:           in.Category,
		Tags:               in.Tags,
		PosterName:         in.PosterName,
		KeychainAccountRef: types.AccountRef(res.BountyID, in.PosterName),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := c.Secrets.Store(b.KeychainAccountRef, res.PosterSecret); err != nil {
		c.Warnf("failed to store poster secret in keychain: %v", err)
	}

	if path, err := c.Registry.WriteWatchFile(b); err != nil {
		c.Warnf("failed to write watch file: %v", err)
	} else {
		b.SchedulerWatchPath = path
	}

	if err := c.Registry.Save(b); err != nil {
		return nil, fmt.Errorf("saving bounty: %w", err)
	}

	if _, err := c.Scheduler.Ensure(); err != nil {
		c.Warnf("scheduler registration failed: %v", err)
	}

	return b, nil
}

// PendingBounty is a bounty awaiting candidate selection.
type PendingBounty struct {
	BountyID   string `json:"bountyId"`
	Title      string `json:"title"`
	Candidates int    `json:"candidates"`
}

// BountyError is a per-bounty failure collected during Poll.
type BountyError struct {
	BountyID string `json:"bountyId"`
	Err      string `json:"error"`
}

// PollReport aggregates one poll pass over all locally-known bounties.
type PollReport struct {
	Checked      int             `json:"checked"`
	PendingMatch []PendingBounty `json:"pendingMatch"`
	Cleaned      []string        `json:"cleaned"`
	Errors       []BountyError   `json:"errors"`
}

// Poll reconciles every locally-known bounty against the remote platform.
// Terminal bounties are purged from all three local stores; per-bounty
// failures are collected and never abort the batch. Afterwards the
// scheduler registration is dropped if nothing active remains.
func (c *Controller) Poll(ctx context.Context) (*PollReport, error) {
	bounties, err := c.Registry.List()
	if err != nil {
		return nil, err
	}

	report := &PollReport{
		PendingMatch: []PendingBounty{},
		Cleaned:      []string{},
		Errors:       []BountyError{},
	}

	for i := range bounties {
		b := bounties[i]
		ms, err := c.Client.GetMatchStatus(ctx, b.BountyID)
		if err != nil {
			report.Errors = append(report.Errors, BountyError{BountyID: b.BountyID, Err: err.Error()})
			continue
		}
		report.Checked++

		if ms.Status.IsTerminal() {
			c.purge(&b)
			report.Cleaned = append(report.Cleaned, b.BountyID)
			continue
		}

		next, err := types.Reconcile(b.Status, ms.Status)
		if err != nil {
			report.Errors = append(report.Errors, BountyError{BountyID: b.BountyID, Err: err.Error()})
			continue
		}
		b.Status = next
		b.UpdatedAt = c.now()
		if err := c.Registry.Save(&b); err != nil {
			report.Errors = append(report.Errors, BountyError{BountyID: b.BountyID, Err: err.Error()})
			continue
		}

		if next == types.StatusPendingMatch {
			report.PendingMatch = append(report.PendingMatch, PendingBounty{
				BountyID:   b.BountyID,
				Title:      b.Title,
				Candidates: len(ms.Candidates),
			})
		}
	}

	if _, err := c.Scheduler.RemoveIfUnused(); err != nil {
		c.Warnf("scheduler deregistration failed: %v", err)
	}

	return report, nil
}

// StatusResult is the outcome of a single-bounty status check.
type StatusResult struct {
	BountyID   string            `json:"bountyId"`
	Status     types.Status      `json:"status"`
	Cleaned    bool              `json:"cleaned"`
	Candidates []types.Candidate `json:"candidates,omitempty"`
	Bounty     *types.Bounty     `json:"bounty,omitempty"`
}

// Status refreshes one bounty: best-effort remote job-status sync, then a
// match-status fetch. Terminal statuses purge the local stores; otherwise
// the reconciled status is persisted and any candidates are returned so the
// caller can offer selection.
func (c *Controller) Status(ctx context.Context, bountyID string) (*StatusResult, error) {
	b, err := c.Registry.Get(bountyID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("unknown bounty %q", bountyID)
	}

	secret, ok := c.Secrets.Read(b.KeychainAccountRef)
	if !ok {
		c.Warnf("poster secret for %s not found in keychain", bountyID)
	} else if err := c.Client.SyncJobStatus(ctx, acp.AuthInput{BountyID: bountyID, PosterSecret: secret}); err != nil {
		c.Warnf("job status sync failed: %v", err)
	}

	ms, err := c.Client.GetMatchStatus(ctx, bountyID)
	if err != nil {
		return nil, err
	}

	if ms.Status.IsTerminal() {
		c.purge(b)
		if _, err := c.Scheduler.RemoveIfUnused(); err != nil {
			c.Warnf("scheduler deregistration failed: %v", err)
		}
		return &StatusResult{BountyID: bountyID, Status: ms.Status, Cleaned: true}, nil
	}

	next, err := types.Reconcile(b.Status, ms.Status)
	if err != nil {
		return nil, err
	}
	b.Status = next
	b.UpdatedAt = c.now()
	if err := c.Registry.Save(b); err != nil {
		return nil, fmt.Errorf("saving bounty: %w", err)
	}

	return &StatusResult{
		BountyID:   bountyID,
		Status:     next,
		Candidates: ms.Candidates,
		Bounty:     b,
	}, nil
}

// Cleanup unconditionally purges all local state for a bounty and attempts
// scheduler deregistration. Every individual failure is tolerated.
func (c *Controller) Cleanup(ctx context.Context, bountyID string) error {
	b, err := c.Registry.Get(bountyID)
	if err != nil {
		c.Warnf("reading registry: %v", err)
	}
	if b == nil {
		// Purge whatever might be left even without a registry entry.
		b = &types.Bounty{BountyID: bountyID}
	}
	c.purge(b)
	if _, err := c.Scheduler.RemoveIfUnused(); err != nil {
		c.Warnf("scheduler deregistration failed: %v", err)
	}
	return nil
}

// purge removes a bounty from all three local stores. Each removal is best
// effort: cleanup never blocks on state that is already gone.
func (c *Controller) purge(b *types.Bounty) {
	if err := c.Registry.Remove(b.BountyID); err != nil {
		c.Warnf("failed to remove registry entry for %s: %v", b.BountyID, err)
	}
	ref := b.KeychainAccountRef
	if ref == "" {
		ref = types.AccountRef(b.BountyID, b.PosterName)
	}
	c.Secrets.Delete(ref)
	if err := c.Registry.RemoveWatchFile(b.BountyID); err != nil {
		c.Warnf("failed to remove watch file for %s: %v", b.BountyID, err)
	}
}
