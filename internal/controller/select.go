package controller

import (
	"context"
	"fmt"

	"github.com/hiveline/bounty/internal/acp"
	"github.com/hiveline/bounty/internal/types"
)

// RequirementResolver produces the service requirements for a chosen
// candidate. The command layer supplies either a flag-driven parser or an
// interactive schema prompt; it is only invoked once the choice has been
// validated.
type RequirementResolver func(c *types.Candidate) (map[string]any, error)

// Candidates fetches the current candidate set for a bounty and validates
// that it is selectable: the bounty must be locally known, remotely in
// pending_match, and have at least one candidate.
func (c *Controller) Candidates(ctx context.Context, bountyID string) ([]types.Candidate, error) {
	b, err := c.Registry.Get(bountyID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("unknown bounty %q", bountyID)
	}

	ms, err := c.Client.GetMatchStatus(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if ms.Status != types.StatusPendingMatch {
		return nil, fmt.Errorf("bounty %s is %s, not pending_match", bountyID, ms.Status)
	}
	if len(ms.Candidates) == 0 {
		return nil, fmt.Errorf("bounty %s has no candidates yet", bountyID)
	}
	return ms.Candidates, nil
}

// Select drives a poster's candidate choice through to remote job creation
// and match confirmation. Choice 0 rejects all candidates and returns the
// bounty to open; a 1-based index commissions that candidate. Out-of-range
// choices fail without mutating any state.
func (c *Controller) Select(ctx context.Context, bountyID string, choice int, resolve RequirementResolver) error {
	b, err := c.Registry.Get(bountyID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("unknown bounty %q", bountyID)
	}

	candidates, err := c.Candidates(ctx, bountyID)
	if err != nil {
		return err
	}

	secret, ok := c.Secrets.Read(b.KeychainAccountRef)
	if !ok {
		// The remote side enforces authorization; proceed and let it decide.
		c.Warnf("poster secret for %s not found in keychain", bountyID)
	}

	if choice == 0 {
		if err := c.Client.RejectCandidates(ctx, acp.AuthInput{BountyID: bountyID, PosterSecret: secret}); err != nil {
			return err
		}
		b.Status = types.StatusOpen
		b.SelectedCandidateID = ""
		b.ACPJobID = ""
		b.UpdatedAt = c.now()
		if err := c.Registry.Save(b); err != nil {
			return fmt.Errorf("saving bounty: %w", err)
		}
		return nil
	}

	if choice < 0 || choice > len(candidates) {
		return fmt.Errorf("choice %d out of range (1-%d, or 0 to reject)", choice, len(candidates))
	}
	cand := &candidates[choice-1]

	wallet := cand.WalletAddress()
	if wallet == "" {
		return fmt.Errorf("candidate %s missing provider wallet address", cand.ID)
	}
	offering := cand.OfferingName()
	if offering == "" {
		return fmt.Errorf("candidate %s missing job offering name", cand.ID)
	}

	requirements, err := resolve(cand)
	if err != nil {
		return err
	}

	jobID, err := c.Client.CreateJob(ctx, acp.CreateJobInput{
		ProviderWalletAddress: wallet,
		JobOfferingName:       offering,
		ServiceRequirements:   requirements,
	})
	if err != nil {
		return err
	}

	if err := c.Client.ConfirmMatch(ctx, acp.ConfirmMatchInput{
		BountyID:     bountyID,
		PosterSecret: secret,
		CandidateID:  cand.ID,
		ACPJobID:     jobID,
	}); err != nil {
		return err
	}

	b.Status = types.StatusClaimed
	b.SelectedCandidateID = cand.ID.String()
	b.ACPJobID = jobID
	if err := c.Registry.RemoveWatchFile(bountyID); err != nil {
		c.Warnf("failed to remove watch file for %s: %v", bountyID, err)
	}
	b.SchedulerWatchPath = ""
	b.UpdatedAt = c.now()
	if err := c.Registry.Save(b); err != nil {
		return fmt.Errorf("saving bounty: %w", err)
	}
	return nil
}

// ResolveFromSchema collects requirement values declared by a candidate's
// schema: required properties must be non-empty, optional ones default to
// the empty string. The prompt function is typically an interactive input.
func ResolveFromSchema(schema *types.RequirementSchema, prompt func(name string, prop types.RequirementProperty, required bool) (string, error)) (map[string]any, error) {
	requirements := map[string]any{}
	for _, name := range schema.PropertyNames() {
		prop := schema.Properties[name]
		required := schema.IsRequired(name)
		value, err := prompt(name, prop, required)
		if err != nil {
			return nil, err
		}
		if required && value == "" {
			return nil, fmt.Errorf("requirement %q is required", name)
		}
		requirements[name] = value
	}
	return requirements, nil
}
