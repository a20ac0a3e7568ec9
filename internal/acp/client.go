// Package acp provides the client for the remote bounty platform's REST
// API: bounty creation, match status, match confirmation/rejection, job
// status sync, and job creation.
package acp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hiveline/bounty/internal/types"
)

const (
	DefaultAPIEndpoint = "https://api.bountyboard.dev"
	DefaultTimeout     = 30 * time.Second

	maxRetries = 3
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the bounty platform. An empty baseURL
// falls back to the default endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{BaseURL: c.BaseURL, HTTPClient: httpClient}
}

// WithBaseURL returns a new client with a custom base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: c.HTTPClient}
}

// doRequest performs a JSON request with retry on transient failures.
// Transport errors, 5xx, and 429 are retried with exponential backoff; any
// other non-2xx status is permanent and surfaces the response body verbatim.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var respBody []byte
	op := func() error {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		const maxResponseSize = 10 * 1024 * 1024
		respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("API error: %s (status %d)", strings.TrimSpace(string(respBody)), resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("API error: %s (status %d)", strings.TrimSpace(string(respBody)), resp.StatusCode))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// CreateBountyInput is the poster's request to post a new bounty.
type CreateBountyInput struct {
	PosterName  string         `json:"posterName"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Budget      float64        `json:"budget"`
	Category    types.Category `json:"category"`
	Tags        []string       `json:"tags,omitempty"`
}

// CreateBountyResult carries the externally issued id and the poster's
// authorization token for all subsequent poster-authenticated calls.
type CreateBountyResult struct {
	BountyID     string `json:"bountyId"`
	PosterSecret string `json:"posterSecret"`
}

func (c *Client) CreateBounty(ctx context.Context, in CreateBountyInput) (*CreateBountyResult, error) {
	var res CreateBountyResult
	if err := c.doRequest(ctx, http.MethodPost, "/bounties", in, &res); err != nil {
		return nil, err
	}
	if res.BountyID == "" {
		return nil, fmt.Errorf("bounty platform returned no bounty id")
	}
	return &res, nil
}

// MatchStatus is the remote's current view of a bounty: its authoritative
// status plus any matched candidates.
type MatchStatus struct {
	Status     types.Status      `json:"status"`
	Candidates []types.Candidate `json:"candidates"`
}

func (c *Client) GetMatchStatus(ctx context.Context, bountyID string) (*MatchStatus, error) {
	var res MatchStatus
	if err := c.doRequest(ctx, http.MethodGet, "/bounties/"+bountyID+"/match", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ConfirmMatchInput commits the poster's candidate selection.
type ConfirmMatchInput struct {
	BountyID     string            `json:"-"`
	PosterSecret string            `json:"posterSecret"`
	CandidateID  types.CandidateID `json:"candidateId"`
	ACPJobID     string            `json:"acpJobId"`
}

func (c *Client) ConfirmMatch(ctx context.Context, in ConfirmMatchInput) error {
	return c.doRequest(ctx, http.MethodPost, "/bounties/"+in.BountyID+"/confirm", in, nil)
}

// AuthInput covers the poster-authenticated calls that carry no other body.
type AuthInput struct {
	BountyID     string `json:"-"`
	PosterSecret string `json:"posterSecret"`
}

// RejectCandidates returns the bounty to open for rematching.
func (c *Client) RejectCandidates(ctx context.Context, in AuthInput) error {
	return c.doRequest(ctx, http.MethodPost, "/bounties/"+in.BountyID+"/reject", in, nil)
}

// SyncJobStatus asks the platform to refresh the bounty's job status.
// Callers treat failures as warnings, never fatal.
func (c *Client) SyncJobStatus(ctx context.Context, in AuthInput) error {
	return c.doRequest(ctx, http.MethodPost, "/bounties/"+in.BountyID+"/sync", in, nil)
}

// CreateJobInput commissions the selected candidate's offering.
type CreateJobInput struct {
	ProviderWalletAddress string         `json:"providerWalletAddress"`
	JobOfferingName       string         `json:"jobOfferingName"`
	ServiceRequirements   map[string]any `json:"serviceRequirements"`
}

// createJobResponse tolerates both response shapes the platform has been
// observed to send: a top-level jobId and one nested under data.
type createJobResponse struct {
	JobID json.RawMessage `json:"jobId"`
	Data  struct {
		JobID json.RawMessage `json:"jobId"`
	} `json:"data"`
}

// CreateJob submits the job-creation request and returns the new job id.
func (c *Client) CreateJob(ctx context.Context, in CreateJobInput) (string, error) {
	var res createJobResponse
	if err := c.doRequest(ctx, http.MethodPost, "/jobs", in, &res); err != nil {
		return "", err
	}
	if id := rawIDString(res.JobID); id != "" {
		return id, nil
	}
	if id := rawIDString(res.Data.JobID); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("job creation response contained no job id")
}

// rawIDString renders a jobId that may arrive as a JSON string or number.
func rawIDString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
