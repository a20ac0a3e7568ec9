package acp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hiveline/bounty/internal/types"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestCreateBounty(t *testing.T) {
	var gotBody map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bounties" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"bountyId":     "bty-123",
			"posterSecret": "s3cret",
		})
	}))

	res, err := client.CreateBounty(context.Background(), CreateBountyInput{
		PosterName:  "alice",
		Title:       "translate whitepaper",
		Description: "into japanese",
		Budget:      50,
		Category:    types.CategoryDigital,
		Tags:        []string{"japanese"},
	})
	if err != nil {
		t.Fatalf("CreateBounty() failed: %v", err)
	}
	if res.BountyID != "bty-123" || res.PosterSecret != "s3cret" {
		t.Errorf("CreateBounty() = %+v", res)
	}
	if gotBody["posterName"] != "alice" || gotBody["budget"] != float64(50) {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestCreateBountyMissingID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"posterSecret": "x"})
	}))
	if _, err := client.CreateBounty(context.Background(), CreateBountyInput{}); err == nil {
		t.Error("CreateBounty() should fail when no bounty id is returned")
	}
}

func TestGetMatchStatus(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bounties/bty-1/match" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// Candidate id arrives as a numeric string here; both forms are accepted.
		_, _ = w.Write([]byte(`{
			"status": "pending_match",
			"candidates": [
				{"id": "4", "providerWalletAddress": "0xabc", "jobOfferingName": "translation", "price": 5, "priceType": "flat"}
			]
		}`))
	}))

	ms, err := client.GetMatchStatus(context.Background(), "bty-1")
	if err != nil {
		t.Fatalf("GetMatchStatus() failed: %v", err)
	}
	if ms.Status != types.StatusPendingMatch || len(ms.Candidates) != 1 {
		t.Fatalf("GetMatchStatus() = %+v", ms)
	}
	c := ms.Candidates[0]
	if c.ID != 4 || c.WalletAddress() != "0xabc" || c.OfferingName() != "translation" {
		t.Errorf("candidate = id=%d wallet=%q offering=%q", c.ID, c.WalletAddress(), c.OfferingName())
	}
}

func TestConfirmMatchSendsSelection(t *testing.T) {
	var gotBody map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bounties/bty-1/confirm" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.ConfirmMatch(context.Background(), ConfirmMatchInput{
		BountyID:     "bty-1",
		PosterSecret: "s3cret",
		CandidateID:  4,
		ACPJobID:     "job-9",
	})
	if err != nil {
		t.Fatalf("ConfirmMatch() failed: %v", err)
	}
	if gotBody["posterSecret"] != "s3cret" || gotBody["acpJobId"] != "job-9" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestCreateJobTopLevelID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"jobId": "job-42"}`))
	}))

	id, err := client.CreateJob(context.Background(), CreateJobInput{
		ProviderWalletAddress: "0xabc",
		JobOfferingName:       "translation",
		ServiceRequirements:   map[string]any{"url": "https://example.com"},
	})
	if err != nil {
		t.Fatalf("CreateJob() failed: %v", err)
	}
	if id != "job-42" {
		t.Errorf("CreateJob() = %q, want job-42", id)
	}
}

func TestCreateJobNestedNumericID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"jobId": 42}}`))
	}))

	id, err := client.CreateJob(context.Background(), CreateJobInput{})
	if err != nil {
		t.Fatalf("CreateJob() failed: %v", err)
	}
	if id != "42" {
		t.Errorf("CreateJob() = %q, want 42", id)
	}
}

func TestCreateJobNoID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	if _, err := client.CreateJob(context.Background(), CreateJobInput{}); err == nil {
		t.Error("CreateJob() should fail when neither response shape carries a job id")
	}
}

func TestClientErrorSurfacesBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "bad poster secret"}`))
	}))

	err := client.RejectCandidates(context.Background(), AuthInput{BountyID: "bty-1", PosterSecret: "wrong"})
	if err == nil {
		t.Fatal("RejectCandidates() should fail on 403")
	}
	if !strings.Contains(err.Error(), "bad poster secret") || !strings.Contains(err.Error(), "403") {
		t.Errorf("error should surface the response verbatim, got: %v", err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.SyncJobStatus(context.Background(), AuthInput{BountyID: "bty-1"}); err != nil {
		t.Fatalf("SyncJobStatus() failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))

	if err := client.SyncJobStatus(context.Background(), AuthInput{BountyID: "bty-1"}); err == nil {
		t.Fatal("want error on 400")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}
