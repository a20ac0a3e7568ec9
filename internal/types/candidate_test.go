package types

import (
	"encoding/json"
	"testing"
)

func TestCandidateIDNumberOrString(t *testing.T) {
	var c Candidate
	if err := json.Unmarshal([]byte(`{"id": 7}`), &c); err != nil {
		t.Fatalf("numeric id: %v", err)
	}
	if c.ID != 7 {
		t.Errorf("ID = %d, want 7", c.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": "12"}`), &c); err != nil {
		t.Fatalf("numeric-string id: %v", err)
	}
	if c.ID != 12 {
		t.Errorf("ID = %d, want 12", c.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": "seven"}`), &c); err == nil {
		t.Error("non-numeric id string should fail")
	}
}

func TestWalletAddressKeyPriority(t *testing.T) {
	// providerWalletAddress outranks walletAddress; first non-empty wins
	// even when later keys disagree.
	var c Candidate
	payload := `{"id": 1, "walletAddress": "0xlater", "providerWalletAddress": "0xfirst"}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatal(err)
	}
	if got := c.WalletAddress(); got != "0xfirst" {
		t.Errorf("WalletAddress() = %q, want 0xfirst", got)
	}
}

func TestWalletAddressSkipsEmptyValues(t *testing.T) {
	var c Candidate
	payload := `{"id": 1, "providerWalletAddress": "  ", "wallet": "0xabc"}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatal(err)
	}
	if got := c.WalletAddress(); got != "0xabc" {
		t.Errorf("WalletAddress() = %q, want 0xabc", got)
	}
}

func TestWalletAddressAbsent(t *testing.T) {
	var c Candidate
	if err := json.Unmarshal([]byte(`{"id": 1, "offeringName": "translation"}`), &c); err != nil {
		t.Fatal(err)
	}
	if got := c.WalletAddress(); got != "" {
		t.Errorf("WalletAddress() = %q, want empty", got)
	}
}

func TestOfferingNameAlternates(t *testing.T) {
	var c Candidate
	if err := json.Unmarshal([]byte(`{"id": 2, "serviceName": "audit"}`), &c); err != nil {
		t.Fatal(err)
	}
	if got := c.OfferingName(); got != "audit" {
		t.Errorf("OfferingName() = %q, want audit", got)
	}
}

func TestPriceDisplay(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`{"id":1, "price": 5, "priceType": "per_unit"}`, "5 per_unit"},
		{`{"id":1, "price": "5.50"}`, "5.50"},
		{`{"id":1, "priceType": "hourly"}`, "hourly"},
		{`{"id":1}`, ""},
	}
	for _, tc := range cases {
		var c Candidate
		if err := json.Unmarshal([]byte(tc.payload), &c); err != nil {
			t.Fatal(err)
		}
		if got := c.PriceDisplay(); got != tc.want {
			t.Errorf("PriceDisplay(%s) = %q, want %q", tc.payload, got, tc.want)
		}
	}
}

func TestRequirementSchemaParsing(t *testing.T) {
	payload := `{
		"id": "3",
		"requirementSchema": {
			"type": "object",
			"properties": {
				"url": {"type": "string", "description": "target URL"},
				"notes": {"type": "string"}
			},
			"required": ["url"]
		}
	}`
	var c Candidate
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatal(err)
	}
	if c.RequirementSchema == nil {
		t.Fatal("RequirementSchema not parsed")
	}
	names := c.RequirementSchema.PropertyNames()
	if len(names) != 2 || names[0] != "notes" || names[1] != "url" {
		t.Errorf("PropertyNames() = %v, want [notes url]", names)
	}
	if !c.RequirementSchema.IsRequired("url") {
		t.Error("url should be required")
	}
	if c.RequirementSchema.IsRequired("notes") {
		t.Error("notes should be optional")
	}
}

func TestParseRequirements(t *testing.T) {
	got := ParseRequirements(`{"url": "https://example.com"}`)
	if got["url"] != "https://example.com" {
		t.Errorf("valid JSON object should pass through, got %v", got)
	}

	got = ParseRequirements("just do it quickly")
	if got["requirement"] != "just do it quickly" {
		t.Errorf("free text should be wrapped verbatim, got %v", got)
	}

	// A JSON array is not an object; it wraps too.
	got = ParseRequirements(`[1, 2]`)
	if got["requirement"] != "[1, 2]" {
		t.Errorf("non-object JSON should be wrapped, got %v", got)
	}

	if got = ParseRequirements("  "); len(got) != 0 {
		t.Errorf("blank input should produce empty map, got %v", got)
	}
}
