package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CandidateID is a candidate identity as issued by the matching service.
// The upstream payload sends it as either a JSON number or a numeric
// string; both are accepted.
type CandidateID int64

// UnmarshalJSON accepts both 7 and "7".
func (c *CandidateID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("candidate id must be numeric, got %s", string(data))
	}
	*c = CandidateID(n)
	return nil
}

func (c CandidateID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// walletKeys, offeringKeys, priceKeys, and priceTypeKeys are the ordered
// lookup sequences for the loosely-typed candidate payload. The first key
// present with a non-empty value wins; later keys are never consulted once
// a match is found, even if they disagree.
var (
	walletKeys      = []string{"providerWalletAddress", "walletAddress", "providerAddress", "wallet", "address"}
	offeringKeys    = []string{"jobOfferingName", "offeringName", "serviceName", "offering", "name"}
	priceKeys       = []string{"price", "priceAmount", "amount"}
	priceTypeKeys   = []string{"priceType", "pricingType", "rateType"}
	requirementKeys = []string{"requirements", "serviceRequirements"}
)

// RequirementProperty describes one field the poster must fill to
// commission a candidate.
type RequirementProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// RequirementSchema is the optional structured description of the fields a
// candidate's offering requires.
type RequirementSchema struct {
	Type       string                         `json:"type"`
	Properties map[string]RequirementProperty `json:"properties"`
	Required   []string                       `json:"required,omitempty"`
}

// PropertyNames returns the declared property names in a stable order.
func (s *RequirementSchema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether the named property is listed as required.
func (s *RequirementSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Candidate is a remotely matched potential provider for a bounty. It is
// ephemeral: it exists only within a single selection flow and is never
// persisted locally. The raw payload is retained so fields can be extracted
// tolerantly whatever key names the upstream happened to use.
type Candidate struct {
	ID                CandidateID
	RequirementSchema *RequirementSchema

	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps the full raw payload alongside the typed fields.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	c.fields = fields

	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &c.ID); err != nil {
			return err
		}
	}
	if raw, ok := fields["requirementSchema"]; ok && string(raw) != "null" {
		var schema RequirementSchema
		if err := json.Unmarshal(raw, &schema); err != nil {
			return fmt.Errorf("parsing requirement schema: %w", err)
		}
		c.RequirementSchema = &schema
	}
	return nil
}

// Field tries each key in order and returns the first present, non-empty
// value rendered as a string. Numbers render without a trailing ".0" where
// they are integral.
func (c *Candidate) Field(keys []string) string {
	for _, key := range keys {
		raw, ok := c.fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				return s
			}
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

// WalletAddress extracts the provider wallet address, if any key carries it.
func (c *Candidate) WalletAddress() string {
	return c.Field(walletKeys)
}

// OfferingName extracts the job offering name, if any key carries it.
func (c *Candidate) OfferingName() string {
	return c.Field(offeringKeys)
}

// RequirementsText extracts the free-text requirements field, used when no
// structured schema was supplied.
func (c *Candidate) RequirementsText() string {
	return c.Field(requirementKeys)
}

// PriceDisplay renders a human-readable price, e.g. "5 per_unit". Either
// part may be absent.
func (c *Candidate) PriceDisplay() string {
	price := c.Field(priceKeys)
	priceType := c.Field(priceTypeKeys)
	switch {
	case price == "" && priceType == "":
		return ""
	case priceType == "":
		return price
	case price == "":
		return priceType
	}
	return price + " " + priceType
}

// ParseRequirements interprets free-text requirements: valid JSON objects
// pass through as-is, anything else is wrapped verbatim under a single
// "requirement" key.
func ParseRequirements(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj
	}
	return map[string]any{"requirement": text}
}
