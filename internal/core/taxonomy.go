package core

import (
	"fmt"
	"sort"
	"strings"
)

// RequestTaxonomy maps primary request types to their ordered sub request
// types. It is loaded once at startup and shared read-only by every run.
type RequestTaxonomy struct {
	subTypes  map[string][]string
	primaries []string
}

// NewRequestTaxonomy builds a taxonomy from a primary -> sub types mapping.
func NewRequestTaxonomy(mapping map[string][]string) (*RequestTaxonomy, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("request taxonomy must not be empty")
	}

	subTypes := make(map[string][]string, len(mapping))
	primaries := make([]string, 0, len(mapping))
	for primary, subs := range mapping {
		if strings.TrimSpace(primary) == "" {
			return nil, fmt.Errorf("request taxonomy contains an empty primary type")
		}
		copied := make([]string, len(subs))
		copy(copied, subs)
		subTypes[primary] = copied
		primaries = append(primaries, primary)
	}
	sort.Strings(primaries)

	return &RequestTaxonomy{subTypes: subTypes, primaries: primaries}, nil
}

// Primaries returns the primary request types in stable (sorted) order.
func (t *RequestTaxonomy) Primaries() []string {
	return t.primaries
}

// HasPrimary reports whether name is a known primary request type.
func (t *RequestTaxonomy) HasPrimary(name string) bool {
	_, ok := t.subTypes[name]
	return ok
}

// SubTypes returns the ordered sub request types for a primary type.
func (t *RequestTaxonomy) SubTypes(primary string) []string {
	return t.subTypes[primary]
}

// HasSubType reports whether sub is a valid sub request type under primary.
func (t *RequestTaxonomy) HasSubType(primary, sub string) bool {
	for _, s := range t.subTypes[primary] {
		if s == sub {
			return true
		}
	}
	return false
}

// PromptBlock renders the taxonomy as a stable text block for LLM prompts.
func (t *RequestTaxonomy) PromptBlock() string {
	var b strings.Builder
	for _, primary := range t.primaries {
		b.WriteString("- ")
		b.WriteString(primary)
		if subs := t.subTypes[primary]; len(subs) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(subs, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DefaultTaxonomy is the loan-servicing request taxonomy used when the
// configuration does not provide one.
func DefaultTaxonomy() map[string][]string {
	return map[string][]string{
		"Adjustment":              {},
		"AU Transfer":             {},
		"Closing Notice":          {"Reallocation Fees", "Amendment Fees", "Reallocation Principal"},
		"Commitment Change":       {"Cashless Roll", "Decrease", "Increase"},
		"Fee Payment":             {"Ongoing Fee", "Letter of Credit Fee"},
		"Money Movement Inbound":  {"Principal", "Interest", "Principal+Interest", "Principal+Interest+Fee"},
		"Money Movement Outbound": {"Timebound", "Foreign Currency"},
	}
}
