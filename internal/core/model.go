package core

import (
	"time"
)

// EmailRecord is a single fetched email. It is immutable once fetched;
// attachment entries are paths to files already saved by the mailbox adapter.
type EmailRecord struct {
	ID          string
	Subject     string
	From        string
	Date        string
	Body        string
	Snippet     string
	Attachments []string
}

// EffectiveText returns the text used for duplicate detection and reasoning:
// the full body when available, otherwise the snippet.
func (e *EmailRecord) EffectiveText() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Snippet
}

// ClassificationResult is the taxonomy classification of one email.
type ClassificationResult struct {
	PrimaryRequestType     string   `json:"primary_request_type"`
	SubRequestType         string   `json:"sub_request_type,omitempty"`
	ConfidenceScore        float64  `json:"confidence_score"`
	AdditionalRequestTypes []string `json:"additional_request_types,omitempty"`
	Reason                 string   `json:"reason,omitempty"`
}

// ExtractionResult holds the structured loan-servicing fields pulled from an
// email. Fields are informational; the service does not validate their
// semantic correctness, only that the stage produced a well-formed record.
type ExtractionResult struct {
	RequestType          string   `json:"request_type"`
	DealName             string   `json:"deal_name"`
	Borrower             string   `json:"borrower"`
	Amount               *float64 `json:"amount,omitempty"`
	PaymentDate          string   `json:"payment_date,omitempty"`
	TransactionReference string   `json:"transaction_reference,omitempty"`
}

// DuplicateCheckResult is the duplicate verdict for one email.
type DuplicateCheckResult struct {
	DuplicateFlag   bool   `json:"duplicate_flag"`
	DuplicateReason string `json:"duplicate_reason"`
}

// Templated reasons for the retrieval-based duplicate pre-flag. A reasoning
// stage may replace them with a more specific verdict.
const (
	UniqueReason    = "The email content is unique and does not match any of the provided duplicate email examples."
	DuplicateReason = "The email content is highly similar to other emails received, indicating a duplicate."
)

// ProcessedEmailResult is the complete triage outcome for one email. It is
// only ever produced whole: classification, extraction and duplicate verdict
// all populated, or not at all.
type ProcessedEmailResult struct {
	EmailID        string               `json:"email_id"`
	Classification ClassificationResult `json:"classification"`
	Extraction     ExtractionResult     `json:"extraction"`
	Duplicate      DuplicateCheckResult `json:"duplicate"`
	ProcessedAt    time.Time            `json:"processed_at"`
}

// ReasoningRequest is the payload handed to the reasoning stages. All stages
// for a given email see the same request.
type ReasoningRequest struct {
	Text                string
	Taxonomy            *RequestTaxonomy
	DuplicateCandidates []string
}
