package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// attachmentMarker separates the email body from attachment-derived text in
// the effective text handed to the reasoning stages.
const attachmentMarker = "--- ATTACHMENTS ---"

// TriageService orchestrates the per-email pipeline: attachment text
// extraction, duplicate retrieval, classification and field extraction.
type TriageService struct {
	reasoner           ReasoningClient
	duplicates         DuplicateFinder
	extractor          DocumentExtractor
	taxonomy           *RequestTaxonomy
	logger             *zap.Logger
	duplicateReasoning bool
}

// NewTriageService creates a new triage service.
func NewTriageService(
	reasoner ReasoningClient,
	duplicates DuplicateFinder,
	extractor DocumentExtractor,
	taxonomy *RequestTaxonomy,
	logger *zap.Logger,
	duplicateReasoning bool,
) *TriageService {
	return &TriageService{
		reasoner:           reasoner,
		duplicates:         duplicates,
		extractor:          extractor,
		taxonomy:           taxonomy,
		logger:             logger,
		duplicateReasoning: duplicateReasoning,
	}
}

// Process runs the full pipeline for one email. On success the result is
// complete; on failure no partial result is returned and the caller must not
// mark the email processed. The email's text is added to the duplicate
// comparison set before the reasoning stages run and is deliberately not
// rolled back when a stage fails.
func (s *TriageService) Process(ctx context.Context, email *EmailRecord) (*ProcessedEmailResult, error) {
	text := s.effectiveText(email)

	// Retrieval must see the index state from before this email.
	candidates, err := s.duplicates.Check(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed for email %s: %w", email.ID, err)
	}

	if err := s.duplicates.Remember(ctx, text); err != nil {
		return nil, fmt.Errorf("failed to index email %s: %w", email.ID, err)
	}

	req := &ReasoningRequest{
		Text:                text,
		Taxonomy:            s.taxonomy,
		DuplicateCandidates: candidates,
	}

	classification, err := s.reasoner.Classify(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("classification failed for email %s: %w", email.ID, err)
	}
	if err := s.validateClassification(classification); err != nil {
		return nil, fmt.Errorf("classification for email %s is malformed: %w", email.ID, err)
	}

	extraction, err := s.reasoner.Extract(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for email %s: %w", email.ID, err)
	}

	duplicate := s.duplicateVerdict(ctx, req, candidates)

	return &ProcessedEmailResult{
		EmailID:        email.ID,
		Classification: *classification,
		Extraction:     *extraction,
		Duplicate:      duplicate,
		ProcessedAt:    time.Now(),
	}, nil
}

// effectiveText resolves the text for the pipeline: body (or snippet
// fallback) plus any attachment text that could be extracted. Attachment
// extraction failures are local: logged, skipped, never email-fatal.
func (s *TriageService) effectiveText(email *EmailRecord) string {
	text := email.EffectiveText()

	if len(email.Attachments) == 0 {
		return text
	}

	var extracted []string
	for _, path := range email.Attachments {
		attachmentText, err := s.extractor.ExtractText(path)
		if err != nil {
			s.logger.Warn("Skipping attachment after extraction failure",
				zap.String("email_id", email.ID),
				zap.String("attachment", path),
				zap.Error(err))
			continue
		}
		if attachmentText != "" {
			extracted = append(extracted, attachmentText)
		}
	}

	if len(extracted) == 0 {
		return text
	}
	return text + "\n\n" + attachmentMarker + "\n\n" + strings.Join(extracted, "\n\n")
}

// duplicateVerdict derives the duplicate result. The retrieval pre-flag is
// always well-defined; the reasoning stage may override it with a more
// specific verdict when enabled.
func (s *TriageService) duplicateVerdict(ctx context.Context, req *ReasoningRequest, candidates []string) DuplicateCheckResult {
	verdict := DuplicateCheckResult{
		DuplicateFlag:   false,
		DuplicateReason: UniqueReason,
	}
	if len(candidates) > 0 {
		verdict.DuplicateFlag = true
		verdict.DuplicateReason = DuplicateReason
	}

	if !s.duplicateReasoning {
		return verdict
	}

	reviewed, err := s.reasoner.ReviewDuplicates(ctx, req)
	if err != nil {
		// The pre-flag stands; a failed override is not email-fatal.
		s.logger.Warn("Duplicate reasoning stage failed, keeping retrieval verdict", zap.Error(err))
		return verdict
	}
	return *reviewed
}

func (s *TriageService) validateClassification(c *ClassificationResult) error {
	if strings.TrimSpace(c.PrimaryRequestType) == "" {
		return fmt.Errorf("missing primary request type")
	}
	if c.ConfidenceScore < 0 || c.ConfidenceScore > 1 {
		return fmt.Errorf("confidence score %.2f outside [0,1]", c.ConfidenceScore)
	}
	if !s.taxonomy.HasPrimary(c.PrimaryRequestType) {
		// Unknown types are kept so a reviewer can correct them, but noted.
		s.logger.Warn("Classifier returned a primary type outside the taxonomy",
			zap.String("primary_request_type", c.PrimaryRequestType))
	}
	return nil
}
