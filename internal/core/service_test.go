package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReasoner struct {
	classification *ClassificationResult
	classifyErr    error
	extraction     *ExtractionResult
	extractErr     error
	review         *DuplicateCheckResult
	reviewErr      error

	lastRequest *ReasoningRequest
	reviewCalls int
}

func (f *fakeReasoner) Classify(_ context.Context, req *ReasoningRequest) (*ClassificationResult, error) {
	f.lastRequest = req
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	result := *f.classification
	return &result, nil
}

func (f *fakeReasoner) Extract(_ context.Context, req *ReasoningRequest) (*ExtractionResult, error) {
	f.lastRequest = req
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	result := *f.extraction
	return &result, nil
}

func (f *fakeReasoner) ReviewDuplicates(_ context.Context, req *ReasoningRequest) (*DuplicateCheckResult, error) {
	f.reviewCalls++
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	result := *f.review
	return &result, nil
}

// fakeFinder records the order of Check and Remember calls.
type fakeFinder struct {
	candidates []string
	checkErr   error
	calls      []string
	remembered []string
}

func (f *fakeFinder) Check(_ context.Context, text string) ([]string, error) {
	f.calls = append(f.calls, "check")
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.candidates, nil
}

func (f *fakeFinder) Remember(_ context.Context, text string) error {
	f.calls = append(f.calls, "remember")
	f.remembered = append(f.remembered, text)
	return nil
}

type fakeExtractor struct {
	texts map[string]string
}

func (f *fakeExtractor) ExtractText(path string) (string, error) {
	text, ok := f.texts[path]
	if !ok {
		return "", errors.New("unsupported attachment format")
	}
	return text, nil
}

func newTestService(t *testing.T, reasoner *fakeReasoner, finder *fakeFinder, extractor *fakeExtractor, duplicateReasoning bool) *TriageService {
	t.Helper()
	taxonomy, err := NewRequestTaxonomy(DefaultTaxonomy())
	require.NoError(t, err)
	if extractor == nil {
		extractor = &fakeExtractor{}
	}
	return NewTriageService(reasoner, finder, extractor, taxonomy, zap.NewNop(), duplicateReasoning)
}

func validReasoner() *fakeReasoner {
	return &fakeReasoner{
		classification: &ClassificationResult{
			PrimaryRequestType: "Money Movement Inbound",
			SubRequestType:     "Principal",
			ConfidenceScore:    0.92,
		},
		extraction: &ExtractionResult{
			RequestType: "Money Movement Inbound",
			DealName:    "TIC LLC",
			Borrower:    "TIC LLC",
		},
	}
}

func TestProcessUniqueEmail(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{}
	service := newTestService(t, reasoner, finder, nil, false)

	email := &EmailRecord{
		ID:      "msg-1",
		Subject: "Reallocation of TIC LLC facility",
		Body:    "Please reallocate the principal on the TIC LLC facility.",
	}

	result, err := service.Process(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", result.EmailID)
	assert.Equal(t, "Money Movement Inbound", result.Classification.PrimaryRequestType)
	assert.False(t, result.Duplicate.DuplicateFlag)
	assert.Equal(t, UniqueReason, result.Duplicate.DuplicateReason)
	assert.False(t, result.ProcessedAt.IsZero())
}

func TestProcessFlagsDuplicate(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{candidates: []string{"earlier email text"}}
	service := newTestService(t, reasoner, finder, nil, false)

	result, err := service.Process(context.Background(), &EmailRecord{ID: "msg-2", Body: "same text"})
	require.NoError(t, err)

	assert.True(t, result.Duplicate.DuplicateFlag)
	assert.Equal(t, DuplicateReason, result.Duplicate.DuplicateReason)
	assert.Equal(t, []string{"earlier email text"}, reasoner.lastRequest.DuplicateCandidates)
}

func TestProcessChecksBeforeRemembering(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{}
	service := newTestService(t, reasoner, finder, nil, false)

	_, err := service.Process(context.Background(), &EmailRecord{ID: "msg-3", Body: "text"})
	require.NoError(t, err)
	assert.Equal(t, []string{"check", "remember"}, finder.calls)
}

func TestProcessIndexesBeforeReasoningFailure(t *testing.T) {
	reasoner := validReasoner()
	reasoner.classifyErr = errors.New("provider unreachable")
	finder := &fakeFinder{}
	service := newTestService(t, reasoner, finder, nil, false)

	_, err := service.Process(context.Background(), &EmailRecord{ID: "msg-4", Body: "text"})
	require.Error(t, err)

	// The text stays indexed even though the email failed; a retry of the
	// same email will see itself as a near-duplicate.
	assert.Equal(t, []string{"check", "remember"}, finder.calls)
	assert.Equal(t, []string{"text"}, finder.remembered)
}

func TestProcessFailsWhenCheckFails(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{checkErr: errors.New("encoder down")}
	service := newTestService(t, reasoner, finder, nil, false)

	_, err := service.Process(context.Background(), &EmailRecord{ID: "msg-5", Body: "text"})
	require.Error(t, err)
	assert.Equal(t, []string{"check"}, finder.calls)
}

func TestProcessSkipsFailedAttachments(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{}
	extractor := &fakeExtractor{texts: map[string]string{
		"/tmp/statement.txt": "statement contents",
	}}
	service := newTestService(t, reasoner, finder, extractor, false)

	email := &EmailRecord{
		ID:          "msg-6",
		Body:        "body text",
		Attachments: []string{"/tmp/statement.txt", "/tmp/broken.pdf"},
	}

	_, err := service.Process(context.Background(), email)
	require.NoError(t, err)

	text := reasoner.lastRequest.Text
	assert.Contains(t, text, "body text")
	assert.Contains(t, text, "--- ATTACHMENTS ---")
	assert.Contains(t, text, "statement contents")
	assert.NotContains(t, text, "broken")
}

func TestProcessOmitsMarkerWithoutAttachmentText(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{}
	service := newTestService(t, reasoner, finder, &fakeExtractor{}, false)

	email := &EmailRecord{
		ID:          "msg-7",
		Body:        "body text",
		Attachments: []string{"/tmp/broken.pdf"},
	}

	_, err := service.Process(context.Background(), email)
	require.NoError(t, err)
	assert.False(t, strings.Contains(reasoner.lastRequest.Text, "ATTACHMENTS"))
}

func TestProcessFallsBackToSnippet(t *testing.T) {
	reasoner := validReasoner()
	finder := &fakeFinder{}
	service := newTestService(t, reasoner, finder, nil, false)

	email := &EmailRecord{ID: "msg-8", Snippet: "snippet only"}
	_, err := service.Process(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "snippet only", reasoner.lastRequest.Text)
}

func TestProcessRejectsMalformedClassification(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ClassificationResult)
	}{
		{"empty primary", func(c *ClassificationResult) { c.PrimaryRequestType = " " }},
		{"confidence above one", func(c *ClassificationResult) { c.ConfidenceScore = 1.5 }},
		{"confidence below zero", func(c *ClassificationResult) { c.ConfidenceScore = -0.1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reasoner := validReasoner()
			tc.mutate(reasoner.classification)
			service := newTestService(t, reasoner, &fakeFinder{}, nil, false)

			_, err := service.Process(context.Background(), &EmailRecord{ID: "msg-9", Body: "text"})
			assert.Error(t, err)
		})
	}
}

func TestProcessKeepsUnknownPrimaryType(t *testing.T) {
	reasoner := validReasoner()
	reasoner.classification.PrimaryRequestType = "Completely Novel Type"
	service := newTestService(t, reasoner, &fakeFinder{}, nil, false)

	result, err := service.Process(context.Background(), &EmailRecord{ID: "msg-10", Body: "text"})
	require.NoError(t, err)
	assert.Equal(t, "Completely Novel Type", result.Classification.PrimaryRequestType)
}

func TestDuplicateReasoningOverridesPreFlag(t *testing.T) {
	reasoner := validReasoner()
	reasoner.review = &DuplicateCheckResult{
		DuplicateFlag:   false,
		DuplicateReason: "Same deal but a different payment period.",
	}
	finder := &fakeFinder{candidates: []string{"earlier email"}}
	service := newTestService(t, reasoner, finder, nil, true)

	result, err := service.Process(context.Background(), &EmailRecord{ID: "msg-11", Body: "text"})
	require.NoError(t, err)

	assert.Equal(t, 1, reasoner.reviewCalls)
	assert.False(t, result.Duplicate.DuplicateFlag)
	assert.Equal(t, "Same deal but a different payment period.", result.Duplicate.DuplicateReason)
}

func TestDuplicateReasoningFailureKeepsPreFlag(t *testing.T) {
	reasoner := validReasoner()
	reasoner.reviewErr = errors.New("provider unreachable")
	finder := &fakeFinder{candidates: []string{"earlier email"}}
	service := newTestService(t, reasoner, finder, nil, true)

	result, err := service.Process(context.Background(), &EmailRecord{ID: "msg-12", Body: "text"})
	require.NoError(t, err)

	assert.True(t, result.Duplicate.DuplicateFlag)
	assert.Equal(t, DuplicateReason, result.Duplicate.DuplicateReason)
}

func TestDuplicateReasoningDisabledByDefault(t *testing.T) {
	reasoner := validReasoner()
	service := newTestService(t, reasoner, &fakeFinder{}, nil, false)

	_, err := service.Process(context.Background(), &EmailRecord{ID: "msg-13", Body: "text"})
	require.NoError(t, err)
	assert.Equal(t, 0, reasoner.reviewCalls)
}
