package review

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	taxonomy, err := core.NewRequestTaxonomy(core.DefaultTaxonomy())
	require.NoError(t, err)
	return NewServer("127.0.0.1:0", taxonomy, zap.NewNop())
}

func publishSample(s *Server, id string) {
	email := &core.EmailRecord{
		ID:      id,
		Subject: "Fee payment for TIC LLC",
		From:    "ops@example.com",
		Date:    "Mon, 10 Aug 2026 09:00:00 +0000",
	}
	result := &core.ProcessedEmailResult{
		EmailID: id,
		Classification: core.ClassificationResult{
			PrimaryRequestType: "Fee Payment",
			SubRequestType:     "Ongoing Fee",
			ConfidenceScore:    0.9,
		},
		Extraction: core.ExtractionResult{
			RequestType: "Fee Payment",
			DealName:    "TIC LLC",
			Borrower:    "TIC LLC",
		},
		Duplicate: core.DuplicateCheckResult{
			DuplicateFlag:   false,
			DuplicateReason: core.UniqueReason,
		},
		ProcessedAt: time.Now(),
	}
	s.Publish(email, result)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListResultsNewestFirst(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "older")
	publishSample(s, "newer")

	rec := doRequest(s, http.MethodGet, "/api/results", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].EmailID)
	assert.Equal(t, "older", items[1].EmailID)
}

func TestGetResult(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	rec := doRequest(s, http.MethodGet, "/api/results/msg-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var item Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "msg-1", item.EmailID)
	assert.Nil(t, item.CorrectedAt)
}

func TestGetResultNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/results/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCorrectClassification(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	body := `{"primary_request_type":"Money Movement Inbound","sub_request_type":"Principal"}`
	rec := doRequest(s, http.MethodPut, "/api/results/msg-1/classification", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var item Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "Money Movement Inbound", item.Result.Classification.PrimaryRequestType)
	assert.Equal(t, "Principal", item.Result.Classification.SubRequestType)
	assert.NotNil(t, item.CorrectedAt)

	// The original classification stays as the pipeline produced it.
	assert.Equal(t, "Fee Payment", item.Original.PrimaryRequestType)
	assert.Equal(t, 0.9, item.Result.Classification.ConfidenceScore, "confidence is not editable")
}

func TestCorrectClassificationRejectsUnknownPrimary(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	body := `{"primary_request_type":"Vacation Request"}`
	rec := doRequest(s, http.MethodPut, "/api/results/msg-1/classification", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrectClassificationRejectsMismatchedSubType(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	body := `{"primary_request_type":"Adjustment","sub_request_type":"Ongoing Fee"}`
	rec := doRequest(s, http.MethodPut, "/api/results/msg-1/classification", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrectClassificationRequiresPrimary(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	rec := doRequest(s, http.MethodPut, "/api/results/msg-1/classification", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrectClassificationNotFound(t *testing.T) {
	s := newTestServer(t)
	body := `{"primary_request_type":"Adjustment"}`
	rec := doRequest(s, http.MethodPut, "/api/results/nope/classification", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishCopiesOriginalClassification(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")

	item := s.byID["msg-1"]
	require.NotNil(t, item.Original)
	assert.Equal(t, item.Result.Classification, *item.Original)

	// The audit copy must be independent of the live classification.
	item.Result.Classification.PrimaryRequestType = "Adjustment"
	assert.Equal(t, "Fee Payment", item.Original.PrimaryRequestType)
}

func TestPublishIgnoresDuplicateIDs(t *testing.T) {
	s := newTestServer(t)
	publishSample(s, "msg-1")
	publishSample(s, "msg-1")

	rec := doRequest(s, http.MethodGet, "/api/results", "")
	var items []Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
