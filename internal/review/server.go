// Package review serves processed triage results over HTTP for human
// review. Reviewers can read every result and correct the classification;
// extraction and duplicate verdicts are read-only.
package review

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var _ ports.ReviewSurface = (*Server)(nil)

// Item is one reviewable result. Original holds the classification as the
// pipeline produced it and never changes; Result.Classification reflects
// any reviewer correction.
type Item struct {
	EmailID     string                     `json:"email_id"`
	Subject     string                     `json:"subject"`
	From        string                     `json:"from"`
	Date        string                     `json:"date"`
	Result      *core.ProcessedEmailResult `json:"result"`
	Original    *core.ClassificationResult `json:"original_classification"`
	CorrectedAt *time.Time                 `json:"corrected_at,omitempty"`
}

// correctionRequest is the body of a classification correction.
type correctionRequest struct {
	PrimaryRequestType string `json:"primary_request_type" binding:"required"`
	SubRequestType     string `json:"sub_request_type"`
}

// Server exposes the review API. It keeps results in memory for the
// lifetime of the process, newest first.
type Server struct {
	taxonomy *core.RequestTaxonomy
	logger   *zap.Logger
	srv      *http.Server

	mu    sync.RWMutex
	items []*Item
	byID  map[string]*Item
}

// NewServer creates a review server listening on addr once started.
func NewServer(addr string, taxonomy *core.RequestTaxonomy, logger *zap.Logger) *Server {
	s := &Server{
		taxonomy: taxonomy,
		logger:   logger,
		byID:     make(map[string]*Item),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/results", s.listResults)
		api.GET("/results/:id", s.getResult)
		api.PUT("/results/:id/classification", s.correctClassification)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.srv = &http.Server{Addr: addr, Handler: router}
	return s
}

// Publish adds a processed result to the review queue.
func (s *Server) Publish(email *core.EmailRecord, result *core.ProcessedEmailResult) {
	original := result.Classification
	item := &Item{
		EmailID:  email.ID,
		Subject:  email.Subject,
		From:     email.From,
		Date:     email.Date,
		Result:   result,
		Original: &original,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[email.ID]; exists {
		return
	}
	s.items = append([]*Item{item}, s.items...)
	s.byID[email.ID] = item
}

// Start begins serving in the background, returning once the listener
// goroutine is launched.
func (s *Server) Start() error {
	s.logger.Info("Starting review server", zap.String("address", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Review server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) listResults(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, s.items)
}

func (s *Server) getResult(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.byID[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// correctClassification applies a reviewer correction. Only the primary
// and sub request type change; confidence and reason stay as produced.
func (s *Server) correctClassification(c *gin.Context) {
	var req correctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.taxonomy.HasPrimary(req.PrimaryRequestType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown primary request type: " + req.PrimaryRequestType,
		})
		return
	}
	if req.SubRequestType != "" && !s.taxonomy.HasSubType(req.PrimaryRequestType, req.SubRequestType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown sub request type: " + req.SubRequestType,
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}

	item.Result.Classification.PrimaryRequestType = req.PrimaryRequestType
	item.Result.Classification.SubRequestType = req.SubRequestType
	now := time.Now().UTC()
	item.CorrectedAt = &now

	s.logger.Info("Classification corrected",
		zap.String("email_id", item.EmailID),
		zap.String("primary_request_type", req.PrimaryRequestType))
	c.JSON(http.StatusOK, item)
}
