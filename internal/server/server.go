// Package server exposes the analysis pipeline over HTTP for push-driven
// workflows like CI hooks.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devflow/chronicle-go/internal/git"
	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/pipeline"
)

// analyzeTimeout bounds one webhook-triggered analysis run.
const analyzeTimeout = 10 * time.Minute

// AnalyzeRequest is the webhook payload.
type AnalyzeRequest struct {
	RepoPath string   `json:"repo_path" binding:"required"`
	Formats  []string `json:"formats"`
}

// Server wires the pipeline coordinator behind HTTP endpoints. Analyses run
// asynchronously; the webhook responds as soon as the job is accepted.
type Server struct {
	coordinator *pipeline.Coordinator
	logger      *logrus.Logger
	engine      *gin.Engine

	mu      sync.Mutex
	running bool
	lastRun *models.Bundle
	lastErr error
}

// New creates a webhook server around the coordinator.
func New(coordinator *pipeline.Coordinator, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		coordinator: coordinator,
		logger:      logger,
		engine:      gin.New(),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/webhook/analyze", s.handleAnalyze)

	return s
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.WithField("addr", addr).Info("Webhook server listening")
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"analysis_running": running,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := git.Validate(req.RepoPath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.runAnalysis(req)

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "accepted",
		"repo_path": req.RepoPath,
	})
}

func (s *Server) runAnalysis(req AnalyzeRequest) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	src, err := git.NewSource(req.RepoPath, s.logger)
	if err != nil {
		s.recordResult(nil, err)
		return
	}

	bundle, err := s.coordinator.Run(ctx, pipeline.SourceFunc(
		func(ctx context.Context, limit int) ([]models.Commit, error) {
			return src.RecentCommits(ctx, limit, "")
		}), req.RepoPath, req.Formats)
	s.recordResult(bundle, err)

	if err != nil {
		s.logger.WithError(err).WithField("repo", req.RepoPath).Error("Webhook analysis failed")
		return
	}
	s.logger.WithField("repo", req.RepoPath).Info("Webhook analysis complete")
}

func (s *Server) recordResult(bundle *models.Bundle, err error) {
	s.mu.Lock()
	s.lastRun = bundle
	s.lastErr = err
	s.mu.Unlock()
}
