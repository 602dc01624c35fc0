package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RishiKendai/pairwise/internal/config"
	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type AlignmentReader interface {
	GetAlignment(ctx context.Context, userID, id string) (*models.Alignment, error)
	ListAlignmentsByUser(ctx context.Context, userID string, limit int64) ([]*models.Alignment, error)
}

type AlignmentRecorder interface {
	Record(ctx context.Context, req *models.AlignmentRequest) (*models.Alignment, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, req *models.AlignmentRequest) (string, error)
}

type StatusReader interface {
	GetStatus(ctx context.Context, alignmentID string) (models.Step, error)
}

// Dependencies are the stores and services the handlers use
type Dependencies struct {
	Users      UserStore
	Alignments AlignmentReader
	Recorder   AlignmentRecorder
	Producer   Enqueuer
	Statuses   StatusReader
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	deps           Dependencies
	computeSem     chan struct{}
	computeTimeout time.Duration
	allowedExt     map[string]struct{}
}

func NewHandler(cfg *config.Config, deps Dependencies) *Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[ext] = struct{}{}
	}

	return &Handler{
		cfg:            cfg,
		deps:           deps,
		computeSem:     make(chan struct{}, cfg.MaxConcurrentCompute),
		computeTimeout: cfg.ComputationTimeout,
		allowedExt:     allowed,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
