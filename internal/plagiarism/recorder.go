package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/RishiKendai/pairwise/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Comparer interface {
	Compare(ctx context.Context, first, second string) (*Comparison, error)
}

// AlignmentStore persists alignment history
type AlignmentStore interface {
	InsertAlignment(ctx context.Context, alignment *models.Alignment) error
	ListRecentAlignmentIDs(ctx context.Context, userID string, n int) ([]string, error)
}

// UploadArchive keeps uploaded files of recent alignments on disk
type UploadArchive interface {
	Save(userID, alignmentID string, files ...storage.File) (string, error)
	Prune(userID string, keep []string) ([]string, error)
}

// Recorder runs a comparison and records it: history row, uploaded files
// and upload retention
type Recorder struct {
	comparer  Comparer
	store     AlignmentStore
	uploads   UploadArchive
	statuses  redis.Cmdable
	retention int
	timeout   time.Duration
}

// NewRecorder wires a recorder. uploads and statuses may be nil.
func NewRecorder(comparer Comparer, store AlignmentStore, uploads UploadArchive, statuses redis.Cmdable, retention int, timeout time.Duration) *Recorder {
	return &Recorder{
		comparer:  comparer,
		store:     store,
		uploads:   uploads,
		statuses:  statuses,
		retention: retention,
		timeout:   timeout,
	}
}

// Record compares both files of req and stores the result. A missing
// AlignmentID is generated.
func (r *Recorder) Record(ctx context.Context, req *models.AlignmentRequest) (*models.Alignment, error) {
	if req.AlignmentID == "" {
		req.AlignmentID = uuid.NewString()
	}

	comparison, err := r.comparer.Compare(ctx, req.File1Content, req.File2Content)
	if err != nil {
		return nil, err
	}

	record := NewAlignmentRecord(req, comparison)
	if err := r.store.InsertAlignment(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store alignment: %w", err)
	}

	r.archiveUploads(ctx, req)

	log.Info().
		Str("alignmentId", record.ID).
		Str("userId", record.UserID).
		Float64("similarity", record.Similarity).
		Str("risk", record.Risk).
		Bool("cached", comparison.Cached).
		Msg("Alignment recorded")

	return record, nil
}

// Process is the stream entry point: Record with a timeout, tracking the
// step in Redis
func (r *Recorder) Process(ctx context.Context, req *models.AlignmentRequest) error {
	r.updateStatus(ctx, req.AlignmentID, models.StepProcessing)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if _, err := r.Record(runCtx, req); err != nil {
		r.updateStatus(ctx, req.AlignmentID, models.StepFailed)
		return err
	}

	r.updateStatus(ctx, req.AlignmentID, models.StepCompleted)
	return nil
}

// archiveUploads failures are logged only; the history row is already stored
func (r *Recorder) archiveUploads(ctx context.Context, req *models.AlignmentRequest) {
	if r.uploads == nil {
		return
	}

	_, err := r.uploads.Save(req.UserID, req.AlignmentID,
		storage.File{Name: req.File1Name, Content: []byte(req.File1Content)},
		storage.File{Name: req.File2Name, Content: []byte(req.File2Content)},
	)
	if err != nil {
		log.Warn().Err(err).Str("alignmentId", req.AlignmentID).Msg("Failed to save uploads")
		return
	}

	keep, err := r.store.ListRecentAlignmentIDs(ctx, req.UserID, r.retention)
	if err != nil {
		log.Warn().Err(err).Str("userId", req.UserID).Msg("Failed to list recent alignments, skipping prune")
		return
	}
	if _, err := r.uploads.Prune(req.UserID, keep); err != nil {
		log.Warn().Err(err).Str("userId", req.UserID).Msg("Failed to prune uploads")
	}
}

func (r *Recorder) updateStatus(ctx context.Context, alignmentID string, step models.Step) {
	if r.statuses == nil || alignmentID == "" {
		return
	}
	if err := UpdateStatus(ctx, r.statuses, alignmentID, step); err != nil {
		log.Warn().Err(err).Str("alignmentId", alignmentID).Msg("Failed to update status")
	}
}

// NewAlignmentRecord flattens a comparison into its history row
func NewAlignmentRecord(req *models.AlignmentRequest, c *Comparison) *models.Alignment {
	res := c.Result
	return &models.Alignment{
		ID:            req.AlignmentID,
		UserID:        req.UserID,
		File1Name:     req.File1Name,
		File2Name:     req.File2Name,
		File1Content:  req.File1Content,
		File2Content:  req.File2Content,
		AlignedFirst:  alignedRow(res.AlignedFirst),
		AlignedSecond: alignedRow(res.AlignedSecond),
		Operations:    res.OperationNames(),
		Similarity:    res.Similarity,
		Score:         res.Score,
		Matches:       res.Matches,
		Substitutions: res.Substitutions,
		GapsInFirst:   res.GapsInFirst,
		GapsInSecond:  res.GapsInSecond,
		FirstTokens:   c.FirstTokens,
		SecondTokens:  c.SecondTokens,
		TileCoverage:  c.TileCoverage,
		Risk:          c.Risk,
		Policy:        c.Policy,
		CreatedAt:     time.Now().UTC(),
	}
}

func alignedRow(slots []alignment.Slot) []models.AlignedToken {
	row := make([]models.AlignedToken, len(slots))
	for i, slot := range slots {
		if slot.Gap {
			row[i] = models.AlignedToken{Gap: true}
			continue
		}
		row[i] = models.AlignedToken{Value: slot.Token.Value}
	}
	return row
}
