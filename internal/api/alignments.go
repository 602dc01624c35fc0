package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/RishiKendai/pairwise/internal/plagiarism"
	"github.com/RishiKendai/pairwise/internal/repository"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// uploadError is a rejected upload with its HTTP mapping
type uploadError struct {
	status  int
	code    string
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

// CreateAlignment compares the multipart files file1 and file2. With
// ?async=true the request is queued and 202 is returned.
func (h *Handler) CreateAlignment(c *gin.Context) {
	req, err := h.readUploads(c)
	if err != nil {
		var upErr *uploadError
		if errors.As(err, &upErr) {
			abortWithError(c, upErr.status, upErr.message, upErr.code)
			return
		}
		log.Error().Err(err).Msg("Failed to read uploads")
		abortWithError(c, http.StatusBadRequest, "Failed to read uploaded files", "INVALID_REQUEST")
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		h.enqueueAlignment(c, req)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.computeTimeout)
	defer cancel()

	select {
	case h.computeSem <- struct{}{}:
		defer func() { <-h.computeSem }()
	case <-ctx.Done():
		abortWithError(c, http.StatusServiceUnavailable, "Server busy, try again later", "SERVER_BUSY")
		return
	}

	record, err := h.deps.Recorder.Record(ctx, req)
	if err != nil {
		h.writeComputeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handler) enqueueAlignment(c *gin.Context, req *models.AlignmentRequest) {
	if h.deps.Producer == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Asynchronous alignment is not available", "ASYNC_UNAVAILABLE")
		return
	}

	if _, err := h.deps.Producer.Enqueue(c.Request.Context(), req); err != nil {
		log.Error().Err(err).Str("userId", req.UserID).Msg("Failed to enqueue alignment")
		abortWithError(c, http.StatusInternalServerError, "Failed to queue alignment", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusAccepted, models.AlignmentAccepted{
		AlignmentID: req.AlignmentID,
		Step:        models.StepQueued,
	})
}

func (h *Handler) writeComputeError(c *gin.Context, err error) {
	var sizeErr *alignment.SequenceTooLargeError
	switch {
	case errors.Is(err, tokenizer.ErrTokenization):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error(), "UNDECODABLE_INPUT")
	case errors.As(err, &sizeErr):
		abortWithError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Inputs have %d and %d tokens, too many to align", sizeErr.First, sizeErr.Second),
			"INPUT_TOO_LARGE")
	case errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusGatewayTimeout, "Alignment timed out", "COMPUTATION_TIMEOUT")
	case errors.Is(err, plagiarism.ErrPoolClosed), errors.Is(err, context.Canceled):
		abortWithError(c, http.StatusServiceUnavailable, "Server is shutting down", "UNAVAILABLE")
	default:
		log.Error().Err(err).Msg("Alignment failed")
		abortWithError(c, http.StatusInternalServerError, "Alignment failed", "INTERNAL_ERROR")
	}
}

// readUploads validates both files: present, allowed extension, within the
// size limit, decodable as text. Contents are trimmed.
func (h *Handler) readUploads(c *gin.Context) (*models.AlignmentRequest, error) {
	req := &models.AlignmentRequest{UserID: userID(c)}

	var err error
	req.File1Name, req.File1Content, err = h.readUpload(c, "file1")
	if err != nil {
		return nil, err
	}
	req.File2Name, req.File2Content, err = h.readUpload(c, "file2")
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (h *Handler) readUpload(c *gin.Context, field string) (string, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", "", &uploadError{
			status:  http.StatusBadRequest,
			code:    "MISSING_FILE",
			message: fmt.Sprintf("Both file1 and file2 are required, %s is missing", field),
		}
	}

	name := filepath.Base(fh.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := h.allowedExt[ext]; !ok {
		return "", "", &uploadError{
			status:  http.StatusBadRequest,
			code:    "INVALID_FILE_TYPE",
			message: fmt.Sprintf("%s: only %s files are allowed", name, strings.Join(h.cfg.AllowedExtensions, ", ")),
		}
	}

	if fh.Size > h.cfg.MaxUploadSize {
		return "", "", tooLarge(name, h.cfg.MaxUploadSize)
	}

	raw, err := readLimited(fh, h.cfg.MaxUploadSize)
	if err != nil {
		return "", "", err
	}
	if int64(len(raw)) > h.cfg.MaxUploadSize {
		return "", "", tooLarge(name, h.cfg.MaxUploadSize)
	}

	text, err := tokenizer.Decode(raw)
	if err != nil {
		return "", "", &uploadError{
			status:  http.StatusUnprocessableEntity,
			code:    "UNDECODABLE_INPUT",
			message: fmt.Sprintf("%s: %v", name, err),
		}
	}

	return name, strings.TrimSpace(text), nil
}

func readLimited(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return raw, nil
}

func tooLarge(name string, limit int64) error {
	return &uploadError{
		status:  http.StatusRequestEntityTooLarge,
		code:    "FILE_TOO_LARGE",
		message: fmt.Sprintf("%s exceeds the %s upload limit", name, humanize.Bytes(uint64(limit))),
	}
}

// ListAlignments returns the caller's history, newest first
func (h *Handler) ListAlignments(c *gin.Context) {
	limit := int64(defaultHistoryLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer", "INVALID_REQUEST")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	alignments, err := h.deps.Alignments.ListAlignmentsByUser(c.Request.Context(), userID(c), limit)
	if err != nil {
		log.Error().Err(err).Str("userId", userID(c)).Msg("Failed to list alignments")
		abortWithError(c, http.StatusInternalServerError, "Failed to load history", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, gin.H{"alignments": alignments})
}

func (h *Handler) GetAlignment(c *gin.Context) {
	record, err := h.deps.Alignments.GetAlignment(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "Alignment not found", "NOT_FOUND")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("alignmentId", c.Param("id")).Msg("Failed to load alignment")
		abortWithError(c, http.StatusInternalServerError, "Failed to load alignment", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetAlignmentStatus reports the step of a queued alignment. Finished
// alignments whose status has expired report completed.
func (h *Handler) GetAlignmentStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if h.deps.Statuses != nil {
		step, err := h.deps.Statuses.GetStatus(ctx, id)
		if err == nil {
			c.JSON(http.StatusOK, models.StatusResponse{AlignmentID: id, Step: step})
			return
		}
		if !errors.Is(err, plagiarism.ErrStatusNotFound) {
			log.Error().Err(err).Str("alignmentId", id).Msg("Failed to read status")
			abortWithError(c, http.StatusInternalServerError, "Failed to read status", "INTERNAL_ERROR")
			return
		}
	}

	_, err := h.deps.Alignments.GetAlignment(ctx, userID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "Alignment not found", "NOT_FOUND")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("alignmentId", id).Msg("Failed to load alignment")
		abortWithError(c, http.StatusInternalServerError, "Failed to read status", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{AlignmentID: id, Step: models.StepCompleted})
}
