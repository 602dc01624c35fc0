package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// RetryHandler retries failed work with exponential backoff and moves
// messages that still fail to a dead-letter stream
type RetryHandler struct {
	client      redis.Cmdable
	dlqKey      string
	maxAttempts int
	baseDelay   time.Duration
}

func NewRetryHandler(client redis.Cmdable, dlqKey string) *RetryHandler {
	return &RetryHandler{
		client:      client,
		dlqKey:      dlqKey,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
}

// RetryWithBackoff runs fn up to maxAttempts times. Input errors and
// computation timeouts are not retried. When fn never succeeds the message is dead-lettered and the last
// error is returned.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, msgID string, fields map[string]interface{}) error {
	var err error
	attempt := 0
	for attempt < h.maxAttempts {
		attempt++
		if err = fn(); err == nil {
			return nil
		}
		if isPermanent(err) {
			log.Warn().Err(err).Str("messageId", msgID).Msg("Permanent failure, not retrying")
			break
		}
		if attempt == h.maxAttempts {
			break
		}

		delay := h.baseDelay << (attempt - 1)
		log.Warn().
			Err(err).
			Str("messageId", msgID).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("Processing failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if dlqErr := h.deadLetter(ctx, msgID, fields, err, attempt); dlqErr != nil {
		log.Error().Err(dlqErr).Str("messageId", msgID).Msg("Failed to move message to dead-letter stream")
	}
	return err
}

// isPermanent is true for failures a retry would repeat: bad input, or a
// comparison that already used its whole time budget
func isPermanent(err error) bool {
	return plagiarism.IsInputError(err) || errors.Is(err, context.DeadlineExceeded)
}

func (h *RetryHandler) deadLetter(ctx context.Context, msgID string, fields map[string]interface{}, cause error, attempts int) error {
	values := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		values[k] = v
	}
	values["originalId"] = msgID
	values["error"] = cause.Error()
	values["attempts"] = attempts
	values["failedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{Stream: h.dlqKey, Values: values}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead-letter stream: %w", err)
	}

	log.Warn().
		Str("messageId", msgID).
		Str("dlq", h.dlqKey).
		Int("attempts", attempts).
		Msg("Message moved to dead-letter stream")
	return nil
}
