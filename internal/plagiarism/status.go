package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "alignment_status:"
	statusTTL       = 12 * time.Hour
)

var ErrStatusNotFound = errors.New("alignment status not found")

func statusKey(alignmentID string) string {
	return statusKeyPrefix + alignmentID
}

func UpdateStatus(ctx context.Context, rdb redis.Cmdable, alignmentID string, step models.Step) error {
	if !step.Valid() {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(alignmentID)

	err := rdb.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("alignmentId", alignmentID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("alignmentId", alignmentID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns ErrStatusNotFound when the key is missing or expired
func GetStatus(ctx context.Context, rdb redis.Cmdable, alignmentID string) (models.Step, error) {
	value, err := rdb.Get(ctx, statusKey(alignmentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStatusNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(value), nil
}

// StatusStore reads and writes alignment steps in Redis
type StatusStore struct {
	rdb redis.Cmdable
}

func NewStatusStore(rdb redis.Cmdable) *StatusStore {
	return &StatusStore{rdb: rdb}
}

func (s *StatusStore) GetStatus(ctx context.Context, alignmentID string) (models.Step, error) {
	return GetStatus(ctx, s.rdb, alignmentID)
}
