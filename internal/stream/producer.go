package stream

import (
	"context"
	"fmt"

	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/RishiKendai/pairwise/internal/plagiarism"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Producer queues alignment requests for the consumer group
type Producer struct {
	client    redis.Cmdable
	streamKey string
}

func NewProducer(client redis.Cmdable, streamKey string) *Producer {
	return &Producer{client: client, streamKey: streamKey}
}

// Enqueue adds req to the stream, generating an alignment id when missing,
// and marks it queued. It returns the stream message id.
func (p *Producer) Enqueue(ctx context.Context, req *models.AlignmentRequest) (string, error) {
	if req.AlignmentID == "" {
		req.AlignmentID = uuid.NewString()
	}

	msgID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: requestFields(req),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue alignment: %w", err)
	}

	if err := plagiarism.UpdateStatus(ctx, p.client, req.AlignmentID, models.StepQueued); err != nil {
		log.Warn().Err(err).Str("alignmentId", req.AlignmentID).Msg("Failed to set queued status")
	}

	log.Debug().
		Str("alignmentId", req.AlignmentID).
		Str("messageId", msgID).
		Msg("Alignment enqueued")

	return msgID, nil
}
