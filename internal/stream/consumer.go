package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	readBatchSize       = 10
	readBlock           = time.Second
	pendingScanCount    = 100
	claimMinIdle        = time.Minute
	pelRecoveryInterval = 30 * time.Second
	trimInterval        = time.Hour
)

// Processor handles one queued alignment
type Processor interface {
	Process(ctx context.Context, req *models.AlignmentRequest) error
}

// Consumer reads alignment requests from a stream as a member of a
// consumer group. Messages left pending by a crashed member are claimed
// after claimMinIdle.
type Consumer struct {
	client            redis.Cmdable
	streamKey         string
	group             string
	name              string
	processor         Processor
	retryHandler      *RetryHandler
	retentionDuration time.Duration
	lastPELCheck      time.Time
}

func NewConsumer(
	client redis.Cmdable,
	streamKey string,
	group string,
	name string,
	processor Processor,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:            client,
		streamKey:         streamKey,
		group:             group,
		name:              name,
		processor:         processor,
		retryHandler:      retryHandler,
		retentionDuration: retentionDuration,
	}
}

// Start blocks until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	if err := c.recoverPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending messages on startup")
	}
	c.lastPELCheck = time.Now()

	go c.trimPeriodically(ctx)

	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.group).
		Str("consumer", c.name).
		Dur("retention", c.retentionDuration).
		Msg("Stream consumer started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.poll(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Error consuming messages")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "$").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		log.Debug().Str("group", c.group).Msg("Consumer group already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	log.Info().Str("group", c.group).Str("stream", c.streamKey).Msg("Created consumer group")
	return nil
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > pelRecoveryInterval {
		if err := c.recoverPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending messages")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    readBatchSize,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream == c.streamKey {
			c.handleAll(ctx, s.Messages)
		}
	}
	return nil
}

// recoverPending claims messages idle in the group's pending list and
// processes them
func (c *Consumer) recoverPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  pendingScanCount,
		Idle:   claimMinIdle,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get pending messages: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	ids := make([]string, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.group,
		Consumer: c.name,
		MinIdle:  claimMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	if len(claimed) > 0 {
		log.Info().Int("claimed", len(claimed)).Msg("Claimed idle pending messages")
		c.handleAll(ctx, claimed)
	}
	return nil
}

func (c *Consumer) handleAll(ctx context.Context, messages []redis.XMessage) {
	for i := range messages {
		if err := c.handle(ctx, &messages[i]); err != nil {
			log.Error().Err(err).Str("messageId", messages[i].ID).Msg("Failed to process message")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	req, err := ParseAlignmentRequest(streamMsg)
	if err != nil {
		// unparseable messages would be redelivered forever
		c.acknowledge(ctx, msg.ID)
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.Process(ctx, req)
	}, msg.ID, deadLetterFields(req))

	if ctx.Err() != nil {
		// stays pending and is claimed after a restart
		return ctx.Err()
	}

	// failed messages were dead-lettered by the retry handler
	if ackErr := c.acknowledge(ctx, msg.ID); ackErr != nil && err == nil {
		return ackErr
	}
	return err
}

// trimStream drops entries older than the retention window
func (c *Consumer) trimStream(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoffTime", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old stream entries")
	}
	return nil
}

func (c *Consumer) trimPeriodically(ctx context.Context) {
	ticker := time.NewTicker(trimInterval)
	defer ticker.Stop()

	for {
		if err := c.trimStream(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to trim stream")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.group, messageID).Err(); err != nil {
		log.Error().Err(err).Str("messageId", messageID).Msg("Failed to acknowledge message")
		return err
	}
	log.Debug().Str("messageId", messageID).Msg("Message acknowledged")
	return nil
}
