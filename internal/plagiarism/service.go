package plagiarism

import (
	"context"
	"errors"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/metrics"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/rs/zerolog/log"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Comparison is the outcome of comparing two source texts
type Comparison struct {
	Result       *alignment.Result `json:"result"`
	FirstTokens  int               `json:"firstTokens"`
	SecondTokens int               `json:"secondTokens"`
	TileCoverage *float64          `json:"tileCoverage,omitempty"`
	Risk         string            `json:"risk"`
	Policy       string            `json:"policy"`
	Cached       bool              `json:"-"`
}

// Service tokenizes and aligns pairs of inputs on a worker pool. Both
// inputs of every comparison use the service's single policy.
type Service struct {
	pool       *WorkerPool
	aligner    *alignment.Aligner
	policy     tokenizer.Policy
	cache      ResultCache
	thresholds RiskThresholds
}

// NewService wires a comparison service. cache may be nil.
func NewService(pool *WorkerPool, aligner *alignment.Aligner, policy tokenizer.Policy, cache ResultCache, thresholds RiskThresholds) *Service {
	return &Service{
		pool:       pool,
		aligner:    aligner,
		policy:     policy,
		cache:      cache,
		thresholds: thresholds,
	}
}

func (s *Service) Policy() tokenizer.Policy {
	return s.policy
}

// Compare returns the alignment of first against second. Errors wrap
// *tokenizer.TokenizationError or *alignment.SequenceTooLargeError when
// the inputs are at fault.
func (s *Service) Compare(ctx context.Context, first, second string) (*Comparison, error) {
	key := CacheKey(s.policy, s.aligner.Config(), first, second)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			hit := *cached
			hit.Cached = true
			metrics.AlignmentCount.WithLabelValues("cached").Inc()
			return &hit, nil
		}
	}

	job := newAlignmentJob(ctx, first, second, s.policy, s.aligner)
	if err := s.pool.Submit(ctx, job); err != nil {
		return nil, err
	}

	var outcome jobOutcome
	select {
	case outcome = <-job.done:
	case <-ctx.Done():
		metrics.AlignmentCount.WithLabelValues("timeout").Inc()
		return nil, ctx.Err()
	case <-s.pool.Done():
		return nil, ErrPoolClosed
	}

	if outcome.err != nil {
		metrics.AlignmentCount.WithLabelValues(failureLabel(outcome.err)).Inc()
		return nil, outcome.err
	}

	comparison := outcome.comparison
	comparison.Risk = RiskLevel(comparison.Result.Similarity, s.thresholds)

	metrics.AlignmentCount.WithLabelValues("completed").Inc()
	metrics.AlignmentDuration.Observe(outcome.elapsed.Seconds())
	metrics.AlignmentSimilarity.Observe(comparison.Result.Similarity)
	metrics.AlignmentCells.Observe(float64(outcome.cells))

	log.Debug().
		Int("firstTokens", comparison.FirstTokens).
		Int("secondTokens", comparison.SecondTokens).
		Float64("similarity", comparison.Result.Similarity).
		Dur("elapsed", outcome.elapsed).
		Msg("Alignment computed")

	if s.cache != nil {
		s.cache.Set(ctx, key, comparison)
	}
	return comparison, nil
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, tokenizer.ErrTokenization):
		return "undecodable"
	case errors.Is(err, alignment.ErrSequenceTooLarge):
		return "too_large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "failed"
}

// IsInputError reports whether err is the caller's fault rather than the
// service's, so retrying cannot help
func IsInputError(err error) bool {
	return errors.Is(err, tokenizer.ErrTokenization) || errors.Is(err, alignment.ErrSequenceTooLarge)
}
