package plagiarism

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg alignment.Config, cache ResultCache) *Service {
	t.Helper()
	pool := NewWorkerPool(context.Background(), 2)
	t.Cleanup(pool.Close)

	aligner, err := alignment.New(cfg)
	require.NoError(t, err)

	return NewService(pool, aligner, tokenizer.DefaultPolicy(), cache, DefaultRiskThresholds())
}

func TestCompareRenamedFunction(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)

	c, err := svc.Compare(context.Background(), "def foo(): return 1", "def bar(): return 1")
	require.NoError(t, err)

	assert.Equal(t, 7, c.FirstTokens)
	assert.Equal(t, 7, c.SecondTokens)
	assert.InDelta(t, 6.0/7.0, c.Result.Similarity, 1e-9)
	assert.Equal(t, RiskNearCopy, c.Risk)
	require.NotNil(t, c.TileCoverage)
	// "( ) : return 1" is the only run long enough to tile
	assert.InDelta(t, 10.0/14.0, *c.TileCoverage, 1e-9)
	assert.False(t, c.Cached)
}

func TestCompareIdenticalInputs(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)
	src := "for i in range(10):\n    total += i * i\nprint(total)\n"

	c, err := svc.Compare(context.Background(), src, src)
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.Result.Similarity)
	require.NotNil(t, c.TileCoverage)
	assert.Equal(t, 1.0, *c.TileCoverage)
}

func TestCompareEmptyInputs(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)

	c, err := svc.Compare(context.Background(), "# only a comment\n", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Result.Similarity)
	assert.Equal(t, 0, c.Result.Len())

	c, err = svc.Compare(context.Background(), "x = 1", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Result.Similarity)
	assert.Equal(t, RiskClean, c.Risk)
}

func TestCompareUndecodableInput(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)

	_, err := svc.Compare(context.Background(), "x = 1", "y = \xff")
	require.Error(t, err)

	var tokErr *tokenizer.TokenizationError
	assert.True(t, errors.As(err, &tokErr))
	assert.True(t, IsInputError(err))
}

func TestCompareTooLarge(t *testing.T) {
	cfg := alignment.DefaultConfig()
	cfg.MaxCells = 4
	svc := newTestService(t, cfg, nil)

	_, err := svc.Compare(context.Background(), "a b c", "a b c")
	require.Error(t, err)

	var sizeErr *alignment.SequenceTooLargeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, 3, sizeErr.First)
	assert.True(t, IsInputError(err))
}

func TestCompareUsesCache(t *testing.T) {
	cache, err := NewLRUCache(8, time.Minute)
	require.NoError(t, err)
	svc := newTestService(t, alignment.DefaultConfig(), cache)

	first, err := svc.Compare(context.Background(), "a = b", "a = c")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.Compare(context.Background(), "a = b", "a = c")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Result, second.Result)
	assert.False(t, first.Cached, "cached copy must not alter the stored value")
}

func TestCompareCancelledContext(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Compare(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareAfterPoolClosed(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	aligner, err := alignment.New(alignment.DefaultConfig())
	require.NoError(t, err)
	svc := NewService(pool, aligner, tokenizer.DefaultPolicy(), nil, DefaultRiskThresholds())
	pool.Close()

	_, err = svc.Compare(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestCompareConcurrent(t *testing.T) {
	svc := newTestService(t, alignment.DefaultConfig(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := svc.Compare(context.Background(), "x = f(a, b)", "x = f(b, a)")
			if err != nil {
				errs <- err
				return
			}
			if c.Result.Matches != 6 {
				errs <- errors.New("unexpected match count")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestCacheKey(t *testing.T) {
	policy := tokenizer.DefaultPolicy()
	cfg := alignment.DefaultConfig()

	base := CacheKey(policy, cfg, "a", "b")
	assert.Len(t, base, 64)
	assert.Equal(t, base, CacheKey(policy, cfg, "a", "b"))
	assert.NotEqual(t, base, CacheKey(policy, cfg, "b", "a"))
	assert.NotEqual(t, base, CacheKey(policy, cfg, "ab", ""))

	cfg.GapPenalty = -3
	assert.NotEqual(t, base, CacheKey(policy, cfg, "a", "b"))

	policy.Literals = tokenizer.LiteralsPlaceholder
	assert.NotEqual(t, base, CacheKey(policy, alignment.DefaultConfig(), "a", "b"))
}
