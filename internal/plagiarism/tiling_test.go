package plagiarism

import (
	"context"
	"strings"
	"testing"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(s string) tokenizer.Sequence {
	return tokenizer.FromValues(strings.Fields(s)...)
}

func TestTileCoverageReorderedBlocks(t *testing.T) {
	first := values("a b c d e f g h i j k l")
	second := values("g h i j k l a b c d e f")

	coverage := TileCoverage(context.Background(), first, second)
	require.NotNil(t, coverage)
	assert.Equal(t, 1.0, *coverage)
}

func TestTileCoverageIgnoresShortRuns(t *testing.T) {
	first := values("a b c d x y z w")
	second := values("a b c d q r s t")

	coverage := TileCoverage(context.Background(), first, second)
	require.NotNil(t, coverage)
	assert.Equal(t, 0.0, *coverage)
}

func TestTileCoveragePartial(t *testing.T) {
	first := values("a b c d e x y")
	second := values("p a b c d e")

	coverage := TileCoverage(context.Background(), first, second)
	require.NotNil(t, coverage)
	assert.InDelta(t, 10.0/13.0, *coverage, 1e-12)
}

func TestTileCoverageSkipped(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, TileCoverage(ctx, nil, values("a b c d e")))
	assert.Nil(t, TileCoverage(ctx, values("a b c d e"), tokenizer.Sequence{}))

	seq := repeated(4001, func(int) string { return "x" })
	assert.Nil(t, TileCoverage(ctx, seq, seq), "one pass alone exceeds the work bound")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Nil(t, TileCoverage(cancelled, values("a b c d e"), values("a b c d e")))
}

func repeated(n int, value func(i int) string) tokenizer.Sequence {
	out := make([]string, n)
	for i := range out {
		out[i] = value(i)
	}
	return tokenizer.FromValues(out...)
}

func TestTilingManyEqualTilesTakesFewPasses(t *testing.T) {
	// every tile has length 5, so one pass marks all of them
	first := repeated(1000, func(int) string { return "x" })
	second := repeated(1000, func(i int) string {
		if i%6 == 5 {
			return "y"
		}
		return "x"
	})

	tiled, work, ok := greedyStringTiling(context.Background(), first, second, MinTileLength, MaxTilingWork)
	require.True(t, ok)
	assert.Equal(t, 830, tiled)
	assert.Equal(t, int64(2*1000*1000), work, "one marking pass and one empty pass")

	coverage := TileCoverage(context.Background(), first, second)
	require.NotNil(t, coverage)
	assert.InDelta(t, 0.83, *coverage, 1e-12)
}

func TestTilingStopsAtBudget(t *testing.T) {
	first := values("a b c d e f g h i j")
	second := values("f g h i j a b c d e")

	tiled, work, ok := greedyStringTiling(context.Background(), first, second, MinTileLength, 150)
	assert.False(t, ok)
	assert.Equal(t, 10, tiled, "the first pass fits and marks both blocks")
	assert.Equal(t, int64(100), work)

	tiled, _, ok = greedyStringTiling(context.Background(), first, second, MinTileLength, 200)
	assert.True(t, ok)
	assert.Equal(t, 10, tiled)
}

func TestRiskLevel(t *testing.T) {
	thresholds := DefaultRiskThresholds()

	tests := []struct {
		similarity float64
		want       string
	}{
		{0.0, RiskClean},
		{0.29, RiskClean},
		{0.3, RiskSuspicious},
		{0.59, RiskSuspicious},
		{0.6, RiskHighlySuspicious},
		{0.849, RiskHighlySuspicious},
		{0.85, RiskNearCopy},
		{1.0, RiskNearCopy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.similarity, thresholds), "similarity %v", tt.similarity)
	}
}
