package plagiarism

import (
	"context"
	"slices"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
)

const (
	// MinTileLength is the shortest run of equal tokens counted as a tile
	MinTileLength = 5
	// MaxTilingWork bounds the grid cells visited over all tiling passes.
	// Each pass visits m·n cells.
	MaxTilingWork int64 = 16_000_000
)

// TileCoverage returns 2·tiled/(m+n) where tiled is the number of tokens
// covered by Greedy String Tiling with MinTileLength. Unlike the alignment
// it is not fooled by reordered blocks. It is nil when either input is
// empty, when tiling would exceed MaxTilingWork, or when ctx is done first.
func TileCoverage(ctx context.Context, first, second tokenizer.Sequence) *float64 {
	m, n := len(first), len(second)
	if m == 0 || n == 0 {
		return nil
	}

	tiled, _, ok := greedyStringTiling(ctx, first, second, MinTileLength, MaxTilingWork)
	if !ok {
		return nil
	}
	coverage := 2.0 * float64(tiled) / float64(m+n)
	return &coverage
}

type tileStart struct {
	first, second int
}

// greedyStringTiling marks, pass after pass, every unoccluded common run of
// the longest remaining length (at least minLength) and returns the number
// of tokens marked per side and the cells visited. ok is false when budget
// or ctx stopped it before the tiling was complete.
func greedyStringTiling(ctx context.Context, first, second tokenizer.Sequence, minLength int, budget int64) (tiled int, work int64, ok bool) {
	a, b := internTokens(first, second)
	m, n := len(a), len(b)
	passCost := int64(m) * int64(n)

	markedFirst := make([]bool, m)
	markedSecond := make([]bool, n)
	next := make([]int, n+1)
	cur := make([]int, n+1)
	var starts []tileStart

	for {
		if ctx.Err() != nil || work+passCost > budget {
			return tiled, work, false
		}
		work += passCost

		// cur[j] is the length of the unmarked common run starting at (i, j)
		longest := 0
		starts = starts[:0]
		clear(next)
		for i := m - 1; i >= 0; i-- {
			cur[n] = 0
			for j := n - 1; j >= 0; j-- {
				if markedFirst[i] || markedSecond[j] || a[i] != b[j] {
					cur[j] = 0
					continue
				}
				run := next[j+1] + 1
				cur[j] = run
				if run < minLength || run < longest {
					continue
				}
				if run > longest {
					longest = run
					starts = starts[:0]
				}
				starts = append(starts, tileStart{first: i, second: j})
			}
			next, cur = cur, next
		}

		if longest == 0 {
			return tiled, work, true
		}

		slices.SortFunc(starts, func(x, y tileStart) int {
			if x.first != y.first {
				return x.first - y.first
			}
			return x.second - y.second
		})
		for _, s := range starts {
			if occluded(markedFirst[s.first:s.first+longest]) || occluded(markedSecond[s.second:s.second+longest]) {
				continue
			}
			for k := 0; k < longest; k++ {
				markedFirst[s.first+k] = true
				markedSecond[s.second+k] = true
			}
			tiled += longest
		}
	}
}

func occluded(marked []bool) bool {
	return slices.Contains(marked, true)
}

// internTokens maps both sequences to ids that are equal exactly when the
// tokens are Equal
func internTokens(first, second tokenizer.Sequence) ([]int, []int) {
	type key struct {
		category tokenizer.Category
		value    string
	}
	ids := make(map[key]int)
	intern := func(seq tokenizer.Sequence) []int {
		out := make([]int, len(seq))
		for i, tok := range seq {
			k := key{category: tok.Category, value: tok.Value}
			id, ok := ids[k]
			if !ok {
				id = len(ids)
				ids[k] = id
			}
			out[i] = id
		}
		return out
	}
	return intern(first), intern(second)
}
