// Package alignment computes the global (Needleman-Wunsch) alignment of two
// token sequences and derives a similarity score from it.
//
// Ties between equally scored predecessors are broken, in order, by the
// number of matches on the path, then by the number of diagonal steps, then
// by direction: diagonal, then advancing the first sequence, then advancing
// the second. The first two keys do not depend on argument order, so
// Align(a, b) and Align(b, a) report the same similarity.
//
// "First" in the direction rule is the canonically smaller input: shorter,
// or on equal length the one whose first differing token sorts lower.
// Align(b, a) is therefore always the mirror image of Align(a, b).
package alignment

import (
	"cmp"
	"slices"
	"strings"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
)

// Aligner aligns token sequences under one immutable Config. It holds no
// mutable state and is safe for concurrent use.
type Aligner struct {
	cfg Config
}

func New(cfg Config) (*Aligner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aligner{cfg: cfg}, nil
}

func (a *Aligner) Config() Config {
	return a.cfg
}

// Align computes the global alignment of first and second. It fails only
// with a *SequenceTooLargeError when len(first)·len(second) exceeds
// Config.MaxCells.
func (a *Aligner) Align(first, second tokenizer.Sequence) (*Result, error) {
	m, n := len(first), len(second)
	if int64(m)*int64(n) > a.cfg.MaxCells {
		return nil, &SequenceTooLargeError{First: m, Second: n, Limit: a.cfg.MaxCells}
	}
	if m == 0 || n == 0 {
		return a.alignAgainstEmpty(first, second), nil
	}

	if compareSequences(first, second) > 0 {
		return a.alignCanonical(second, first).mirror(), nil
	}
	return a.alignCanonical(first, second), nil
}

func (a *Aligner) alignCanonical(first, second tokenizer.Sequence) *Result {
	dirs := acquireDirections(len(first)+1, len(second)+1)
	defer dirs.release()

	final := a.fill(first, second, dirs)
	return backtrace(first, second, dirs, final.score)
}

// compareSequences orders sequences by length, then token by token on
// category and value
func compareSequences(x, y tokenizer.Sequence) int {
	if len(x) != len(y) {
		return cmp.Compare(len(x), len(y))
	}
	for i := range x {
		if c := cmp.Compare(x[i].Category, y[i].Category); c != 0 {
			return c
		}
		if c := strings.Compare(x[i].Value, y[i].Value); c != 0 {
			return c
		}
	}
	return 0
}

// cell is the DP key of one grid position
type cell struct {
	score   int64
	matches int
	diags   int
}

func (c cell) beats(o cell) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	if c.matches != o.matches {
		return c.matches > o.matches
	}
	return c.diags > o.diags
}

// fill runs the recurrence row by row, keeping two rows of keys and every
// direction, and returns the key of cell (m,n).
func (a *Aligner) fill(first, second tokenizer.Sequence, dirs *directions) cell {
	m, n := len(first), len(second)
	gap := a.cfg.GapPenalty

	prev := make([]cell, n+1)
	cur := make([]cell, n+1)
	for j := 1; j <= n; j++ {
		prev[j] = cell{score: int64(j) * gap}
		dirs.set(0, j, fromLeft)
	}

	for i := 1; i <= m; i++ {
		cur[0] = cell{score: int64(i) * gap}
		dirs.set(i, 0, fromUp)
		x := first[i-1]

		for j := 1; j <= n; j++ {
			diag := prev[j-1]
			diag.diags++
			if x.Equal(second[j-1]) {
				diag.score += a.cfg.MatchBonus
				diag.matches++
			} else {
				diag.score += a.cfg.SubstitutionPenalty
			}
			best, dir := diag, fromDiagonal

			up := prev[j]
			up.score += gap
			if up.beats(best) {
				best, dir = up, fromUp
			}

			left := cur[j-1]
			left.score += gap
			if left.beats(best) {
				best, dir = left, fromLeft
			}

			cur[j] = best
			dirs.set(i, j, dir)
		}
		prev, cur = cur, prev
	}
	return prev[n]
}

func backtrace(first, second tokenizer.Sequence, dirs *directions, score int64) *Result {
	m, n := len(first), len(second)
	capacity := m + n
	alignedFirst := make([]Slot, 0, capacity)
	alignedSecond := make([]Slot, 0, capacity)
	ops := make([]Operation, 0, capacity)

	i, j := m, n
	for i > 0 || j > 0 {
		switch dirs.at(i, j) {
		case fromDiagonal:
			x, y := first[i-1], second[j-1]
			op := Substitute
			if x.Equal(y) {
				op = Match
			}
			alignedFirst = append(alignedFirst, Slot{Token: x})
			alignedSecond = append(alignedSecond, Slot{Token: y})
			ops = append(ops, op)
			i--
			j--
		case fromUp:
			alignedFirst = append(alignedFirst, Slot{Token: first[i-1]})
			alignedSecond = append(alignedSecond, Slot{Gap: true})
			ops = append(ops, InsertGapInSecond)
			i--
		default:
			alignedFirst = append(alignedFirst, Slot{Gap: true})
			alignedSecond = append(alignedSecond, Slot{Token: second[j-1]})
			ops = append(ops, InsertGapInFirst)
			j--
		}
	}

	slices.Reverse(alignedFirst)
	slices.Reverse(alignedSecond)
	slices.Reverse(ops)
	return newResult(alignedFirst, alignedSecond, ops, score)
}

// alignAgainstEmpty handles m == 0 or n == 0, where every token faces a gap
func (a *Aligner) alignAgainstEmpty(first, second tokenizer.Sequence) *Result {
	total := len(first) + len(second)
	alignedFirst := make([]Slot, 0, total)
	alignedSecond := make([]Slot, 0, total)
	ops := make([]Operation, 0, total)

	for _, tok := range first {
		alignedFirst = append(alignedFirst, Slot{Token: tok})
		alignedSecond = append(alignedSecond, Slot{Gap: true})
		ops = append(ops, InsertGapInSecond)
	}
	for _, tok := range second {
		alignedFirst = append(alignedFirst, Slot{Gap: true})
		alignedSecond = append(alignedSecond, Slot{Token: tok})
		ops = append(ops, InsertGapInFirst)
	}
	return newResult(alignedFirst, alignedSecond, ops, int64(total)*a.cfg.GapPenalty)
}
