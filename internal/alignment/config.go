package alignment

import (
	"fmt"
)

// DefaultMaxCells bounds m·n; one direction byte is kept per cell
const DefaultMaxCells int64 = 64_000_000

// Config is the immutable scoring configuration of an Aligner.
//
// MatchBonus is added for equal tokens, SubstitutionPenalty for unequal
// tokens paired at the same position, GapPenalty for every token paired with
// a gap. The defaults make one substitution (-1) cheaper than two gaps (-4),
// so unequal tokens at the same place are paired rather than split.
type Config struct {
	MatchBonus          int64
	SubstitutionPenalty int64
	GapPenalty          int64
	MaxCells            int64
}

func DefaultConfig() Config {
	return Config{
		MatchBonus:          1,
		SubstitutionPenalty: -1,
		GapPenalty:          -2,
		MaxCells:            DefaultMaxCells,
	}
}

func (c Config) Validate() error {
	if c.MatchBonus <= 0 {
		return fmt.Errorf("match bonus must be greater than 0, got %d", c.MatchBonus)
	}
	if c.SubstitutionPenalty > 0 {
		return fmt.Errorf("substitution penalty must not be positive, got %d", c.SubstitutionPenalty)
	}
	if c.GapPenalty >= 0 {
		return fmt.Errorf("gap penalty must be negative, got %d", c.GapPenalty)
	}
	if c.MaxCells <= 0 {
		return fmt.Errorf("max cells must be greater than 0, got %d", c.MaxCells)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("match=%d,substitution=%d,gap=%d,maxCells=%d",
		c.MatchBonus, c.SubstitutionPenalty, c.GapPenalty, c.MaxCells)
}
