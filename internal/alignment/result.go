package alignment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
)

// GapMarker is the display value of a gap slot
const GapMarker = "-"

// Operation says how one aligned position was derived
type Operation uint8

const (
	Match Operation = iota
	Substitute
	InsertGapInFirst
	InsertGapInSecond
)

func (o Operation) String() string {
	switch o {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case InsertGapInFirst:
		return "gap_first"
	case InsertGapInSecond:
		return "gap_second"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// ParseOperation is the inverse of Operation.String
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "match":
		return Match, nil
	case "substitute":
		return Substitute, nil
	case "gap_first":
		return InsertGapInFirst, nil
	case "gap_second":
		return InsertGapInSecond, nil
	}
	return 0, fmt.Errorf("unknown alignment operation %q", s)
}

func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operation) UnmarshalText(b []byte) error {
	op, err := ParseOperation(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Slot is one position of an aligned sequence: a token or a gap
type Slot struct {
	Token tokenizer.Token `json:"token"`
	Gap   bool            `json:"gap,omitempty"`
}

func (s Slot) Display() string {
	if s.Gap {
		return GapMarker
	}
	return s.Token.Value
}

// Result is the outcome of one alignment. AlignedFirst, AlignedSecond and
// Operations always have the same length.
type Result struct {
	AlignedFirst  []Slot      `json:"alignedFirst"`
	AlignedSecond []Slot      `json:"alignedSecond"`
	Operations    []Operation `json:"operations"`
	Score         int64       `json:"score"`
	Matches       int         `json:"matches"`
	Substitutions int         `json:"substitutions"`
	GapsInFirst   int         `json:"gapsInFirst"`
	GapsInSecond  int         `json:"gapsInSecond"`
	// Similarity is Matches / Len(), 1 when both inputs are empty
	Similarity float64 `json:"similarity"`
}

func newResult(first, second []Slot, ops []Operation, score int64) *Result {
	r := &Result{
		AlignedFirst:  first,
		AlignedSecond: second,
		Operations:    ops,
		Score:         score,
	}
	for _, op := range ops {
		switch op {
		case Match:
			r.Matches++
		case Substitute:
			r.Substitutions++
		case InsertGapInFirst:
			r.GapsInFirst++
		case InsertGapInSecond:
			r.GapsInSecond++
		}
	}
	if len(ops) == 0 {
		r.Similarity = 1.0
	} else {
		r.Similarity = float64(r.Matches) / float64(len(ops))
	}
	return r
}

// mirror swaps the roles of the two inputs in place
func (r *Result) mirror() *Result {
	r.AlignedFirst, r.AlignedSecond = r.AlignedSecond, r.AlignedFirst
	r.GapsInFirst, r.GapsInSecond = r.GapsInSecond, r.GapsInFirst
	for i, op := range r.Operations {
		switch op {
		case InsertGapInFirst:
			r.Operations[i] = InsertGapInSecond
		case InsertGapInSecond:
			r.Operations[i] = InsertGapInFirst
		}
	}
	return r
}

// Len is the number of aligned positions
func (r *Result) Len() int {
	return len(r.Operations)
}

func (r *Result) FirstDisplay() []string {
	return displayValues(r.AlignedFirst)
}

func (r *Result) SecondDisplay() []string {
	return displayValues(r.AlignedSecond)
}

func (r *Result) OperationNames() []string {
	names := make([]string, len(r.Operations))
	for i, op := range r.Operations {
		names[i] = op.String()
	}
	return names
}

func (r *Result) Summary() string {
	return fmt.Sprintf("positions=%d matches=%d substitutions=%d gapsInFirst=%d gapsInSecond=%d similarity=%.4f",
		r.Len(), r.Matches, r.Substitutions, r.GapsInFirst, r.GapsInSecond, r.Similarity)
}

// FormatLines renders aligned slots one per line: tokens Go-quoted, gaps as
// a bare GapMarker, so the text is unambiguous even for a "-" token or a
// multi-line string literal.
func FormatLines(slots []Slot) string {
	lines := make([]string, len(slots))
	for i, s := range slots {
		if s.Gap {
			lines[i] = GapMarker
			continue
		}
		lines[i] = strconv.Quote(s.Token.Value)
	}
	return strings.Join(lines, "\n")
}

func displayValues(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Display()
	}
	return out
}
