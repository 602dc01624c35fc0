package tokenizer

import (
	"fmt"
	"strings"
)

// IdentifierMode controls how identifier names are normalized
type IdentifierMode int

const (
	// IdentifiersVerbatim keeps names as written (after NFKC normalization)
	IdentifiersVerbatim IdentifierMode = iota
	// IdentifiersPlaceholder maps every name to "ID"
	IdentifiersPlaceholder
	// IdentifiersIndexed maps names to ID0, ID1, ... by first occurrence
	IdentifiersIndexed
)

// LiteralMode controls how string and numeric literals are normalized
type LiteralMode int

const (
	LiteralsVerbatim LiteralMode = iota
	// LiteralsPlaceholder maps strings to "STR" and numbers to "NUM"
	LiteralsPlaceholder
)

const (
	identifierPlaceholder = "ID"
	stringPlaceholder     = "STR"
	numberPlaceholder     = "NUM"
)

// Policy is the normalization policy applied to one comparison.
// Comments and whitespace are always dropped; both inputs of a comparison
// must be tokenized with the same Policy value.
type Policy struct {
	Identifiers IdentifierMode
	Literals    LiteralMode
}

// DefaultPolicy keeps identifiers and literals verbatim
func DefaultPolicy() Policy {
	return Policy{
		Identifiers: IdentifiersVerbatim,
		Literals:    LiteralsVerbatim,
	}
}

func (p Policy) String() string {
	return fmt.Sprintf("identifiers=%s,literals=%s", p.Identifiers, p.Literals)
}

func (m IdentifierMode) String() string {
	switch m {
	case IdentifiersVerbatim:
		return "verbatim"
	case IdentifiersPlaceholder:
		return "placeholder"
	case IdentifiersIndexed:
		return "indexed"
	default:
		return fmt.Sprintf("IdentifierMode(%d)", int(m))
	}
}

func (m LiteralMode) String() string {
	switch m {
	case LiteralsVerbatim:
		return "verbatim"
	case LiteralsPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("LiteralMode(%d)", int(m))
	}
}

// ParseIdentifierMode parses the configuration name of an IdentifierMode
func ParseIdentifierMode(s string) (IdentifierMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "verbatim":
		return IdentifiersVerbatim, nil
	case "placeholder":
		return IdentifiersPlaceholder, nil
	case "indexed":
		return IdentifiersIndexed, nil
	}
	return 0, fmt.Errorf("unknown identifier mode %q", s)
}

// ParseLiteralMode parses the configuration name of a LiteralMode
func ParseLiteralMode(s string) (LiteralMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "verbatim":
		return LiteralsVerbatim, nil
	case "placeholder":
		return LiteralsPlaceholder, nil
	}
	return 0, fmt.Errorf("unknown literal mode %q", s)
}
