package tokenizer

// Category is the coarse lexical class of a token
type Category int

const (
	Identifier Category = iota
	Keyword
	Operator
	Literal
)

func (c Category) String() string {
	switch c {
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Operator:
		return "operator"
	case Literal:
		return "literal"
	default:
		return "unknown"
	}
}

// Token is the atomic unit of comparison
type Token struct {
	Value    string   `json:"value" bson:"value"`
	Category Category `json:"category" bson:"category"`
	Position int      `json:"position" bson:"position"`
	Line     int      `json:"line" bson:"line"`
}

// Equal reports whether two tokens compare equal. Position and Line are ignored.
func (t Token) Equal(o Token) bool {
	return t.Category == o.Category && t.Value == o.Value
}

// Sequence is the ordered token stream of one input
type Sequence []Token

func (s Sequence) Len() int {
	return len(s)
}

// Values returns the normalized value of every token, in order
func (s Sequence) Values() []string {
	values := make([]string, len(s))
	for i, tok := range s {
		values[i] = tok.Value
	}
	return values
}

// Equal reports whether both sequences hold equal tokens in the same order
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// FromValues builds a sequence of tokens from already-normalized values,
// classifying each value the same way the scanner would.
func FromValues(values ...string) Sequence {
	seq := make(Sequence, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		seq = append(seq, Token{
			Value:    v,
			Category: classify(v),
			Position: len(seq),
			Line:     1,
		})
	}
	return seq
}
