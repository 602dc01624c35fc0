// Package tokenizer turns source text into a normalized token stream for
// structural comparison. Scanning is purely lexical: comments and whitespace
// are dropped and malformed programs are tokenized as far as they go.
package tokenizer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var keywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

var operators3 = map[string]struct{}{
	"**=": {}, "//=": {}, ">>=": {}, "<<=": {}, "...": {},
}

var operators2 = map[string]struct{}{
	"!=": {}, "%=": {}, "&=": {}, "**": {}, "*=": {}, "+=": {}, "-=": {},
	"->": {}, "//": {}, "/=": {}, ":=": {}, "<<": {}, "<=": {}, "==": {},
	">=": {}, ">>": {}, "@=": {}, "^=": {}, "|=": {},
}

// string prefixes, lowercased
var stringPrefixes = map[string]struct{}{
	"r": {}, "u": {}, "b": {}, "f": {},
	"br": {}, "rb": {}, "fr": {}, "rf": {},
}

// Tokenize scans source into a Sequence under policy. It fails only when
// source is not valid UTF-8.
func Tokenize(source string, policy Policy) (Sequence, error) {
	if !utf8.ValidString(source) {
		return nil, &TokenizationError{
			Offset: invalidUTF8Offset([]byte(source)),
			Reason: "invalid UTF-8 sequence",
		}
	}

	s := &scanner{
		src:    source,
		line:   1,
		policy: policy,
		out:    make(Sequence, 0, len(source)/4),
	}
	if policy.Identifiers == IdentifiersIndexed {
		s.names = make(map[string]string)
	}
	s.run()
	return s.out, nil
}

type scanner struct {
	src    string
	pos    int
	line   int
	policy Policy
	names  map[string]string
	out    Sequence
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		switch {
		case r == '\n':
			s.line++
			s.pos += size
		case unicode.IsSpace(r) || unicode.Is(unicode.Cf, r):
			s.pos += size
		case r == '#':
			s.skipComment()
		case r == '\\' && s.atLineEnd(s.pos+1):
			// explicit line joining
			s.pos++
		case isIdentStart(r):
			s.scanWord()
		case isDigit(r) || (r == '.' && s.pos+1 < len(s.src) && isDigit(rune(s.src[s.pos+1]))):
			s.scanNumber()
		case r == '"' || r == '\'':
			s.scanString(s.pos)
		default:
			s.scanOperator(size)
		}
	}
}

func (s *scanner) emit(value string, cat Category, line int) {
	s.out = append(s.out, Token{
		Value:    value,
		Category: cat,
		Position: len(s.out),
		Line:     line,
	})
}

func (s *scanner) atLineEnd(i int) bool {
	return i >= len(s.src) || s.src[i] == '\n' || s.src[i] == '\r'
}

func (s *scanner) skipComment() {
	if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i
		return
	}
	s.pos = len(s.src)
}

func (s *scanner) scanWord() {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	word := s.src[start:s.pos]

	if s.pos < len(s.src) && (s.src[s.pos] == '"' || s.src[s.pos] == '\'') {
		if _, ok := stringPrefixes[strings.ToLower(word)]; ok {
			s.scanString(start)
			return
		}
	}

	word = norm.NFKC.String(word)
	if _, ok := keywords[word]; ok {
		s.emit(word, Keyword, s.line)
		return
	}
	s.emit(s.identifier(word), Identifier, s.line)
}

func (s *scanner) identifier(name string) string {
	switch s.policy.Identifiers {
	case IdentifiersPlaceholder:
		return identifierPlaceholder
	case IdentifiersIndexed:
		if v, ok := s.names[name]; ok {
			return v
		}
		v := identifierPlaceholder + strconv.Itoa(len(s.names))
		s.names[name] = v
		return v
	default:
		return name
	}
}

func (s *scanner) scanNumber() {
	start := s.pos
	radix := strings.HasPrefix(s.src[s.pos:], "0x") || strings.HasPrefix(s.src[s.pos:], "0X") ||
		strings.HasPrefix(s.src[s.pos:], "0o") || strings.HasPrefix(s.src[s.pos:], "0O") ||
		strings.HasPrefix(s.src[s.pos:], "0b") || strings.HasPrefix(s.src[s.pos:], "0B")

	var prev byte
loop:
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isASCIIAlnum(c), c == '_', c == '.':
		case (c == '+' || c == '-') && (prev == 'e' || prev == 'E') && !radix:
		default:
			break loop
		}
		prev = c
		s.pos++
	}

	value := s.src[start:s.pos]
	if s.policy.Literals == LiteralsPlaceholder {
		value = numberPlaceholder
	}
	s.emit(value, Literal, s.line)
}

// scanString scans a string literal whose prefix (if any) starts at start
// and whose opening quote is at s.pos.
func (s *scanner) scanString(start int) {
	line := s.line
	quote := s.src[s.pos]
	delim := strings.Repeat(string(quote), 3)
	triple := strings.HasPrefix(s.src[s.pos:], delim)
	if triple {
		s.pos += 3
	} else {
		s.pos++
	}

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\n' {
				s.line++
			}
			s.pos += 2
			continue
		}
		if c == '\n' {
			if !triple {
				// unterminated; the newline belongs to the main loop
				break
			}
			s.line++
		}
		if c == quote {
			if !triple {
				s.pos++
				break
			}
			if strings.HasPrefix(s.src[s.pos:], delim) {
				s.pos += 3
				break
			}
		}
		s.pos++
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}

	value := strings.TrimRight(s.src[start:s.pos], "\r")
	if s.policy.Literals == LiteralsPlaceholder {
		value = stringPlaceholder
	}
	s.emit(value, Literal, line)
}

func (s *scanner) scanOperator(size int) {
	rest := s.src[s.pos:]
	if len(rest) >= 3 {
		if _, ok := operators3[rest[:3]]; ok {
			s.emit(rest[:3], Operator, s.line)
			s.pos += 3
			return
		}
	}
	if len(rest) >= 2 {
		if _, ok := operators2[rest[:2]]; ok {
			s.emit(rest[:2], Operator, s.line)
			s.pos += 2
			return
		}
	}
	s.emit(rest[:size], Operator, s.line)
	s.pos += size
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// classify reports the category the scanner assigns to a lone value
func classify(value string) Category {
	seq, err := Tokenize(value, DefaultPolicy())
	if err != nil || len(seq) != 1 {
		return Operator
	}
	return seq[0].Category
}
