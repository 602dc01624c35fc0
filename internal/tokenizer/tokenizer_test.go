package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string, policy Policy) Sequence {
	t.Helper()
	seq, err := Tokenize(src, policy)
	require.NoError(t, err)
	return seq
}

func TestTokenizeFunctionDefinition(t *testing.T) {
	seq := tokenize(t, "def foo():\n    return 1\n", DefaultPolicy())

	assert.Equal(t, []string{"def", "foo", "(", ")", ":", "return", "1"}, seq.Values())
	assert.Equal(t, Keyword, seq[0].Category)
	assert.Equal(t, Identifier, seq[1].Category)
	assert.Equal(t, Operator, seq[2].Category)
	assert.Equal(t, Keyword, seq[5].Category)
	assert.Equal(t, Literal, seq[6].Category)
	assert.Equal(t, 2, seq[5].Line)

	for i, tok := range seq {
		assert.Equal(t, i, tok.Position)
	}
}

func TestTokenizeDropsCommentsAndWhitespace(t *testing.T) {
	a := tokenize(t, "x = 1  # set x\n\n\n", DefaultPolicy())
	b := tokenize(t, "x=1", DefaultPolicy())

	assert.True(t, a.Equal(b))
	assert.Equal(t, []string{"x", "=", "1"}, a.Values())
}

func TestTokenizeEmptyInput(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n", "# only a comment", "\uFEFF"} {
		seq := tokenize(t, src, DefaultPolicy())
		assert.Empty(t, seq, "source %q", src)
		assert.NotNil(t, seq)
	}
}

func TestTokenizeStrings(t *testing.T) {
	src := "a = 'it\\'s'\nb = \"\"\"doc\n# not a comment\n\"\"\"\nc = rb'raw'\nd = f\"{x}\""
	seq := tokenize(t, src, DefaultPolicy())

	assert.Equal(t, []string{
		"a", "=", `'it\'s'`,
		"b", "=", "\"\"\"doc\n# not a comment\n\"\"\"",
		"c", "=", "rb'raw'",
		"d", "=", `f"{x}"`,
	}, seq.Values())
	assert.Equal(t, Literal, seq[5].Category)
	assert.Equal(t, 2, seq[5].Line)
	assert.Equal(t, 5, seq[6].Line)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	seq := tokenize(t, "x = 'oops\ny = 2", DefaultPolicy())
	assert.Equal(t, []string{"x", "=", "'oops", "y", "=", "2"}, seq.Values())

	seq = tokenize(t, `s = """never closed`, DefaultPolicy())
	assert.Equal(t, []string{"s", "=", `"""never closed`}, seq.Values())
}

func TestTokenizeNumbers(t *testing.T) {
	seq := tokenize(t, "1_000 0xFF 3.14 .5 1e-3 2E+10 0b1010 4j", DefaultPolicy())
	assert.Equal(t, []string{"1_000", "0xFF", "3.14", ".5", "1e-3", "2E+10", "0b1010", "4j"}, seq.Values())
	for _, tok := range seq {
		assert.Equal(t, Literal, tok.Category, tok.Value)
	}

	seq = tokenize(t, "0xE+1", DefaultPolicy())
	assert.Equal(t, []string{"0xE", "+", "1"}, seq.Values())
}

func TestTokenizeOperatorsLongestMatch(t *testing.T) {
	seq := tokenize(t, "a **= b // c -> d := e ... f != g", DefaultPolicy())
	assert.Equal(t, []string{"a", "**=", "b", "//", "c", "->", "d", ":=", "e", "...", "f", "!=", "g"}, seq.Values())
}

func TestTokenizeInvalidSyntaxIsTolerated(t *testing.T) {
	seq := tokenize(t, "def (((:\n  $ ? ` \\ return", DefaultPolicy())
	assert.Equal(t, []string{"def", "(", "(", "(", ":", "$", "?", "`", `\`, "return"}, seq.Values())
}

func TestTokenizeLineContinuation(t *testing.T) {
	seq := tokenize(t, "x = 1 + \\\n    2", DefaultPolicy())
	assert.Equal(t, []string{"x", "=", "1", "+", "2"}, seq.Values())
	assert.Equal(t, 2, seq[4].Line)
}

func TestTokenizeUnicodeIdentifiers(t *testing.T) {
	seq := tokenize(t, "ｄｅｆ café(x): return 'π'", DefaultPolicy())
	assert.Equal(t, []string{"def", "café", "(", "x", ")", ":", "return", "'π'"}, seq.Values())
	assert.Equal(t, Keyword, seq[0].Category)

	// U+FB01 LATIN SMALL LIGATURE FI folds to "fi" under NFKC
	a := tokenize(t, "\uFB01le = 1", DefaultPolicy())
	b := tokenize(t, "file = 1", DefaultPolicy())
	assert.True(t, a.Equal(b))
}

func TestTokenizeIdentifierModes(t *testing.T) {
	src := "def foo(x): return foo(x, y)"

	seq := tokenize(t, src, Policy{Identifiers: IdentifiersPlaceholder})
	assert.Equal(t, []string{"def", "ID", "(", "ID", ")", ":", "return", "ID", "(", "ID", ",", "ID", ")"}, seq.Values())

	seq = tokenize(t, src, Policy{Identifiers: IdentifiersIndexed})
	assert.Equal(t, []string{"def", "ID0", "(", "ID1", ")", ":", "return", "ID0", "(", "ID1", ",", "ID2", ")"}, seq.Values())
}

func TestTokenizeLiteralPlaceholders(t *testing.T) {
	seq := tokenize(t, `x = "hello" + 'world' * 42`, Policy{Literals: LiteralsPlaceholder})
	assert.Equal(t, []string{"x", "=", "STR", "+", "STR", "*", "NUM"}, seq.Values())
	assert.Equal(t, Literal, seq[2].Category)
}

func TestTokenizeIsDeterministic(t *testing.T) {
	src := "import os\nclass A:\n    def run(self, n=3):\n        return [i ** 2 for i in range(n)]  # squares\n"
	for _, policy := range []Policy{DefaultPolicy(), {Identifiers: IdentifiersIndexed, Literals: LiteralsPlaceholder}} {
		first := tokenize(t, src, policy)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, tokenize(t, src, policy))
		}
	}
}

func TestTokensNeverWhitespaceOnly(t *testing.T) {
	seq := tokenize(t, "a\u00a0=\u2003b\u200b\r\n\f c\v", DefaultPolicy())
	assert.Equal(t, []string{"a", "=", "b", "c"}, seq.Values())
}

func TestTokenEquality(t *testing.T) {
	a := Token{Value: "x", Category: Identifier, Position: 0, Line: 1}
	b := Token{Value: "x", Category: Identifier, Position: 7, Line: 9}
	c := Token{Value: "x", Category: Literal}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTokenizeRejectsInvalidUTF8(t *testing.T) {
	_, err := Tokenize("ok = 1\n\xff\xfe", DefaultPolicy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenization))

	var tokErr *TokenizationError
	require.True(t, errors.As(err, &tokErr))
	assert.Equal(t, 7, tokErr.Offset)
}

func TestDecode(t *testing.T) {
	text, err := Decode([]byte("\xEF\xBB\xBFx = 1"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1", text)

	// "x=1" in UTF-16LE with BOM
	text, err = Decode([]byte{0xFF, 0xFE, 'x', 0, '=', 0, '1', 0})
	require.NoError(t, err)
	assert.Equal(t, "x=1", text)

	_, err = Decode([]byte("abc\x00def"))
	assert.ErrorIs(t, err, ErrTokenization)

	_, err = Decode([]byte{0xC3, 0x28})
	assert.ErrorIs(t, err, ErrTokenization)
}

func TestTokenizeBytes(t *testing.T) {
	seq, err := TokenizeBytes([]byte("return x"), DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"return", "x"}, seq.Values())
}

func TestFromValues(t *testing.T) {
	seq := FromValues("def", "foo", "(", ")", ":", "return", "1")
	assert.Equal(t, []Category{Keyword, Identifier, Operator, Operator, Operator, Keyword, Literal}, categories(seq))
	assert.True(t, seq.Equal(tokenize(t, "def foo(): return 1", DefaultPolicy())))
}

func TestParseModes(t *testing.T) {
	m, err := ParseIdentifierMode("Indexed")
	require.NoError(t, err)
	assert.Equal(t, IdentifiersIndexed, m)

	_, err = ParseIdentifierMode("fuzzy")
	assert.Error(t, err)

	l, err := ParseLiteralMode("")
	require.NoError(t, err)
	assert.Equal(t, LiteralsVerbatim, l)
	assert.Equal(t, "identifiers=verbatim,literals=verbatim", DefaultPolicy().String())
}

func categories(seq Sequence) []Category {
	out := make([]Category, len(seq))
	for i, tok := range seq {
		out[i] = tok.Category
	}
	return out
}
