package tokenizer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode turns raw uploaded bytes into text. A UTF-8 BOM is dropped and
// BOM-marked UTF-16 is transcoded; anything else must be valid UTF-8 without
// NUL bytes.
func Decode(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		raw = raw[len(bomUTF8):]
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", &TokenizationError{Offset: 0, Reason: fmt.Sprintf("invalid UTF-16: %v", err)}
		}
		raw = out
	}

	if off := invalidUTF8Offset(raw); off >= 0 {
		return "", &TokenizationError{Offset: off, Reason: "invalid UTF-8 sequence"}
	}
	if off := bytes.IndexByte(raw, 0); off >= 0 {
		return "", &TokenizationError{Offset: off, Reason: "binary content (NUL byte)"}
	}
	return string(raw), nil
}

// TokenizeBytes decodes raw and tokenizes the resulting text
func TokenizeBytes(raw []byte, policy Policy) (Sequence, error) {
	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Tokenize(text, policy)
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
