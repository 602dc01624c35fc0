package tokenizer

import (
	"errors"
	"fmt"
)

// ErrTokenization matches every *TokenizationError via errors.Is
var ErrTokenization = errors.New("input cannot be decoded as text")

// TokenizationError is returned when the input is not decodable text.
// Syntactically invalid source never produces it.
type TokenizationError struct {
	Offset int
	Reason string
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenization failed at byte %d: %s", e.Offset, e.Reason)
}

func (e *TokenizationError) Is(target error) bool {
	return target == ErrTokenization
}
