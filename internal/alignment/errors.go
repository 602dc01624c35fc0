package alignment

import (
	"errors"
	"fmt"
)

// ErrSequenceTooLarge matches every *SequenceTooLargeError via errors.Is
var ErrSequenceTooLarge = errors.New("token sequences too large to align")

// SequenceTooLargeError is returned when m·n exceeds Config.MaxCells.
// No scoring buffer has been acquired when it is returned.
type SequenceTooLargeError struct {
	First  int
	Second int
	Limit  int64
}

func (e *SequenceTooLargeError) Error() string {
	return fmt.Sprintf("cannot align %d x %d tokens: %d cells exceeds limit of %d",
		e.First, e.Second, int64(e.First)*int64(e.Second), e.Limit)
}

func (e *SequenceTooLargeError) Is(target error) bool {
	return target == ErrSequenceTooLarge
}
