package glyphrange

import "errors"

// Sentinel errors for glyphrange package.
var (
	// ErrStartsWithZero is returned for a list whose first value is 0
	// while more values follow.
	ErrStartsWithZero = errors.New("glyphrange: ranges cannot start with 0")

	// ErrUnterminated is returned when the list does not end with a zero
	// at an even index.
	ErrUnterminated = errors.New("glyphrange: ranges must terminate with a zero at an even index")
)
