package csvio

import "errors"

var (
	// ErrNoHeaders is returned when the input has no usable header row.
	ErrNoHeaders = errors.New("csv has no header row")
	// ErrMalformed is returned when the CSV cannot be parsed.
	ErrMalformed = errors.New("malformed csv")
)
