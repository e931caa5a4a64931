package premium

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOptionType rejects any option type outside CE/PE.
	ErrInvalidOptionType = errors.New("invalid optionType")
	// ErrInvalidDateFormat rejects expiry dates not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("invalid expiryDate")
	// ErrNoMatchingStrike covers both an absent row and a null last price.
	ErrNoMatchingStrike = errors.New("no matching strike found")
)

// ExpiryNotFoundError reports that no upstream label matched the requested
// date. Available carries the full published label list so the caller can
// correct their input.
type ExpiryNotFoundError struct {
	Requested string
	Available []string
}

func (e *ExpiryNotFoundError) Error() string {
	return fmt.Sprintf("no data for expiry %s", e.Requested)
}
