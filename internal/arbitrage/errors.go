package arbitrage

import "errors"

// Validation errors for opportunity queries. These are client-input errors:
// the HTTP boundary maps them to 4xx responses.
var (
	ErrInvalidSortKey = errors.New("sort key must be one of roi, spread, price")
	ErrInvalidMinROI  = errors.New("min roi must be >= 0")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 200")
)
