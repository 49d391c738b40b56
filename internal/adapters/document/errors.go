package document

import "errors"

// Sentinel kinds for document provider errors.
var (
	ErrNoDocument     = errors.New("no document available")
	ErrInvalidCatalog = errors.New("invalid document catalog")
)
