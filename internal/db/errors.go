package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrMappingNotFound = errors.New("mapping not found")
)
