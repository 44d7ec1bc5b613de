package repositories

import "errors"

// ErrNotFound is returned by mutating operations whose target ID does not
// resolve to an entity. Read paths return (nil, nil) instead.
var ErrNotFound = errors.New("entity not found")
