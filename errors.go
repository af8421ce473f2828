package disklru

import "errors"

// ErrInsufficientCapacity is returned by InsertNewFile when the store was
// drained without freeing enough space for the new file. Evictions performed
// before the failure stay applied; match with errors.Is.
var ErrInsufficientCapacity = errors.New("insufficient capacity to place file")
