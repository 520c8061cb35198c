package chain

import "errors"

// Lookup and construction errors.
var (
	ErrNotFound          = errors.New("identity not found")
	ErrInvalidIdentity   = errors.New("no usable identity in payload")
	ErrDuplicateIdentity = errors.New("identity already present")
)

// Snapshot errors.
var (
	ErrSnapshotCycle = errors.New("snapshot chain revisits a record")
	ErrNoHead        = errors.New("snapshot has no head record")
	ErrAmbiguousHead = errors.New("snapshot has more than one head record")
)
