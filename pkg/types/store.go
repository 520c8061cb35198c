package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/strand/pkg/chain"
)

// Standard snapshot names used by the CLI. The working chain is edited in
// place; the baseline is what diff compares against.
const (
	SnapshotWork = "work"
	SnapshotBase = "base"
)

// SnapshotStore persists named chain snapshots keyed by string identity.
type SnapshotStore interface {
	// Load returns the named snapshot.
	// Returns ErrSnapshotNotFound if nothing was saved under that name.
	Load(name string) (chain.Snapshot[string], error)

	// Save replaces the named snapshot.
	Save(name string, snap chain.Snapshot[string]) error

	// Names lists saved snapshots in lexical order.
	Names() ([]string, error)

	// Close releases backend resources. Idempotent.
	Close() error
}

// Store errors.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidName      = errors.New("invalid snapshot name")
	ErrStoreClosed      = errors.New("store is closed")
)

// ValidateName rejects names that are empty or could escape the data
// directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// LinkID normalizes a neighbor identity for string-keyed snapshots. JSON
// object keys are always strings, but a neighbor written as a bare number
// decodes as float64; it becomes its decimal text. nil stays nil.
func LinkID(v any) any {
	switch id := v.(type) {
	case nil:
		return nil
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
