// Package jsonl implements a SnapshotStore that keeps each named snapshot
// as a JSONL file in the data directory, one record per line with its
// identity under "_id". The head identity lives in a sibling ".head" file.
// Files are written in chain order so they diff well under version control.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mesh-intelligence/strand/internal/logging"
	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/types"
)

const (
	recordsExt = ".jsonl"
	headExt    = ".head"
	idField    = "_id"
)

var _ types.SnapshotStore = (*Store)(nil)

// Store is a directory of JSONL snapshots.
type Store struct {
	mu     sync.Mutex
	dir    string
	log    *slog.Logger
	closed bool
}

// Open creates dir if needed and returns a store rooted there. A nil logger
// discards output.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{dir: dir, log: log.With("backend", types.BackendJSONL)}, nil
}

// Load reads the named snapshot. Lines that are not JSON objects with a
// string "_id" are skipped. When no head file exists the head is inferred
// from the records.
func (s *Store) Load(name string) (chain.Snapshot[string], error) {
	var snap chain.Snapshot[string]
	if err := s.check(name); err != nil {
		return snap, err
	}

	path := s.path(name, recordsExt)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return snap, fmt.Errorf("load %s: %w", name, types.ErrSnapshotNotFound)
	}
	lines, err := readJSONL(path)
	if err != nil {
		return snap, fmt.Errorf("load %s: %w", name, err)
	}

	snap.Records = make(map[string]chain.Record, len(lines))
	for i, line := range lines {
		var rec chain.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			s.log.Debug("skipping malformed record", "snapshot", name, "line", i+1, "error", err)
			continue
		}
		id, ok := rec[idField].(string)
		if !ok || id == "" {
			s.log.Debug("skipping record without identity", "snapshot", name, "line", i+1)
			continue
		}
		delete(rec, idField)
		snap.Records[id] = rec
	}

	head, err := os.ReadFile(s.path(name, headExt))
	switch {
	case err == nil:
		snap.Head = strings.TrimSpace(string(head))
	case !errors.Is(err, os.ErrNotExist):
		return snap, fmt.Errorf("load %s head: %w", name, err)
	case len(snap.Records) > 0:
		if snap.Head, err = chain.InferHead(snap.Records); err != nil {
			return snap, fmt.Errorf("load %s: %w", name, err)
		}
	}

	s.log.Debug("loaded snapshot", "snapshot", name, "records", len(snap.Records), "head", snap.Head)
	return snap, nil
}

// Save writes the snapshot records in chain order, then any records the
// chain does not reach in identity order, then the head file.
func (s *Store) Save(name string, snap chain.Snapshot[string]) error {
	if err := s.check(name); err != nil {
		return err
	}

	order := chainOrder(snap)
	lines := make([]json.RawMessage, 0, len(order))
	for _, id := range order {
		rec := snap.Records[id].Clone()
		rec[idField] = id
		rec["prev"] = types.LinkID(rec.Prev())
		rec["next"] = types.LinkID(rec.Next())
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("save %s: encoding %s: %w", name, id, err)
		}
		lines = append(lines, b)
	}

	if err := writeJSONL(s.path(name, recordsExt), lines); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	err := writeAtomic(s.path(name, headExt), func(w *bufio.Writer) error {
		_, err := w.WriteString(snap.Head + "\n")
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s head: %w", name, err)
	}

	s.log.Debug("saved snapshot", "snapshot", name, "records", len(lines), "head", snap.Head)
	return nil
}

// Names lists the snapshots present in the data directory.
func (s *Store) Names() ([]string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, types.ErrStoreClosed
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, recordsExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, recordsExt))
	}
	return names, nil
}

// Close marks the store closed. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) check(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}
	return types.ValidateName(name)
}

func (s *Store) path(name, ext string) string {
	return filepath.Join(s.dir, name+ext)
}

// chainOrder lists identities from the head along "next", stopping at a
// missing or repeated identity, followed by the unreached identities
// sorted.
func chainOrder(snap chain.Snapshot[string]) []string {
	order := make([]string, 0, len(snap.Records))
	seen := make(map[string]bool, len(snap.Records))
	for id, ok := snap.Head, true; ok; {
		rec, found := snap.Records[id]
		if !found || seen[id] {
			break
		}
		seen[id] = true
		order = append(order, id)
		id, ok = types.LinkID(rec.Next()).(string)
	}

	var rest []string
	for id := range snap.Records {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
