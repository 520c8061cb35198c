// Package sqlite implements a SnapshotStore on SQLite. Each snapshot is a
// row in snapshots holding its head identity; records live in a child table
// with their neighbor identities in columns and the remaining payload fields
// as a JSON document.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/strand/internal/logging"
	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/types"
)

// dbFile is the database file name inside the data directory.
const dbFile = "strand.db"

var _ types.SnapshotStore = (*Store)(nil)

// Store implements types.SnapshotStore using SQLite.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	log *slog.Logger
}

// Open creates dir if needed, opens (or creates) the database in it and
// applies the schema. A nil logger discards output.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps the foreign_keys pragma in force for every query.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &Store{db: db, log: log.With("backend", types.BackendSQLite)}, nil
}

// Load reads the named snapshot.
func (s *Store) Load(name string) (chain.Snapshot[string], error) {
	var snap chain.Snapshot[string]
	if err := types.ValidateName(name); err != nil {
		return snap, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return snap, types.ErrStoreClosed
	}

	var head sql.NullString
	err := s.db.QueryRow("SELECT head FROM snapshots WHERE name = ?", name).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("load %s: %w", name, types.ErrSnapshotNotFound)
	}
	if err != nil {
		return snap, fmt.Errorf("load %s: %w", name, err)
	}
	snap.Head = head.String

	rows, err := s.db.Query(
		"SELECT record_id, prev_id, next_id, payload FROM records WHERE snapshot = ?", name)
	if err != nil {
		return snap, fmt.Errorf("load %s records: %w", name, err)
	}
	defer rows.Close()

	snap.Records = make(map[string]chain.Record)
	for rows.Next() {
		id, rec, err := scanRecord(rows)
		if err != nil {
			return snap, fmt.Errorf("load %s: %w", name, err)
		}
		snap.Records[id] = rec
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load %s records: %w", name, err)
	}

	s.log.Debug("loaded snapshot", "snapshot", name, "records", len(snap.Records), "head", snap.Head)
	return snap, nil
}

func scanRecord(rows *sql.Rows) (string, chain.Record, error) {
	var id, payload string
	var prev, next sql.NullString
	if err := rows.Scan(&id, &prev, &next, &payload); err != nil {
		return "", nil, fmt.Errorf("scanning record: %w", err)
	}
	rec := make(chain.Record)
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return "", nil, fmt.Errorf("parsing record %s payload: %w", id, err)
	}
	rec["prev"] = nullable(prev)
	rec["next"] = nullable(next)
	return id, rec, nil
}

func nullable(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}

// Save replaces the named snapshot in a single transaction.
func (s *Store) Save(name string, snap chain.Snapshot[string]) error {
	if err := types.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save %s: beginning transaction: %w", name, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO snapshots (name, head, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET head = excluded.head, saved_at = excluded.saved_at`,
		name, snap.Head, now); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if _, err := tx.Exec("DELETE FROM records WHERE snapshot = ?", name); err != nil {
		return fmt.Errorf("save %s: clearing records: %w", name, err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO records (snapshot, record_id, prev_id, next_id, payload) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("save %s: preparing insert: %w", name, err)
	}
	defer stmt.Close()

	for id, rec := range snap.Records {
		payload := rec.Clone()
		delete(payload, "prev")
		delete(payload, "next")
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("save %s: encoding %s: %w", name, id, err)
		}
		if _, err := stmt.Exec(name, id, types.LinkID(rec.Prev()), types.LinkID(rec.Next()), string(b)); err != nil {
			return fmt.Errorf("save %s: inserting %s: %w", name, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: committing: %w", name, err)
	}
	s.log.Debug("saved snapshot", "snapshot", name, "records", len(snap.Records), "head", snap.Head)
	return nil
}

// Names lists saved snapshots in lexical order.
func (s *Store) Names() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT name FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning snapshot name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Close releases the database connection. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
