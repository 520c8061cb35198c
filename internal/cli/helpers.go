// Shared helpers for strand CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/store"
	"github.com/mesh-intelligence/strand/pkg/types"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// openStore opens the configured backend on the data directory. The
// caller must Close the store.
func (a *app) openStore() (types.SnapshotStore, error) {
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: a.dataDir,
	}
	s, err := store.Open(cfg, a.log)
	if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) {
		return nil, userError(err)
	}
	return s, err
}

// workspace is the working chain loaded from the store with the committed
// baseline attached for diffing.
type workspace struct {
	store types.SnapshotStore
	list  *chain.List[string]
}

func (a *app) openWorkspace() (*workspace, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}

	work, err := loadOrEmpty(s, types.SnapshotWork)
	if err != nil {
		s.Close()
		return nil, err
	}
	base, err := loadOrEmpty(s, types.SnapshotBase)
	if err != nil {
		s.Close()
		return nil, err
	}

	list := chain.New[string]()
	if err := list.ImportSnapshot(work); err != nil {
		s.Close()
		return nil, fmt.Errorf("load %s: %w", types.SnapshotWork, err)
	}
	list.SetBaseline(base.Records)
	return &workspace{store: s, list: list}, nil
}

// loadOrEmpty treats a snapshot that was never saved as empty.
func loadOrEmpty(s types.SnapshotStore, name string) (chain.Snapshot[string], error) {
	snap, err := s.Load(name)
	if errors.Is(err, types.ErrSnapshotNotFound) {
		return chain.Snapshot[string]{}, nil
	}
	return snap, err
}

// save writes the working chain back.
func (w *workspace) save() error {
	return w.store.Save(types.SnapshotWork, w.list.Export())
}

func (w *workspace) close() error {
	return w.store.Close()
}

// lookupError turns chain.ErrNotFound into a user error.
func lookupError(err error) error {
	if errors.Is(err, chain.ErrNotFound) {
		return userError(err)
	}
	return err
}

// reservedFields are owned by the chain and cannot be set from the command
// line.
var reservedFields = []string{"prev", "next", "_id"}

// parseFields turns key=value arguments into a record. Values that parse as
// JSON keep their JSON type; anything else is a string. The "id" field is
// always a string.
func parseFields(args []string) (chain.Record, error) {
	rec := make(chain.Record, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q: want key=value", arg)
		}
		if slices.Contains(reservedFields, key) {
			return nil, fmt.Errorf("field %q is reserved", key)
		}
		if _, dup := rec[key]; dup {
			return nil, fmt.Errorf("field %q given twice", key)
		}
		rec[key] = parseValue(key, raw)
	}
	return rec, nil
}

func parseValue(key, raw string) any {
	if key == "id" {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// newID generates a UUID v7 identity.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// entry is one record in ordered output.
type entry struct {
	ID     string       `json:"id" yaml:"id"`
	Record chain.Record `json:"record" yaml:"record"`
}

// writeEntries renders records in the given order.
func writeEntries(w io.Writer, format string, entries []entry) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []entry{}
		}
		return enc.Encode(entries)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	case formatText:
		for _, e := range entries {
			if _, err := fmt.Fprintln(w, textLine(e)); err != nil {
				return err
			}
		}
		return nil
	default:
		return userError(fmt.Errorf("unknown format %q (valid: text, json, yaml)", format))
	}
}

// textLine renders an entry as "id prev=.. next=.. k=v ..." with payload
// fields sorted by key.
func textLine(e entry) string {
	var b strings.Builder
	b.WriteString(e.ID)
	fmt.Fprintf(&b, " prev=%s next=%s", linkText(e.Record.Prev()), linkText(e.Record.Next()))

	keys := make([]string, 0, len(e.Record))
	for k := range e.Record {
		if k != "prev" && k != "next" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, valueText(e.Record[k]))
	}
	return b.String()
}

func linkText(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func valueText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// withIdentity copies a stored payload and pins its identity so it can be
// inserted again.
func withIdentity(payload any, id string) chain.Record {
	rec, _ := payload.(chain.Record)
	rec = rec.Clone()
	rec["_id"] = id
	return rec
}

// nodeEntry returns the effective view of n without its identity key.
func nodeEntry(n chain.Node[string]) entry {
	return entry{ID: n.ID(), Record: n.View()}
}
