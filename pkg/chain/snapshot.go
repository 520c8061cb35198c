package chain

import (
	"fmt"
	"maps"
)

// Snapshot is a serialized chain: records keyed by identity, each naming
// its neighbors, plus the identity where the chain starts.
type Snapshot[K comparable] struct {
	Head    K
	Records map[K]Record
}

// Import rebuilds the list from records, starting at head and following
// each record's "next" until it is nil or names an identity missing from
// records. A head absent from records yields an empty list. Any previous
// chain is replaced and the cursor rests on the new head.
//
// records is retained as the baseline for Changes. Import copies each
// record before use and never modifies the map or its records.
//
// A chain that comes back to an identity it already visited fails with
// ErrSnapshotCycle and leaves the list as it was.
func (l *List[K]) Import(records map[K]Record, head K) error {
	fresh := &List[K]{identify: l.identify, seq: l.seq}

	id, ok := head, usableKey(head)
	for ok {
		rec, found := records[id]
		if !found {
			break
		}
		payload := rec.Clone()
		payload[idKey] = id
		h, err := fresh.newNodeWithID(id, payload)
		if err != nil {
			return fmt.Errorf("import %v: %w", id, ErrSnapshotCycle)
		}
		fresh.linkLast(h)
		id, ok = asIdentity[K](rec.Next())
	}

	l.slots, l.free, l.index, l.seq = fresh.slots, fresh.free, fresh.index, fresh.seq
	l.head, l.tail, l.cursor = fresh.head, fresh.tail, fresh.head
	l.baseline = maps.Clone(records)
	return nil
}

// ImportSnapshot is Import for a Snapshot value.
func (l *List[K]) ImportSnapshot(s Snapshot[K]) error {
	return l.Import(s.Records, s.Head)
}

// SetBaseline replaces the records Changes compares against without
// touching the chain.
func (l *List[K]) SetBaseline(records map[K]Record) {
	l.baseline = maps.Clone(records)
}

// Baseline returns a copy of the records Changes compares against, or nil
// when nothing was imported.
func (l *List[K]) Baseline() map[K]Record {
	return maps.Clone(l.baseline)
}

// Changes reports the nodes whose presence or linkage differs from the
// baseline, keyed by identity, as effective views. A node is reported when
// the baseline has no record for it or when either live neighbor differs
// from the neighbor its baseline record declares. Payload edits other than
// prev/next are not detected. Nodes present in the baseline but no longer
// in the chain are not reported.
func (l *List[K]) Changes() map[K]Record {
	out := make(map[K]Record)
	for h := l.head; h != none; h = l.at(h).next {
		s := l.at(h)
		orig, ok := l.baseline[s.id]
		if !ok || l.linkDiffers(s.next, orig.Next()) || l.linkDiffers(s.prev, orig.Prev()) {
			out[s.id] = l.node(h).View()
		}
	}
	return out
}

// linkDiffers compares a live link with a declared neighbor identity.
func (l *List[K]) linkDiffers(h handle, declared any) bool {
	if h == none {
		return declared != nil
	}
	want, ok := asIdentity[K](declared)
	return !ok || want != l.at(h).id
}

// DumpAll returns the effective view of every node keyed by identity.
func (l *List[K]) DumpAll() map[K]Record {
	out := make(map[K]Record, l.Len())
	for id, rec := range l.Records() {
		out[id] = rec
	}
	return out
}

// Export returns the live chain as a Snapshot that Import accepts.
func (l *List[K]) Export() Snapshot[K] {
	s := Snapshot[K]{Records: l.DumpAll()}
	if l.head != none {
		s.Head = l.at(l.head).id
	}
	return s
}

// InferHead finds the single record that declares no predecessor.
func InferHead[K comparable](records map[K]Record) (K, error) {
	var head K
	found := 0
	for id, rec := range records {
		if rec.Prev() != nil {
			continue
		}
		head = id
		found++
	}
	switch {
	case found == 0:
		var zero K
		return zero, ErrNoHead
	case found > 1:
		var zero K
		return zero, fmt.Errorf("%w: %d candidates", ErrAmbiguousHead, found)
	}
	return head, nil
}
