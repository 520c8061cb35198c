package chain

// handle indexes the list's slot arena. Handles are 1-based so the zero
// value means "no node".
type handle int

const none handle = 0

// slot is one arena cell. gen advances every time the cell is reused so a
// Node taken before the reuse reads as detached.
type slot[K comparable] struct {
	id      K
	payload any
	prev    handle
	next    handle
	gen     uint32
	used    bool
}

// Node is a reference to an element of a List. It observes live state:
// Prev, Next and View reflect the chain at the time they are called. A Node
// returned by Delete, or one whose element has since been deleted, is
// detached and reports no neighbors.
type Node[K comparable] struct {
	id      K
	payload any
	list    *List[K]
	h       handle
	gen     uint32
}

// ID returns the node's identity.
func (n Node[K]) ID() K { return n.id }

// Payload returns the payload. Map payloads come back as a copy of the
// stored Record, so editing the result does not change the node.
func (n Node[K]) Payload() any {
	if r, ok := n.payload.(Record); ok {
		return r.Clone()
	}
	return n.payload
}

// Attached reports whether the node is still part of its list.
func (n Node[K]) Attached() bool {
	_, ok := n.slot()
	return ok
}

// Prev returns the live predecessor.
func (n Node[K]) Prev() (Node[K], bool) {
	s, ok := n.slot()
	if !ok || s.prev == none {
		return Node[K]{}, false
	}
	return n.list.node(s.prev), true
}

// Next returns the live successor.
func (n Node[K]) Next() (Node[K], bool) {
	s, ok := n.slot()
	if !ok || s.next == none {
		return Node[K]{}, false
	}
	return n.list.node(s.next), true
}

// View returns the effective view: the payload as a Record with "prev" and
// "next" set to the live neighbor identities (nil when absent). The
// internal "_id" key is omitted.
func (n Node[K]) View() Record {
	rec := recordOf(n.payload)
	rec[prevKey] = nil
	rec[nextKey] = nil
	if p, ok := n.Prev(); ok {
		rec[prevKey] = p.id
	}
	if x, ok := n.Next(); ok {
		rec[nextKey] = x.id
	}
	return rec
}

func (n Node[K]) slot() (*slot[K], bool) {
	if n.list == nil || n.h == none || int(n.h) > len(n.list.slots) {
		return nil, false
	}
	s := n.list.at(n.h)
	if !s.used || s.gen != n.gen {
		return nil, false
	}
	return s, true
}
