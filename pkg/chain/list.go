package chain

import (
	"fmt"
	"iter"
)

// List is an identity-keyed doubly linked list. Nodes live in an arena
// owned by the list; links are handles into that arena. The zero value is
// an empty list using DefaultIdentity.
type List[K comparable] struct {
	slots []slot[K]
	free  []handle
	index map[K]handle
	seq   uint32

	head   handle
	tail   handle
	cursor handle

	identify IdentityFunc[K]

	// baseline is the record map of the last import, kept for Changes.
	baseline map[K]Record
}

// Option configures a List.
type Option[K comparable] func(*List[K])

// WithIdentity replaces DefaultIdentity as the list's extraction policy.
func WithIdentity[K comparable](fn IdentityFunc[K]) Option[K] {
	return func(l *List[K]) {
		l.identify = fn
	}
}

// New returns an empty list.
func New[K comparable](opts ...Option[K]) *List[K] {
	l := &List[K]{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the number of nodes in the chain.
func (l *List[K]) Len() int { return len(l.index) }

// IsEmpty reports whether the chain has no nodes.
func (l *List[K]) IsEmpty() bool { return l.head == none }

// First returns the head node.
func (l *List[K]) First() (Node[K], bool) { return l.nodeOK(l.head) }

// Last returns the tail node.
func (l *List[K]) Last() (Node[K], bool) { return l.nodeOK(l.tail) }

// InsertFirst makes a node for payload the new head. On an empty list the
// node is also the tail and the cursor moves to it.
func (l *List[K]) InsertFirst(payload any) (Node[K], error) {
	h, err := l.newNode(payload)
	if err != nil {
		return Node[K]{}, err
	}
	l.linkFirst(h)
	return l.node(h), nil
}

// InsertLast makes a node for payload the new tail. On an empty list the
// node is also the head and the cursor moves to it.
func (l *List[K]) InsertLast(payload any) (Node[K], error) {
	h, err := l.newNode(payload)
	if err != nil {
		return Node[K]{}, err
	}
	l.linkLast(h)
	return l.node(h), nil
}

// InsertBefore splices a node for payload in front of the node identified
// by anchor. It returns ErrNotFound, without changing the list, when anchor
// is absent.
func (l *List[K]) InsertBefore(payload any, anchor K) (Node[K], error) {
	a, ok := l.lookup(anchor)
	if !ok {
		return Node[K]{}, fmt.Errorf("insert before %v: %w", anchor, ErrNotFound)
	}
	h, err := l.newNode(payload)
	if err != nil {
		return Node[K]{}, err
	}

	n, as := l.at(h), l.at(a)
	if a == l.head {
		l.head = h
	} else {
		n.prev = as.prev
		l.at(as.prev).next = h
	}
	n.next = a
	as.prev = h
	return l.node(h), nil
}

// InsertAfter splices a node for payload behind the node identified by
// anchor. It returns ErrNotFound, without changing the list, when anchor is
// absent.
func (l *List[K]) InsertAfter(payload any, anchor K) (Node[K], error) {
	a, ok := l.lookup(anchor)
	if !ok {
		return Node[K]{}, fmt.Errorf("insert after %v: %w", anchor, ErrNotFound)
	}
	h, err := l.newNode(payload)
	if err != nil {
		return Node[K]{}, err
	}

	n, as := l.at(h), l.at(a)
	if a == l.tail {
		l.tail = h
	} else {
		n.next = as.next
		l.at(as.next).prev = h
	}
	n.prev = a
	as.next = h
	return l.node(h), nil
}

// Delete unlinks the node identified by id and returns it detached. If the
// cursor was on that node it moves to the node's successor.
func (l *List[K]) Delete(id K) (Node[K], error) {
	h, ok := l.lookup(id)
	if !ok {
		return Node[K]{}, fmt.Errorf("delete %v: %w", id, ErrNotFound)
	}

	s := l.at(h)
	if h == l.head {
		l.head = s.next
	} else {
		l.at(s.prev).next = s.next
	}
	if h == l.tail {
		l.tail = s.prev
	} else {
		l.at(s.next).prev = s.prev
	}
	if l.cursor == h {
		l.cursor = s.next
	}

	removed := Node[K]{id: s.id, payload: s.payload}
	delete(l.index, id)
	l.release(h)
	return removed, nil
}

// Find returns the node identified by id.
func (l *List[K]) Find(id K) (Node[K], error) {
	h, ok := l.lookup(id)
	if !ok {
		return Node[K]{}, fmt.Errorf("find %v: %w", id, ErrNotFound)
	}
	return l.node(h), nil
}

// FindNth returns the node at zero-based position n, counting from the
// head.
func (l *List[K]) FindNth(n int) (Node[K], error) {
	if n >= 0 {
		i := 0
		for h := l.head; h != none; h = l.at(h).next {
			if i == n {
				return l.node(h), nil
			}
			i++
		}
	}
	return Node[K]{}, fmt.Errorf("find position %d: %w", n, ErrNotFound)
}

// Rewind moves the cursor to the head.
func (l *List[K]) Rewind() { l.cursor = l.head }

// Current returns the node under the cursor without moving it.
func (l *List[K]) Current() (Node[K], bool) { return l.nodeOK(l.cursor) }

// Advance moves the cursor to its successor and returns it. Once the
// cursor has run off the tail it stays invalid.
func (l *List[K]) Advance() (Node[K], bool) {
	if l.cursor == none {
		return Node[K]{}, false
	}
	l.cursor = l.at(l.cursor).next
	return l.Current()
}

// Valid reports whether the cursor is on a node.
func (l *List[K]) Valid() bool { return l.cursor != none }

// MoveTo places the cursor on the node identified by id. The cursor does not
// move when id is absent.
func (l *List[K]) MoveTo(id K) error {
	h, ok := l.lookup(id)
	if !ok {
		return fmt.Errorf("move cursor to %v: %w", id, ErrNotFound)
	}
	l.cursor = h
	return nil
}

// All iterates nodes head to tail. It keeps its own position and leaves the
// cursor alone. Deleting the yielded node during iteration is allowed.
func (l *List[K]) All() iter.Seq[Node[K]] {
	return func(yield func(Node[K]) bool) {
		for h := l.head; h != none; {
			next := l.at(h).next
			if !yield(l.node(h)) {
				return
			}
			h = next
		}
	}
}

// Records iterates identities and effective views head to tail.
func (l *List[K]) Records() iter.Seq2[K, Record] {
	return func(yield func(K, Record) bool) {
		for n := range l.All() {
			if !yield(n.id, n.View()) {
				return
			}
		}
	}
}

// IDs returns the identities in traversal order.
func (l *List[K]) IDs() []K {
	ids := make([]K, 0, l.Len())
	for n := range l.All() {
		ids = append(ids, n.id)
	}
	return ids
}

func (l *List[K]) linkFirst(h handle) {
	if l.head == none {
		l.tail = h
		l.cursor = h
	} else {
		l.at(l.head).prev = h
		l.at(h).next = l.head
	}
	l.head = h
}

func (l *List[K]) linkLast(h handle) {
	if l.tail == none {
		l.head = h
		l.cursor = h
	} else {
		l.at(l.tail).next = h
		l.at(h).prev = l.tail
	}
	l.tail = h
}

// newNode resolves the payload's identity and allocates an unlinked slot.
func (l *List[K]) newNode(payload any) (handle, error) {
	identify := l.identify
	if identify == nil {
		identify = DefaultIdentity[K]
	}
	id, err := identify(payload)
	if err != nil {
		return none, err
	}
	return l.newNodeWithID(id, storePayload(payload))
}

func (l *List[K]) newNodeWithID(id K, payload any) (handle, error) {
	if !usableKey(id) {
		return none, fmt.Errorf("%w: %v (%T)", ErrInvalidIdentity, id, id)
	}
	if _, dup := l.index[id]; dup {
		return none, fmt.Errorf("%w: %v", ErrDuplicateIdentity, id)
	}
	if l.index == nil {
		l.index = make(map[K]handle)
	}
	h := l.alloc(id, payload)
	l.index[id] = h
	return h, nil
}

func (l *List[K]) lookup(id K) (handle, bool) {
	if l.head == none || !usableKey(id) {
		return none, false
	}
	h, ok := l.index[id]
	return h, ok
}

func (l *List[K]) alloc(id K, payload any) handle {
	l.seq++
	s := slot[K]{id: id, payload: payload, gen: l.seq, used: true}
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]
		*l.at(h) = s
		return h
	}
	l.slots = append(l.slots, s)
	return handle(len(l.slots))
}

func (l *List[K]) release(h handle) {
	gen := l.at(h).gen
	*l.at(h) = slot[K]{gen: gen}
	l.free = append(l.free, h)
}

func (l *List[K]) at(h handle) *slot[K] { return &l.slots[h-1] }

func (l *List[K]) node(h handle) Node[K] {
	s := l.at(h)
	return Node[K]{id: s.id, payload: s.payload, list: l, h: h, gen: s.gen}
}

func (l *List[K]) nodeOK(h handle) (Node[K], bool) {
	if h == none {
		return Node[K]{}, false
	}
	return l.node(h), true
}
