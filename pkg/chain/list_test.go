package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int) Record {
	return Record{"id": id, "name": "item"}
}

func buildList(t *testing.T, ids ...int) *List[int] {
	t.Helper()
	l := New[int]()
	for _, id := range ids {
		_, err := l.InsertLast(item(id))
		require.NoError(t, err)
	}
	return l
}

// checkLinks walks the chain both ways and asserts the structural
// invariants: mutual links, open ends, and a count matching the walk.
func checkLinks(t *testing.T, l *List[int]) {
	t.Helper()

	var forward []int
	var prev Node[int]
	hasPrev := false
	for n := range l.All() {
		p, ok := n.Prev()
		assert.Equal(t, hasPrev, ok, "prev presence of %d", n.ID())
		if ok {
			assert.Equal(t, prev.ID(), p.ID(), "prev of %d", n.ID())
		}
		forward = append(forward, n.ID())
		prev, hasPrev = n, true
	}
	assert.Len(t, forward, l.Len())

	var backward []int
	for n, ok := l.Last(); ok; n, ok = n.Prev() {
		backward = append([]int{n.ID()}, backward...)
	}
	assert.Equal(t, forward, backward)

	if l.Len() == 0 {
		assert.True(t, l.IsEmpty())
		_, ok := l.First()
		assert.False(t, ok)
		_, ok = l.Last()
		assert.False(t, ok)
	}
}

func TestInsertLastPreservesOrder(t *testing.T) {
	l := buildList(t, 5, 3, 9, 1)

	assert.Equal(t, []int{5, 3, 9, 1}, l.IDs())
	assert.Equal(t, 4, l.Len())
	checkLinks(t, l)

	last, err := l.Find(1)
	require.NoError(t, err)
	_, ok := last.Next()
	assert.False(t, ok)
}

func TestInsertFirst(t *testing.T) {
	l := New[int]()

	_, err := l.InsertFirst(item(1))
	require.NoError(t, err)
	cur, ok := l.Current()
	require.True(t, ok, "cursor moves to the first node of an empty list")
	assert.Equal(t, 1, cur.ID())

	_, err = l.InsertFirst(item(2))
	require.NoError(t, err)
	_, err = l.InsertFirst(item(3))
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2, 1}, l.IDs())
	checkLinks(t, l)
}

func TestInsertBeforeAndAfter(t *testing.T) {
	tests := []struct {
		name   string
		before bool
		anchor int
		want   []int
	}{
		{name: "before head", before: true, anchor: 1, want: []int{9, 1, 2, 3}},
		{name: "before middle", before: true, anchor: 2, want: []int{1, 9, 2, 3}},
		{name: "before tail", before: true, anchor: 3, want: []int{1, 2, 9, 3}},
		{name: "after head", anchor: 1, want: []int{1, 9, 2, 3}},
		{name: "after middle", anchor: 2, want: []int{1, 2, 9, 3}},
		{name: "after tail", anchor: 3, want: []int{1, 2, 3, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := buildList(t, 1, 2, 3)
			var err error
			if tt.before {
				_, err = l.InsertBefore(item(9), tt.anchor)
			} else {
				_, err = l.InsertAfter(item(9), tt.anchor)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.IDs())
			assert.Equal(t, 4, l.Len())
			checkLinks(t, l)
		})
	}
}

func TestInsertMissingAnchor(t *testing.T) {
	l := buildList(t, 1, 2)

	_, err := l.InsertBefore(item(9), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.InsertAfter(item(9), 7)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []int{1, 2}, l.IDs())
	_, err = l.Find(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRejectsDuplicateIdentity(t *testing.T) {
	l := buildList(t, 1, 2)

	_, err := l.InsertLast(item(2))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	_, err = l.InsertAfter(item(1), 2)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	assert.Equal(t, []int{1, 2}, l.IDs())
	checkLinks(t, l)
}

func TestInsertRejectsInvalidIdentity(t *testing.T) {
	l := New[int]()

	_, err := l.InsertLast(Record{"name": "anonymous"})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
	_, err = l.InsertFirst([]int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
	assert.True(t, l.IsEmpty())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name   string
		target int
		want   []int
	}{
		{name: "head", target: 1, want: []int{2, 3}},
		{name: "middle", target: 2, want: []int{1, 3}},
		{name: "tail", target: 3, want: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := buildList(t, 1, 2, 3)

			removed, err := l.Delete(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.target, removed.ID())
			assert.False(t, removed.Attached())
			_, ok := removed.Prev()
			assert.False(t, ok)
			_, ok = removed.Next()
			assert.False(t, ok)

			assert.Equal(t, tt.want, l.IDs())
			assert.Equal(t, 2, l.Len())
			_, err = l.Find(tt.target)
			assert.ErrorIs(t, err, ErrNotFound)
			checkLinks(t, l)
		})
	}
}

func TestDeleteOnlyNode(t *testing.T) {
	l := buildList(t, 1)

	_, err := l.Delete(1)
	require.NoError(t, err)
	assert.True(t, l.IsEmpty())
	assert.False(t, l.Valid())
	checkLinks(t, l)

	_, err = l.Delete(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletedNodeKeepsPayload(t *testing.T) {
	l := buildList(t, 1, 2)

	removed, err := l.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, Record{"prev": nil, "next": nil, "id": 2, "name": "item"}, removed.View())

	_, err = l.InsertFirst(removed.Payload())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, l.IDs())
}

func TestStaleNodeAfterSlotReuse(t *testing.T) {
	l := buildList(t, 1, 2, 3)

	two, err := l.Find(2)
	require.NoError(t, err)
	_, err = l.Delete(2)
	require.NoError(t, err)
	_, err = l.InsertLast(item(4))
	require.NoError(t, err)

	assert.False(t, two.Attached())
	_, ok := two.Next()
	assert.False(t, ok)
}

func TestFindOnEmptyList(t *testing.T) {
	var l List[string]

	_, err := l.Find("anything")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.FindNth(0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindNth(t *testing.T) {
	l := buildList(t, 7, 8, 9)

	for i, want := range []int{7, 8, 9} {
		n, err := l.FindNth(i)
		require.NoError(t, err)
		assert.Equal(t, want, n.ID())
	}
	for _, k := range []int{3, 4, -1} {
		_, err := l.FindNth(k)
		assert.True(t, errors.Is(err, ErrNotFound), "position %d", k)
	}
}

func TestFindNthLongChain(t *testing.T) {
	l := New[int]()
	const size = 200000
	for i := range size {
		_, err := l.InsertLast(i)
		require.NoError(t, err)
	}

	n, err := l.FindNth(size - 1)
	require.NoError(t, err)
	assert.Equal(t, size-1, n.ID())
}

func TestCursor(t *testing.T) {
	l := buildList(t, 1, 2, 3)

	l.Rewind()
	var seen []int
	for l.Valid() {
		n, ok := l.Current()
		require.True(t, ok)
		seen = append(seen, n.ID())
		l.Advance()
	}
	assert.Equal(t, []int{1, 2, 3}, seen)

	_, ok := l.Advance()
	assert.False(t, ok, "advancing past the tail stays invalid")
	_, ok = l.Current()
	assert.False(t, ok)

	require.NoError(t, l.MoveTo(2))
	n, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, 2, n.ID())

	assert.ErrorIs(t, l.MoveTo(42), ErrNotFound)
	n, ok = l.Current()
	require.True(t, ok, "cursor unchanged after failed move")
	assert.Equal(t, 2, n.ID())
}

func TestCursorOnEmptyList(t *testing.T) {
	l := New[int]()

	assert.False(t, l.Valid())
	_, ok := l.Current()
	assert.False(t, ok)
	_, ok = l.Advance()
	assert.False(t, ok)
	l.Rewind()
	assert.False(t, l.Valid())
}

func TestDeleteUnderCursor(t *testing.T) {
	l := buildList(t, 1, 2, 3)
	require.NoError(t, l.MoveTo(2))

	_, err := l.Delete(2)
	require.NoError(t, err)

	n, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, 3, n.ID())
}

func TestAllLeavesCursorAlone(t *testing.T) {
	l := buildList(t, 1, 2, 3)
	require.NoError(t, l.MoveTo(3))

	var ids []int
	for n := range l.All() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []int{1, 2, 3}, ids)

	n, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, 3, n.ID())
}

func TestAllAllowsDeletingYieldedNode(t *testing.T) {
	l := buildList(t, 1, 2, 3, 4)

	for n := range l.All() {
		if n.ID()%2 == 0 {
			_, err := l.Delete(n.ID())
			require.NoError(t, err)
		}
	}
	assert.Equal(t, []int{1, 3}, l.IDs())
	checkLinks(t, l)
}

func TestNodeObservesLiveLinks(t *testing.T) {
	l := buildList(t, 1, 3)

	one, err := l.Find(1)
	require.NoError(t, err)
	_, err = l.InsertAfter(item(2), 1)
	require.NoError(t, err)

	next, ok := one.Next()
	require.True(t, ok)
	assert.Equal(t, 2, next.ID())
	assert.Equal(t, 2, one.View()["next"])
}

func TestWithIdentity(t *testing.T) {
	type user struct {
		Email string
		Name  string
	}
	byEmail := func(p any) (string, error) {
		u, ok := p.(user)
		if !ok || u.Email == "" {
			return "", ErrInvalidIdentity
		}
		return u.Email, nil
	}

	l := New(WithIdentity[string](byEmail))
	_, err := l.InsertLast(user{Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	_, err = l.InsertLast(user{Email: "b@example.com", Name: "B"})
	require.NoError(t, err)
	_, err = l.InsertLast(user{Name: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	n, err := l.Find("b@example.com")
	require.NoError(t, err)
	assert.Equal(t, Record{"Email": "b@example.com", "Name": "B", "prev": "a@example.com", "next": nil}, n.View())
}
