package chain

import (
	"slices"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fiveItems is stored out of order on purpose: the chain runs 3→4→1→2→5.
func fiveItems() map[int]Record {
	return map[int]Record{
		1: {"title": "one", "prev": 4, "next": 2},
		2: {"title": "two", "prev": 1, "next": 5},
		3: {"title": "three", "prev": nil, "next": 4},
		4: {"title": "four", "prev": 3, "next": 1},
		5: {"title": "five", "prev": 2, "next": nil},
	}
}

func sortedKeys(m map[int]Record) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestImportRoundTrip(t *testing.T) {
	snap := fiveItems()
	l := New[int]()
	require.NoError(t, l.Import(snap, 3))

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, []int{3, 4, 1, 2, 5}, l.IDs())

	if diff := pretty.Compare(fiveItems(), l.DumpAll()); diff != "" {
		t.Errorf("DumpAll differs from snapshot (-want +got):\n%s", diff)
	}
	assert.Equal(t, fiveItems(), snap, "import must not modify its input")

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, 3, cur.ID())
}

func TestImportScenario(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Import(fiveItems(), 3))

	_, err := l.InsertLast(Record{"id": 6})
	require.NoError(t, err)
	assert.Equal(t, 6, l.Len())
	six, err := l.Find(6)
	require.NoError(t, err)
	_, ok := six.Next()
	assert.False(t, ok)

	removed, err := l.Delete(5)
	require.NoError(t, err)
	_, err = l.InsertBefore(removed.Payload(), 4)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5, 4, 1, 2, 6}, l.IDs())

	changes := l.Changes()
	assert.Equal(t, []int{2, 3, 4, 5, 6}, sortedKeys(changes))
	assert.Equal(t, Record{"title": "five", "prev": 3, "next": 4}, changes[5])
	assert.Equal(t, Record{"title": "two", "prev": 1, "next": 6}, changes[2])
	assert.Equal(t, Record{"id": 6, "prev": 2, "next": nil}, changes[6])
	assert.NotContains(t, changes, 1, "node 1 kept both neighbors")
}

func TestChangesIdempotent(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Import(fiveItems(), 3))

	assert.Empty(t, l.Changes(), "no changes right after import")

	_, err := l.Delete(4)
	require.NoError(t, err)
	first := l.Changes()
	second := l.Changes()
	assert.Equal(t, first, second)
	assert.Equal(t, []int{1, 3}, sortedKeys(first))
}

func TestChangesFlags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, l *List[int])
		want   []int
	}{
		{
			name:   "no mutation",
			mutate: func(t *testing.T, l *List[int]) {},
			want:   []int{},
		},
		{
			name: "insert before head flags old head",
			mutate: func(t *testing.T, l *List[int]) {
				_, err := l.InsertFirst(Record{"id": 9})
				require.NoError(t, err)
			},
			want: []int{3, 9},
		},
		{
			name: "tail removed leaves predecessor without next",
			mutate: func(t *testing.T, l *List[int]) {
				_, err := l.Delete(5)
				require.NoError(t, err)
			},
			want: []int{2},
		},
		{
			name: "head removed leaves successor without prev",
			mutate: func(t *testing.T, l *List[int]) {
				_, err := l.Delete(3)
				require.NoError(t, err)
			},
			want: []int{4},
		},
		{
			name: "middle insert touches both neighbors",
			mutate: func(t *testing.T, l *List[int]) {
				_, err := l.InsertAfter(Record{"id": 9}, 1)
				require.NoError(t, err)
			},
			want: []int{1, 2, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New[int]()
			require.NoError(t, l.Import(fiveItems(), 3))
			tt.mutate(t, l)
			assert.Equal(t, tt.want, sortedKeys(l.Changes()))
		})
	}
}

func TestChangesIgnoresPayloadEdits(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Import(fiveItems(), 3))

	baseline := fiveItems()
	baseline[1] = Record{"title": "renamed", "prev": 4, "next": 2}
	l.SetBaseline(baseline)

	assert.Empty(t, l.Changes())
}

func TestChangesWithoutBaseline(t *testing.T) {
	l := New[int]()
	for _, id := range []int{1, 2} {
		_, err := l.InsertLast(id)
		require.NoError(t, err)
	}

	changes := l.Changes()
	assert.Equal(t, map[int]Record{
		1: {"value": 1, "prev": nil, "next": 2},
		2: {"value": 2, "prev": 1, "next": nil},
	}, changes)
}

func TestImportEdgeCases(t *testing.T) {
	t.Run("absent head yields empty list", func(t *testing.T) {
		l := New[int]()
		require.NoError(t, l.Import(fiveItems(), 42))
		assert.True(t, l.IsEmpty())
		assert.False(t, l.Valid())
		assert.Len(t, l.Baseline(), 5)
	})

	t.Run("dangling next stops the walk", func(t *testing.T) {
		snap := fiveItems()
		snap[4] = Record{"title": "four", "prev": 3, "next": 99}
		l := New[int]()
		require.NoError(t, l.Import(snap, 3))
		assert.Equal(t, []int{3, 4}, l.IDs())
	})

	t.Run("json numbers resolve to int identities", func(t *testing.T) {
		snap := map[int]Record{
			1: {"prev": nil, "next": float64(2)},
			2: {"prev": float64(1), "next": nil},
		}
		l := New[int]()
		require.NoError(t, l.Import(snap, 1))
		assert.Equal(t, []int{1, 2}, l.IDs())
		assert.Empty(t, l.Changes())
	})

	t.Run("cycle is rejected and list kept", func(t *testing.T) {
		l := New[int]()
		_, err := l.InsertLast(7)
		require.NoError(t, err)

		snap := fiveItems()
		snap[5] = Record{"title": "five", "prev": 2, "next": 3}
		err = l.Import(snap, 3)
		assert.ErrorIs(t, err, ErrSnapshotCycle)
		assert.Equal(t, []int{7}, l.IDs())
		assert.Nil(t, l.Baseline())
	})

	t.Run("import replaces previous chain", func(t *testing.T) {
		l := New[int]()
		old, err := l.InsertLast(7)
		require.NoError(t, err)
		require.NoError(t, l.Import(fiveItems(), 3))
		assert.Equal(t, []int{3, 4, 1, 2, 5}, l.IDs())
		assert.False(t, old.Attached())
		_, err = l.Find(7)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestImportLongChain(t *testing.T) {
	const size = 100000
	snap := make(map[int]Record, size)
	for i := range size {
		rec := Record{"prev": nil, "next": nil}
		if i > 0 {
			rec["prev"] = i - 1
		}
		if i < size-1 {
			rec["next"] = i + 1
		}
		snap[i] = rec
	}

	l := New[int]()
	require.NoError(t, l.Import(snap, 0))
	assert.Equal(t, size, l.Len())
	assert.Empty(t, l.Changes())
}

func TestExportReimports(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Import(fiveItems(), 3))
	_, err := l.Delete(3)
	require.NoError(t, err)
	_, err = l.InsertLast(Record{"id": 8, "title": "eight"})
	require.NoError(t, err)

	exported := l.Export()
	assert.Equal(t, 4, exported.Head)

	again := New[int]()
	require.NoError(t, again.ImportSnapshot(exported))
	assert.Equal(t, l.IDs(), again.IDs())
	assert.Empty(t, again.Changes())

	head, err := InferHead(exported.Records)
	require.NoError(t, err)
	assert.Equal(t, 4, head)
}

func TestSetBaseline(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Import(fiveItems(), 3))
	_, err := l.Delete(5)
	require.NoError(t, err)

	l.SetBaseline(l.DumpAll())
	assert.Empty(t, l.Changes())
	assert.Equal(t, []int{3, 4, 1, 2}, l.IDs())
}

func TestInferHead(t *testing.T) {
	tests := []struct {
		name    string
		records map[string]Record
		want    string
		wantErr error
	}{
		{
			name: "single head",
			records: map[string]Record{
				"a": {"prev": nil, "next": "b"},
				"b": {"prev": "a", "next": nil},
			},
			want: "a",
		},
		{
			name:    "empty snapshot",
			records: map[string]Record{},
			wantErr: ErrNoHead,
		},
		{
			name: "two heads",
			records: map[string]Record{
				"a": {"next": nil},
				"b": {"next": nil},
			},
			wantErr: ErrAmbiguousHead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferHead(tt.records)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
