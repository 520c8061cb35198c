package jsonl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/types"
)

func sampleSnapshot() chain.Snapshot[string] {
	return chain.Snapshot[string]{
		Head: "c",
		Records: map[string]chain.Record{
			"a": {"title": "alpha", "prev": "c", "next": "b"},
			"b": {"title": "beta", "prev": "a", "next": nil},
			"c": {"title": "gamma", "prev": nil, "next": "a"},
		},
	}
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.Save(types.SnapshotWork, sampleSnapshot()))
	got, err := s.Load(types.SnapshotWork)
	require.NoError(t, err)

	assert.Equal(t, sampleSnapshot(), got)
}

func TestNumericLinksStoredAsText(t *testing.T) {
	s, _ := openStore(t)
	snap := chain.Snapshot[string]{
		Head: "1",
		Records: map[string]chain.Record{
			"1": {"prev": nil, "next": float64(2)},
			"2": {"prev": 1, "next": nil},
		},
	}
	require.NoError(t, s.Save(types.SnapshotWork, snap))

	got, err := s.Load(types.SnapshotWork)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Records["1"]["next"])
	assert.Equal(t, "1", got.Records["2"]["prev"])

	l := chain.New[string]()
	require.NoError(t, l.ImportSnapshot(got))
	assert.Equal(t, []string{"1", "2"}, l.IDs())
}

func TestSaveWritesChainOrder(t *testing.T) {
	s, dir := openStore(t)

	snap := sampleSnapshot()
	snap.Records["z"] = chain.Record{"title": "orphan", "prev": "q", "next": nil}
	require.NoError(t, s.Save("base", snap))

	data, err := os.ReadFile(filepath.Join(dir, "base.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)

	for i, id := range []string{"c", "a", "b", "z"} {
		assert.Contains(t, lines[i], `"_id":"`+id+`"`, "line %d", i+1)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	s, dir := openStore(t)

	content := strings.Join([]string{
		`{"_id":"a","prev":null,"next":"b"}`,
		`not json`,
		`{"prev":"a","next":null}`,
		`{"_id":"b","prev":"a","next":null}`,
		``,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "work.jsonl"), []byte(content), 0o644))

	got, err := s.Load("work")
	require.NoError(t, err)
	assert.Len(t, got.Records, 2)
	assert.Equal(t, "a", got.Head, "head inferred without a head file")
}

func TestLoadAmbiguousHead(t *testing.T) {
	s, dir := openStore(t)

	content := `{"_id":"a","next":null}` + "\n" + `{"_id":"b","next":null}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "work.jsonl"), []byte(content), 0o644))

	_, err := s.Load("work")
	assert.ErrorIs(t, err, chain.ErrAmbiguousHead)
}

func TestEmptySnapshot(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.Save("empty", chain.Snapshot[string]{}))
	got, err := s.Load("empty")
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.Empty(t, got.Head)
}

func TestLoadMissing(t *testing.T) {
	s, _ := openStore(t)

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
}

func TestNames(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.Save("work", sampleSnapshot()))
	require.NoError(t, s.Save("base", sampleSnapshot()))

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "work"}, names)
}

func TestInvalidNameAndClosed(t *testing.T) {
	s, _ := openStore(t)

	assert.ErrorIs(t, s.Save("../escape", sampleSnapshot()), types.ErrInvalidName)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err := s.Load("work")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.Names()
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestLoadedSnapshotImports(t *testing.T) {
	s, _ := openStore(t)
	require.NoError(t, s.Save("work", sampleSnapshot()))

	snap, err := s.Load("work")
	require.NoError(t, err)

	l := chain.New[string]()
	require.NoError(t, l.ImportSnapshot(snap))
	assert.Equal(t, []string{"c", "a", "b"}, l.IDs())
	assert.Empty(t, l.Changes())
}
