package oracle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n+"\n"), 0666))
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tape20", "tape21", "input")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tapes"), 0777))
	before, err := Snapshot(dir, "tape*")
	require.NoError(t, err)
	assert.Equal(t, []string{"tape20", "tape21"}, before.Sorted())

	touch(t, dir, "tape22", "tape23_diff")
	after, err := Snapshot(dir, "tape*")
	require.NoError(t, err)
	assert.Equal(t, []string{"tape22", "tape23_diff"}, after.Minus(before))
	assert.Empty(t, before.Minus(after))
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tape20", "tape21")
	require.NoError(t, Cleanup(dir, []string{"tape20", "missing"}))
	left, err := Snapshot(dir, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"tape21"}, left.Sorted())
}

func TestPairs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "referenceTape25", "referenceTape20", "referenceTape", "referenceTape5", "tape25")
	pairs, skipped, err := Pairs(dir, "referenceTape", "tape")
	require.NoError(t, err)
	assert.Equal(t, []string{"referenceTape", "referenceTape5"}, skipped)
	assert.Equal(t, []Pair{
		{Ref: "referenceTape20", Trial: "tape20"},
		{Ref: "referenceTape25", Trial: "tape25"},
	}, pairs)
}

func TestTrials(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tape25", "tape25_diff", "tape7", "tape30", "referenceTape25")
	trials, err := Trials(dir, "tape")
	require.NoError(t, err)
	assert.Equal(t, []string{"tape25", "tape30"}, trials)
}

func TestTapeID(t *testing.T) {
	id, err := TapeID("referenceTape25")
	require.NoError(t, err)
	assert.Equal(t, "25", id)
	_, err = TapeID("x")
	assert.Error(t, err)
}
