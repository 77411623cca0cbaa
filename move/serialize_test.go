package move_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/move"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	mem, err := fmindex.New([]string{"ACGTACGTACGTACGTACGT"})
	require.NoError(t, err)

	table, err := move.Build(mem, move.Config{SplitDepth: 2})
	require.NoError(t, err)
	table.PrecomputeDist()

	path := filepath.Join(t.TempDir(), "index.mvi")
	require.NoError(t, table.Save(path))

	loaded, err := move.Load(path)
	require.NoError(t, err)

	require.Equal(t, table.NumRuns(), loaded.NumRuns())
	require.Equal(t, table.Len(), loaded.Len())
	require.Equal(t, table.Acc(), loaded.Acc())
	require.Equal(t, table.SplitDepth(), loaded.SplitDepth())

	for i := 0; i < table.NumRuns(); i++ {
		require.Equalf(t, table.RunChar(i), loaded.RunChar(i), "c[%d]", i)
		require.Equalf(t, table.RunLen(i), loaded.RunLen(i), "len[%d]", i)
		require.Equalf(t, table.RunStart(i), loaded.RunStart(i), "p[%d]", i)
		require.Equalf(t, table.RunPi(i), loaded.RunPi(i), "pi[%d]", i)
	}

	n := mem.Len()
	for pos := int64(0); pos < n; pos++ {
		r1 := findRun(table, pos)
		r2 := findRun(loaded, pos)
		require.Equal(t, table.LF(pos, &r1), loaded.LF(pos, &r2))
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	mem, err := fmindex.New([]string{"ACGT"})
	require.NoError(t, err)
	table, err := move.Build(mem, move.Config{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "index.mvi")
	require.NoError(t, table.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[90] ^= 0xFF // flip a checksum byte
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = move.Load(path)
	require.ErrorIs(t, err, move.ErrCorruptFile)
}
