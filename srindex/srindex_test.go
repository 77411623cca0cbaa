package srindex_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/move"
	"github.com/polytools/rlfm/srindex"
)

func buildAll(t *testing.T, seqs []string, stride int) (*fmindex.Memory, *move.Table, *srindex.SrIndex) {
	t.Helper()
	mem, err := fmindex.New(seqs)
	require.NoError(t, err)
	mt, err := move.Build(mem, move.Config{})
	require.NoError(t, err)
	sr, err := srindex.Build(context.Background(), mem, mt, srindex.Config{Stride: stride})
	require.NoError(t, err)
	return mem, mt, sr
}

// LocateOne must agree with the reference suffix array for every BWT
// row of a repetitive homopolymer text ("A"*100, s=8): the case an
// r-index is built for, few runs covering many positions.
func TestLocateOneMatchesSuffixArray(t *testing.T) {
	text := strings.Repeat("A", 100)
	mem, _, sr := buildAll(t, []string{text}, 8)

	n := mem.Len()
	sa := mem.SA()
	for row := int64(0); row < n; row++ {
		require.Equalf(t, sa[row], sr.LocateOne(row), "row %d", row)
	}
}

// LocateAll over the whole BWT must reproduce the suffix array exactly
// in row order.
func TestLocateAllOverFullRangeMatchesSuffixArray(t *testing.T) {
	text := strings.Repeat("A", 100)
	mem, _, sr := buildAll(t, []string{text}, 8)

	n := mem.Len()
	sa := mem.SA()
	got, err := sr.LocateAll(0, n, 0)
	require.NoError(t, err)
	require.Equal(t, sa, got)
}

func TestPhiMatchesSAPredecessor(t *testing.T) {
	mem, _, sr := buildAll(t, []string{"ACGTACGTACGT"}, 4)
	sa := mem.SA()
	n := mem.Len()

	// Build a j -> SA[ISA[j]-1] oracle directly from the suffix array.
	isa := make([]int64, n)
	for row, j := range sa {
		isa[j] = int64(row)
	}
	for j := int64(0); j < n; j++ {
		row := isa[j]
		if row == 0 {
			continue
		}
		want := sa[row-1]
		require.Equalf(t, want, sr.Phi(j), "phi(%d)", j)
	}
}

// Phi must report -1 for any SA value smaller than every run-start SA
// value, per the spec's explicit phi_sa[0] sentinel.
func TestPhiReturnsMinusOneBelowFirstBreakpoint(t *testing.T) {
	_, _, sr := buildAll(t, []string{"ACGTACGTACGT"}, 4)
	require.Equal(t, int64(-1), sr.Phi(-1))
}

// Toehold is keyed by BWT position (a run's last row, bwt_end), not by
// run index: it must agree with the suffix array there and return -1
// for rows that aren't a run's last row.
func TestToeholdMatchesSAAtRunEnd(t *testing.T) {
	mem, mt, sr := buildAll(t, []string{"ACGTACGTACGT"}, 4)
	sa := mem.SA()
	for i := 0; i < mt.NumRuns(); i++ {
		end := mt.RunStart(i) + mt.RunLen(i) - 1
		require.Equal(t, sa[end], sr.Toehold(end))
	}
}

func TestToeholdReturnsMinusOneOffRunBoundary(t *testing.T) {
	mem, mt, sr := buildAll(t, []string{"ACGTACGTACGT"}, 4)
	n := mem.Len()
	isRunEnd := make(map[int64]bool)
	for i := 0; i < mt.NumRuns(); i++ {
		isRunEnd[mt.RunStart(i)+mt.RunLen(i)-1] = true
	}
	for row := int64(0); row < n; row++ {
		if !isRunEnd[row] {
			require.Equal(t, int64(-1), sr.Toehold(row))
		}
	}
}

func TestMultiLocateMatchesRepeatedLocateAll(t *testing.T) {
	mem, _, sr := buildAll(t, []string{"ACGTACGTACGT"}, 4)
	sa := mem.SA()
	intervals := [][2]int64{{0, 3}, {3, 5}, {5, 5}}
	got, err := sr.MultiLocate(intervals)
	require.NoError(t, err)
	require.Len(t, got, len(intervals))
	for i, iv := range intervals {
		for j, row := 0, iv[0]; row < iv[1]; j, row = j+1, row+1 {
			require.Equal(t, sa[row], got[i][j].Offset)
			require.Equal(t, 0, got[i][j].Seq) // single sequence: sid is always 0
		}
	}
}

// multi_locate over several sequences must resolve each SA value back
// to the sequence that contains it and the correct in-sequence offset.
func TestMultiLocateResolvesSequenceAndOffset(t *testing.T) {
	mem, _, sr := buildAll(t, []string{"ACGT", "GGCC"}, 2)
	n := mem.Len()
	sas, err := sr.LocateAll(0, n, 0)
	require.NoError(t, err)

	const seq0Len = 5 // "ACGT" + its sentinel
	for row, sa := range sas {
		var wantSeq int
		var wantOffset int64
		if sa < seq0Len {
			wantSeq, wantOffset = 0, sa
		} else {
			wantSeq, wantOffset = 1, sa-seq0Len
		}
		got, err := sr.MultiLocate([][2]int64{{int64(row), int64(row) + 1}})
		require.NoError(t, err)
		require.Equal(t, wantSeq, got[0][0].Seq)
		require.Equal(t, wantOffset, got[0][0].Offset)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	text := strings.Repeat("ACGT", 16) // n = 65
	mem, mt, sr := buildAll(t, []string{text}, 16)

	dir := t.TempDir()
	path := dir + "/test.sri"
	require.NoError(t, sr.Save(path))

	loaded, err := srindex.Load(path, mt)
	require.NoError(t, err)

	n := mem.Len()
	for row := int64(0); row < n; row++ {
		require.Equal(t, sr.LocateOne(row), loaded.LocateOne(row))
	}
}

// Save/Load must round-trip correctly when stride<=1 aliases the
// subsampled arrays onto the run-boundary arrays.
func TestSaveLoadRoundTripAliasedStride(t *testing.T) {
	text := strings.Repeat("ACGT", 8)
	mem, mt, sr := buildAll(t, []string{text}, 1)

	dir := t.TempDir()
	path := dir + "/aliased.sri"
	require.NoError(t, sr.Save(path))

	loaded, err := srindex.Load(path, mt)
	require.NoError(t, err)

	n := mem.Len()
	for row := int64(0); row < n; row++ {
		require.Equal(t, sr.LocateOne(row), loaded.LocateOne(row))
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	_, mt, sr := buildAll(t, []string{"ACGTACGT"}, 4)
	dir := t.TempDir()
	path := dir + "/bad.sri"
	require.NoError(t, sr.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = srindex.Load(path, mt)
	require.ErrorIs(t, err, srindex.ErrCorruptFile)
}
