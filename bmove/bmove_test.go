package bmove_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/bmove"
	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/move"
)

func buildBMove(t *testing.T, seqs []string, stride int) (*fmindex.Memory, *bmove.BMove) {
	t.Helper()
	mem, err := fmindex.New(seqs)
	require.NoError(t, err)
	table, err := move.Build(mem, move.Config{})
	require.NoError(t, err)
	return mem, bmove.Build(table, bmove.Config{Stride: stride})
}

func TestRank1AMatchesFMIndex(t *testing.T) {
	mem, bm := buildBMove(t, []string{"ACACACGTGTGT"}, 3)
	n := mem.Len()
	for pos := int64(0); pos <= n; pos++ {
		wantChar, wantOk := mem.Rank1A(pos)
		gotChar, gotOk := bm.Rank1A(pos)
		require.Equalf(t, wantOk, gotOk, "rank mismatch at pos %d", pos)
		if pos < n {
			require.Equalf(t, wantChar, gotChar, "char mismatch at pos %d", pos)
		}
	}
}

func TestExtendPreservesSize(t *testing.T) {
	_, bm := buildBMove(t, []string{"ACACACGTGTGT"}, 8)
	ik := bm.WholeInterval()
	for _, isBack := range []bool{true, false} {
		children := bm.Extend(ik, isBack)
		var total int64
		for _, child := range children {
			require.GreaterOrEqual(t, child.Size, int64(0))
			total += child.Size
		}
		require.Equal(t, ik.Size, total)
	}
}

func TestExtendMatchesExtend1Size(t *testing.T) {
	mem, bm := buildBMove(t, []string{"ACACACGTGTGT"}, 8)
	ik := bm.WholeInterval()
	children := bm.Extend(ik, true)

	for c := uint8(0); c < alphabet.Size; c++ {
		lo, hi := int64(0), mem.Len()
		size := mem.Extend1(&lo, &hi, c)
		require.Equalf(t, size, children[c].Size, "char %d size mismatch", c)
		require.Equalf(t, lo, children[c].X[0], "char %d forward offset mismatch", c)
	}
}

func TestSMEMVariantsAgreeOnSymmetricText(t *testing.T) {
	// "ACAC" and its reverse complement "GTGT" (rc(A)=T, rc(C)=G).
	_, bm := buildBMove(t, []string{"ACAC", "GTGT"}, 4)

	pattern := []uint8{1, 2, 1, 2} // ACAC
	original := bm.SMEM(pattern, 1)
	tg := bm.SMEMTravisGagie(pattern, 2)

	require.NotEmpty(t, original)
	require.NotEmpty(t, tg)

	// Both variants must find the full pattern as (part of) a maximal
	// match: the longest span covered by either variant should span
	// the whole 4-character pattern.
	longestSpan := func(mems []bmove.MEM) int {
		best := 0
		for _, m := range mems {
			if span := m.End - m.Start; span > best {
				best = span
			}
		}
		return best
	}
	require.Equal(t, len(pattern), longestSpan(original))
	require.Equal(t, len(pattern), longestSpan(tg))
}
