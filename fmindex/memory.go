package fmindex

import (
	"fmt"
	"sort"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/bwt"
)

// Memory is a small, non-succinct reference FM-index: the BWT is kept
// as a plain []uint8 and rank is answered by a bwt.RankIndex (the
// teacher's waveletTree/rsaBitVector stack, adapted to rank over raw
// nt6 symbol codes instead of printable bytes). It exists for tests
// and for callers without a real FMD/FMR backend.
type Memory struct {
	n         int64
	bwt       []uint8
	sa        []int64 // sa[i] = text position of the suffix at BWT row i
	acc       alphabet.Acc
	rank      *bwt.RankIndex
	symmetric bool
}

// New builds a Memory FM-index over the concatenation of seqs, each
// terminated by its own sentinel. seqs must be non-empty and every
// byte must be one of A, C, G, T, N.
func New(seqs []string) (*Memory, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("fmindex: at least one sequence is required")
	}
	var text []uint8
	for si, seq := range seqs {
		codes, err := alphabet.EncodeString(seq)
		if err != nil {
			return nil, fmt.Errorf("fmindex: sequence %d: %w", si, err)
		}
		text = append(text, codes...)
		text = append(text, alphabet.Sentinel)
	}
	return newFromCodes(text)
}

func newFromCodes(text []uint8) (*Memory, error) {
	n := int64(len(text))
	if n == 0 {
		return nil, fmt.Errorf("fmindex: empty text")
	}

	rotations := make([]int64, n)
	for i := range rotations {
		rotations[i] = int64(i)
	}
	sort.Slice(rotations, func(a, b int) bool {
		return lessRotation(text, rotations[a], rotations[b])
	})

	bwtText := make([]uint8, n)
	for row, pos := range rotations {
		src := pos - 1
		if src < 0 {
			src += n
		}
		bwtText[row] = text[src]
	}

	var counts [alphabet.Size]int64
	for _, c := range bwtText {
		counts[c]++
	}
	acc := alphabet.BuildAcc(counts)

	rank, err := bwt.NewRankIndex(bwtText)
	if err != nil {
		return nil, fmt.Errorf("fmindex: building rank index: %w", err)
	}

	return &Memory{
		n:    n,
		bwt:  bwtText,
		sa:   rotations,
		acc:  acc,
		rank: rank,
	}, nil
}

// lessRotation compares the rotation of text starting at a against the
// one starting at b. A sentinel compares smaller than every other
// symbol; two sentinels compare equal at that position and, since
// nothing meaningful follows a terminator, ties break by original
// text position so construction is deterministic (the earlier
// sequence in input order sorts first, matching the self-looping
// sentinel assumption documented in DESIGN.md).
func lessRotation(text []uint8, a, b int64) bool {
	n := int64(len(text))
	if a == b {
		return false
	}
	for i := int64(0); i < n; i++ {
		ca := text[(a+i)%n]
		cb := text[(b+i)%n]
		if ca == alphabet.Sentinel || cb == alphabet.Sentinel {
			if ca != cb {
				return ca == alphabet.Sentinel
			}
			// both sentinels: nothing more to compare, fall through to
			// the position tie-break below
			break
		}
		if ca != cb {
			return ca < cb
		}
	}
	return a < b
}

// SetSymmetric marks this index as containing both strands, enabling
// bmove's bidirectional extension tests. Not part of the Index
// contract; a pure test convenience.
func (m *Memory) SetSymmetric(v bool) { m.symmetric = v }

func (m *Memory) Acc() alphabet.Acc { return m.acc }

func (m *Memory) Len() int64 { return m.n }

func (m *Memory) IsSymmetric() bool { return m.symmetric }

func (m *Memory) Rank1A(pos int64) (uint8, [alphabet.Size]int64) {
	if pos < 0 {
		pos = 0
	}
	if pos > m.n {
		pos = m.n
	}
	var charAtPos uint8
	if pos < m.n {
		charAtPos = m.bwt[pos]
	}
	var ok [alphabet.Size]int64
	for c := uint8(0); c < alphabet.Size; c++ {
		ok[c] = int64(m.rank.Rank(byte(c), int(pos)))
	}
	return charAtPos, ok
}

func (m *Memory) Rank2A(k, l int64) ([alphabet.Size]int64, [alphabet.Size]int64) {
	_, ok := m.Rank1A(k)
	_, ol := m.Rank1A(l)
	return ok, ol
}

func (m *Memory) Extend1(lo, hi *int64, c uint8) int64 {
	_, rk := m.Rank1A(*lo)
	_, rl := m.Rank1A(*hi)
	newLo := m.acc[c] + rk[c]
	newHi := m.acc[c] + rl[c]
	*lo, *hi = newLo, newHi
	return newHi - newLo
}

// SA returns the suffix array, sa[i] being the text position of the
// suffix sorted at BWT row i. Not part of the Index contract; used by
// tests and the brute-force verifier to check move/locate results.
func (m *Memory) SA() []int64 {
	out := make([]int64, len(m.sa))
	copy(out, m.sa)
	return out
}

// BWT returns the raw BWT symbol sequence. Test-only convenience.
func (m *Memory) BWT() []uint8 {
	out := make([]uint8, len(m.bwt))
	copy(out, m.bwt)
	return out
}

func (m *Memory) RunIter() RunIterator {
	return &memoryRunIterator{bwt: m.bwt}
}

type memoryRunIterator struct {
	bwt []uint8
	pos int
}

func (it *memoryRunIterator) Next() (uint8, int64, bool) {
	if it.pos >= len(it.bwt) {
		return 0, 0, false
	}
	c := it.bwt[it.pos]
	start := it.pos
	for it.pos < len(it.bwt) && it.bwt[it.pos] == c {
		it.pos++
	}
	return c, int64(it.pos - start), true
}
