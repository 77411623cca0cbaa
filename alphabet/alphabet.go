/*
Package alphabet provides the fixed nt6 alphabet (sentinel `$` plus
`A,C,G,T,N`) shared by every layer of the index: the move table, the
LCP structure and the SR-index all key their per-character arrays by
this alphabet.
*/
package alphabet

import "fmt"

// Size is the fixed alphabet cardinality: sentinel + A, C, G, T, N.
const Size = 6

// Sentinel is the nt6 code of the end-of-string marker `$`.
const Sentinel uint8 = 0

// symbols holds the printable form of each nt6 code, index == code.
var symbols = [Size]byte{'$', 'A', 'C', 'G', 'T', 'N'}

// complement is the DNA complement table: rc(0)=0, rc(1)=4, rc(2)=3,
// rc(3)=2, rc(4)=1, rc(5)=5.
var complement = [Size]uint8{0, 4, 3, 2, 1, 5}

// Error is an error type that is returned when a symbol or code is not
// in the alphabet.
type Error struct {
	message string
}

// Error returns the error message for Error.
func (e *Error) Error() string {
	return e.message
}

// Complement returns the DNA complement of an nt6 code.
func Complement(c uint8) uint8 {
	return complement[c]
}

// Symbol returns the printable character for an nt6 code. Callers must
// validate with Valid first; out-of-range codes return '?'.
func Symbol(c uint8) byte {
	if c >= Size {
		return '?'
	}
	return symbols[c]
}

// Valid reports whether c is a member of the alphabet, i.e. c < Size.
func Valid(c uint8) bool {
	return c < Size
}

// Encode returns the nt6 code of a printable byte.
func Encode(b byte) (uint8, error) {
	for i, s := range symbols {
		if s == b {
			return uint8(i), nil
		}
	}
	return 0, &Error{fmt.Sprintf("symbol %q not in nt6 alphabet", b)}
}

// EncodeString maps every byte of seq to its nt6 code. seq must not
// already contain the sentinel; callers append it separately.
func EncodeString(seq string) ([]uint8, error) {
	encoded := make([]uint8, len(seq))
	for i := 0; i < len(seq); i++ {
		c, err := Encode(seq[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		encoded[i] = c
	}
	return encoded, nil
}

// Check returns the index of the first byte of seq not in the
// alphabet, or -1 if every byte is valid.
func Check(seq string) int {
	for i := 0; i < len(seq); i++ {
		if _, err := Encode(seq[i]); err != nil {
			return i
		}
	}
	return -1
}

// DecodeString renders codes back to printable bytes, sentinel as '$'.
func DecodeString(codes []uint8) string {
	buf := make([]byte, len(codes))
	for i, c := range codes {
		buf[i] = Symbol(c)
	}
	return string(buf)
}

// Acc is the cumulative character count table ("C array") of an
// FM-index: Acc[c] is the number of BWT characters strictly smaller
// than c, i.e. the start offset of character c's block in the first
// column. Acc[Size] == n, the total text length.
type Acc [Size + 1]int64

// BuildAcc derives an Acc table from per-character counts (counts[c]
// is the number of occurrences of c across the whole BWT). Acc is
// non-decreasing by construction.
func BuildAcc(counts [Size]int64) Acc {
	var acc Acc
	var running int64
	for c := 0; c < Size; c++ {
		acc[c] = running
		running += counts[c]
	}
	acc[Size] = running
	return acc
}

// Len returns n, the total text length (Acc[Size]).
func (a Acc) Len() int64 {
	return a[Size]
}

// CharAt returns the first-column character whose block contains BWT
// position pos, i.e. the largest c with Acc[c] <= pos < Acc[c+1].
func (a Acc) CharAt(pos int64) uint8 {
	for c := 0; c < Size; c++ {
		if pos < a[c+1] {
			return uint8(c)
		}
	}
	return Size - 1
}
