/*
Package random generates random nt6 sequences for tests: move, bmove,
lcpindex and srindex all need many short, seeded, reproducible texts to
cross-check against brute-force suffix-array/LCP-array oracles.
*/
package random

import "math/rand"

// bases is the DNA alphabet random draws from: A, C, G, T. The
// sentinel is never generated here, since fmindex.New appends one to
// every sequence it indexes.
var bases = []rune("ACGT")

// basesWithN is bases plus the wildcard symbol N, for tests that want
// to exercise N as an ordinary alphabet symbol rather than a special
// case.
var basesWithN = []rune("ACGTN")

// Sequence returns a random DNA sequence of the given length and seed,
// drawn from A, C, G, T. The seed makes the sequence reproducible
// across runs, the way a property test needs.
func Sequence(length int, seed int64) string {
	return draw(length, seed, bases)
}

// SequenceWithN is Sequence but also draws the wildcard N.
func SequenceWithN(length int, seed int64) string {
	return draw(length, seed, basesWithN)
}

func draw(length int, seed int64, alphabet []rune) string {
	r := rand.New(rand.NewSource(seed))
	out := make([]rune, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

// Mutate returns seq with numSubs random point substitutions applied,
// each position and replacement base drawn from seed. Used to build
// near-matches for MS/PML and SMEM tests: a mutated copy of a text
// substring is a pattern with a known, bounded edit distance from an
// exact occurrence.
func Mutate(seq string, numSubs int, seed int64) string {
	r := rand.New(rand.NewSource(seed))
	runes := []rune(seq)
	for i := 0; i < numSubs && len(runes) > 0; i++ {
		pos := r.Intn(len(runes))
		runes[pos] = bases[r.Intn(len(bases))]
	}
	return string(runes)
}
