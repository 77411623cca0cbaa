package bwt

// RankIndex exposes a waveletTree's Rank/Access over an arbitrary byte
// sequence, without the rest of the BWT type's baggage (its own
// suffix array, skip list and lfSearch): fmindex.Memory needs only
// rank-and-access over the already-built BWT string, which
// waveletTree already gives it, adapted here to a small alphabet of
// raw symbol codes rather than printable bytes.
type RankIndex struct {
	wt waveletTree
}

// NewRankIndex builds a RankIndex over seq. seq must be non-empty.
func NewRankIndex(seq []byte) (*RankIndex, error) {
	wt, err := newWaveletTreeFromString(string(seq))
	if err != nil {
		return nil, err
	}
	return &RankIndex{wt: wt}, nil
}

// Rank returns the number of occurrences of char in seq[0:i).
func (r *RankIndex) Rank(char byte, i int) int {
	if !isInAlpha(r.wt.alpha, char) {
		return 0
	}
	return r.wt.Rank(char, i)
}

// Access returns seq[i].
func (r *RankIndex) Access(i int) byte {
	return r.wt.Access(i)
}

// Len returns len(seq).
func (r *RankIndex) Len() int {
	return r.wt.length
}
