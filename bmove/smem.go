package bmove

import "github.com/polytools/rlfm/alphabet"

// MEM is one super-maximal exact match: the pattern half-open range
// [Start, End) and the bidirectional interval it matches.
type MEM struct {
	Start, End int
	Interval   Interval
}

// SMEM runs the "Original" variant of §4.2's SMEM search: from every
// unconsumed pattern position, forward-extend until the interval
// drops below minOcc or the pattern ends, then backward-extend the
// resulting candidate as far as possible, emitting one MEM per round
// and skipping past it (start_new > start_prev_mem) before continuing,
// which is the standard MEM containment rule.
func (bm *BMove) SMEM(pattern []uint8, minOcc int64) []MEM {
	n := len(pattern)
	var mems []MEM
	lastStart := -1

	for i := 0; i < n; {
		x := bm.WholeInterval()
		matchEnd := i
		for matchEnd < n {
			ext := bm.Extend(x, false)
			cand := ext[alphabet.Complement(pattern[matchEnd])]
			if cand.Size <= 0 {
				break
			}
			x = cand
			matchEnd++
			if x.Size < minOcc {
				break
			}
		}
		if matchEnd == i {
			i++
			continue
		}

		start := i
		for start > 0 {
			ext := bm.Extend(x, true)
			cand := ext[pattern[start-1]]
			if cand.Size <= 0 {
				break
			}
			x = cand
			start--
		}

		if start > lastStart {
			mems = append(mems, MEM{Start: start, End: matchEnd, Interval: x})
			lastStart = start
		}
		i = matchEnd
	}
	return mems
}

// SMEMTravisGagie runs the fixed-window variant of §4.2's SMEM search:
// for every window of length minLen, backward-extend the window; on
// success, extend forward as far as possible, then extend backward
// once more, emitting one MEM per window.
func (bm *BMove) SMEMTravisGagie(pattern []uint8, minLen int) []MEM {
	n := len(pattern)
	var mems []MEM

	for start := 0; start+minLen <= n; start++ {
		end := start + minLen
		x := bm.WholeInterval()
		ok := true
		for k := end - 1; k >= start; k-- {
			ext := bm.Extend(x, true)
			cand := ext[pattern[k]]
			if cand.Size <= 0 {
				ok = false
				break
			}
			x = cand
		}
		if !ok {
			continue
		}

		newEnd := end
		for newEnd < n {
			ext := bm.Extend(x, false)
			cand := ext[alphabet.Complement(pattern[newEnd])]
			if cand.Size <= 0 {
				break
			}
			x = cand
			newEnd++
		}

		newStart := start
		for newStart > 0 {
			ext := bm.Extend(x, true)
			cand := ext[pattern[newStart-1]]
			if cand.Size <= 0 {
				break
			}
			x = cand
			newStart--
		}

		mems = append(mems, MEM{Start: newStart, End: newEnd, Interval: x})
	}
	return mems
}
