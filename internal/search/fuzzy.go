// internal/search/fuzzy.go
package search

import "math"

// matcher scores approximate occurrences of a folded pattern inside folded
// text. Lower scores are better; 0 is an exact match at the expected location.
type matcher struct {
	pattern        []rune
	threshold      float64
	location       int
	distance       int
	ignoreLocation bool
}

// score returns the best score of pattern against text and whether it is
// within the threshold. A match is an edit-distance alignment of the whole
// pattern against any substring of text; its score is errors/len(pattern)
// plus the distance of the match start from the expected location scaled by
// distance.
func (m matcher) score(text []rune) (float64, bool) {
	plen := len(m.pattern)
	if plen == 0 {
		return 0, true
	}
	maxErrors := int(math.Floor(m.threshold * float64(plen)))

	// prev and cur hold one column of the alignment matrix: cost[i] is the
	// fewest edits aligning pattern[:i] with a substring ending at the current
	// text position, start[i] where that substring begins.
	prevCost := make([]int, plen+1)
	prevStart := make([]int, plen+1)
	curCost := make([]int, plen+1)
	curStart := make([]int, plen+1)
	for i := range prevCost {
		prevCost[i] = i
	}

	best := math.Inf(1)
	for j := 1; j <= len(text); j++ {
		curCost[0] = 0
		curStart[0] = j
		c := text[j-1]
		for i := 1; i <= plen; i++ {
			cost, start := prevCost[i-1], prevStart[i-1]
			if m.pattern[i-1] != c {
				cost++
			}
			if alt := prevCost[i] + 1; alt < cost {
				cost, start = alt, prevStart[i]
			}
			if alt := curCost[i-1] + 1; alt < cost {
				cost, start = alt, curStart[i-1]
			}
			curCost[i], curStart[i] = cost, start
		}

		if errs := curCost[plen]; errs <= maxErrors {
			if s := m.compute(errs, curStart[plen]); s < best {
				best = s
				if best == 0 {
					break
				}
			}
		}
		prevCost, curCost = curCost, prevCost
		prevStart, curStart = curStart, prevStart
	}

	if best <= m.threshold {
		return best, true
	}
	return best, false
}

func (m matcher) compute(errors, start int) float64 {
	accuracy := float64(errors) / float64(len(m.pattern))
	if m.ignoreLocation {
		return accuracy
	}
	proximity := start - m.location
	if proximity < 0 {
		proximity = -proximity
	}
	if m.distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(m.distance)
}
