package textutil

import "sort"

// SequenceRatio returns 2*M/T where M is the number of runes in the
// matching blocks found by recursive longest-common-substring search and T
// is the total rune count of both inputs. Identical inputs score 1, inputs
// with nothing in common score 0. Two empty inputs score 1.
//
// No rune is discarded for being too common, so long transcripts in which
// every letter repeats still produce a meaningful score.
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := newMatcher(ra, rb)
	return 2 * float64(m.matchedRunes()) / float64(total)
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchedRunes sums the sizes of all matching blocks.
func (m *matcher) matchedRunes() int {
	matched := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// given ranges, preferring the earliest start in a, then in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestk := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		positions := m.b2j[m.a[i]]
		start := sort.SearchInts(positions, blo)
		for _, j := range positions[start:] {
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti--
		bestj--
		bestk++
	}
	for besti+bestk < ahi && bestj+bestk < bhi && m.a[besti+bestk] == m.b[bestj+bestk] {
		bestk++
	}
	return besti, bestj, bestk
}
