package matching

// textSimilarity computes a sequence-similarity ratio in [0, 1] between
// two normalized strings: twice the number of matched characters over
// the combined length, where matches are found by recursively locating
// the longest common contiguous block and matching the regions to its
// left and right. Equal strings score 1.0, disjoint strings 0.0.
func textSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	matched := matchedRunes(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

func matchedRunes(a, b []rune) int {
	// Index of rune positions in b, rebuilt per call; inputs are short
	// normalized titles so the quadratic worst case is acceptable.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	total := 0
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		besti, bestj, bestSize := longestBlock(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if bestSize == 0 {
			continue
		}
		total += bestSize

		if s.alo < besti && s.blo < bestj {
			queue = append(queue, span{s.alo, besti, s.blo, bestj})
		}
		if besti+bestSize < s.ahi && bestj+bestSize < s.bhi {
			queue = append(queue, span{besti + bestSize, s.ahi, bestj + bestSize, s.bhi})
		}
	}
	return total
}

// longestBlock finds the longest contiguous run common to a[alo:ahi]
// and b[blo:bhi], preferring the earliest occurrence on ties.
func longestBlock(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestSize := alo, blo, 0
	runLen := make(map[int]int)

	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		runLen = next
	}
	return besti, bestj, bestSize
}
