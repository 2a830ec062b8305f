package usecase

// similarityScore is 100 * (1 - distance/longer length), or 0 when the
// distance exceeds what threshold allows.
func similarityScore(a, b string, threshold int) int {
	la, lb := len([]rune(a)), len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 0
	}
	maxDist := longer * (100 - threshold) / 100
	dist, ok := editDistanceWithin(a, b, maxDist)
	if !ok {
		return 0
	}
	return 100 - dist*100/longer
}

func min3(a, b, c int) int {
	return minInt(minInt(a, b), c)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// editDistanceWithin Levenshtein masofasi; stops early once every cell of
// a row exceeds max.
func editDistanceWithin(a, b string, max int) (int, bool) {
	if max < 0 {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		n := len(ra) + len(rb)
		return n, n <= max
	}
	if absInt(len(ra)-len(rb)) > max {
		return 0, false
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1
		rowMin := curr[0]
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			v := min3(prev[j+1]+1, curr[j]+1, prev[j]+cost)
			curr[j+1] = v
			if v < rowMin {
				rowMin = v
			}
		}
		if rowMin > max {
			return 0, false
		}
		prev, curr = curr, prev
	}

	dist := prev[len(rb)]
	return dist, dist <= max
}
