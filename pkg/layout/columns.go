package layout

import "math"

// columnTable is the visual-balance policy for small photo counts.
var columnTable = map[int][]int{
	1: {1},
	2: {1, 1},
	3: {1, 1, 1},
	4: {2, 2},
	5: {2, 1, 2},
	6: {2, 2, 2},
	7: {2, 3, 2},
	8: {3, 2, 3},
	9: {3, 3, 3},
}

// Columns returns the number of photos in each column for count photos.
// The per-column counts always sum to count. A non-positive count yields nil.
func Columns(count int) []int {
	if count <= 0 {
		return nil
	}
	if cols, ok := columnTable[count]; ok {
		out := make([]int, len(cols))
		copy(out, cols)
		return out
	}

	n := float64(count)
	cols := []int{
		int(math.Ceil(n / 3)),
		int(math.Round(n / 3)),
		int(math.Floor(n / 3)),
	}
	sum := cols[0] + cols[1] + cols[2]
	for sum != count {
		if sum < count {
			cols[0]++
			sum++
		} else {
			cols[0]--
			sum--
		}
	}
	return cols
}

// MaxRows returns the tallest column in cols.
func MaxRows(cols []int) int {
	m := 0
	for _, c := range cols {
		m = max(m, c)
	}
	return m
}
