package wordcloud

import "math/rand/v2"

// occupancy tracks which grid cells of the canvas are covered by placed
// words, with a summed-area table for constant-time rectangle queries.
type occupancy struct {
	rows, cols int
	taken      []bool
	integral   []int32 // (rows+1) x (cols+1)
}

func newOccupancy(rows, cols int) *occupancy {
	return &occupancy{
		rows:     rows,
		cols:     cols,
		taken:    make([]bool, rows*cols),
		integral: make([]int32, (rows+1)*(cols+1)),
	}
}

// area returns the number of taken cells in the h x w rectangle at (r, c).
func (o *occupancy) area(r, c, h, w int) int32 {
	stride := o.cols + 1
	return o.integral[(r+h)*stride+(c+w)] -
		o.integral[r*stride+(c+w)] -
		o.integral[(r+h)*stride+c] +
		o.integral[r*stride+c]
}

// sample picks uniformly among the free h x w positions.
// Returns false when no position is free.
func (o *occupancy) sample(h, w int, rng *rand.Rand) (row, col int, ok bool) {
	if h > o.rows || w > o.cols {
		return 0, 0, false
	}

	free := 0
	for r := 0; r+h <= o.rows; r++ {
		for c := 0; c+w <= o.cols; c++ {
			if o.area(r, c, h, w) == 0 {
				free++
			}
		}
	}
	if free == 0 {
		return 0, 0, false
	}

	pick := rng.IntN(free)
	for r := 0; r+h <= o.rows; r++ {
		for c := 0; c+w <= o.cols; c++ {
			if o.area(r, c, h, w) != 0 {
				continue
			}
			if pick == 0 {
				return r, c, true
			}
			pick--
		}
	}
	return 0, 0, false
}

// fill marks the h x w rectangle at (r, c) as taken and refreshes the
// summed-area table from row r down.
func (o *occupancy) fill(r, c, h, w int) {
	for i := r; i < r+h && i < o.rows; i++ {
		for j := c; j < c+w && j < o.cols; j++ {
			o.taken[i*o.cols+j] = true
		}
	}

	stride := o.cols + 1
	for i := r; i < o.rows; i++ {
		var rowSum int32
		for j := 0; j < o.cols; j++ {
			if o.taken[i*o.cols+j] {
				rowSum++
			}
			o.integral[(i+1)*stride+(j+1)] = o.integral[i*stride+(j+1)] + rowSum
		}
	}
}
