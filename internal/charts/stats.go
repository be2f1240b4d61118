package charts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the correlation of x and y over the pairs where both
// are present. It is NaN when fewer than two pairs remain or either side
// has no variance.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	// Rounding can push a perfect correlation just past ±1.
	return math.Max(-1, math.Min(1, r))
}

func constant(v []float64) bool {
	for _, f := range v[1:] {
		if f != v[0] {
			return false
		}
	}
	return true
}

// boxStats summarises one box: quartiles plus whiskers reaching the most
// extreme points within 1.5 IQR of the box.
type boxStats struct {
	Q1, Median, Q3         float64
	LowerFence, UpperFence float64
}

func summarise(values []float64) (boxStats, bool) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return boxStats{}, false
	}
	sort.Float64s(sorted)

	b := boxStats{
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.LowerFence, b.UpperFence = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= lo {
			b.LowerFence = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hi {
			b.UpperFence = sorted[i]
			break
		}
	}
	return b, true
}
