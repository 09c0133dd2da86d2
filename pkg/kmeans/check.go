package kmeans

import (
	"fmt"
	"math"
	"sort"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// checkCenters validates the trained centers. A violation here is a bug
// report, not a recoverable condition: it means the numerics drifted into
// an invalid state, and the caller should retry with a different seed or
// flag the dataset.
func checkCenters(centers *vector.Array, indexNorm NormFunc) error {
	numCenters := centers.Cap()

	if centers.Len() != numCenters {
		return fmt.Errorf("%w: %d of %d", ErrNotEnoughCenters, centers.Len(), numCenters)
	}

	for i := 0; i < numCenters; i++ {
		for _, x := range centers.At(i) {
			if math.IsNaN(float64(x)) {
				return fmt.Errorf("%w: center %d", ErrNaNCenter, i)
			}
			if math.IsInf(float64(x), 0) {
				return fmt.Errorf("%w: center %d", ErrInfiniteCenter, i)
			}
		}
	}

	// Sort a permutation so duplicates land adjacent.
	order := make([]int, numCenters)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return vector.Compare(centers.At(order[a]), centers.At(order[b])) < 0
	})
	for i := 1; i < numCenters; i++ {
		if centers.Equal(order[i-1], order[i]) {
			return fmt.Errorf("%w: centers %d and %d", ErrDuplicateCenters, order[i-1], order[i])
		}
	}

	// The index-level norm is validated separately from the k-means norm:
	// a zero-norm center would be unusable by a normalizing index even if
	// training itself never normalized.
	if indexNorm != nil {
		for i := 0; i < numCenters; i++ {
			if indexNorm(centers.At(i)) == 0 {
				return fmt.Errorf("%w: center %d", ErrZeroNormCenter, i)
			}
		}
	}

	return nil
}
