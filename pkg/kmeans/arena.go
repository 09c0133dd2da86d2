package kmeans

import (
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// scratch is the working memory of one Elkan invocation: the new-centers
// workspace, the per-sample bound arrays and the inter-center distance
// matrices. Everything is allocated once up front, after the admission
// check, and becomes unreachable on every exit path when the invocation
// returns.
type scratch struct {
	newCenters *vector.Array // k × dim workspace for Step 4
	counts     []int         // samples assigned per center
	assignment []int32       // closest center per sample
	lower      []float32     // n × k lower-bound matrix, row-major [j*k+c]
	upper      []float32     // per-sample upper bound on assigned distance
	s          []float32     // half distance to each center's closest peer
	halfcdist  []float32     // k × k half inter-center distances
	newcdist   []float32     // distance each center moved this iteration
}

// estimateMemory computes the total footprint of a training run before
// anything is allocated: the caller's sample and center arrays plus every
// scratch array above.
func estimateMemory(numSamples, numCenters, dim int) int64 {
	n := int64(numSamples)
	k := int64(numCenters)
	itemsize := int64(dim) * 4

	var total int64
	total += n * itemsize // samples
	total += k * itemsize // centers
	total += k * itemsize // newCenters
	total += k * 8        // counts
	total += n * 4        // assignment
	total += n * k * 4    // lower
	total += n * 4        // upper
	total += k * 4        // s
	total += k * k * 4    // halfcdist
	total += k * 4        // newcdist

	return total
}

// admit validates the configuration against the memory budget and the
// 32-bit indexing limit. It must be called before newScratch.
func admit(numSamples, numCenters, dim int, budget int64) error {
	if int64(numCenters)*int64(numCenters) > math.MaxInt32 {
		return fmt.Errorf("%w: %d centers", ErrDimensionOverflow, numCenters)
	}

	required := estimateMemory(numSamples, numCenters, dim)
	if required > budget {
		return fmt.Errorf("%w: requires %d MB, budget is %d MB",
			ErrBudgetExceeded, toMB(required), toMB(budget))
	}

	return nil
}

func toMB(bytes int64) int64 {
	return (bytes + (1 << 20) - 1) >> 20
}

func newScratch(numSamples, numCenters, dim int) *scratch {
	return &scratch{
		newCenters: vector.NewArray(dim, numCenters),
		counts:     make([]int, numCenters),
		assignment: make([]int32, numSamples),
		lower:      make([]float32, numSamples*numCenters),
		upper:      make([]float32, numSamples),
		s:          make([]float32, numCenters),
		halfcdist:  make([]float32, numCenters*numCenters),
		newcdist:   make([]float32, numCenters),
	}
}
