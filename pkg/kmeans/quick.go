package kmeans

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// quickCenters handles the degenerate case where the sample set is no
// larger than the number of centers requested. Every distinct sample
// becomes a center, in lexicographic order, and the remaining slots are
// filled with uniform-random vectors so the output still holds the full
// complement of distinct centers.
func quickCenters(samples, centers *vector.Array, p *Params) {
	numSamples := samples.Len()
	dim := samples.Dim()

	// Order the samples without touching the caller's array.
	order := make([]int, numSamples)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return vector.Compare(samples.At(order[a]), samples.At(order[b])) < 0
	})

	for i, idx := range order {
		if i > 0 && vector.Compare(samples.At(order[i-1]), samples.At(idx)) == 0 {
			continue
		}
		centers.Append(samples.At(idx))
	}

	// Prefer real data; fill the rest with random vectors (unit length
	// when a norm is configured) so the distinct-centers post-condition
	// can hold.
	buf := make([]float32, dim)
	for centers.Len() < centers.Cap() {
		for d := range buf {
			buf[d] = float32(p.Rand.Float64())
		}
		if p.Norm != nil {
			normalizeInPlace(buf, p.Norm)
		}
		centers.Append(buf)
	}
}
