package kmeans

import (
	"context"
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// initCenters seeds the centers with k-means++: each new center is a sample
// drawn with probability proportional to its squared distance from the
// nearest already-chosen center.
//
// The seeding pass doubles as the bound-priming pass for Elkan's algorithm:
// every distance it computes is stored into lower, so on exit lower[j*k+c]
// holds the exact distance from sample j to center c at seeding time. The
// final pass over the samples exists only to fill the last column; no
// selection follows it.
func initCenters(ctx context.Context, samples, centers *vector.Array, lower []float32, p *Params, st *Stats) error {
	numSamples := samples.Len()
	numCenters := centers.Cap()

	weight := make([]float64, numSamples)
	for j := range weight {
		weight[j] = math.MaxFloat64
	}

	centers.Append(samples.At(p.Rand.Intn(numSamples)))

	for i := 0; i < numCenters; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		ci := centers.At(i)

		var sum float64
		for j := 0; j < numSamples; j++ {
			d := p.Distance(samples.At(j), ci)
			st.DistanceEvals++
			lower[j*numCenters+i] = float32(d)

			if w := d * d; w < weight[j] {
				weight[j] = w
			}
			sum += weight[j]
		}

		if i+1 == numCenters {
			break
		}

		// Weighted draw. If every sample already coincides with a
		// chosen center, sum is 0 and the walk picks sample 0; the
		// resulting duplicate is caught by CheckCenters.
		choice := sum * p.Rand.Float64()

		var j int
		for j = 0; j < numSamples-1; j++ {
			choice -= weight[j]
			if choice <= 0 {
				break
			}
		}

		centers.Append(samples.At(j))
	}

	return nil
}
