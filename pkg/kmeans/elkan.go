package kmeans

import (
	"context"
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// elkanKmeans runs Lloyd's algorithm accelerated with Elkan's triangle-
// inequality pruning. Per-sample upper bounds, per-(sample,center) lower
// bounds and half inter-center distances let most iterations skip the vast
// majority of distance evaluations while producing exactly the assignments
// plain Lloyd would.
//
// Two invariants hold at the top of every iteration:
//
//	lower[j*k+c] <= distance(sample j, center c)
//	upper[j]     >= distance(sample j, center assignment[j])
//
// Seeding leaves both tight; Steps 5 and 6 re-widen them conservatively
// after the centers move.
func elkanKmeans(ctx context.Context, samples, centers *vector.Array, p *Params, st *Stats) error {
	numSamples := samples.Len()
	numCenters := centers.Cap()
	dim := samples.Dim()

	if err := admit(numSamples, numCenters, dim, p.MemBudget); err != nil {
		return err
	}

	sc := newScratch(numSamples, numCenters, dim)

	if err := initCenters(ctx, samples, centers, sc.lower, p, st); err != nil {
		return err
	}

	// Seeding left lower tight, so the initial assignment and upper bound
	// fall straight out of the matrix.
	for j := 0; j < numSamples; j++ {
		row := sc.lower[j*numCenters : (j+1)*numCenters]
		minDist := float32(math.MaxFloat32)
		closest := int32(0)
		for c, d := range row {
			if d < minDist {
				minDist = d
				closest = int32(c)
			}
		}
		sc.upper[j] = minDist
		sc.assignment[j] = closest
	}

	for iteration := 0; iteration < p.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		changes := 0

		// Step 1: half inter-center distances and each center's
		// closest peer.
		for a := 0; a < numCenters; a++ {
			for b := a + 1; b < numCenters; b++ {
				d := float32(0.5 * p.Distance(centers.At(a), centers.At(b)))
				st.DistanceEvals++
				sc.halfcdist[a*numCenters+b] = d
				sc.halfcdist[b*numCenters+a] = d
			}
		}
		for a := 0; a < numCenters; a++ {
			minD := float32(math.MaxFloat32)
			for b := 0; b < numCenters; b++ {
				if b == a {
					continue
				}
				if d := sc.halfcdist[a*numCenters+b]; d < minD {
					minD = d
				}
			}
			sc.s[a] = minD
		}

		for j := 0; j < numSamples; j++ {
			x := samples.At(j)
			aj := sc.assignment[j]
			upperj := sc.upper[j]

			// Step 2: no center can beat the current one when the
			// upper bound is within half the distance to the
			// assigned center's closest peer.
			if upperj <= sc.s[aj] {
				st.PrunedSamples++
				continue
			}

			// On the first iteration the upper bound is exact
			// (seeding just computed it), so Step 3a need not
			// refresh it.
			r := iteration != 0

			for c := int32(0); c < int32(numCenters); c++ {
				if c == aj {
					continue
				}
				if upperj <= sc.lower[j*numCenters+int(c)] {
					st.PrunedEvals++
					continue
				}
				if upperj <= sc.halfcdist[int(aj)*numCenters+int(c)] {
					st.PrunedEvals++
					continue
				}

				// Step 3a: tighten the stale upper bound once.
				var dxcx float64
				if r {
					dxcx = p.Distance(x, centers.At(int(aj)))
					st.DistanceEvals++
					sc.lower[j*numCenters+int(aj)] = float32(dxcx)
					upperj = float32(dxcx)
					r = false
				} else {
					dxcx = float64(upperj)
				}

				// Step 3b: the candidate survives pruning only
				// if it might still be closer.
				if dxcx > float64(sc.lower[j*numCenters+int(c)]) ||
					dxcx > float64(sc.halfcdist[int(aj)*numCenters+int(c)]) {
					dxc := p.Distance(x, centers.At(int(c)))
					st.DistanceEvals++
					sc.lower[j*numCenters+int(c)] = float32(dxc)

					// Strict less-than: ties keep the
					// lowest-indexed center.
					if dxc < dxcx {
						aj = c
						upperj = float32(dxc)
						changes++
					}
				}
			}

			sc.assignment[j] = aj
			sc.upper[j] = upperj
		}

		// Step 4: recompute the means. Accumulation happens in the
		// vectors' native precision; a coordinate that saturates to
		// ±Inf is clamped to ±MaxFloat32 before dividing.
		sc.newCenters.Reset()
		sc.newCenters.Grow(numCenters)
		sc.newCenters.Zero()
		for a := range sc.counts {
			sc.counts[a] = 0
		}

		for j := 0; j < numSamples; j++ {
			x := samples.At(j)
			dst := sc.newCenters.At(int(sc.assignment[j]))
			for d := 0; d < dim; d++ {
				dst[d] += x[d]
			}
			sc.counts[sc.assignment[j]]++
		}

		for a := 0; a < numCenters; a++ {
			vec := sc.newCenters.At(a)

			if sc.counts[a] > 0 {
				for d := 0; d < dim; d++ {
					if math.IsInf(float64(vec[d]), 1) {
						vec[d] = math.MaxFloat32
					} else if math.IsInf(float64(vec[d]), -1) {
						vec[d] = -math.MaxFloat32
					}
					vec[d] /= float32(sc.counts[a])
				}
			} else {
				// Lost cluster: reseed it at a random location.
				for d := 0; d < dim; d++ {
					vec[d] = float32(p.Rand.Float64())
				}
				st.EmptyReseeds++
			}

			if p.Norm != nil {
				normalizeInPlace(vec, p.Norm)
			}
		}

		// Step 5: widen the lower bounds by how far each center moved.
		for a := 0; a < numCenters; a++ {
			sc.newcdist[a] = float32(p.Distance(centers.At(a), sc.newCenters.At(a)))
			st.DistanceEvals++
		}
		for j := 0; j < numSamples; j++ {
			row := sc.lower[j*numCenters : (j+1)*numCenters]
			for c := range row {
				if w := row[c] - sc.newcdist[c]; w > 0 {
					row[c] = w
				} else {
					row[c] = 0
				}
			}
		}

		// Step 6: widen the upper bounds, which also makes the stale
		// flag the right default next iteration.
		for j := 0; j < numSamples; j++ {
			sc.upper[j] += sc.newcdist[sc.assignment[j]]
		}

		// Step 7: commit the new centers.
		centers.CopyFrom(sc.newCenters)

		st.Iterations = iteration + 1
		if p.Logger != nil {
			p.Logger.Debug("kmeans iteration", map[string]interface{}{
				"iteration": iteration,
				"changes":   changes,
			})
		}

		// Iteration 0 never terminates: its Step 3 runs with an exact
		// upper bound and can legitimately report zero changes before
		// the centers have settled.
		if changes == 0 && iteration != 0 {
			break
		}
	}

	return nil
}
