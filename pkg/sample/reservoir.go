// Package sample collects a bounded training set from an unbounded vector
// stream.
package sample

import (
	"github.com/therealutkarshpriyadarshi/centroid/pkg/kmeans"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// Reservoir keeps a uniform random sample of fixed capacity from a stream
// of vectors whose length is not known in advance (Vitter's Algorithm R).
// Training rarely wants every row of a large table; a reservoir of
// samplesPerList × lists vectors is enough for stable centroids.
//
// Under a seeded RandomSource the selected sample is deterministic for a
// given stream order.
type Reservoir struct {
	samples *vector.Array
	seen    int64
	rng     kmeans.RandomSource
}

// NewReservoir creates a reservoir holding up to capacity vectors of the
// given dimension.
func NewReservoir(dim, capacity int, rng kmeans.RandomSource) *Reservoir {
	return &Reservoir{
		samples: vector.NewArray(dim, capacity),
		rng:     rng,
	}
}

// Add offers one vector to the reservoir. The first capacity vectors are
// kept outright; after that each newcomer replaces a random resident with
// probability capacity/seen.
func (r *Reservoir) Add(v []float32) {
	r.seen++

	if r.samples.Len() < r.samples.Cap() {
		r.samples.Append(v)
		return
	}

	if idx := r.rng.Intn(int(r.seen)); idx < r.samples.Cap() {
		r.samples.Set(idx, v)
	}
}

// Samples returns the collected sample set. The returned array is owned by
// the reservoir; callers must stop calling Add before training on it.
func (r *Reservoir) Samples() *vector.Array {
	return r.samples
}

// Seen returns how many vectors were offered in total.
func (r *Reservoir) Seen() int64 {
	return r.seen
}
