// Package kmeans trains the coarse-quantizer centroids of an inverted-file
// (IVF) vector index.
//
// Given a read-only array of sample vectors and an empty center array of
// capacity k, Train produces k distinct, finite centers. Large sample sets
// go through k-means++ seeding followed by Elkan-accelerated Lloyd
// iterations; sample sets no larger than k take a quick path that promotes
// every distinct sample to a center. The caller supplies the distance
// metric, optional norms, a memory budget and the random source, which
// makes runs reproducible under a fixed seed.
package kmeans

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/observability"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// DefaultMaxIterations caps the Elkan loop. Real datasets converge far
// earlier; the cap only guards against oscillation.
const DefaultMaxIterations = 500

// Params configures a training run.
type Params struct {
	// Distance measures two vectors. It must satisfy the triangle
	// inequality: Euclidean for L2 indexes, Angular for spherical ones.
	Distance DistanceFunc

	// Norm, when set, makes training spherical: every recomputed center
	// is scaled to unit length under this norm.
	Norm NormFunc

	// IndexNorm, when set, is validated post-hoc: no final center may
	// have zero norm under it. It is distinct from Norm because the
	// index may normalize at query time even when training does not.
	IndexNorm NormFunc

	// MemBudget is the cap, in bytes, on the total training footprint
	// (samples, centers and all scratch arrays). Training fails before
	// allocating anything when the footprint would exceed it; a zero
	// budget rejects every configuration that reaches the main loop.
	MemBudget int64

	// Rand supplies all randomness. Defaults to a source seeded from
	// wall-clock time.
	Rand RandomSource

	// MaxIterations overrides DefaultMaxIterations when positive.
	MaxIterations int

	// Logger, when set, receives per-iteration progress at debug level.
	Logger *observability.Logger
}

// Stats reports what a training run did.
type Stats struct {
	Iterations    int   // Elkan iterations executed (0 on the quick path)
	DistanceEvals int64 // distance function invocations
	PrunedEvals   int64 // candidate centers skipped by bound checks
	PrunedSamples int64 // samples skipped whole by the tight-upper-bound check
	EmptyReseeds  int64 // empty clusters reinitialized at random
}

// Train fills centers with centers.Cap() centroids trained from samples.
//
// samples is read-only; centers must be empty on entry and share the sample
// dimension. On success centers is full and every center is distinct,
// finite and NaN-free. On error centers is not usable.
func Train(ctx context.Context, samples, centers *vector.Array, p Params) (Stats, error) {
	var st Stats

	if err := validate(samples, centers, &p); err != nil {
		return st, err
	}

	if p.Rand == nil {
		p.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = DefaultMaxIterations
	}

	if samples.Len() <= centers.Cap() {
		quickCenters(samples, centers, &p)
	} else if err := elkanKmeans(ctx, samples, centers, &p, &st); err != nil {
		return st, err
	}

	if err := checkCenters(centers, p.IndexNorm); err != nil {
		return st, err
	}

	return st, nil
}

func validate(samples, centers *vector.Array, p *Params) error {
	if samples == nil || centers == nil {
		return fmt.Errorf("%w: nil array", ErrUnsupportedType)
	}
	if samples.Len() == 0 {
		return fmt.Errorf("%w: no samples", ErrUnsupportedType)
	}
	if samples.Dim() != centers.Dim() {
		return fmt.Errorf("%w: sample dimension %d != center dimension %d",
			ErrUnsupportedType, samples.Dim(), centers.Dim())
	}
	if centers.Len() != 0 {
		return fmt.Errorf("%w: center array not empty", ErrUnsupportedType)
	}
	if centers.Cap() == 0 {
		return fmt.Errorf("%w: zero centers requested", ErrUnsupportedType)
	}
	if p.Distance == nil {
		return fmt.Errorf("%w: nil distance function", ErrUnsupportedType)
	}

	return nil
}
