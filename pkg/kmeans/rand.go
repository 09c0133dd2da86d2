package kmeans

// RandomSource supplies the randomness training consumes: uniform integers
// for picking samples and uniform doubles for weighted selection and center
// regeneration.
//
// *math/rand.Rand satisfies the interface. Tests pass a seeded source for
// bit-identical runs; production callers typically seed from wall-clock
// time. A shared source must not be used concurrently from multiple
// trainings.
type RandomSource interface {
	// Intn returns a uniform integer in [0,n). It panics if n <= 0.
	Intn(n int) int

	// Float64 returns a uniform double in [0,1).
	Float64() float64
}
