package kmeans

import (
	"math"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

// NearestCenter returns the index of the trained center closest to v.
// Ties go to the lowest-indexed center.
func NearestCenter(v []float32, centers *vector.Array, distance DistanceFunc) int {
	minDist := math.MaxFloat64
	minIdx := 0

	for i := 0; i < centers.Len(); i++ {
		if d := distance(v, centers.At(i)); d < minDist {
			minDist = d
			minIdx = i
		}
	}

	return minIdx
}

// Partition assigns every vector in vecs to its nearest center, the first
// step of building the inverted lists once training is done.
func Partition(vecs, centers *vector.Array, distance DistanceFunc) []int {
	assignment := make([]int, vecs.Len())
	for i := range assignment {
		assignment[i] = NearestCenter(vecs.At(i), centers, distance)
	}

	return assignment
}
