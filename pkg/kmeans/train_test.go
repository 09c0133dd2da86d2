package kmeans

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

func TestTrainRejectsOverBudget(t *testing.T) {
	// A million 8-dim samples against 10k centers needs a multi-GB lower
	// bound matrix; a 64 MB budget must be rejected before any scratch
	// allocation happens.
	samples := vector.NewArray(8, 1_000_000)
	samples.Grow(1_000_000)
	centers := vector.NewArray(8, 10_000)

	_, err := Train(context.Background(), samples, centers, Params{
		Distance:  Euclidean,
		MemBudget: 64 << 20,
		Rand:      rand.New(rand.NewSource(1)),
	})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "MB") {
		t.Errorf("budget error should name sizes in MB: %v", err)
	}
}

func TestTrainRejectsCenterOverflow(t *testing.T) {
	k := 50_000 // k² exceeds 32-bit signed indexing
	samples := vector.NewArray(2, k+1)
	samples.Grow(k + 1)
	centers := vector.NewArray(2, k)

	_, err := Train(context.Background(), samples, centers, Params{
		Distance:  Euclidean,
		MemBudget: 1 << 40,
		Rand:      rand.New(rand.NewSource(1)),
	})
	if !errors.Is(err, ErrDimensionOverflow) {
		t.Fatalf("expected ErrDimensionOverflow, got %v", err)
	}
}

func TestTrainCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	samples := vector.NewArray(2, 100)
	samples.Grow(100)
	centers := vector.NewArray(2, 4)

	_, err := Train(ctx, samples, centers, Params{
		Distance:  Euclidean,
		MemBudget: 1 << 30,
		Rand:      rand.New(rand.NewSource(1)),
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestTrainValidatesInput(t *testing.T) {
	samples := vector.FromSlice([][]float32{{1, 2}, {3, 4}})

	tests := []struct {
		name    string
		samples *vector.Array
		centers *vector.Array
		params  Params
	}{
		{
			name:    "nil samples",
			centers: vector.NewArray(2, 1),
			params:  Params{Distance: Euclidean},
		},
		{
			name:    "dimension mismatch",
			samples: samples,
			centers: vector.NewArray(3, 1),
			params:  Params{Distance: Euclidean},
		},
		{
			name:    "zero centers",
			samples: samples,
			centers: vector.NewArray(2, 0),
			params:  Params{Distance: Euclidean},
		},
		{
			name:    "nil distance",
			samples: samples,
			centers: vector.NewArray(2, 1),
			params:  Params{},
		},
		{
			name:    "empty samples",
			samples: vector.NewArray(2, 4),
			centers: vector.NewArray(2, 1),
			params:  Params{Distance: Euclidean},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.MemBudget = 1 << 20
			_, err := Train(context.Background(), tt.samples, tt.centers, tt.params)
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("expected ErrUnsupportedType, got %v", err)
			}
		})
	}
}

func TestTrainRejectsNonEmptyCenters(t *testing.T) {
	samples := vector.FromSlice([][]float32{{1, 2}, {3, 4}, {5, 6}})
	centers := vector.NewArray(2, 2)
	centers.Append([]float32{0, 0})

	_, err := Train(context.Background(), samples, centers, Params{
		Distance:  Euclidean,
		MemBudget: 1 << 20,
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestTrainDegenerateDuplicateSamples(t *testing.T) {
	// More identical samples than centers forces the Elkan path. Seeding
	// collapses every center onto the one point, but the lost clusters
	// are reseeded at random during the mean step, so training still
	// delivers distinct centers.
	vecs := make([][]float32, 10)
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	samples := vector.FromSlice(vecs)
	centers := vector.NewArray(2, 3)

	stats, err := Train(context.Background(), samples, centers, Params{
		Distance:  Euclidean,
		MemBudget: 1 << 20,
		Rand:      rand.New(rand.NewSource(6)),
	})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if stats.EmptyReseeds == 0 {
		t.Error("expected empty-cluster reseeds on degenerate input")
	}

	sampleCenters := 0
	for i := 0; i < centers.Len(); i++ {
		c := centers.At(i)
		if c[0] == 1 && c[1] == 0 {
			sampleCenters++
		}
	}
	if sampleCenters != 1 {
		t.Errorf("the sample point appears as %d centers, want exactly 1", sampleCenters)
	}
}
