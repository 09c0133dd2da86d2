package kmeans

import "errors"

// Sentinel errors returned by Train. All are matchable with errors.Is; the
// wrapped message carries the specifics (sizes, budgets, offending center).
var (
	// ErrBudgetExceeded is returned when the scratch memory required for
	// training exceeds the configured budget. No allocation has happened
	// when it is returned.
	ErrBudgetExceeded = errors.New("kmeans: memory required exceeds budget")

	// ErrDimensionOverflow is returned when numCenters² does not fit in
	// 32-bit signed arithmetic used for matrix indexing.
	ErrDimensionOverflow = errors.New("kmeans: too many centers for 32-bit indexing")

	// ErrUnsupportedType is returned for inputs the trainer cannot
	// consume: nil arrays, mismatched dimensions, or a non-empty center
	// array.
	ErrUnsupportedType = errors.New("kmeans: unsupported input")

	// ErrCancelled is returned when the caller's context is done before
	// training completes.
	ErrCancelled = errors.New("kmeans: training cancelled")
)

// Post-condition violations. These indicate the numerics drifted into an
// invalid state; the expected response is to retry with a different seed or
// flag the dataset.
var (
	ErrNotEnoughCenters = errors.New("kmeans: produced fewer centers than requested")
	ErrNaNCenter        = errors.New("kmeans: center contains NaN")
	ErrInfiniteCenter   = errors.New("kmeans: center contains infinity")
	ErrDuplicateCenters = errors.New("kmeans: duplicate centers")
	ErrZeroNormCenter   = errors.New("kmeans: center has zero norm")
)
