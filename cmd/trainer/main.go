package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/centroid/internal/store"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/config"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/kmeans"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/observability"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/sample"
	"github.com/therealutkarshpriyadarshi/centroid/pkg/vector"
)

const version = "1.0.0"

var cfg *config.Config

var (
	flagDim       int
	flagSynthetic int
	flagIndexName string
)

func main() {
	cfg = config.LoadFromEnv()

	rootCmd := &cobra.Command{
		Use:   "trainer",
		Short: "Train IVF coarse-quantizer centroids from embedding samples",
	}

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Sample vectors and train centroids",
		RunE:  runTrain,
	}

	trainCmd.Flags().StringVar(&cfg.Source.Path, "db", cfg.Source.Path, "SQLite database holding embeddings")
	trainCmd.Flags().StringVar(&cfg.Source.Table, "table", cfg.Source.Table, "table holding embedding blobs")
	trainCmd.Flags().StringVar(&cfg.Source.Column, "column", cfg.Source.Column, "column holding embedding blobs")
	trainCmd.Flags().IntVar(&flagDim, "dim", 0, "vector dimension (required)")
	trainCmd.Flags().IntVar(&cfg.Training.Lists, "lists", cfg.Training.Lists, "number of centroids to train")
	trainCmd.Flags().StringVar(&cfg.Training.Metric, "metric", cfg.Training.Metric, "distance metric: l2 or angular")
	trainCmd.Flags().IntVar(&cfg.Training.SamplesPerList, "samples-per-list", cfg.Training.SamplesPerList, "reservoir size per centroid")
	trainCmd.Flags().Int64Var(&cfg.Training.MemBudgetMB, "mem-budget-mb", cfg.Training.MemBudgetMB, "training memory budget in MB")
	trainCmd.Flags().Int64Var(&cfg.Training.Seed, "seed", cfg.Training.Seed, "random seed (0 seeds from wall clock)")
	trainCmd.Flags().IntVar(&cfg.Training.MaxIterations, "max-iterations", cfg.Training.MaxIterations, "cap on Lloyd iterations")
	trainCmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	trainCmd.Flags().IntVar(&flagSynthetic, "synthetic", 0, "train on N random vectors instead of a database")
	trainCmd.Flags().StringVar(&flagIndexName, "index", "default", "index name used in metrics")
	trainCmd.MarkFlagRequired("dim")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the trainer version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("trainer version %s\n", version)
		},
	}

	rootCmd.AddCommand(trainCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flagDim < 1 {
		return fmt.Errorf("invalid dimension: %d (must be > 0)", flagDim)
	}
	if flagSynthetic == 0 && cfg.Source.Path == "" {
		return fmt.Errorf("either --db or --synthetic is required")
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stderr).
		WithField("index", flagIndexName)
	metrics := observability.NewMetrics()

	seed := cfg.Training.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	samples, err := collectSamples(ctx, logger, rng)
	if err != nil {
		return err
	}

	var distance kmeans.DistanceFunc
	var norm kmeans.NormFunc
	switch cfg.Training.Metric {
	case "angular":
		distance = kmeans.Angular
		norm = kmeans.L2Norm
	default:
		distance = kmeans.Euclidean
	}

	centers := vector.NewArray(flagDim, cfg.Training.Lists)
	params := kmeans.Params{
		Distance:      distance,
		Norm:          norm,
		IndexNorm:     norm,
		MemBudget:     cfg.Training.MemBudgetBytes(),
		Rand:          rng,
		MaxIterations: cfg.Training.MaxIterations,
		Logger:        logger,
	}

	var stats kmeans.Stats
	start := time.Now()
	err = logger.LogOperation("centroid training", func() error {
		var trainErr error
		stats, trainErr = kmeans.Train(ctx, samples, centers, params)
		return trainErr
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordTraining(outcome, time.Since(start), samples.Len())
	if err != nil {
		return err
	}

	metrics.RecordIterations(stats.Iterations)
	metrics.RecordEvals(stats.DistanceEvals, stats.PrunedEvals)
	metrics.RecordEmptyReseeds(stats.EmptyReseeds)
	metrics.UpdateCentroidCount(flagIndexName, centers.Len())

	fmt.Printf("trained %d centroids from %d samples (dim %d)\n", centers.Len(), samples.Len(), flagDim)
	fmt.Printf("iterations:           %d\n", stats.Iterations)
	fmt.Printf("distance evaluations: %d\n", stats.DistanceEvals)
	fmt.Printf("pruned evaluations:   %d\n", stats.PrunedEvals)
	fmt.Printf("empty reseeds:        %d\n", stats.EmptyReseeds)

	return nil
}

func collectSamples(ctx context.Context, logger *observability.Logger, rng *rand.Rand) (*vector.Array, error) {
	reservoir := sample.NewReservoir(flagDim, cfg.Training.SampleCap(), rng)

	if flagSynthetic > 0 {
		buf := make([]float32, flagDim)
		for i := 0; i < flagSynthetic; i++ {
			for d := range buf {
				buf[d] = rng.Float32()
			}
			reservoir.Add(buf)
		}
	} else {
		src, err := store.Open(cfg.Source.Path, cfg.Source.Table, cfg.Source.Column)
		if err != nil {
			return nil, err
		}
		defer src.Close()

		if err := src.Stream(ctx, flagDim, func(v []float32) error {
			reservoir.Add(v)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if reservoir.Samples().Len() == 0 {
		return nil, fmt.Errorf("no samples with dimension %d found", flagDim)
	}

	logger.Info("samples collected", map[string]interface{}{
		"kept": reservoir.Samples().Len(),
		"seen": reservoir.Seen(),
	})

	return reservoir.Samples(), nil
}
