package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/asyncflow/asyncflow/engine"
	"github.com/asyncflow/asyncflow/handle"
)

var (
	benchChains  int
	benchDepth   int
	benchWorkers int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure submission and drain throughput",
	Long: `Build independent chains of increment operations, await each chain
head concurrently, then drain the engine. Submission cost is reported
separately from execution cost: submitting never blocks, so the gap
between the two is the deferred work the backend absorbed.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchChains, "chains", 8, "number of independent task chains")
	benchCmd.Flags().IntVar(&benchDepth, "depth", 1000, "tasks per chain")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "worker pool size (0 = config default)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if benchWorkers > 0 {
		cfg.Workers = benchWorkers
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	eng.Coordinator().HandleSignals()
	ctx := context.Background()
	defer eng.Close(ctx)

	increment := func(c context.Context, inputs []interface{}) (interface{}, error) {
		return inputs[0].(int) + 1, nil
	}

	submitStart := time.Now()
	heads := make([]*handle.Handle, benchChains)
	for c := 0; c < benchChains; c++ {
		h, err := eng.Submit(func(context.Context, []interface{}) (interface{}, error) {
			return 0, nil
		})
		if err != nil {
			return err
		}
		for d := 0; d < benchDepth; d++ {
			if h, err = eng.Submit(increment, h); err != nil {
				return err
			}
		}
		heads[c] = h
	}
	submitTook := time.Since(submitStart)

	awaitStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range heads {
		h := h
		g.Go(func() error {
			v, err := eng.Scalar(gctx, h)
			if err != nil {
				return err
			}
			if int(v) != benchDepth {
				return fmt.Errorf("chain resolved to %v, want %d", v, benchDepth)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	awaitTook := time.Since(awaitStart)

	// The full barrier after the per-chain awaits shows the cost asymmetry:
	// WaitFor settles one closure, WaitAll settles everything outstanding.
	drainStart := time.Now()
	if err := eng.WaitAll(ctx); err != nil {
		return err
	}
	drainTook := time.Since(drainStart)

	st := eng.Stats()
	total := benchChains * (benchDepth + 1)
	fmt.Printf("Chains: %d x %d tasks (%d total), workers: %d\n", benchChains, benchDepth, total, cfg.Workers)
	fmt.Printf("Submit:  %s (%.0f tasks/s)\n", submitTook, float64(total)/submitTook.Seconds())
	fmt.Printf("WaitFor: %s (%.0f tasks/s across %d concurrent awaiters)\n", awaitTook, float64(total)/awaitTook.Seconds(), benchChains)
	fmt.Printf("WaitAll: %s after the per-chain barriers\n", drainTook)
	fmt.Printf("Completed: %d, failed: %d\n", st.Completed, st.Failed)
	return nil
}
