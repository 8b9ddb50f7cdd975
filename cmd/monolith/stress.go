package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"monolith"
	"monolith/internal/logger"
)

var (
	stressOps     int
	stressSeed    int64
	stressMaxSize uint64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Number of operations")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Random seed")
	cmd.Flags().Uint64Var(&stressMaxSize, "max-size", 512, "Largest single allocation")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a random alloc/free workload and validate after every step",
		Long: `The stress command mixes random allocations and frees, validates the
block list after each operation and prints the final state.

Example:
  monolith stress --capacity 1048576 --ops 100000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openAllocator()
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := stress(a, stressOps, stressSeed, stressMaxSize)
			if err != nil {
				return err
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "ops=%d allocs=%d oom=%d frees=%d live=%d\n",
					res.Ops, res.Allocs, res.OOM, res.Frees, res.Live)
			}
			return printReport(cmd.OutOrStdout(), newReport(a))
		},
	}
}

type stressResult struct {
	Ops    int
	Allocs int
	OOM    int
	Frees  int
	Live   int
}

func stress(a *monolith.Allocator, ops int, seed int64, maxSize uint64) (stressResult, error) {
	if maxSize == 0 || maxSize > math.MaxInt64 {
		return stressResult{}, fmt.Errorf("%w: max-size %d out of range", monolith.ErrBadArgument, maxSize)
	}
	r := rand.New(rand.NewSource(seed))
	var (
		res  stressResult
		live []monolith.Ptr
	)
	for i := 0; i < ops; i++ {
		res.Ops++
		if len(live) > 0 && r.Intn(2) == 0 {
			j := r.Intn(len(live))
			a.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			res.Frees++
		} else if p, ok := a.Alloc(1 + uint64(r.Int63n(int64(maxSize)))); ok {
			live = append(live, p)
			res.Allocs++
		} else {
			res.OOM++
		}
		if err := a.Validate(); err != nil {
			return res, fmt.Errorf("step %d: %w", i, err)
		}
	}
	res.Live = len(live)
	logger.Debug("stress done", "ops", res.Ops, "allocs", res.Allocs, "oom", res.OOM, "live", res.Live)
	return res, nil
}
