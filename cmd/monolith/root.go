package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"monolith"
	"monolith/consts"
	"monolith/internal/logger"
)

var (
	// Global flags
	capacity    uint64
	minBlock    uint64
	filePath    string
	recoverList bool
	debugFree   bool
	verbose     bool
	jsonOut     bool
)

var rootCmd = &cobra.Command{
	Use:   "monolith",
	Short: "Exercise a fixed-region first-fit allocator",
	Long: `monolith drives a single-region first-fit allocator: it maps one
fixed-size region, runs allocation scripts or random workloads against it and
prints the resulting block list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Enabled: verbose,
			Output:  cmd.ErrOrStderr(),
			Level:   slog.LevelDebug,
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Uint64Var(&capacity, "capacity", consts.DefaultCapacity, "Region size in bytes, headers included")
	pf.Uint64Var(&minBlock, "min-block", consts.DefaultMinBlockSize, "Smallest payload a split may leave behind")
	pf.StringVar(&filePath, "file", "", "Back the region with this file instead of anonymous memory")
	pf.BoolVar(&recoverList, "recover", false, "Reuse the block list already stored in --file")
	pf.BoolVar(&debugFree, "debug", false, "Validate pointers passed to free")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openAllocator 按全局 flag 打开分配器。区域申请失败直接返回错误，命令以非 0 退出。
func openAllocator() (*monolith.Allocator, error) {
	a, err := monolith.New(monolith.Config{
		Capacity:     capacity,
		MinBlockSize: minBlock,
		Path:         filePath,
		Recover:      recoverList,
		Debug:        debugFree,
		Logger:       logger.L,
	})
	if err != nil {
		logger.Error("open allocator", "err", err)
		return nil, err
	}
	return a, nil
}

type report struct {
	Blocks []monolith.BlockInfo `json:"blocks"`
	Stats  monolith.Stats       `json:"stats"`
}

func newReport(a *monolith.Allocator) report {
	return report{Blocks: a.Blocks(), Stats: a.Stats()}
}

// printJSON outputs data as JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printReport(w io.Writer, r report) error {
	if jsonOut {
		return printJSON(w, r)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tPAYLOAD\tSIZE\tSTATE")
	for _, b := range r.Blocks {
		state := "used"
		if b.Free {
			state = "free"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", b.Offset, b.Payload(), b.Size, state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := r.Stats
	_, err := fmt.Fprintf(w, "capacity=%d blocks=%d used=%d/%dB free=%d/%dB largest_free=%d overhead=%dB\n",
		s.Capacity, s.Blocks, s.UsedBlocks, s.UsedBytes, s.FreeBlocks, s.FreeBytes, s.LargestFree, s.Overhead)
	return err
}
