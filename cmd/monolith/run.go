package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"monolith"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <op>...",
		Short: "Run a sequence of allocator operations",
		Long: `The run command executes operations in order and prints the block list.

Operations:
  a:<n>           alloc n bytes
  z:<count>x<n>   zeroed alloc of count*n bytes
  f:<i>           free the pointer returned by the i-th alloc (0-based)
  r               reset the region

Example:
  monolith run a:64 a:64 a:64 f:1 f:0 f:2
  monolith run --capacity 8192 z:10x4 a:4000 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseOps(args)
			if err != nil {
				return err
			}
			a, err := openAllocator()
			if err != nil {
				return err
			}
			defer a.Close()
			return runOps(cmd.OutOrStdout(), a, ops)
		},
	}
}

type opKind byte

const (
	opAlloc  opKind = 'a'
	opCalloc opKind = 'z'
	opFree   opKind = 'f'
	opReset  opKind = 'r'
)

type op struct {
	kind  opKind
	n     uint64
	count uint64
	idx   int
}

func parseOps(args []string) ([]op, error) {
	ops := make([]op, 0, len(args))
	for _, s := range args {
		o, err := parseOp(s)
		if err != nil {
			return nil, fmt.Errorf("op %q: %w", s, err)
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func parseOp(s string) (op, error) {
	if s == "r" {
		return op{kind: opReset}, nil
	}
	kind, arg, ok := strings.Cut(s, ":")
	if !ok || len(kind) != 1 {
		return op{}, fmt.Errorf("%w: want <kind>:<arg>", monolith.ErrBadArgument)
	}
	switch opKind(kind[0]) {
	case opAlloc:
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return op{}, err
		}
		return op{kind: opAlloc, n: n}, nil
	case opCalloc:
		c, n, ok := strings.Cut(arg, "x")
		if !ok {
			return op{}, fmt.Errorf("%w: want z:<count>x<size>", monolith.ErrBadArgument)
		}
		count, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return op{}, err
		}
		size, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return op{}, err
		}
		return op{kind: opCalloc, count: count, n: size}, nil
	case opFree:
		i, err := strconv.Atoi(arg)
		if err != nil {
			return op{}, err
		}
		if i < 0 {
			return op{}, fmt.Errorf("%w: negative index", monolith.ErrBadArgument)
		}
		return op{kind: opFree, idx: i}, nil
	default:
		return op{}, fmt.Errorf("%w: unknown op kind %q", monolith.ErrBadArgument, kind)
	}
}

// runOps 依次执行 ops。分配失败只打印 OOM，不算错误。
func runOps(w io.Writer, a *monolith.Allocator, ops []op) error {
	var ptrs []monolith.Ptr
	for _, o := range ops {
		switch o.kind {
		case opAlloc, opCalloc:
			var (
				p  monolith.Ptr
				ok bool
			)
			if o.kind == opAlloc {
				p, ok = a.Alloc(o.n)
			} else {
				p, ok = a.Calloc(o.count, o.n)
			}
			ptrs = append(ptrs, p)
			if !jsonOut {
				if ok {
					fmt.Fprintf(w, "#%d %c -> %d (size %d)\n", len(ptrs)-1, o.kind, p, a.Size(p))
				} else {
					fmt.Fprintf(w, "#%d %c -> OOM\n", len(ptrs)-1, o.kind)
				}
			}
		case opFree:
			if o.idx >= len(ptrs) {
				return fmt.Errorf("%w: free #%d before it was allocated", monolith.ErrBadArgument, o.idx)
			}
			a.Free(ptrs[o.idx])
		case opReset:
			a.Reset()
		}
	}
	return printReport(w, newReport(a))
}
