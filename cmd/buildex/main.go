// Command buildex replays a JSON-lines instruction trace backward or
// forward against a fresh Tree and prints a summary of the resulting slice
// (how many instructions were in it, and its head operand) — a small
// harness for exercising the library against a real trace the way a
// developer debugging dependency reconstruction would, without pulling
// trace decoding or module/basic-block metadata into the core package
// (spec.md §1's "out of scope" list). Built on spf13/cobra + spf13/pflag,
// the CLI stack surfaced across the pack's manifests
// (_examples/other_examples/manifests/{grafana-tempo,AKJUS-bsc-erigon,ethereum-go-ethereum}/go.mod).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/appcoreopc/buildex"
	"github.com/appcoreopc/buildex/diag"
	"github.com/appcoreopc/buildex/trace"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type replayOptions struct {
	maxFrontiers    int
	sizePerFrontier int
	memOffset       int
	indirection     bool
	verbose         bool
	emitPath        string
	checkHazards    bool
}

func (o *replayOptions) config() buildex.Config {
	return buildex.Config{
		MaxFrontiers:    o.maxFrontiers,
		SizePerFrontier: o.sizePerFrontier,
		MemOffset:       o.memOffset,
	}
}

func (o *replayOptions) registerFlags(flags *pflag.FlagSet) {
	def := buildex.DefaultConfig()
	flags.IntVar(&o.maxFrontiers, "max-frontiers", def.MaxFrontiers, "number of frontier buckets")
	flags.IntVar(&o.sizePerFrontier, "size-per-frontier", def.SizePerFrontier, "capacity per frontier bucket")
	flags.IntVar(&o.memOffset, "mem-offset", def.MemOffset, "first bucket index reserved for memory operands")
	flags.BoolVar(&o.verbose, "verbose", false, "emit diagnostic events to stdout")
	flags.StringVar(&o.emitPath, "emit", "", "write every in-slice record back out as a JSON-lines fixture")
	flags.BoolVar(&o.checkHazards, "check-hazards", false, "warn about RAW hazards within each batch before replaying it")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "buildex",
		Short: "Replay an instruction trace against the operand-dependency tree builder",
	}
	root.AddCommand(newBackwardCmd(), newForwardCmd())
	return root
}

func newBackwardCmd() *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "backward <trace-file>",
		Short: "Reconstruct a slice by walking the trace backward from its destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], opts, func(t *buildex.Tree, instr buildex.Instruction, pc, line uint32) bool {
				return t.UpdateBackward(instr, pc, line)
			})
		},
	}
	opts.registerFlags(cmd.Flags())
	return cmd
}

func newForwardCmd() *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "forward <trace-file>",
		Short: "Propagate taint forward through the trace; the frontier starts empty and no seed operand is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], opts, func(t *buildex.Tree, instr buildex.Instruction, pc, line uint32) bool {
				if opts.indirection {
					return t.UpdateForwardWithIndirection(instr, pc, line)
				}
				return t.UpdateForward(instr, pc, line)
			})
		},
	}
	opts.registerFlags(cmd.Flags())
	cmd.Flags().BoolVar(&opts.indirection, "indirection", false, "also taint through effective-address components")
	return cmd
}

// warnHazards chunks records into MaxHazardBatch-sized windows and reports
// any RAW hazard found within a window — a best-effort preflight for a host
// that wants to know whether a batch is safe to apply out of program order
// (e.g. sharded across concurrent Trees per spec.md §5) before it commits to
// doing so. It never blocks replay; UpdateBackward/UpdateForward stay the
// source of truth for whether a record belongs in the slice.
func warnHazards(w io.Writer, records []trace.Record) {
	for base := 0; base < len(records); base += buildex.MaxHazardBatch {
		end := base + buildex.MaxHazardBatch
		if end > len(records) {
			end = len(records)
		}
		batch := make([]buildex.Instruction, end-base)
		for i, rec := range records[base:end] {
			batch[i] = rec.Instruction()
		}
		m := buildex.BuildHazardMatrix(batch)
		if !m.HasHazards() {
			continue
		}
		for i := range batch {
			deps := m.Dependents(i)
			if len(deps) == 0 {
				continue
			}
			fmt.Fprintf(w, "hazard: record %d is read by %d later record(s) in its batch before it would be applied\n",
				base+i, len(deps))
		}
	}
}

func runReplay(cmd *cobra.Command, path string, opts *replayOptions, apply func(*buildex.Tree, buildex.Instruction, uint32, uint32) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := trace.NewReader(f).All()
	if err != nil {
		return fmt.Errorf("reading trace: %w", err)
	}

	var treeOpts []buildex.Option
	if opts.verbose {
		treeOpts = append(treeOpts, buildex.WithDiag(diag.Printf{}))
	}
	tree := buildex.NewTree(opts.config(), treeOpts...)

	var emitter *trace.Writer
	if opts.emitPath != "" {
		ef, err := os.Create(opts.emitPath)
		if err != nil {
			return err
		}
		defer ef.Close()
		emitter = trace.NewWriter(ef)
	}

	if opts.checkHazards {
		warnHazards(cmd.ErrOrStderr(), records)
	}

	inSlice := 0
	for _, rec := range records {
		instr := rec.Instruction()
		if apply(tree, instr, rec.PC, rec.Line) {
			inSlice++
			if emitter != nil {
				if err := emitter.Write(rec); err != nil {
					return err
				}
			}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s: %d/%d instructions in slice\n", tree.ID(), inSlice, len(records))
	if head := tree.Head(); head != nil {
		fmt.Fprintf(out, "head: %s\n", head.Op)
	}
	return nil
}
