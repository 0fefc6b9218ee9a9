package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/shopdesk/ai/agents/runner"
)

var (
	batchMetrics bool
	batchSummary bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Handle one utterance per line from a file or stdin",
	Long: `Handle one utterance per line from a file or stdin. Blank lines are skipped.
Replies are printed in input order, separated by "---". A failing line prints
"error: ..." in its place on stdout, does not stop the others, and makes the
command exit non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), terminationSignals...)
		defer stop()

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to open input")
			}
			defer f.Close()
			in = f
		}
		inputs, err := readUtterances(in)
		if err != nil {
			return err
		}

		p := profileFrom(cmd)
		eng, err := newEngine(ctx, p)
		if err != nil {
			return err
		}

		batch := runner.New(eng.dispatcher, runner.Config{
			Workers:  p.Workers,
			RPS:      p.RPS,
			InFlight: eng.metrics,
		})
		report, runErr := batch.Run(ctx, inputs)

		writeResults(cmd.OutOrStdout(), report.Results)

		errOut := cmd.ErrOrStderr()

		if batchSummary {
			enc := json.NewEncoder(errOut)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report.Stats.ToSummary()); err != nil {
				return err
			}
		}
		if batchMetrics {
			if err := eng.metrics.WriteText(errOut); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}
		return report.Err()
	},
}

// writeResults prints one slot per input, in input order. A failed input gets
// "error: ..." in its slot so the output stays aligned with the input lines.
func writeResults(out io.Writer, results []runner.Result) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		if res.Err != nil {
			fmt.Fprintf(out, "error: %v\n", res.Err)
			continue
		}
		fmt.Fprintln(out, res.Reply.Output)
	}
}

// readUtterances returns the non-blank lines of r with surrounding whitespace kept.
func readUtterances(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return inputs, nil
}

func init() {
	flags := batchCmd.Flags()
	flags.Int("workers", 4, "number of utterances handled concurrently")
	flags.Float64("rps", 0, "maximum utterances started per second (0 = unlimited)")
	flags.BoolVar(&batchSummary, "summary", false, "print a JSON run summary to stderr")
	flags.BoolVar(&batchMetrics, "metrics", false, "print Prometheus metrics to stderr when done")

	for _, name := range []string{"workers", "rps"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
