package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vela/internal/bench"
)

func benchCmd() *cobra.Command {
	var (
		profileName string
		messages    int
		listSize    int
		rounds      int
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the scheduler and the diff engine",
		Long: `Run the built-in workloads and print their throughput.

  scheduler ping-pong  two processes bounce a counter through their mailboxes
  keyed shuffle        a keyed list is shuffled, diffed, and patched

Examples:
  vela bench
  vela bench --profile stress
  vela bench --messages 50000 --list-size 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := bench.LookupProfile(profileName)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("messages") {
				profile.Messages = messages
			}
			if cmd.Flags().Changed("list-size") {
				profile.ListSize = listSize
			}
			if cmd.Flags().Changed("rounds") {
				profile.Rounds = rounds
			}

			info("Profile %s: %s messages, %s rows x %s shuffles",
				profile.Name,
				humanize.Comma(int64(profile.Messages)),
				humanize.Comma(int64(profile.ListSize)),
				humanize.Comma(int64(profile.Rounds)))
			fmt.Println()

			var results []bench.Result
			r, err := bench.PingPong(profile.Messages)
			if err != nil {
				return err
			}
			results = append(results, r)

			r, err = bench.KeyedShuffle(profile.ListSize, profile.Rounds, seed)
			if err != nil {
				return err
			}
			results = append(results, r)

			printBenchResults(results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "fast", "Workload profile (fast, standard, stress)")
	cmd.Flags().IntVar(&messages, "messages", 0, "Override the ping-pong round trips")
	cmd.Flags().IntVar(&listSize, "list-size", 0, "Override the keyed list size")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Override the number of shuffles")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Shuffle seed")

	return cmd
}

func printBenchResults(results []bench.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Workload", "Ops", "Elapsed", "Ops/s", "Steps", "Ticks", "Patches"})
	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name,
			humanize.Comma(int64(r.Ops)),
			r.Elapsed.Round(time.Microsecond),
			humanize.CommafWithDigits(r.OpsPerSecond(), 0),
			dash(r.Steps),
			dash(r.Ticks),
			dash(int64(r.Patches)),
		})
	}
	t.Render()
}

func dash(n int64) string {
	if n == 0 {
		return "-"
	}
	return humanize.Comma(n)
}
