package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vela/internal/demo"
	"github.com/vango-dev/vela/internal/metrics"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		list     bool
		clicks   int
		label    string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "Run a demo against an in-memory document",
		Long: `Run a demo program headless. The demo renders into an in-memory
document, receives the requested clicks, and prints the final HTML
together with patch and scheduler statistics.

Examples:
  vela run --list
  vela run counter --clicks 5
  vela run clock --duration 3s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				printDemos()
				return nil
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			name := cfg.Demo
			if len(args) > 0 {
				name = args[0]
			}
			app, err := demo.Lookup(name)
			if err != nil {
				return err
			}

			logger := newLogger(cfg, os.Stderr)
			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.New(
					metrics.WithRegistry(prometheus.NewRegistry()),
					metrics.WithNamespace(cfg.Metrics.Namespace),
				)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			start := time.Now()
			session, err := demo.NewSession(ctx, demo.SessionConfig{
				App:      app,
				MaxSteps: cfg.Scheduler.MaxSteps,
				Logger:   logger,
				Metrics:  m,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			for i := 0; i < clicks; i++ {
				found, err := session.Click(label)
				if err != nil {
					return err
				}
				if !found {
					warn("demo %q has no %q button, skipping clicks", app.Name, label)
					break
				}
			}

			if duration > 0 {
				select {
				case <-time.After(duration):
				case <-ctx.Done():
				}
			}

			html, err := session.HTML()
			if err != nil {
				return err
			}
			counts, err := session.PatchCounts()
			if err != nil {
				return err
			}

			success("Ran %s in %s", app.Name, time.Since(start).Round(time.Millisecond))
			fmt.Println()
			fmt.Println(html)
			fmt.Println()
			printRunStats(counts, session.Scheduler().Steps(), session.Scheduler().Ticks())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the available demos")
	cmd.Flags().IntVarP(&clicks, "clicks", "n", 0, "Number of button clicks to send")
	cmd.Flags().StringVar(&label, "button", "+", "Text of the button to click")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "How long to keep the demo running before printing")

	return cmd
}

func printDemos() {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Demo", "Description"})
	for _, app := range demo.All() {
		t.AppendRow(table.Row{app.Name, app.Description})
	}
	t.Render()
}

func printRunStats(counts map[string]int, steps, ticks int64) {
	kinds := make([]string, 0, len(counts))
	total := 0
	for k, n := range counts {
		kinds = append(kinds, k)
		total += n
	}
	sort.Strings(kinds)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Patch", "Applied"})
	for _, k := range kinds {
		t.AppendRow(table.Row{k, humanize.Comma(int64(counts[k]))})
	}
	t.AppendFooter(table.Row{"Total", humanize.Comma(int64(total))})
	t.Render()

	fmt.Println()
	info("Scheduler steps: %s", humanize.Comma(steps))
	info("Scheduler ticks: %s", humanize.Comma(ticks))
}
