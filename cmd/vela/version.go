package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vela/internal/demo"
	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/scheduler"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime defaults",
		Long: `Print the vela version together with the defaults a program starts
with: the scheduler step budget, the built-in effect managers, and the
bundled demos.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}

			printBanner()
			printVersion(os.Stdout)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

func printVersion(w io.Writer) {
	names := make([]string, 0, len(demo.All()))
	for _, app := range demo.All() {
		names = append(names, app.Name)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Version", version},
		{"Commit", commit},
		{"Built", date},
		{"Go", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Step budget", fmt.Sprintf("%d per tick", scheduler.DefaultMaxSteps)},
		{"Effect managers", strings.Join(effects.DefaultRegistry().Homes(), ", ")},
		{"Demos", strings.Join(names, ", ")},
	})
	t.Render()
}
