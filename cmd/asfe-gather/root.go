package main

import (
	"fmt"
	"os"

	"github.com/aretw0/asfe"
	"github.com/aretw0/asfe/internal/cli"
	"github.com/aretw0/asfe/internal/config"
	"github.com/spf13/cobra"
)

var opts cli.GatherOptions

var rootCmd = &cobra.Command{
	Use:   "asfe-gather",
	Short: "Gather the free-energy estimates of a submitted network",
	Long: `Fetches every transformation's finished repeats and writes one row per
transformation: the molecule, dG and its standard deviation in kcal/mol.
Transformations without results in both phases are written as None.`,
	Version:       asfe.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Stop()
		return sc.Interrupted(cli.RunGather(sc, opts))
	},
}

// Execute runs the command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	fs := rootCmd.Flags()
	fs.SetNormalizeFunc(cli.NormalizeWithAliases(map[string]string{
		"scoped-key":      "scope-key",
		"output-filename": "output-file",
	}))

	fs.StringVar(&opts.ScopeKeyFile, "scope-key", config.DefaultScopeKeyFile, "file holding the network's scoped key")
	fs.StringVar(&opts.OutputFile, "output-file", "results.dat", "tab-separated results file")
	cli.BindRemoteFlags(fs, &opts.Remote)

	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "also write Prometheus textfile metrics")
	fs.StringVar(&opts.PlotFile, "plot", "", "also draw dG with error bars (.png, .svg or .pdf)")
	fs.BoolVar(&opts.Print, "print", false, "print the table to stdout")
	fs.StringVar(&opts.HistoryRedis, "history-redis", "", "Redis URL remembering previous runs")
	fs.StringVar(&opts.HistoryDir, "history-dir", "", "directory remembering previous runs")
	rootCmd.MarkFlagsMutuallyExclusive("history-redis", "history-dir")

	fs.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
}
