package main

import (
	"fmt"
	"os"

	"github.com/aretw0/asfe"
	"github.com/aretw0/asfe/internal/cli"
	"github.com/aretw0/asfe/internal/config"
	"github.com/spf13/cobra"
)

var opts cli.RequeueOptions

var rootCmd = &cobra.Command{
	Use:           "asfe-requeue",
	Short:         "Send a network's errored tasks back to the queue",
	Version:       asfe.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Stop()
		return sc.Interrupted(cli.RunRequeue(sc, opts))
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
	fs.SetNormalizeFunc(cli.NormalizeWithAliases(map[string]string{"scoped-key": "scope-key"}))

	fs.StringVar(&opts.ScopeKeyFile, "scope-key", config.DefaultScopeKeyFile, "file holding the network's scoped key")
	cli.BindRemoteFlags(fs, &opts.Remote)
	fs.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
}
