package main

import (
	"fmt"
	"os"

	"github.com/aretw0/asfe"
	"github.com/aretw0/asfe/internal/cli"
	"github.com/aretw0/asfe/internal/config"
	"github.com/spf13/cobra"
)

var opts cli.NetworkOptions

var rootCmd = &cobra.Command{
	Use:   "asfe-network",
	Short: "Build the solvation free-energy network of a set of molecules",
	Long: `Reads one SMILES per line and writes a network with one transformation for
every ordered pair of molecules (A solvated in B). The document format follows
the file extension: .json or .yaml, optionally compressed with .gz or .zst.`,
	Version:       asfe.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Stop()
		return sc.Interrupted(cli.RunNetwork(sc, opts))
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
		"input-filename":   "input-file",
		"network-filename": "network-file",
	}))

	fs.StringVar(&opts.InputFile, "input-file", "", "molecule descriptor file, one SMILES per line")
	fs.StringVar(&opts.NetworkFile, "network-file", "network.json", "output network document")
	fs.StringVar(&opts.SettingsFile, "settings", "", "YAML or JSON file overriding protocol settings")
	fs.StringVar(&opts.Name, "name", "", "network name")
	fs.StringVar(&opts.IonConcentration, "ion-concentration", "0 molar", "salt concentration of every solvent")

	fs.BoolVar(&opts.Submit, "submit", false, "register the network on the service")
	fs.StringVar(&opts.Scope, "scope", "", "scope to submit under, as org-campaign-project")
	fs.StringVar(&opts.ScopeKeyFile, "scope-key", config.DefaultScopeKeyFile, "where to write the submitted network's scoped key")
	cli.BindRemoteFlags(fs, &opts.Remote)

	fs.BoolVar(&opts.Debug, "debug", false, "enable debug logging")

	_ = rootCmd.MarkFlagRequired("input-file")
	rootCmd.MarkFlagsRequiredTogether("submit", "scope")
}
