package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/asfe/internal/config"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/aretw0/asfe/pkg/protocol"
	"github.com/aretw0/asfe/pkg/smiles"
)

// NetworkOptions configures RunNetwork.
type NetworkOptions struct {
	InputFile   string
	NetworkFile string
	// SettingsFile overrides protocol defaults (YAML or JSON). Optional.
	SettingsFile string
	Name         string
	// IonConcentration such as "0.15 molar". Empty means 0 molar.
	IonConcentration string

	// Submit registers the network under Scope and writes its scoped key to ScopeKeyFile.
	Submit       bool
	Scope        string
	ScopeKeyFile string
	Remote       RemoteOptions

	Debug  bool
	Stdout io.Writer
}

// RunNetwork builds the all-pairs solvation network from a descriptor file
// and writes it as one document.
func RunNetwork(ctx context.Context, opts NetworkOptions) error {
	logger := createLogger(opts.Debug)
	out := stdout(opts.Stdout)

	settings := protocol.Default()
	if opts.SettingsFile != "" {
		var err error
		if settings, err = protocol.Load(opts.SettingsFile); err != nil {
			return err
		}
		logger.Debug("Loaded protocol settings", "path", opts.SettingsFile)
	}
	proto := protocol.New(settings)

	ion := domain.Q(0, domain.Molar)
	if opts.IonConcentration != "" {
		var err error
		if ion, err = domain.ParseQuantity(opts.IonConcentration); err != nil {
			return fmt.Errorf("ion concentration: %w", err)
		}
	}

	// Resolve everything the submission needs before doing any work.
	var scope domain.Scope
	var cfg config.Config
	if opts.Submit {
		var err error
		if scope, err = domain.ParseScope(opts.Scope); err != nil {
			return err
		}
		if cfg, err = config.Resolve(opts.Remote); err != nil {
			return err
		}
	}

	descriptors, err := network.ReadDescriptorFile(opts.InputFile)
	if err != nil {
		return err
	}
	logger.Info("Read descriptors", "path", opts.InputFile, "count", len(descriptors))

	toolkit := smiles.NewToolkit(smiles.WithLogger(logger))
	builder := network.NewBuilder(toolkit, proto,
		network.WithLogger(logger),
		network.WithIonConcentration(ion),
		network.WithName(opts.Name),
	)
	n, err := builder.Build(descriptors)
	if err != nil {
		return err
	}

	if err := network.Write(opts.NetworkFile, n); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d transformations to %s\n", len(n.Transformations), opts.NetworkFile)

	if !opts.Submit {
		return nil
	}
	sk, err := newClient(cfg, logger).CreateNetwork(ctx, n, scope)
	if err != nil {
		return fmt.Errorf("failed to submit network: %w", err)
	}
	path := opts.ScopeKeyFile
	if path == "" {
		path = config.DefaultScopeKeyFile
	}
	if err := config.WriteScopeKey(path, sk); err != nil {
		return err
	}
	fmt.Fprintf(out, "Submitted network %s (scoped key in %s)\n", sk, path)
	return nil
}
