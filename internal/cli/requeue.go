package cli

import (
	"context"
	"io"

	"github.com/aretw0/asfe/internal/config"
	"github.com/aretw0/asfe/internal/presentation/tui"
	"github.com/aretw0/asfe/pkg/requeue"
)

// RequeueOptions configures RunRequeue.
type RequeueOptions struct {
	ScopeKeyFile string
	Remote       RemoteOptions
	Debug        bool
	Stdout       io.Writer
}

// RunRequeue sends the network's errored tasks back to waiting and prints
// the resulting task counts.
func RunRequeue(ctx context.Context, opts RequeueOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := config.Resolve(opts.Remote)
	if err != nil {
		return err
	}
	sk, err := config.ReadScopeKey(opts.ScopeKeyFile)
	if err != nil {
		return err
	}

	res, err := requeue.New(newClient(cfg, logger), requeue.WithLogger(logger)).Requeue(ctx, sk)
	if err != nil {
		return err
	}
	return tui.PrintRequeue(stdout(opts.Stdout), sk, res)
}
