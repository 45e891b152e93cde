package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/asfe/internal/config"
	"github.com/aretw0/asfe/internal/presentation/tui"
	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/adapters/redis"
	"github.com/aretw0/asfe/pkg/gather"
	"github.com/aretw0/asfe/pkg/ports"
)

// GatherOptions configures RunGather.
type GatherOptions struct {
	ScopeKeyFile string
	OutputFile   string
	Remote       RemoteOptions

	// Optional extra outputs.
	MetricsFile string
	PlotFile    string
	Print       bool

	// At most one history store: a Redis URL or a directory.
	HistoryRedis string
	HistoryDir   string

	Debug  bool
	Stdout io.Writer
}

// RunGather aggregates the results of the network named by the scope-key
// file and writes the results table.
func RunGather(ctx context.Context, opts GatherOptions) error {
	logger := createLogger(opts.Debug)
	out := stdout(opts.Stdout)

	cfg, err := config.Resolve(opts.Remote)
	if err != nil {
		return err
	}
	sk, err := config.ReadScopeKey(opts.ScopeKeyFile)
	if err != nil {
		return err
	}

	gopts := []gather.Option{gather.WithLogger(logger)}
	history, closeHistory, err := openHistory(opts, logger)
	if err != nil {
		return err
	}
	defer closeHistory()
	if history != nil {
		gopts = append(gopts, gather.WithHistory(history))
	}

	g := gather.New(newClient(cfg, logger), gopts...)
	report, err := g.Gather(ctx, sk)
	if err != nil {
		return err
	}

	if err := gather.WriteResultsFile(opts.OutputFile, report); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := g.Record(ctx, report); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d rows to %s (%d complete, %d absent)\n",
		len(report.Rows), opts.OutputFile, report.Complete(), report.Absent())

	if opts.MetricsFile != "" {
		if err := gather.WriteMetrics(opts.MetricsFile, report); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug("Wrote metrics", "path", opts.MetricsFile)
	}
	if opts.PlotFile != "" {
		switch err := gather.WritePlot(opts.PlotFile, report); {
		case errors.Is(err, gather.ErrNothingToPlot):
			logger.Warn("Skipping plot", "err", err)
		case err != nil:
			return fmt.Errorf("failed to write plot: %w", err)
		default:
			logger.Debug("Wrote plot", "path", opts.PlotFile)
		}
	}
	if opts.Print {
		return tui.PrintReport(out, report)
	}
	return nil
}

func openHistory(opts GatherOptions, logger *slog.Logger) (ports.HistoryStore, func(), error) {
	switch {
	case opts.HistoryRedis != "" && opts.HistoryDir != "":
		return nil, nil, errors.New("--history-redis and --history-dir cannot be used together")
	case opts.HistoryRedis != "":
		store, err := redis.NewFromURL(opts.HistoryRedis)
		if err != nil {
			return nil, nil, fmt.Errorf("history store: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close history store", "err", err)
			}
		}, nil
	case opts.HistoryDir != "":
		return file.NewHistoryStore(opts.HistoryDir), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
