package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/asfe/internal/config"
	"github.com/aretw0/asfe/internal/logging"
	"github.com/aretw0/asfe/pkg/adapters/alchemiscale"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/aretw0/asfe/pkg/smiles"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.Stop()
	}()

	return sc
}

// Stop releases the signal handler and cancels the context.
func (sc *SignalContext) Stop() {
	sc.stop.Do(func() {
		signal.Stop(sc.sigCh)
		sc.Cancel()
	})
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// Interrupted rewrites a cancellation caused by a signal into a short error.
func (sc *SignalContext) Interrupted(err error) error {
	if err == nil {
		return nil
	}
	if sig := sc.Signal(); sig != nil && errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted by %s", sig)
	}
	return err
}

// RemoteOptions are the connection flags shared by the tools that talk to the service.
type RemoteOptions = config.Flags

// createLogger configures the application logger.
// Warnings always reach Stderr; --debug adds the progress logs.
func createLogger(debug bool) *slog.Logger {
	return logging.ForDebug(debug)
}

// newClient builds the service client. Nothing is sent until the first call.
func newClient(cfg config.Config, logger *slog.Logger) ports.Client {
	logger.Debug("Connecting", "url", cfg.APIURL, "user", cfg.Credentials.ID)
	return alchemiscale.New(cfg.APIURL, cfg.Credentials,
		alchemiscale.WithTimeout(cfg.Timeout),
		alchemiscale.WithToolkit(smiles.NewToolkit(smiles.WithLogger(logger))),
		alchemiscale.WithLogger(logger),
	)
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
