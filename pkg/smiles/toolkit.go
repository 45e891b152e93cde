package smiles

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/asfe/pkg/domain"
)

// Toolkit implements ports.Toolkit with the built-in descriptor parser.
// Conformers and partial charges are left to the remote workers; the
// toolkit only checks that a descriptor describes a valid molecule.
type Toolkit struct {
	logger *slog.Logger
}

// Option configures the Toolkit.
type Option func(*Toolkit)

// WithLogger sets the logger used to report parsed molecules.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolkit) {
		t.logger = logger
	}
}

// NewToolkit creates a Toolkit.
func NewToolkit(opts ...Option) *Toolkit {
	t := &Toolkit{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromSMILES parses a descriptor. The molecule is named after the descriptor.
func (t *Toolkit) FromSMILES(s string) (*domain.Molecule, error) {
	mol, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if mol.HeavyAtoms() == 0 {
		return nil, fmt.Errorf("smiles %q: no heavy atoms", s)
	}
	t.logger.Debug("Parsed molecule", "smiles", s, "formula", mol.Formula(), "charge", mol.NetCharge())
	return mol, nil
}
