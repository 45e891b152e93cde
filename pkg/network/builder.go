package network

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/aretw0/asfe/pkg/protocol"
)

// Builder turns a list of descriptors into a network.
type Builder struct {
	toolkit          ports.Toolkit
	protocol         *protocol.ASFE
	ionConcentration domain.Quantity
	name             string
	logger           *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithIonConcentration sets the salt concentration of every solvent.
// The default is 0 molar.
func WithIonConcentration(q domain.Quantity) Option {
	return func(b *Builder) {
		b.ionConcentration = q
	}
}

// WithName names the network.
func WithName(name string) Option {
	return func(b *Builder) {
		b.name = name
	}
}

// NewBuilder creates a Builder. A nil protocol means protocol.NewDefault().
func NewBuilder(toolkit ports.Toolkit, proto *protocol.ASFE, opts ...Option) *Builder {
	if proto == nil {
		proto = protocol.NewDefault()
	}
	b := &Builder{
		toolkit:          toolkit,
		protocol:         proto,
		ionConcentration: domain.Q(0, domain.Molar),
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses every descriptor and pairs them. Any parse failure aborts the
// build and nothing is returned. The protocol settings are validated first so
// a written network can always be read back.
func (b *Builder) Build(descriptors []string) (*domain.Network, error) {
	if len(descriptors) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if err := protocol.Validate(b.protocol.Settings()); err != nil {
		return nil, fmt.Errorf("protocol %s: %w", b.protocol.Key(), err)
	}
	if !b.ionConcentration.Compatible(domain.Molar) {
		return nil, fmt.Errorf("ion concentration %s: %w", b.ionConcentration, domain.ErrIncompatibleUnits)
	}

	method := b.protocol.Settings().PartialCharge.Method
	molecules := make([]*domain.SmallMoleculeComponent, len(descriptors))
	for i, d := range descriptors {
		mol, err := b.toolkit.FromSMILES(d)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		molecules[i] = domain.NewSmallMoleculeComponent(mol, method)
	}

	// Solvents only depend on B, so build each once.
	solvents := make([]*domain.SolventComponent, len(molecules))
	for i, m := range molecules {
		solvents[i] = domain.NewSolventComponent(m, b.ionConcentration)
	}

	transformations := make([]*domain.Transformation, 0, len(molecules)*(len(molecules)-1))
	for i, solute := range molecules {
		for j := range molecules {
			if i == j {
				continue
			}
			solvent := solvents[j]
			stateA := domain.NewChemicalSystem("", map[string]domain.Component{
				domain.LabelLigand:  solute,
				domain.LabelSolvent: solvent,
			})
			stateB := domain.NewChemicalSystem("", map[string]domain.Component{
				domain.LabelSolvent: solvent,
			})
			transformations = append(transformations, domain.NewTransformation(solute.Name(), stateA, stateB, b.protocol))
		}
	}

	n := domain.NewNetwork(b.name, transformations)
	b.logger.Info("Network built", "molecules", len(molecules), "transformations", len(transformations), "key", n.Key())
	return n, nil
}
