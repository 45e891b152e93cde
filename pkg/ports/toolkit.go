package ports

import "github.com/aretw0/asfe/pkg/domain"

// Toolkit parses molecule descriptors.
type Toolkit interface {
	// FromSMILES parses one descriptor. The returned molecule is named after it.
	FromSMILES(smiles string) (*domain.Molecule, error)
}
