package smiles

import (
	"errors"
	"testing"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Formulas(t *testing.T) {
	tests := []struct {
		smiles  string
		formula string
		charge  int
	}{
		{"O", "H2O", 0},
		{"CCO", "C2H6O", 0},
		{"c1ccccc1", "C6H6", 0},
		{"CC(=O)[O-]", "C2H3O2", -1},
		{"C1CCCCC1", "C6H12", 0},
		{"c1ccncc1", "C5H5N", 0},
		{"c1cc[nH]c1", "C4H5N", 0},
		{"ClC(Cl)Cl", "CHCl3", 0},
		{"CS(=O)C", "C2H6OS", 0},
		{"[NH4+]", "H4N", 1},
		{"C#N", "CHN", 0},
		{"CCCCCCCCO", "C8H18O", 0},
		{"C%10CC%10", "C3H6", 0},
		{"[Na+].[Cl-]", "ClNa", 0},
		{"F/C=C/F", "C2H2F2", 0},
		{"N[C@@H](C)C(=O)O", "C3H7NO2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			mol, err := Parse(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.formula, mol.Formula())
			assert.Equal(t, tt.charge, mol.NetCharge())
			assert.Equal(t, tt.smiles, mol.Name)
		})
	}
}

func TestParse_Bonds(t *testing.T) {
	mol, err := Parse("c1ccccc1")
	require.NoError(t, err)
	require.Len(t, mol.Bonds, 6)
	for _, b := range mol.Bonds {
		assert.Equal(t, domain.BondAromatic, b.Order)
	}

	mol, err = Parse("C=C")
	require.NoError(t, err)
	require.Len(t, mol.Bonds, 1)
	assert.Equal(t, domain.BondDouble, mol.Bonds[0].Order)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		smiles string
		pos    int
	}{
		{"", 0},
		{"C(", 2},
		{"C)", 1},
		{"C1CC", 1},
		{"C=", 1},
		{"C==C", 2},
		{"(C)", 0},
		{"[C", 0},
		{"[Xx]", 1},
		{"C=1CC-1", 6},
		{"Q", 0},
		{"C11", 2},
		{"[C+a]", 3},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			_, err := Parse(tt.smiles)
			require.Error(t, err)
			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr), "want *SyntaxError, got %T", err)
			assert.Equal(t, tt.pos, synErr.Pos)
		})
	}
}

func TestToolkit_RejectsHydrogenOnly(t *testing.T) {
	tk := NewToolkit()
	_, err := tk.FromSMILES("[H][H]")
	assert.Error(t, err)

	mol, err := tk.FromSMILES("CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, mol.HeavyAtoms())
}
