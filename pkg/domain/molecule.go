package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Atom is a single atom of a parsed molecule.
type Atom struct {
	Element  string `json:"element"`
	Aromatic bool   `json:"aromatic,omitempty"`
	Charge   int    `json:"charge,omitempty"`
	Isotope  int    `json:"isotope,omitempty"`
	// Hydrogens is the total number of attached hydrogens, implicit or bracketed.
	Hydrogens int    `json:"hydrogens"`
	Chirality string `json:"chirality,omitempty"`
}

// BondOrder follows the descriptor syntax: 1, 2, 3, 4 and Aromatic.
type BondOrder int

const (
	BondSingle BondOrder = 1
	BondDouble BondOrder = 2
	BondTriple BondOrder = 3
	BondQuad   BondOrder = 4
	// BondAromatic is stored as a distinct order and counts as 1 for valence.
	BondAromatic BondOrder = 5
)

// Bond connects two atoms by index.
type Bond struct {
	From  int       `json:"from"`
	To    int       `json:"to"`
	Order BondOrder `json:"order"`
}

// Molecule is the connectivity graph behind a descriptor string.
type Molecule struct {
	Name   string `json:"name"`
	SMILES string `json:"smiles"`
	Atoms  []Atom `json:"atoms"`
	Bonds  []Bond `json:"bonds"`
}

// NetCharge sums the formal charges.
func (m *Molecule) NetCharge() int {
	total := 0
	for _, a := range m.Atoms {
		total += a.Charge
	}
	return total
}

// HeavyAtoms counts non-hydrogen atoms.
func (m *Molecule) HeavyAtoms() int {
	n := 0
	for _, a := range m.Atoms {
		if a.Element != "H" {
			n++
		}
	}
	return n
}

// Formula returns the Hill formula, e.g. "C2H6O".
func (m *Molecule) Formula() string {
	counts := make(map[string]int)
	for _, a := range m.Atoms {
		if a.Element == "*" {
			continue
		}
		counts[a.Element]++
		if a.Hydrogens > 0 {
			counts["H"] += a.Hydrogens
		}
	}

	var elements []string
	_, hasCarbon := counts["C"]
	for el := range counts {
		if hasCarbon && (el == "C" || el == "H") {
			continue
		}
		elements = append(elements, el)
	}
	sort.Strings(elements)
	if hasCarbon {
		prefix := []string{"C"}
		if counts["H"] > 0 {
			prefix = append(prefix, "H")
		}
		elements = append(prefix, elements...)
	}

	var sb strings.Builder
	for _, el := range elements {
		sb.WriteString(el)
		if counts[el] > 1 {
			fmt.Fprintf(&sb, "%d", counts[el])
		}
	}
	return sb.String()
}
