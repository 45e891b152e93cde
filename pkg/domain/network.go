package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Component labels used inside a ChemicalSystem.
const (
	LabelLigand  = "ligand"
	LabelSolvent = "solvent"
)

// Tokenize derives a content key "<qualname>-<hex>" from the canonical JSON of v.
// encoding/json sorts map keys, so equal content yields equal keys.
func Tokenize(qualname string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only plain structs of strings, numbers and maps reach here.
		panic("domain: Tokenize: " + err.Error())
	}
	sum := sha256.Sum256(append([]byte(qualname+":"), data...))
	return qualname + "-" + hex.EncodeToString(sum[:16])
}

// Component is a part of a ChemicalSystem.
type Component interface {
	Qualname() string
	Key() string
}

// Protocol is the simulation recipe attached to a Transformation.
type Protocol interface {
	Qualname() string
	Key() string
}

// SmallMoleculeComponent wraps a parsed molecule and the preparation the
// remote workers apply to it (conformers and partial charges).
type SmallMoleculeComponent struct {
	Molecule            *Molecule
	PartialChargeMethod string
	key                 string
}

// NewSmallMoleculeComponent builds the component. The molecule is not copied and must not be mutated afterwards.
func NewSmallMoleculeComponent(mol *Molecule, chargeMethod string) *SmallMoleculeComponent {
	c := &SmallMoleculeComponent{Molecule: mol, PartialChargeMethod: chargeMethod}
	c.key = Tokenize(c.Qualname(), map[string]any{
		"name":                  mol.Name,
		"smiles":                mol.SMILES,
		"partial_charge_method": chargeMethod,
	})
	return c
}

func (c *SmallMoleculeComponent) Qualname() string { return "SmallMoleculeComponent" }
func (c *SmallMoleculeComponent) Key() string      { return c.key }

// Name returns the molecule name, which is its descriptor.
func (c *SmallMoleculeComponent) Name() string { return c.Molecule.Name }

// SolventComponent describes a solvent made of one small molecule, with optional ions.
type SolventComponent struct {
	Solvent          *SmallMoleculeComponent
	IonConcentration Quantity
	PositiveIon      string
	NegativeIon      string
	Neutralize       bool
	key              string
}

// NewSolventComponent builds a solvent from a molecule component.
// Ions default to Na+/Cl- and the system is neutralized.
func NewSolventComponent(solvent *SmallMoleculeComponent, ionConcentration Quantity) *SolventComponent {
	c := &SolventComponent{
		Solvent:          solvent,
		IonConcentration: ionConcentration,
		PositiveIon:      "Na+",
		NegativeIon:      "Cl-",
		Neutralize:       true,
	}
	c.key = Tokenize(c.Qualname(), map[string]any{
		"solvent_molecule":  solvent.Key(),
		"ion_concentration": ionConcentration.String(),
		"positive_ion":      c.PositiveIon,
		"negative_ion":      c.NegativeIon,
		"neutralize":        c.Neutralize,
	})
	return c
}

func (c *SolventComponent) Qualname() string { return "ExtendedSolventComponent" }
func (c *SolventComponent) Key() string      { return c.key }

// ChemicalSystem is an end state: labelled components.
type ChemicalSystem struct {
	Name       string
	Components map[string]Component
	key        string
}

// NewChemicalSystem builds a system from labelled components.
func NewChemicalSystem(name string, components map[string]Component) *ChemicalSystem {
	keys := make(map[string]string, len(components))
	for label, c := range components {
		keys[label] = c.Key()
	}
	s := &ChemicalSystem{Name: name, Components: components}
	s.key = Tokenize("ChemicalSystem", map[string]any{"name": name, "components": keys})
	return s
}

func (s *ChemicalSystem) Qualname() string { return "ChemicalSystem" }
func (s *ChemicalSystem) Key() string      { return s.key }

// Labels returns the component labels in sorted order.
func (s *ChemicalSystem) Labels() []string {
	labels := make([]string, 0, len(s.Components))
	for l := range s.Components {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Transformation is one alchemical pathway from StateA to StateB.
type Transformation struct {
	Name     string
	StateA   *ChemicalSystem
	StateB   *ChemicalSystem
	Mapping  map[string]string // always nil for solvation transformations
	Protocol Protocol
	key      string
}

// NewTransformation builds a transformation and derives its key.
func NewTransformation(name string, stateA, stateB *ChemicalSystem, protocol Protocol) *Transformation {
	t := &Transformation{Name: name, StateA: stateA, StateB: stateB, Protocol: protocol}
	t.key = Tokenize("Transformation", map[string]any{
		"name":     name,
		"stateA":   stateA.Key(),
		"stateB":   stateB.Key(),
		"mapping":  nil,
		"protocol": protocol.Key(),
	})
	return t
}

func (t *Transformation) Qualname() string { return "Transformation" }
func (t *Transformation) Key() string      { return t.key }

// Network is the full set of transformations of a campaign.
type Network struct {
	Name            string
	Transformations []*Transformation
	key             string
}

// NewNetwork builds a network. Transformation order is preserved.
func NewNetwork(name string, transformations []*Transformation) *Network {
	keys := make([]string, len(transformations))
	for i, t := range transformations {
		keys[i] = t.Key()
	}
	sort.Strings(keys)
	return &Network{
		Name:            name,
		Transformations: transformations,
		key:             Tokenize("AlchemicalNetwork", map[string]any{"name": name, "edges": keys}),
	}
}

func (n *Network) Qualname() string { return "AlchemicalNetwork" }
func (n *Network) Key() string      { return n.key }

// Systems returns the unique chemical systems in first-seen order.
func (n *Network) Systems() []*ChemicalSystem {
	seen := make(map[string]bool)
	var out []*ChemicalSystem
	for _, t := range n.Transformations {
		for _, s := range []*ChemicalSystem{t.StateA, t.StateB} {
			if !seen[s.Key()] {
				seen[s.Key()] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Names returns the transformation names in network order.
func (n *Network) Names() []string {
	names := make([]string, len(n.Transformations))
	for i, t := range n.Transformations {
		names[i] = t.Name
	}
	return names
}
