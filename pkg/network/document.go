package network

import (
	"errors"
	"fmt"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/aretw0/asfe/pkg/protocol"
)

// Document identity.
const (
	FormatName    = "asfe-network"
	FormatVersion = 1
)

var (
	// ErrKeyMismatch is returned when a document object does not hash to the key it declares.
	ErrKeyMismatch = errors.New("document key mismatch")
	// ErrDanglingKey is returned when a document references a key it does not define.
	ErrDanglingKey = errors.New("document references an undefined key")
	// ErrUnsupportedDocument is returned for unknown formats, versions or object types.
	ErrUnsupportedDocument = errors.New("unsupported document")
)

// Document is the serialized form of a network. Objects appear once and
// reference each other by key.
type Document struct {
	Format          string              `json:"format" yaml:"format"`
	Version         int                 `json:"version" yaml:"version"`
	Name            string              `json:"name,omitempty" yaml:"name,omitempty"`
	Key             string              `json:"key" yaml:"key"`
	Protocols       []ProtocolDoc       `json:"protocols" yaml:"protocols"`
	Components      []ComponentDoc      `json:"components" yaml:"components"`
	Systems         []SystemDoc         `json:"systems" yaml:"systems"`
	Transformations []TransformationDoc `json:"transformations" yaml:"transformations"`
}

// ProtocolDoc is a protocol with its full settings, referenced by key.
type ProtocolDoc struct {
	Key      string            `json:"key" yaml:"key"`
	Qualname string            `json:"qualname" yaml:"qualname"`
	Settings protocol.Settings `json:"settings" yaml:"settings"`
}

// ComponentDoc holds either a small molecule or a solvent, told apart by Qualname.
type ComponentDoc struct {
	Key      string `json:"key" yaml:"key"`
	Qualname string `json:"qualname" yaml:"qualname"`

	Name                string `json:"name,omitempty" yaml:"name,omitempty"`
	SMILES              string `json:"smiles,omitempty" yaml:"smiles,omitempty"`
	PartialChargeMethod string `json:"partial_charge_method,omitempty" yaml:"partial_charge_method,omitempty"`

	SolventMolecule  string           `json:"solvent_molecule,omitempty" yaml:"solvent_molecule,omitempty"`
	IonConcentration *domain.Quantity `json:"ion_concentration,omitempty" yaml:"ion_concentration,omitempty"`
	PositiveIon      string           `json:"positive_ion,omitempty" yaml:"positive_ion,omitempty"`
	NegativeIon      string           `json:"negative_ion,omitempty" yaml:"negative_ion,omitempty"`
	Neutralize       *bool            `json:"neutralize,omitempty" yaml:"neutralize,omitempty"`
}

// SystemDoc maps component labels to component keys.
type SystemDoc struct {
	Key        string            `json:"key" yaml:"key"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Components map[string]string `json:"components" yaml:"components"`
}

// TransformationDoc references its end states and protocol by key.
type TransformationDoc struct {
	Key      string            `json:"key" yaml:"key"`
	Name     string            `json:"name" yaml:"name"`
	StateA   string            `json:"stateA" yaml:"stateA"`
	StateB   string            `json:"stateB" yaml:"stateB"`
	Mapping  map[string]string `json:"mapping" yaml:"mapping"`
	Protocol string            `json:"protocol" yaml:"protocol"`
}

// ToDocument flattens a network. Every protocol must be a *protocol.ASFE.
func ToDocument(n *domain.Network) (*Document, error) {
	doc := &Document{
		Format:  FormatName,
		Version: FormatVersion,
		Name:    n.Name,
		Key:     n.Key(),
	}

	seenProtocols := make(map[string]bool)
	seenComponents := make(map[string]bool)
	seenSystems := make(map[string]bool)

	addComponent := func(c domain.Component) error {
		if seenComponents[c.Key()] {
			return nil
		}
		switch v := c.(type) {
		case *domain.SmallMoleculeComponent:
			seenComponents[v.Key()] = true
			doc.Components = append(doc.Components, smallMoleculeDoc(v))
		case *domain.SolventComponent:
			if !seenComponents[v.Solvent.Key()] {
				seenComponents[v.Solvent.Key()] = true
				doc.Components = append(doc.Components, smallMoleculeDoc(v.Solvent))
			}
			seenComponents[v.Key()] = true
			ion := v.IonConcentration
			neutralize := v.Neutralize
			doc.Components = append(doc.Components, ComponentDoc{
				Key:              v.Key(),
				Qualname:         v.Qualname(),
				SolventMolecule:  v.Solvent.Key(),
				IonConcentration: &ion,
				PositiveIon:      v.PositiveIon,
				NegativeIon:      v.NegativeIon,
				Neutralize:       &neutralize,
			})
		default:
			return fmt.Errorf("%w: component %s", ErrUnsupportedDocument, c.Qualname())
		}
		return nil
	}

	for _, t := range n.Transformations {
		p, ok := t.Protocol.(*protocol.ASFE)
		if !ok {
			return nil, fmt.Errorf("%w: protocol %s", ErrUnsupportedDocument, t.Protocol.Qualname())
		}
		if !seenProtocols[p.Key()] {
			seenProtocols[p.Key()] = true
			doc.Protocols = append(doc.Protocols, ProtocolDoc{Key: p.Key(), Qualname: p.Qualname(), Settings: p.Settings()})
		}

		for _, s := range []*domain.ChemicalSystem{t.StateA, t.StateB} {
			if seenSystems[s.Key()] {
				continue
			}
			seenSystems[s.Key()] = true
			sd := SystemDoc{Key: s.Key(), Name: s.Name, Components: make(map[string]string, len(s.Components))}
			for _, label := range s.Labels() {
				c := s.Components[label]
				if err := addComponent(c); err != nil {
					return nil, err
				}
				sd.Components[label] = c.Key()
			}
			doc.Systems = append(doc.Systems, sd)
		}

		doc.Transformations = append(doc.Transformations, TransformationDoc{
			Key:      t.Key(),
			Name:     t.Name,
			StateA:   t.StateA.Key(),
			StateB:   t.StateB.Key(),
			Mapping:  t.Mapping,
			Protocol: p.Key(),
		})
	}
	return doc, nil
}

func smallMoleculeDoc(c *domain.SmallMoleculeComponent) ComponentDoc {
	return ComponentDoc{
		Key:                 c.Key(),
		Qualname:            c.Qualname(),
		Name:                c.Molecule.Name,
		SMILES:              c.Molecule.SMILES,
		PartialChargeMethod: c.PartialChargeMethod,
	}
}

// FromDocument rebuilds a network and checks every declared key.
// With a nil toolkit molecules carry only their name and descriptor.
func FromDocument(doc *Document, toolkit ports.Toolkit) (*domain.Network, error) {
	if doc.Format != FormatName || doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s v%d", ErrUnsupportedDocument, doc.Format, doc.Version)
	}

	protocols := make(map[string]*protocol.ASFE, len(doc.Protocols))
	for _, pd := range doc.Protocols {
		if pd.Qualname != protocol.Qualname {
			return nil, fmt.Errorf("%w: protocol %s", ErrUnsupportedDocument, pd.Qualname)
		}
		if err := protocol.Validate(pd.Settings); err != nil {
			return nil, fmt.Errorf("protocol %s: %w", pd.Key, err)
		}
		p := protocol.New(pd.Settings)
		if err := checkKey(pd.Key, p.Key()); err != nil {
			return nil, err
		}
		protocols[pd.Key] = p
	}

	components := make(map[string]domain.Component, len(doc.Components))
	// Small molecules first; solvents reference them.
	for _, cd := range doc.Components {
		switch cd.Qualname {
		case "SmallMoleculeComponent":
			mol := &domain.Molecule{Name: cd.Name, SMILES: cd.SMILES}
			if toolkit != nil {
				parsed, err := toolkit.FromSMILES(cd.SMILES)
				if err != nil {
					return nil, fmt.Errorf("component %s: %w", cd.Key, err)
				}
				parsed.Name = cd.Name
				mol = parsed
			}
			c := domain.NewSmallMoleculeComponent(mol, cd.PartialChargeMethod)
			if err := checkKey(cd.Key, c.Key()); err != nil {
				return nil, err
			}
			components[cd.Key] = c
		case "ExtendedSolventComponent":
		default:
			return nil, fmt.Errorf("%w: component %s", ErrUnsupportedDocument, cd.Qualname)
		}
	}
	for _, cd := range doc.Components {
		if cd.Qualname != "ExtendedSolventComponent" {
			continue
		}
		smc, ok := components[cd.SolventMolecule].(*domain.SmallMoleculeComponent)
		if !ok {
			return nil, fmt.Errorf("%w: solvent molecule %s", ErrDanglingKey, cd.SolventMolecule)
		}
		ion := domain.Q(0, domain.Molar)
		if cd.IonConcentration != nil {
			ion = *cd.IonConcentration
		}
		c := domain.NewSolventComponent(smc, ion)
		if err := checkKey(cd.Key, c.Key()); err != nil {
			return nil, err
		}
		components[cd.Key] = c
	}

	systems := make(map[string]*domain.ChemicalSystem, len(doc.Systems))
	for _, sd := range doc.Systems {
		members := make(map[string]domain.Component, len(sd.Components))
		for label, key := range sd.Components {
			c, ok := components[key]
			if !ok {
				return nil, fmt.Errorf("%w: component %s", ErrDanglingKey, key)
			}
			members[label] = c
		}
		s := domain.NewChemicalSystem(sd.Name, members)
		if err := checkKey(sd.Key, s.Key()); err != nil {
			return nil, err
		}
		systems[sd.Key] = s
	}

	transformations := make([]*domain.Transformation, 0, len(doc.Transformations))
	for _, td := range doc.Transformations {
		a, okA := systems[td.StateA]
		b, okB := systems[td.StateB]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: transformation %s states", ErrDanglingKey, td.Key)
		}
		p, ok := protocols[td.Protocol]
		if !ok {
			return nil, fmt.Errorf("%w: protocol %s", ErrDanglingKey, td.Protocol)
		}
		if len(td.Mapping) > 0 {
			return nil, fmt.Errorf("%w: transformation %s has a mapping", ErrUnsupportedDocument, td.Key)
		}
		t := domain.NewTransformation(td.Name, a, b, p)
		if err := checkKey(td.Key, t.Key()); err != nil {
			return nil, err
		}
		transformations = append(transformations, t)
	}

	n := domain.NewNetwork(doc.Name, transformations)
	if doc.Key != "" {
		if err := checkKey(doc.Key, n.Key()); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func checkKey(declared, computed string) error {
	if declared != computed {
		return fmt.Errorf("%w: declared %s, computed %s", ErrKeyMismatch, declared, computed)
	}
	return nil
}
