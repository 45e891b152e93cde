// Package protocol holds the absolute solvation free-energy protocol: its
// settings, their defaults, file overrides and validation.
package protocol

import "github.com/aretw0/asfe/pkg/domain"

// Qualname is the protocol class name the remote workers dispatch on.
const Qualname = "ASFEProtocol"

// ASFE is an immutable protocol instance. One instance is shared by every
// transformation of a network.
type ASFE struct {
	settings Settings
	key      string
}

// New freezes a copy of s into a protocol.
func New(s Settings) *ASFE {
	frozen := s.Clone()
	return &ASFE{
		settings: frozen,
		key:      domain.Tokenize(Qualname, frozen),
	}
}

// NewDefault is New(Default()).
func NewDefault() *ASFE {
	return New(Default())
}

func (p *ASFE) Qualname() string { return Qualname }
func (p *ASFE) Key() string      { return p.key }

// Settings returns a copy; mutating it does not affect the protocol.
func (p *ASFE) Settings() Settings {
	return p.settings.Clone()
}
