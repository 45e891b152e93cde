package smiles

import (
	"fmt"
	"strings"

	"github.com/aretw0/asfe/pkg/domain"
)

// SyntaxError reports where a descriptor stopped making sense.
type SyntaxError struct {
	SMILES string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("smiles %q: position %d: %s", e.SMILES, e.Pos, e.Msg)
}

type ringOpening struct {
	atom  int
	order domain.BondOrder // 0 when unspecified
	pos   int
}

type parser struct {
	src     string
	pos     int
	mol     *domain.Molecule
	prev    int
	pending domain.BondOrder
	bondPos int
	branch  []int
	rings   map[int]ringOpening
	bracket []bool // atom index -> came from a bracket
}

// Parse parses a descriptor into a connectivity graph and assigns implicit hydrogens.
func Parse(s string) (*domain.Molecule, error) {
	p := &parser{
		src:   s,
		mol:   &domain.Molecule{Name: s, SMILES: s},
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	p.assignHydrogens()
	return p.mol, nil
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{SMILES: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() error {
	if strings.TrimSpace(p.src) == "" {
		return p.errorf(0, "empty descriptor")
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf(p.pos, "branch without a preceding atom")
			}
			if p.pending != 0 {
				return p.errorf(p.pos, "bond before branch")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++
		case c == ')':
			if len(p.branch) == 0 {
				return p.errorf(p.pos, "unbalanced ')'")
			}
			if p.pending != 0 {
				return p.errorf(p.bondPos, "bond without a following atom")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.prev < 0 {
				return p.errorf(p.pos, "bond without a preceding atom")
			}
			if p.pending != 0 {
				return p.errorf(p.pos, "two consecutive bonds")
			}
			p.pending = bondOrder(c)
			p.bondPos = p.pos
			p.pos++
		case c == '.':
			if p.pending != 0 {
				return p.errorf(p.bondPos, "bond without a following atom")
			}
			p.prev = -1
			p.pos++
		case c == '%' || isDigit(c):
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}

	if p.pending != 0 {
		return p.errorf(p.bondPos, "bond without a following atom")
	}
	if len(p.branch) > 0 {
		return p.errorf(len(p.src), "unclosed branch")
	}
	for n, open := range p.rings {
		return p.errorf(open.pos, "unclosed ring %d", n)
	}
	if len(p.mol.Atoms) == 0 {
		return p.errorf(0, "no atoms")
	}
	return nil
}

func (p *parser) addAtom(a domain.Atom, bracket bool) {
	idx := len(p.mol.Atoms)
	p.mol.Atoms = append(p.mol.Atoms, a)
	p.bracket = append(p.bracket, bracket)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = p.defaultOrder(p.prev, idx)
		}
		p.mol.Bonds = append(p.mol.Bonds, domain.Bond{From: p.prev, To: idx, Order: order})
	}
	p.prev = idx
	p.pending = 0
}

func (p *parser) defaultOrder(a, b int) domain.BondOrder {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return domain.BondAromatic
	}
	return domain.BondSingle
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.errorf(start, "ring closure without a preceding atom")
	}

	var n int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.errorf(start, "'%%' must be followed by two digits")
		}
		n = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpening{atom: p.prev, order: p.pending, pos: start}
		p.pending = 0
		return nil
	}

	if open.atom == p.prev {
		return p.errorf(start, "ring %d closes on its own atom", n)
	}
	order := open.order
	switch {
	case order == 0:
		order = p.pending
	case p.pending != 0 && p.pending != order:
		return p.errorf(start, "ring %d has conflicting bond orders", n)
	}
	if order == 0 {
		order = p.defaultOrder(open.atom, p.prev)
	}
	for _, b := range p.mol.Bonds {
		if (b.From == open.atom && b.To == p.prev) || (b.From == p.prev && b.To == open.atom) {
			return p.errorf(start, "ring %d duplicates an existing bond", n)
		}
	}
	p.mol.Bonds = append(p.mol.Bonds, domain.Bond{From: open.atom, To: p.prev, Order: order})
	delete(p.rings, n)
	p.pending = 0
	return nil
}

func (p *parser) organicAtom() error {
	c := p.src[p.pos]
	if c == '*' {
		p.addAtom(domain.Atom{Element: "*"}, false)
		p.pos++
		return nil
	}
	if p.pos+1 < len(p.src) {
		two := p.src[p.pos : p.pos+2]
		if two == "Cl" || two == "Br" {
			p.addAtom(domain.Atom{Element: two}, false)
			p.pos += 2
			return nil
		}
	}
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.addAtom(domain.Atom{Element: string(c)}, false)
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.addAtom(domain.Atom{Element: strings.ToUpper(string(c)), Aromatic: true}, false)
	default:
		return p.errorf(p.pos, "unexpected character %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) bracketAtom() error {
	start := p.pos
	end := strings.IndexByte(p.src[start:], ']')
	if end < 0 {
		return p.errorf(start, "unclosed '['")
	}
	body := p.src[start+1 : start+end]
	p.pos = start + end + 1

	var a domain.Atom
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	sym, aromatic, n := readBracketSymbol(body[i:])
	if n == 0 {
		return p.errorf(start+1+i, "invalid element in %q", "["+body+"]")
	}
	a.Element, a.Aromatic = sym, aromatic
	i += n

	if i < len(body) && body[i] == '@' {
		j := i + 1
		if j < len(body) && body[j] == '@' {
			j++
		}
		for j < len(body) && (isUpper(body[j]) || isDigit(body[j])) && body[j] != 'H' {
			j++
		}
		a.Chirality = body[i:j]
		i = j
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.Hydrogens = 1
		if i < len(body) && isDigit(body[i]) {
			a.Hydrogens = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sc := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			mag := 0
			for i < len(body) && isDigit(body[i]) {
				mag = mag*10 + int(body[i]-'0')
				i++
			}
			a.Charge = sign * mag
		default:
			mag := 1
			for i < len(body) && body[i] == sc {
				mag++
				i++
			}
			a.Charge = sign * mag
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return p.errorf(start+1+i, "atom class must be numeric")
		}
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i != len(body) {
		return p.errorf(start+1+i, "unexpected %q in bracket atom", body[i:])
	}

	p.addAtom(a, true)
	return nil
}

// readBracketSymbol returns the element, aromaticity and consumed length.
func readBracketSymbol(s string) (string, bool, int) {
	if s == "" {
		return "", false, 0
	}
	if s[0] == '*' {
		return "*", false, 1
	}
	for _, ar := range []string{"se", "as", "te"} {
		if strings.HasPrefix(s, ar) {
			return strings.ToUpper(ar[:1]) + ar[1:], true, 2
		}
	}
	if strings.IndexByte("bcnops", s[0]) >= 0 {
		return strings.ToUpper(s[:1]), true, 1
	}
	if !isUpper(s[0]) {
		return "", false, 0
	}
	if len(s) > 1 && s[1] >= 'a' && s[1] <= 'z' && elements[s[:2]] {
		return s[:2], false, 2
	}
	if elements[s[:1]] {
		return s[:1], false, 1
	}
	return "", false, 0
}

var defaultValences = map[string][]int{
	"B": {3}, "C": {4}, "N": {3, 5}, "O": {2}, "P": {3, 5},
	"S": {2, 4, 6}, "F": {1}, "Cl": {1}, "Br": {1}, "I": {1},
}

// assignHydrogens fills implicit hydrogens for organic-subset atoms from their lowest fitting valence.
func (p *parser) assignHydrogens() {
	used := make([]int, len(p.mol.Atoms))
	for _, b := range p.mol.Bonds {
		v := int(b.Order)
		if b.Order == domain.BondAromatic {
			v = 1
		}
		used[b.From] += v
		used[b.To] += v
	}
	for i := range p.mol.Atoms {
		if p.bracket[i] {
			continue
		}
		a := &p.mol.Atoms[i]
		valences, ok := defaultValences[a.Element]
		if !ok {
			continue
		}
		sum := used[i]
		if a.Aromatic {
			sum++
		}
		for _, v := range valences {
			if v >= sum {
				a.Hydrogens = v - sum
				break
			}
		}
	}
}

func bondOrder(c byte) domain.BondOrder {
	switch c {
	case '=':
		return domain.BondDouble
	case '#':
		return domain.BondTriple
	case '$':
		return domain.BondQuad
	case ':':
		return domain.BondAromatic
	default:
		return domain.BondSingle
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

var elements = func() map[string]bool {
	m := make(map[string]bool)
	for _, s := range strings.Fields(`H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca
		Sc Ti V Cr Mn Fe Co Ni Cu Zn Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag
		Cd In Sn Sb Te I Xe Cs Ba La Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W
		Re Os Ir Pt Au Hg Tl Pb Bi Po At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es Fm Md
		No Lr Rf Db Sg Bh Hs Mt Ds Rg Cn Nh Fl Mc Lv Ts Og`) {
		m[s] = true
	}
	return m
}()
