package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/unit"
)

// Unit names as they appear in settings files and in results returned by the service.
const (
	KilocaloriePerMole = "kilocalorie / mole"
	KilojoulePerMole   = "kilojoule / mole"
	JoulePerMole       = "joule / mole"
	Kelvin             = "kelvin"
	Bar                = "bar"
	Atmosphere         = "standard_atmosphere"
	Pascal             = "pascal"
	Nanosecond         = "nanosecond"
	Picosecond         = "picosecond"
	Femtosecond        = "femtosecond"
	Molar              = "molar"
	Nanometer          = "nanometer"
	Angstrom           = "angstrom"
)

var (
	energyPerMole = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2, unit.MoleDim: -1}
	concentration = unit.Dimensions{unit.MoleDim: 1, unit.LengthDim: -3}
	pressure      = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
)

type unitDef struct {
	scale float64 // SI value of one of this unit
	dims  unit.Dimensions
}

var units = map[string]unitDef{
	KilocaloriePerMole: {4184, energyPerMole},
	KilojoulePerMole:   {1000, energyPerMole},
	JoulePerMole:       {1, energyPerMole},
	Kelvin:             {1, unit.Dimensions{unit.TemperatureDim: 1}},
	Bar:                {1e5, pressure},
	Atmosphere:         {101325, pressure},
	Pascal:             {1, pressure},
	Nanosecond:         {unit.Nano, unit.Dimensions{unit.TimeDim: 1}},
	Picosecond:         {unit.Pico, unit.Dimensions{unit.TimeDim: 1}},
	Femtosecond:        {unit.Femto, unit.Dimensions{unit.TimeDim: 1}},
	Molar:              {unit.Kilo, concentration},
	Nanometer:          {unit.Nano, unit.Dimensions{unit.LengthDim: 1}},
	Angstrom:           {1e-10, unit.Dimensions{unit.LengthDim: 1}},
}

// unitAliases maps common spellings onto the canonical names above.
var unitAliases = map[string]string{
	"kcal/mol":             KilocaloriePerMole,
	"kilocalorie_per_mole": KilocaloriePerMole,
	"kj/mol":               KilojoulePerMole,
	"kilojoule_per_mole":   KilojoulePerMole,
	"j/mol":                JoulePerMole,
	"k":                    Kelvin,
	"atm":                  Atmosphere,
	"pa":                   Pascal,
	"ns":                   Nanosecond,
	"ps":                   Picosecond,
	"fs":                   Femtosecond,
	"m":                    Molar,
	"nm":                   Nanometer,
	"a":                    Angstrom,
}

// CanonicalUnit resolves a unit name or alias to its canonical spelling.
func CanonicalUnit(name string) (string, error) {
	n := strings.TrimSpace(name)
	if _, ok := units[n]; ok {
		return n, nil
	}
	if c, ok := unitAliases[strings.ToLower(n)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Quantity is a magnitude with a physical unit.
type Quantity struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

// Q builds a Quantity. It does not validate the unit; conversions will.
func Q(magnitude float64, unitName string) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unitName}
}

// SI returns the quantity as a gonum unit in SI base units.
func (q Quantity) SI() (*unit.Unit, error) {
	name, err := CanonicalUnit(q.Unit)
	if err != nil {
		return nil, err
	}
	def := units[name]
	return unit.New(q.Magnitude*def.scale, def.dims), nil
}

// To converts the quantity to the target unit.
// Returns ErrIncompatibleUnits if the dimensions differ.
func (q Quantity) To(target string) (Quantity, error) {
	name, err := CanonicalUnit(target)
	if err != nil {
		return Quantity{}, err
	}
	if from, err := CanonicalUnit(q.Unit); err == nil && from == name {
		// Same unit: no scaling round trip, so magnitudes stay bit-exact.
		return Quantity{Magnitude: q.Magnitude, Unit: name}, nil
	}
	si, err := q.SI()
	if err != nil {
		return Quantity{}, err
	}
	def := units[name]
	if !unit.DimensionsMatch(si, unit.New(1, def.dims)) {
		return Quantity{}, fmt.Errorf("%w: %s to %s", ErrIncompatibleUnits, q.Unit, target)
	}
	return Quantity{Magnitude: si.Value() / def.scale, Unit: name}, nil
}

// Compatible reports whether q can be converted to the target unit.
func (q Quantity) Compatible(target string) bool {
	_, err := q.To(target)
	return err == nil
}

// String renders the quantity as "<magnitude> <unit>".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Magnitude, 'g', -1, 64) + " " + q.Unit
}

// MarshalText implements encoding.TextMarshaler.
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses "<magnitude> <unit>".
func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := ParseQuantity(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// UnmarshalJSON accepts both the text form and the service's object form
// ({"magnitude": -10.1, "unit": "kilocalorie / mole"}).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return q.UnmarshalText([]byte(s))
	}
	var raw struct {
		Magnitude *float64 `json:"magnitude"`
		Unit      string   `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	if raw.Magnitude == nil {
		return fmt.Errorf("quantity: missing magnitude")
	}
	name, err := CanonicalUnit(raw.Unit)
	if err != nil {
		return err
	}
	*q = Quantity{Magnitude: *raw.Magnitude, Unit: name}
	return nil
}

// ParseQuantity parses "<magnitude> <unit>", for example "298.15 kelvin" or "2 fs".
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return Quantity{}, fmt.Errorf("quantity %q: expected \"<magnitude> <unit>\"", s)
	}
	mag, err := strconv.ParseFloat(s[:idx], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("quantity %q: %w", s, err)
	}
	name, err := CanonicalUnit(s[idx+1:])
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: mag, Unit: name}, nil
}
