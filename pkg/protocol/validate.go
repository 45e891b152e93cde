package protocol

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one rejected settings field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every rejected field of one Validate call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("invalid protocol settings: %s", strings.Join(msgs, "; "))
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report yaml key paths rather than Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterStructValidation(validateSettings, Settings{})
	})
	return validate
}

// Validate checks field ranges, quantity dimensions and the consistency of
// the lambda schedule with the replica count. It returns ValidationErrors.
func Validate(s Settings) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: trimRoot(fe.Namespace()), Reason: reason(fe)})
	}
	return out
}

func trimRoot(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "min":
		return "needs at least " + fe.Param() + " entries"
	case "oneof":
		return "must be one of " + fe.Param()
	case "required":
		return "is required"
	case "unit":
		return "must be convertible to " + fe.Param()
	case "positive":
		return "must be positive"
	case "nonnegative":
		return "must not be negative"
	case "solvation":
		return "needs either number_of_solvent_molecules or solvent_padding"
	case "nreplicas":
		return "must equal the number of lambda windows (" + fe.Param() + ")"
	case "windows":
		return "must have " + fe.Param() + " windows like lambda_elec"
	case "exclusive":
		return "cannot be set together with " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

type quantityRule struct {
	field, name string
	q           domain.Quantity
	unit        string
	positive    bool
}

func validateSettings(sl validator.StructLevel) {
	s := sl.Current().Interface().(Settings)

	rules := []quantityRule{
		{"Thermo.Temperature", "thermo_settings.temperature", s.Thermo.Temperature, domain.Kelvin, true},
		{"Thermo.Pressure", "thermo_settings.pressure", s.Thermo.Pressure, domain.Bar, true},
		{"Integrator.Timestep", "integrator_settings.timestep", s.Integrator.Timestep, domain.Femtosecond, true},
	}
	for _, e := range []struct {
		prefix string
		v      EquilibrationSettings
	}{
		{"solvent_equil_simulation_settings", s.SolventEquil},
		{"vacuum_equil_simulation_settings", s.VacuumEquil},
	} {
		rules = append(rules,
			quantityRule{e.prefix, e.prefix + ".equilibration_length_nvt", e.v.EquilibrationLengthNVT, domain.Picosecond, false},
			quantityRule{e.prefix, e.prefix + ".equilibration_length", e.v.EquilibrationLength, domain.Picosecond, false},
			quantityRule{e.prefix, e.prefix + ".production_length", e.v.ProductionLength, domain.Picosecond, true},
		)
	}
	for _, m := range []struct {
		prefix string
		v      MultiStateSimulationSettings
	}{
		{"solvent_simulation_settings", s.SolventSimulation},
		{"vacuum_simulation_settings", s.VacuumSimulation},
	} {
		rules = append(rules,
			quantityRule{m.prefix, m.prefix + ".equilibration_length", m.v.EquilibrationLength, domain.Picosecond, false},
			quantityRule{m.prefix, m.prefix + ".production_length", m.v.ProductionLength, domain.Picosecond, true},
			quantityRule{m.prefix, m.prefix + ".time_per_iteration", m.v.TimePerIteration, domain.Picosecond, true},
		)
	}
	if p := s.Solvation.SolventPadding; p != nil {
		rules = append(rules, quantityRule{"Solvation.SolventPadding", "solvation_settings.solvent_padding", *p, domain.Nanometer, true})
		if s.Solvation.NumberOfSolventMolecules > 0 {
			sl.ReportError(p, "solvation_settings.solvent_padding", "SolventPadding", "exclusive", "number_of_solvent_molecules")
		}
	} else if s.Solvation.NumberOfSolventMolecules == 0 {
		sl.ReportError(s.Solvation.NumberOfSolventMolecules, "solvation_settings.number_of_solvent_molecules", "NumberOfSolventMolecules", "solvation", "")
	}

	for _, r := range rules {
		if !r.q.Compatible(r.unit) {
			sl.ReportError(r.q, r.name, r.field, "unit", r.unit)
			continue
		}
		switch {
		case r.positive && r.q.Magnitude <= 0:
			sl.ReportError(r.q, r.name, r.field, "positive", "")
		case r.q.Magnitude < 0:
			sl.ReportError(r.q, r.name, r.field, "nonnegative", "")
		}
	}

	windows := len(s.Lambda.Elec)
	if len(s.Lambda.VDW) != windows {
		sl.ReportError(s.Lambda.VDW, "lambda_settings.lambda_vdw", "VDW", "windows", fmt.Sprint(windows))
	}
	if len(s.Lambda.Restraints) != windows {
		sl.ReportError(s.Lambda.Restraints, "lambda_settings.lambda_restraints", "Restraints", "windows", fmt.Sprint(windows))
	}
	if s.SolventSimulation.NReplicas != windows {
		sl.ReportError(s.SolventSimulation.NReplicas, "solvent_simulation_settings.n_replicas", "NReplicas", "nreplicas", fmt.Sprint(windows))
	}
	if s.VacuumSimulation.NReplicas != windows {
		sl.ReportError(s.VacuumSimulation.NReplicas, "vacuum_simulation_settings.n_replicas", "NReplicas", "nreplicas", fmt.Sprint(windows))
	}
}
