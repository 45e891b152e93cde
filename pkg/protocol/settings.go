package protocol

import (
	"math"

	"github.com/aretw0/asfe/pkg/domain"
)

// Settings holds every knob of the absolute solvation free-energy protocol.
// Field names follow the service's settings schema.
type Settings struct {
	ProtocolRepeats int `json:"protocol_repeats" yaml:"protocol_repeats" mapstructure:"protocol_repeats" validate:"gte=1"`

	Thermo            ThermoSettings               `json:"thermo_settings" yaml:"thermo_settings" mapstructure:"thermo_settings"`
	SolventForcefield ForcefieldSettings           `json:"solvent_forcefield_settings" yaml:"solvent_forcefield_settings" mapstructure:"solvent_forcefield_settings"`
	VacuumForcefield  ForcefieldSettings           `json:"vacuum_forcefield_settings" yaml:"vacuum_forcefield_settings" mapstructure:"vacuum_forcefield_settings"`
	Solvation         PackmolSolvationSettings     `json:"solvation_settings" yaml:"solvation_settings" mapstructure:"solvation_settings"`
	Integrator        IntegratorSettings           `json:"integrator_settings" yaml:"integrator_settings" mapstructure:"integrator_settings"`
	SolventEquil      EquilibrationSettings        `json:"solvent_equil_simulation_settings" yaml:"solvent_equil_simulation_settings" mapstructure:"solvent_equil_simulation_settings"`
	VacuumEquil       EquilibrationSettings        `json:"vacuum_equil_simulation_settings" yaml:"vacuum_equil_simulation_settings" mapstructure:"vacuum_equil_simulation_settings"`
	SolventSimulation MultiStateSimulationSettings `json:"solvent_simulation_settings" yaml:"solvent_simulation_settings" mapstructure:"solvent_simulation_settings"`
	VacuumSimulation  MultiStateSimulationSettings `json:"vacuum_simulation_settings" yaml:"vacuum_simulation_settings" mapstructure:"vacuum_simulation_settings"`
	Lambda            LambdaSettings               `json:"lambda_settings" yaml:"lambda_settings" mapstructure:"lambda_settings"`
	PartialCharge     PartialChargeSettings        `json:"partial_charge_settings" yaml:"partial_charge_settings" mapstructure:"partial_charge_settings"`
}

type ThermoSettings struct {
	Temperature domain.Quantity `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Pressure    domain.Quantity `json:"pressure" yaml:"pressure" mapstructure:"pressure"`
}

type ForcefieldSettings struct {
	Forcefields  []string `json:"forcefields" yaml:"forcefields" mapstructure:"forcefields" validate:"min=1,dive,required"`
	HydrogenMass float64  `json:"hydrogen_mass" yaml:"hydrogen_mass" mapstructure:"hydrogen_mass" validate:"gt=0"`
}

// PackmolSolvationSettings solvates either with a fixed number of solvent
// molecules or with a padding around the solute. Exactly one is set.
type PackmolSolvationSettings struct {
	NumberOfSolventMolecules int              `json:"number_of_solvent_molecules" yaml:"number_of_solvent_molecules" mapstructure:"number_of_solvent_molecules" validate:"gte=0"`
	SolventPadding           *domain.Quantity `json:"solvent_padding" yaml:"solvent_padding" mapstructure:"solvent_padding"`
}

type IntegratorSettings struct {
	Timestep domain.Quantity `json:"timestep" yaml:"timestep" mapstructure:"timestep"`
	// BarostatFrequency is in integration steps.
	BarostatFrequency int `json:"barostat_frequency" yaml:"barostat_frequency" mapstructure:"barostat_frequency" validate:"gte=1"`
}

// EquilibrationSettings drive the non-alchemical equilibration that runs first.
type EquilibrationSettings struct {
	EquilibrationLengthNVT domain.Quantity `json:"equilibration_length_nvt" yaml:"equilibration_length_nvt" mapstructure:"equilibration_length_nvt"`
	EquilibrationLength    domain.Quantity `json:"equilibration_length" yaml:"equilibration_length" mapstructure:"equilibration_length"`
	ProductionLength       domain.Quantity `json:"production_length" yaml:"production_length" mapstructure:"production_length"`
}

// MultiStateSimulationSettings drive the alchemical replica-exchange stage.
type MultiStateSimulationSettings struct {
	EquilibrationLength domain.Quantity `json:"equilibration_length" yaml:"equilibration_length" mapstructure:"equilibration_length"`
	ProductionLength    domain.Quantity `json:"production_length" yaml:"production_length" mapstructure:"production_length"`
	TimePerIteration    domain.Quantity `json:"time_per_iteration" yaml:"time_per_iteration" mapstructure:"time_per_iteration"`
	NReplicas           int             `json:"n_replicas" yaml:"n_replicas" mapstructure:"n_replicas" validate:"gte=2"`
}

// LambdaSettings is the alchemical schedule as parallel windows.
type LambdaSettings struct {
	Elec       []float64 `json:"lambda_elec" yaml:"lambda_elec" mapstructure:"lambda_elec" validate:"min=2,dive,gte=0,lte=1"`
	VDW        []float64 `json:"lambda_vdw" yaml:"lambda_vdw" mapstructure:"lambda_vdw" validate:"min=2,dive,gte=0,lte=1"`
	Restraints []float64 `json:"lambda_restraints" yaml:"lambda_restraints" mapstructure:"lambda_restraints" validate:"min=2,dive,gte=0,lte=1"`
}

// PartialChargeSettings describe the charges the workers assign to each molecule.
type PartialChargeSettings struct {
	Method            string `json:"partial_charge_method" yaml:"partial_charge_method" mapstructure:"partial_charge_method" validate:"oneof=am1bcc am1bccelf10 nagl espaloma gasteiger"`
	OffToolkitBackend string `json:"off_toolkit_backend" yaml:"off_toolkit_backend" mapstructure:"off_toolkit_backend" validate:"oneof=ambertools openeye rdkit"`
	// NumberOfConformers of 0 lets the toolkit pick.
	NumberOfConformers int `json:"number_of_conformers" yaml:"number_of_conformers" mapstructure:"number_of_conformers" validate:"gte=0"`
}

// Default returns the settings used for solvation campaigns.
// Repeats is 1 because the service runs repeats as separate tasks.
func Default() Settings {
	ps := func(v float64) domain.Quantity { return domain.Q(v, domain.Picosecond) }

	// Windows run electrostatics off first, then sterics.
	elec := make([]float64, 26)
	vdw := make([]float64, 26)
	restraints := make([]float64, 26)
	for i := range elec {
		switch {
		case i <= 5:
			elec[i] = float64(i) * 0.2
		default:
			elec[i] = 1.0
			vdw[i] = float64(i-5) * 0.05
		}
	}
	// Rounded so the document shows 0.6, not 0.6000000000000001.
	for i := range elec {
		elec[i] = math.Round(elec[i]*100) / 100
		vdw[i] = math.Round(vdw[i]*100) / 100
	}

	return Settings{
		ProtocolRepeats: 1,
		Thermo: ThermoSettings{
			Temperature: domain.Q(298.15, domain.Kelvin),
			Pressure:    domain.Q(1, domain.Bar),
		},
		SolventForcefield: ForcefieldSettings{
			Forcefields:  []string{"openff-2.2.1.offxml"},
			HydrogenMass: 1.00784,
		},
		VacuumForcefield: ForcefieldSettings{
			Forcefields:  []string{"openff-2.2.1.offxml"},
			HydrogenMass: 1.00784,
		},
		Solvation: PackmolSolvationSettings{
			NumberOfSolventMolecules: 1000,
		},
		Integrator: IntegratorSettings{
			Timestep:          domain.Q(2, domain.Femtosecond),
			BarostatFrequency: 25,
		},
		SolventEquil: EquilibrationSettings{
			EquilibrationLengthNVT: ps(100),
			EquilibrationLength:    ps(100),
			ProductionLength:       ps(100),
		},
		VacuumEquil: EquilibrationSettings{
			EquilibrationLengthNVT: ps(0), // no NVT stage in vacuum
			EquilibrationLength:    ps(100),
			ProductionLength:       ps(100),
		},
		SolventSimulation: MultiStateSimulationSettings{
			EquilibrationLength: ps(200),
			ProductionLength:    ps(2000),
			TimePerIteration:    ps(1),
			NReplicas:           26,
		},
		VacuumSimulation: MultiStateSimulationSettings{
			EquilibrationLength: ps(200),
			ProductionLength:    ps(2000),
			TimePerIteration:    ps(1),
			NReplicas:           26,
		},
		Lambda: LambdaSettings{
			Elec:       elec,
			VDW:        vdw,
			Restraints: restraints,
		},
		PartialCharge: PartialChargeSettings{
			Method:             "am1bccelf10",
			OffToolkitBackend:  "openeye",
			NumberOfConformers: 0,
		},
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	c := s
	c.SolventForcefield.Forcefields = append([]string(nil), s.SolventForcefield.Forcefields...)
	c.VacuumForcefield.Forcefields = append([]string(nil), s.VacuumForcefield.Forcefields...)
	if s.Solvation.SolventPadding != nil {
		p := *s.Solvation.SolventPadding
		c.Solvation.SolventPadding = &p
	}
	c.Lambda.Elec = append([]float64(nil), s.Lambda.Elec...)
	c.Lambda.VDW = append([]float64(nil), s.Lambda.VDW...)
	c.Lambda.Restraints = append([]float64(nil), s.Lambda.Restraints...)
	return c
}
