package domain

import "time"

// Phases of an absolute solvation free-energy calculation.
const (
	PhaseVacuum  = "vacuum"
	PhaseSolvent = "solvent"
)

// UnitOutputs are the outputs of one protocol unit that the gatherer reads.
type UnitOutputs struct {
	SimType  string    `json:"simtype"`
	Estimate *Quantity `json:"unit_estimate,omitempty"`
}

// UnitResult is the outcome of one protocol unit (one phase of one repeat).
type UnitResult struct {
	Name    string      `json:"name,omitempty"`
	OK      bool        `json:"ok"`
	Outputs UnitOutputs `json:"outputs"`
}

// DAGResult is the raw output bundle of one repeat of a transformation.
// Without full bundles only Key is populated.
type DAGResult struct {
	Key         string       `json:"key"`
	UnitResults []UnitResult `json:"protocol_unit_results,omitempty"`
}

// Estimate is an aggregated free energy with its uncertainty.
type Estimate struct {
	DG     Quantity
	StdDev Quantity
}

// GatherRun is a summary of one gatherer run, kept to report progress between runs.
type GatherRun struct {
	ID        string    `json:"id"`
	Network   string    `json:"network"`
	Timestamp time.Time `json:"timestamp"`
	// Resolved holds the transformation keys that had a complete estimate.
	Resolved []string `json:"resolved"`
	Absent   int      `json:"absent"`
}
