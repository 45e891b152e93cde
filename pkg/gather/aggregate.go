// Package gather turns per-repeat results of a network into one free-energy
// estimate per transformation.
package gather

import (
	"errors"
	"fmt"
	"math"

	"github.com/aretw0/asfe/pkg/domain"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownPhase is returned for a successful unit whose simtype is neither vacuum nor solvent.
	ErrUnknownPhase = errors.New("unknown simulation phase")
	// ErrMissingEstimate is returned for a successful unit without an estimate.
	ErrMissingEstimate = errors.New("successful unit has no estimate")
)

// PhaseStats summarizes one phase across repeats, in the unit of its first estimate.
type PhaseStats struct {
	N      int
	Mean   domain.Quantity
	StdDev domain.Quantity
}

// Aggregate is the outcome for one transformation.
type Aggregate struct {
	// Estimate is nil when either phase has no successful unit.
	Estimate *domain.Estimate
	Vacuum   *PhaseStats
	Solvent  *PhaseStats
	// Excluded counts failed units left out of the statistics.
	Excluded int
}

// AggregateResults computes dG = mean(vacuum) − mean(solvent) and combines the
// population standard deviations of both phases in quadrature. The result is
// in the unit of the first vacuum estimate.
func AggregateResults(results []domain.DAGResult) (Aggregate, error) {
	var agg Aggregate
	phases := map[string][]domain.Quantity{}

	for _, r := range results {
		for _, u := range r.UnitResults {
			if !u.OK {
				agg.Excluded++
				continue
			}
			switch u.Outputs.SimType {
			case domain.PhaseVacuum, domain.PhaseSolvent:
			default:
				return Aggregate{}, fmt.Errorf("result %s: %w: %q", r.Key, ErrUnknownPhase, u.Outputs.SimType)
			}
			if u.Outputs.Estimate == nil {
				return Aggregate{}, fmt.Errorf("result %s: %w", r.Key, ErrMissingEstimate)
			}
			phases[u.Outputs.SimType] = append(phases[u.Outputs.SimType], *u.Outputs.Estimate)
		}
	}

	var err error
	if agg.Vacuum, err = phaseStats(phases[domain.PhaseVacuum]); err != nil {
		return Aggregate{}, fmt.Errorf("vacuum: %w", err)
	}
	if agg.Solvent, err = phaseStats(phases[domain.PhaseSolvent]); err != nil {
		return Aggregate{}, fmt.Errorf("solvent: %w", err)
	}
	if agg.Vacuum == nil || agg.Solvent == nil {
		return agg, nil
	}

	unitName := agg.Vacuum.Mean.Unit
	solMean, err := agg.Solvent.Mean.To(unitName)
	if err != nil {
		return Aggregate{}, err
	}
	solSD, err := agg.Solvent.StdDev.To(unitName)
	if err != nil {
		return Aggregate{}, err
	}

	vacSD := agg.Vacuum.StdDev.Magnitude
	agg.Estimate = &domain.Estimate{
		DG:     domain.Q(agg.Vacuum.Mean.Magnitude-solMean.Magnitude, unitName),
		StdDev: domain.Q(math.Sqrt(vacSD*vacSD+solSD.Magnitude*solSD.Magnitude), unitName),
	}
	return agg, nil
}

// phaseStats returns nil for an empty phase.
func phaseStats(estimates []domain.Quantity) (*PhaseStats, error) {
	if len(estimates) == 0 {
		return nil, nil
	}
	unitName := estimates[0].Unit
	values := make([]float64, len(estimates))
	for i, e := range estimates {
		c, err := e.To(unitName)
		if err != nil {
			return nil, err
		}
		values[i] = c.Magnitude
	}
	mean, sd := stat.PopMeanStdDev(values, nil)
	return &PhaseStats{
		N:      len(values),
		Mean:   domain.Q(mean, unitName),
		StdDev: domain.Q(sd, unitName),
	}, nil
}
