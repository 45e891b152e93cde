package gather

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics writes the report as a Prometheus textfile, for the node
// exporter's textfile collector.
func WriteMetrics(path string, report *Report) error {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"network": report.Network.String()}

	transformations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "asfe",
		Name:        "transformations",
		Help:        "Transformations of the network by estimate state.",
		ConstLabels: labels,
	}, []string{"state"})
	excluded := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "asfe",
		Name:        "excluded_units",
		Help:        "Failed protocol units left out of the estimates.",
		ConstLabels: labels,
	})
	repeats := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "asfe",
		Name:        "repeats",
		Help:        "Finished repeats returned by the service.",
		ConstLabels: labels,
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "asfe",
		Name:        "gather_timestamp_seconds",
		Help:        "Unix time of the gatherer run.",
		ConstLabels: labels,
	})

	for _, c := range []prometheus.Collector{transformations, excluded, repeats, lastRun} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}

	transformations.WithLabelValues("complete").Set(float64(report.Complete()))
	transformations.WithLabelValues("absent").Set(float64(report.Absent()))
	excluded.Set(float64(report.Excluded()))
	n := 0
	for _, row := range report.Rows {
		n += row.Repeats
	}
	repeats.Set(float64(n))
	lastRun.Set(float64(report.Timestamp.Unix()))

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
