package gather

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNothingToPlot is returned when no row has an estimate.
var ErrNothingToPlot = errors.New("no complete estimates to plot")

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// WritePlot draws a bar per complete row with its uncertainty. The image
// format follows the extension (png, svg, pdf, ...).
func WritePlot(path string, report *Report) error {
	var names []string
	var values plotter.Values
	var points errorPoints
	for _, row := range report.Rows {
		if row.Estimate == nil {
			continue
		}
		dg, err := row.Estimate.DG.To(domain.KilocaloriePerMole)
		if err != nil {
			return err
		}
		sd, err := row.Estimate.StdDev.To(domain.KilocaloriePerMole)
		if err != nil {
			return err
		}
		x := float64(len(values))
		names = append(names, row.Name)
		values = append(values, dg.Magnitude)
		points.XYs = append(points.XYs, plotter.XY{X: x, Y: dg.Magnitude})
		points.YErrors = append(points.YErrors, struct{ Low, High float64 }{sd.Magnitude, sd.Magnitude})
	}
	if len(values) == 0 {
		return ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = "Solvation free energies"
	p.Y.Label.Text = "dG (kcal/mol)"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)

	errBars, err := plotter.NewYErrorBars(points)
	if err != nil {
		return fmt.Errorf("failed to build error bars: %w", err)
	}

	p.Add(bars, errBars)
	p.NominalX(names...)

	width := vg.Length(len(values))*vg.Points(22) + 2*vg.Inch
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	wt, err := p.WriterTo(width, 4*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return file.WriteAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}
