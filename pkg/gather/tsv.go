package gather

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/domain"
)

// Header is the first line of a results file.
const Header = "molecule\tdG (kcal/mol)\tstdev (kcal/mol)"

// Absent marks both numeric fields of a row without an estimate.
const Absent = "None"

// WriteTSV writes the header and one row per transformation. Estimates are
// converted to kcal/mol and written as bare magnitudes.
func WriteTSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return err
	}
	for _, row := range rows {
		dg, sd := Absent, Absent
		if row.Estimate != nil {
			v, err := row.Estimate.DG.To(domain.KilocaloriePerMole)
			if err != nil {
				return fmt.Errorf("%s: %w", row.Name, err)
			}
			e, err := row.Estimate.StdDev.To(domain.KilocaloriePerMole)
			if err != nil {
				return fmt.Errorf("%s: %w", row.Name, err)
			}
			dg, sd = FormatMagnitude(v.Magnitude), FormatMagnitude(e.Magnitude)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", row.Name, dg, sd); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatMagnitude renders the shortest decimal that parses back to v.
func FormatMagnitude(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteResultsFile replaces path with the report's table.
func WriteResultsFile(path string, report *Report) error {
	return file.WriteAtomic(path, func(w io.Writer) error {
		return WriteTSV(w, report.Rows)
	})
}
