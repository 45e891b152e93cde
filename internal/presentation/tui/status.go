package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/requeue"
	"github.com/muesli/termenv"
)

var statusColors = map[domain.TaskStatus]string{
	domain.TaskComplete: "#34d399",
	domain.TaskRunning:  "#60a5fa",
	domain.TaskWaiting:  "#a78bfa",
	domain.TaskError:    "#f87171",
	domain.TaskInvalid:  "#fbbf24",
	domain.TaskDeleted:  "#9ca3af",
}

// PrintRequeue summarizes a re-queue round trip. Status counts are coloured
// when w is a terminal that supports it.
func PrintRequeue(w io.Writer, network domain.ScopedKey, res *requeue.Result) error {
	out := termenv.NewOutput(w)
	if !IsTerminal(w) {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}

	if _, err := fmt.Fprintf(out, "Network %s\n", network.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Requeued %d of %d errored tasks\n", len(res.Requeued), len(res.Errored)); err != nil {
		return err
	}
	for _, st := range domain.TaskStatuses {
		label := out.String(fmt.Sprintf("%-9s", st)).Foreground(out.Color(statusColors[st]))
		if st == domain.TaskError && res.Status[st] > 0 {
			label = label.Bold()
		}
		if _, err := fmt.Fprintf(out, "  %s %d\n", label, res.Status[st]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "  %-9s %d\n", "total", res.Status.Total())
	return err
}
