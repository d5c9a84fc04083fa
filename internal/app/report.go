package app

import (
	"bufio"
	"fmt"
	"io"

	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/ui/output"
	"go.trai.ch/harvest/internal/ui/style"
)

// PrintReport writes the summary of a batch to w.
// Colors are only emitted when w is a terminal.
func PrintReport(w io.Writer, r *domain.Report) error {
	lg := output.NewRenderer(w)
	bw := bufio.NewWriter(w)

	header := lg.NewStyle().Bold(true).Foreground(style.Iris)
	check := lg.NewStyle().Foreground(style.Green).Render(style.Check)
	cross := lg.NewStyle().Foreground(style.Red).Render(style.Cross)
	done := lg.NewStyle().Foreground(style.Green)

	_, _ = fmt.Fprintln(bw, "\n"+header.Render("=== Build Results ==="))
	_, _ = fmt.Fprintf(bw, "Total processed: %d\n", r.Total())
	_, _ = fmt.Fprintf(bw, "Successful: %d\n", len(r.Successful()))
	_, _ = fmt.Fprintf(bw, "Failed: %d\n", len(r.Failed()))
	_, _ = fmt.Fprintf(bw, "Time taken: %dms\n", r.Elapsed.Milliseconds())

	if ok := r.Successful(); len(ok) > 0 {
		_, _ = fmt.Fprintln(bw, "\nSuccessful builds:")
		for _, res := range ok {
			_, _ = fmt.Fprintf(bw, "  %s %s\n", check, res.ID)
		}
	}

	if failed := r.Failed(); len(failed) > 0 {
		_, _ = fmt.Fprintln(bw, "\nFailed builds:")
		for _, res := range failed {
			_, _ = fmt.Fprintf(bw, "  %s %s: %s\n", cross, res.ID, res.Message())
		}
	}

	if r.OK() {
		_, _ = fmt.Fprintln(bw, "\n"+done.Render("All builds completed successfully!"))
	}

	return bw.Flush()
}
