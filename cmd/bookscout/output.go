package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"bookscout/internal/report"
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printReports renders reports as a table on terminals and as plain
// report lines when the output is piped.
func printReports(out io.Writer, reports []report.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(out, "No books matched.")
		return
	}
	if stdoutIsTerminal() {
		fmt.Fprintln(out, report.Table(reports))
		return
	}
	for _, r := range reports {
		fmt.Fprintln(out, r.Line())
	}
}
