// Package report renders resolution outcomes: enriched output columns,
// CSV/XLSX export and the end-of-run statistics block.
package report

import (
	"fmt"
	"io"
)

// Progress receives run updates: phase transitions and row counts. Row
// callbacks arrive throttled (every few rows and at completion), so
// implementations can print directly.
type Progress interface {
	Phase(msg string)
	Step(done, total int)
}

type nopProgress struct{}

func (nopProgress) Phase(string)  {}
func (nopProgress) Step(int, int) {}

// Nop returns a Progress that discards everything.
func Nop() Progress { return nopProgress{} }

type consoleProgress struct {
	w io.Writer
}

// Console returns a Progress that prints phases on their own line and
// rewrites the row counter in place.
func Console(w io.Writer) Progress { return &consoleProgress{w: w} }

func (c *consoleProgress) Phase(msg string) {
	fmt.Fprintf(c.w, "%s\n", msg)
}

func (c *consoleProgress) Step(done, total int) {
	fmt.Fprintf(c.w, "\r  %d/%d lignes traitées", done, total)
	if done == total {
		fmt.Fprintln(c.w)
	}
}
