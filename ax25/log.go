package ax25

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Name:	log
 *
 * Purpose:	Package-wide logger construction. Replaces the reference
 *		project's textcolor.go (an ANSI-escape stub marked
 *		"// TODO KG", never wired to a real logging library) with
 *		charmbracelet/log, the structured logger already in the
 *		reference project's go.mod.
 *
 *------------------------------------------------------------------*/

// NewLogger builds a charmbracelet/log logger writing to w (os.Stderr
// if w is nil), prefixed so link log lines are identifiable when
// several Engines run in one process.
func NewLogger(w io.Writer, prefix string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return logger
}
