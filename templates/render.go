// Package templates renders the HTML fragments swapped in by HTMX.
package templates

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s HTML-escaped.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// rawf formats into raw markup. Every argument is escaped.
func (h *htmlWriter) rawf(format string, args ...any) {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = templ.EscapeString(fmt.Sprint(a))
	}
	h.raw(fmt.Sprintf(format, escaped...))
}
