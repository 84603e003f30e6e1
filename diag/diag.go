// Package diag is the diagnostic sink collaborator: bison's "complain".
// It never panics on a caller's behalf and never terminates the process;
// fatal conditions are surfaced to callers as ordinary Go errors so they
// can decide how to exit, the same discipline vartan's verr.SpecError
// follows.
package diag

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/google/uuid"

	"github.com/bisongo/bisongo/loc"
)

// Severity classifies a Diagnostic, ordered from most to least severe.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityComplaint
	SeverityWyacc
	SeverityWprecedence
	SeverityWother
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal error"
	case SeverityComplaint:
		return "error"
	case SeverityWyacc:
		return "warning (yacc)"
	case SeverityWprecedence:
		return "warning (precedence)"
	case SeverityWother:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is one recorded complaint, warning, or fatal error.
type Diagnostic struct {
	Severity Severity
	Location loc.Position
	Message  string
	// Indent is non-zero for a secondary "previous declaration" note that
	// belongs to the primary diagnostic immediately preceding it.
	Indent int
}

func (d Diagnostic) String() string {
	prefix := ""
	for i := 0; i < d.Indent; i++ {
		prefix += "  "
	}
	if d.Location.Zero() {
		return fmt.Sprintf("%s%v: %v", prefix, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s%v: %v: %v", prefix, d.Location, d.Severity, d.Message)
}

// Sink accepts diagnostics as the grammar-parsing and finalization phases
// produce them.
type Sink interface {
	Complain(sev Severity, at loc.Position, format string, args ...interface{})
	// ComplainIndent is the two-location form used for "previous
	// declaration" notes: it emits the primary diagnostic at `at` and a
	// sub-indented note at `prev`, swapping the two (each message keeps its
	// own location) when `prev` is later in source order than `at`, so the
	// primary always sits at the later location.
	ComplainIndent(sev Severity, at loc.Position, prev loc.Position, format string, prevFormat string)
}

// Collector is the default in-process Sink: it only accumulates, it never
// writes anywhere on its own.
type Collector struct {
	RunID       uuid.UUID
	Diagnostics []Diagnostic
}

// NewCollector returns a Collector tagged with a fresh run-correlation id,
// so diagnostics from distinct finalize() runs collected into one aggregated
// report (e.g. a batch tool processing many grammars) can be told apart.
func NewCollector() *Collector {
	return &Collector{RunID: uuid.New()}
}

func (c *Collector) Complain(sev Severity, at loc.Position, format string, args ...interface{}) {
	c.Diagnostics = append(c.Diagnostics, Diagnostic{
		Severity: sev,
		Location: at,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Collector) ComplainIndent(sev Severity, at loc.Position, prev loc.Position, format string, prevFormat string) {
	primaryLoc, primaryMsg, noteLoc, noteMsg := at, format, prev, prevFormat
	if !prev.Zero() && !at.Zero() && prev.Compare(at) > 0 {
		// The "previous" location is the later one: swap so the
		// (printed-first) primary sits at the later location and the
		// indented note at the earlier one.
		primaryLoc, noteLoc = noteLoc, primaryLoc
		primaryMsg, noteMsg = noteMsg, primaryMsg
	}
	c.Diagnostics = append(c.Diagnostics,
		Diagnostic{Severity: sev, Location: primaryLoc, Message: primaryMsg},
		Diagnostic{Severity: SeverityWother, Location: noteLoc, Message: fmt.Sprintf("previous declaration: %s", noteMsg), Indent: 1},
	)
}

// HasFatal reports whether any recorded diagnostic is fatal.
func (c *Collector) HasFatal() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// HasErrors reports whether any recorded diagnostic is fatal or a complaint.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityFatal || d.Severity == SeverityComplaint {
			return true
		}
	}
	return false
}

// Sorted returns the diagnostics ordered by location, keeping each
// secondary note immediately after its primary.
func (c *Collector) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(c.Diagnostics))
	copy(out, c.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Indent != out[j].Indent {
			return false
		}
		return out[i].Location.Compare(out[j].Location) < 0
	})
	return out
}

const reportTemplate = `{{ range . }}{{ . }}
{{ end }}`

// WriteReport renders diagnostics with text/template, the same rendering
// idiom cmd/vartan's describe and show subcommands use for other reports.
func WriteReport(w io.Writer, diags []Diagnostic) error {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, diags)
}
