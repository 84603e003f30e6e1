package main

import (
	"fmt"
	"io"
	"text/template"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/engine"
	"github.com/bisongo/bisongo/intern"
)

// SymbolReport is one row of the packed symbol table, in its final,
// post-finalize form.
type SymbolReport struct {
	Name            string `json:"name"`
	Class           string `json:"class"`
	Number          int    `json:"number"`
	UserTokenNumber *int   `json:"user_token_number,omitempty"`
	Type            string `json:"type,omitempty"`
	Alias           string `json:"alias,omitempty"`
}

// DiagnosticReport is the JSON-facing mirror of diag.Diagnostic.
type DiagnosticReport struct {
	Severity string `json:"severity"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
	Indent   int    `json:"indent,omitempty"`
}

// Report is bisongo build's complete output: the packed symbol table,
// token translation table, and every diagnostic raised along the way.
// Modeled on spec/grammar/description.go's Report shape: one JSON
// document a downstream tool (a table builder, or a human via bisongo
// build --text) can consume without re-running finalization.
type Report struct {
	NTokens            int                 `json:"ntokens"`
	NVars              int                 `json:"nvars"`
	NSyms              int                 `json:"nsyms"`
	MaxUserTokenNumber int                 `json:"max_user_token_number"`
	StartSymbol        string              `json:"start_symbol"`
	Symbols            []*SymbolReport     `json:"symbols"`
	TokenTranslations  []int               `json:"token_translations"`
	Diagnostics        []*DiagnosticReport `json:"diagnostics"`
	HasErrors          bool                `json:"has_errors"`
}

func buildReport(e *engine.Engine, col *diag.Collector, pool intern.Pool) *Report {
	r := &Report{
		NTokens:            e.NTokens,
		NVars:              e.NVars,
		NSyms:              e.NSyms,
		MaxUserTokenNumber: e.MaxUserTokenNumber,
		TokenTranslations:  e.TokenTranslations,
		HasErrors:          col.HasErrors(),
	}
	if e.StartSymbol >= 0 {
		r.StartSymbol = e.Symbols.Symbol(e.StartSymbol).Text()
	}

	for _, s := range e.Packed {
		sr := &SymbolReport{
			Name:   s.Text(),
			Class:  s.Class().String(),
			Number: s.Number(),
			Type:   s.TypeName(pool),
		}
		if u := s.UserTokenNumber(); u >= 0 {
			sr.UserTokenNumber = &u
		}
		if s.HasAlias() {
			sr.Alias = e.Symbols.Symbol(s.Alias()).Text()
		}
		r.Symbols = append(r.Symbols, sr)
	}

	for _, d := range col.Sorted() {
		dr := &DiagnosticReport{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Indent:   d.Indent,
		}
		if !d.Location.Zero() {
			dr.Location = d.Location.String()
		}
		r.Diagnostics = append(r.Diagnostics, dr)
	}

	return r
}

const reportTemplate = `symbols: {{ len .Symbols }} (tokens: {{ .NTokens }}, nonterminals: {{ .NVars }})
start symbol: {{ .StartSymbol }}
max user token number: {{ .MaxUserTokenNumber }}

{{ range .Symbols }}{{ printSymbol . }}
{{ end }}
{{ if .Diagnostics }}diagnostics:
{{ range .Diagnostics }}{{ printDiagnostic . }}
{{ end }}{{ end }}`

// writeReport renders r as a human-readable report, the same
// text/template idiom cmd/vartan's describe subcommand uses for its own
// state/conflict report.
func writeReport(w io.Writer, r *Report) error {
	funcs := template.FuncMap{
		"printSymbol": func(s *SymbolReport) string {
			extra := ""
			if s.UserTokenNumber != nil {
				extra += fmt.Sprintf(" user=%d", *s.UserTokenNumber)
			}
			if s.Type != "" {
				extra += fmt.Sprintf(" <%s>", s.Type)
			}
			if s.Alias != "" {
				extra += fmt.Sprintf(" alias=%s", s.Alias)
			}
			return fmt.Sprintf("  [%4d] %-8s %s%s", s.Number, s.Class, s.Name, extra)
		},
		"printDiagnostic": func(d *DiagnosticReport) string {
			prefix := ""
			for i := 0; i < d.Indent; i++ {
				prefix += "  "
			}
			if d.Location != "" {
				return fmt.Sprintf("  %s%s: %s: %s", prefix, d.Location, d.Severity, d.Message)
			}
			return fmt.Sprintf("  %s%s: %s", prefix, d.Severity, d.Message)
		},
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
