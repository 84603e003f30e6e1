package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bisongo/bisongo/config"
	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/engine"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
	"github.com/bisongo/bisongo/precgraph"
	"github.com/bisongo/bisongo/symbol"
)

var buildFlags = struct {
	configPath *string
	output     *string
	text       *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "build <description.json>",
		Short: "Finalize a symbol table and precedence graph from a JSON description",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildFlags.configPath = cmd.Flags().StringP("config", "c", "", "path to a TOML configuration file")
	buildFlags.output = cmd.Flags().StringP("output", "o", "", "directory the report and DOT files are written to (default: alongside the description file)")
	buildFlags.text = cmd.Flags().Bool("text", false, "print a human-readable report to stdout instead of writing a JSON report file")
	rootCmd.AddCommand(cmd)
}

func assocFromString(s string) symbol.Assoc {
	switch s {
	case "left":
		return symbol.AssocLeft
	case "right":
		return symbol.AssocRight
	case "nonassoc":
		return symbol.AssocNonAssoc
	case "precedence":
		return symbol.AssocPrecedence
	default:
		return symbol.AssocUndef
	}
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bisongo build panicked: %v", r)
		}
	}()

	desc, err := readDescription(args[0])
	if err != nil {
		return err
	}

	cfg := config.Default()
	if *buildFlags.configPath != "" {
		cfg, err = config.Load(*buildFlags.configPath)
		if err != nil {
			return err
		}
	}

	pool := intern.NewPool()
	col := diag.NewCollector()
	e := engine.NewEngine(pool, col)

	for _, td := range desc.Tokens {
		sym, err := e.Symbols.Get(td.Name, loc.Position{})
		if err != nil {
			return err
		}
		e.Symbols.ClassSet(sym, symbol.ClassToken, loc.Position{}, true)
		if td.Type != "" {
			e.Symbols.TypeSet(sym, e.Types, td.Type, loc.Position{})
		}
		if assoc := assocFromString(td.Associativity); assoc != symbol.AssocUndef {
			e.Symbols.PrecedenceSet(sym, td.Precedence, assoc, loc.Position{})
		}
		if td.UserNumber != nil {
			e.Symbols.UserTokenNumberSet(sym, *td.UserNumber, loc.Position{})
		}
		if td.Destructor != "" {
			e.Symbols.CodePropsSet(sym, symbol.PropDestructor, td.Destructor, loc.Position{})
		}
		if td.Printer != "" {
			e.Symbols.CodePropsSet(sym, symbol.PropPrinter, td.Printer, loc.Position{})
		}
		if td.Alias != "" {
			aliasSym, err := e.Symbols.Get(td.Alias, loc.Position{})
			if err != nil {
				return err
			}
			e.Symbols.MakeAlias(sym, aliasSym, loc.Position{})
		}
	}

	for _, nd := range desc.NonTerminals {
		sym, err := e.Symbols.Get(nd.Name, loc.Position{})
		if err != nil {
			return err
		}
		e.Symbols.ClassSet(sym, symbol.ClassNTerm, loc.Position{}, true)
		if nd.Type != "" {
			e.Symbols.TypeSet(sym, e.Types, nd.Type, loc.Position{})
		}
		if nd.Destructor != "" {
			e.Symbols.CodePropsSet(sym, symbol.PropDestructor, nd.Destructor, loc.Position{})
		}
		if nd.Printer != "" {
			e.Symbols.CodePropsSet(sym, symbol.PropPrinter, nd.Printer, loc.Position{})
		}
	}

	for _, ty := range desc.Types {
		t := e.Types.Get(ty.Name, loc.Position{})
		if ty.Destructor != "" {
			e.Types.CodePropsSet(t, symbol.PropDestructor, ty.Destructor, loc.Position{})
		}
		if ty.Printer != "" {
			e.Types.CodePropsSet(t, symbol.PropPrinter, ty.Printer, loc.Position{})
		}
	}

	if desc.Start != "" {
		start, err := e.Symbols.Get(desc.Start, loc.Position{})
		if err != nil {
			return err
		}
		e.SetStartSymbol(start, loc.Position{})
	}

	// Precedence relations are registered only once every token has been
	// declared: Graph.ensureInit fixes the node count on its first call, so
	// registering against a partial token count would leave later tokens
	// with no node to occupy.
	nodeNames := make(map[precgraph.NodeID]string)
	resolveNode := func(name string) (precgraph.NodeID, error) {
		sym, err := e.Symbols.Get(name, loc.Position{})
		if err != nil {
			return precgraph.NilNode, err
		}
		id := precgraph.NodeID(sym.Number())
		nodeNames[id] = sym.Text()
		return id, nil
	}
	nsyms := e.Symbols.NTokens()
	for _, pd := range desc.Precedence {
		hi, err := resolveNode(pd.Higher)
		if err != nil {
			return err
		}
		lo, err := resolveNode(pd.Lower)
		if err != nil {
			return err
		}
		e.Prec.RegisterPrecedence(nsyms, hi, lo)
	}
	for _, ad := range desc.Associativity {
		i, err := resolveNode(ad.I)
		if err != nil {
			return err
		}
		j, err := resolveNode(ad.J)
		if err != nil {
			return err
		}
		e.Prec.RegisterAssoc(nsyms, i, j)
	}

	if err := e.Finalize(); err != nil {
		return err
	}

	report := buildReport(e, col, pool)

	if *buildFlags.text {
		return writeReport(os.Stdout, report)
	}

	outDir := *buildFlags.output
	if outDir == "" {
		outDir = filepath.Dir(args[0])
	}
	reportPath := cfg.Output.ReportPath
	if reportPath == "" || *buildFlags.output != "" {
		reportPath = filepath.Join(outDir, "report.json")
	}
	relationDotPath := cfg.Output.RelationDotPath
	if relationDotPath == "" || *buildFlags.output != "" {
		relationDotPath = filepath.Join(outDir, "precedence.dot")
	}
	reductionDotPath := cfg.Output.TransitiveReductionDotPath
	if reductionDotPath == "" || *buildFlags.output != "" {
		reductionDotPath = filepath.Join(outDir, "precedence_reduced.dot")
	}

	if err := writeJSONFile(reportPath, report); err != nil {
		return err
	}

	namer := func(id precgraph.NodeID) string {
		if name, ok := nodeNames[id]; ok {
			return name
		}
		return fmt.Sprintf("group%d", id)
	}
	palette := cfg.Palette.ToPrecgraph()
	if err := writeDotFile(relationDotPath, "precedence", e.Prec.WriteRelationDot, namer, palette); err != nil {
		return err
	}
	if err := writeDotFile(reductionDotPath, "precedence_reduced", e.Prec.WriteTransitiveReductionDot, namer, palette); err != nil {
		return err
	}

	if col.HasErrors() {
		return fmt.Errorf("finalization completed with errors; see %s", reportPath)
	}
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type dotWriterFunc func(w io.Writer, name string, namer precgraph.Namer, p precgraph.Palette) error

func writeDotFile(path, name string, write dotWriterFunc, namer precgraph.Namer, p precgraph.Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	defer f.Close()
	return write(f, name, namer, p)
}
