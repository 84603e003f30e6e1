// Package config loads bisongo's CLI configuration. cmd/vartan takes
// flags only; this repository additionally accepts a TOML file for
// settings that aren't naturally one-shot flags, matching cobra's usual
// precedence: flags override the file, the file overrides these
// defaults.
package config

import (
	"github.com/BurntSushi/toml"

	"github.com/bisongo/bisongo/precgraph"
)

// Palette is the TOML-facing mirror of precgraph.Palette: plain strings so
// it round-trips through a config file without the caller needing to know
// about the precgraph package.
type Palette struct {
	BothDegreeOne string `toml:"both_degree_one"`
	TailDegreeOne string `toml:"tail_degree_one"`
	HeadDegreeOne string `toml:"head_degree_one"`
	Default       string `toml:"default"`
	ReductionEdge string `toml:"reduction_edge"`
}

// ToPrecgraph converts the config-file representation into the value
// precgraph's DOT writers take.
func (p Palette) ToPrecgraph() precgraph.Palette {
	return precgraph.Palette{
		BothDegreeOne: p.BothDegreeOne,
		TailDegreeOne: p.TailDegreeOne,
		HeadDegreeOne: p.HeadDegreeOne,
		Default:       p.Default,
		ReductionEdge: p.ReductionEdge,
	}
}

// Output controls where bisongo build writes its results.
type Output struct {
	ReportPath                 string `toml:"report_path"`
	RelationDotPath            string `toml:"relation_dot_path"`
	TransitiveReductionDotPath string `toml:"transitive_reduction_dot_path"`
}

// Config is bisongo's full configuration, assembled from a TOML file (if
// given) layered over Default().
type Config struct {
	// POSIX is read from the file but not consulted by bisongo build: the
	// POSIX Yacc dash warning and the error token's user token number 256
	// are applied whatever its value.
	POSIX bool `toml:"posix"`

	Palette Palette `toml:"palette"`
	Output  Output  `toml:"output"`
}

// Default returns the configuration used when no file is given: POSIX
// set to true, bison's literal degree-based DOT colors, and report/DOT
// files written alongside the input description.
func Default() *Config {
	p := precgraph.DefaultPalette()
	return &Config{
		POSIX: true,
		Palette: Palette{
			BothDegreeOne: p.BothDegreeOne,
			TailDegreeOne: p.TailDegreeOne,
			HeadDegreeOne: p.HeadDegreeOne,
			Default:       p.Default,
			ReductionEdge: p.ReductionEdge,
		},
		Output: Output{
			ReportPath:                 "",
			RelationDotPath:            "",
			TransitiveReductionDotPath: "",
		},
	}
}

// Load reads a TOML configuration file and layers it over Default(). A key
// omitted from the file leaves the default in place, while a key given in
// the file replaces it even with a zero value, the same "file overrides defaults, not the other way around"
// precedence cobra flags get elsewhere in this CLI.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
