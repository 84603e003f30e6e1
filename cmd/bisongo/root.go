package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bisongo",
	Short: "Build a symbol table and precedence graph from a grammar description",
	Long: `bisongo provides one feature:
- Finalizes a JSON description of a grammar's tokens, nonterminals, and
  precedence declarations into a packed symbol table, a token translation
  table, and a precedence relation graph, the way a parser generator's
  front end prepares a grammar for table construction.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
