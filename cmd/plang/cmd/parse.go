package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Plang source and print its AST",
	Long: `Parse a .plang file (or stdin) and print its abstract syntax tree as
deterministic JSON, without resolving imports or type-checking.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	prog, perrs := parser.Parse(src)
	if len(perrs) > 0 {
		printReports(perrs, src)
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	fmt.Println(ast.Dump(prog))
	return nil
}
