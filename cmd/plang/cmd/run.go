package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/plang-lang/plang/internal/ast"
	"github.com/plang-lang/plang/internal/errors"
	"github.com/plang-lang/plang/internal/evaluator"
)

var (
	dumpAST  bool
	showType bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Lex, parse, validate and evaluate a Plang file",
	Long: `Run a .plang program end to end: resolve its imports, type-check it,
then evaluate it and print its result.

If no file is given, the program is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the validated AST before evaluating")
	runCmd.Flags().BoolVar(&showType, "show-type", false, "print the program's static type before evaluating")
}

func runRun(_ *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	start := time.Now()
	p := newPipeline(scriptDirOf(path))

	prog, reports, err := p.parseAndImport(src)
	if err != nil {
		printReports(reports, src)
		return err
	}
	printReports(reports, src)

	prog, resultType, verrs := p.validate(prog)
	if len(verrs) > 0 {
		printReports(verrs, src)
		return fmt.Errorf("type checking failed with %d error(s)", len(verrs))
	}

	if showType {
		fmt.Fprintf(os.Stderr, "%s %s\n", cyan("type:"), resultType.String())
	}
	if dumpAST {
		fmt.Println(ast.Dump(prog))
	}

	val, _, err := p.evaluate(prog, evaluator.NewScope())
	if err != nil {
		if rep, ok := errors.AsReport(err); ok {
			printReports([]*errors.Report{rep}, src)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red(bold("runtime")), err)
		}
		return fmt.Errorf("execution failed")
	}

	fmt.Println(val.String())
	if verbose {
		fmt.Fprintf(os.Stderr, "%s %s in %s\n", green("ok:"), humanSize(src), time.Since(start).Round(time.Microsecond))
	}
	return nil
}
