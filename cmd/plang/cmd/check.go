package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Resolve imports and type-check a Plang file without evaluating it",
	Long: `Run the parser, module importer and validator over a .plang file (or
stdin), reporting every diagnostic found, but never evaluate the program.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	p := newPipeline(scriptDirOf(path))
	prog, reports, err := p.parseAndImport(src)
	printReports(reports, src)
	if err != nil {
		return err
	}

	_, resultType, verrs := p.validate(prog)
	if len(verrs) > 0 {
		printReports(verrs, src)
		return fmt.Errorf("type checking failed with %d error(s)", len(verrs))
	}

	fmt.Printf("%s %s\n", green("ok:"), resultType.String())
	return nil
}
