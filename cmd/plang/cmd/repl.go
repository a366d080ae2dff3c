package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/plang-lang/plang/internal/config"
	"github.com/plang-lang/plang/internal/replshell"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Plang shell",
	Long: `Start a read-eval-print loop: each line is parsed, its imports are
resolved, it is type-checked and evaluated against a session that
persists across lines, so a var or fn declared on one line is visible
to the next.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
	}

	sh := replshell.New(cfg.ModulePaths, cfg.EvaluatorLimits())

	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".plang_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetCompleter(func(prefix string) (c []string) {
		if strings.HasPrefix(prefix, ":") {
			for _, cmd := range []string{":help", ":quit", ":rewrites"} {
				if strings.HasPrefix(cmd, prefix) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	fmt.Println(bold("plang") + " " + Version)
	fmt.Println("Type :help for help, :quit to exit")

	for {
		input, err := line.Prompt("plang> ")
		if err != nil {
			fmt.Println(green("goodbye"))
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if handleReplCommand(input, sh) {
				break
			}
			continue
		}

		val, reports, err := sh.Eval(input)
		if err != nil {
			if len(reports) > 0 {
				printReports(reports, input)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red(bold("error")), err)
			}
			continue
		}
		fmt.Println(val.String())
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func handleReplCommand(input string, sh *replshell.Shell) (quit bool) {
	switch {
	case input == ":quit" || input == ":q":
		fmt.Println(green("goodbye"))
		return true
	case input == ":help":
		fmt.Println("  :help      show this message")
		fmt.Println("  :rewrites  list qualified-identifier rewrites from imports so far")
		fmt.Println("  :quit      exit the shell")
	case input == ":rewrites":
		for _, r := range sh.RewriteLog() {
			fmt.Printf("  %s -> %s::%s at %s\n", r.Lexeme, r.Module, r.Lexeme, r.Pos)
		}
	default:
		fmt.Printf("%s unknown command %q\n", yellow("warning:"), input)
	}
	return false
}
