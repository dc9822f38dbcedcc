// Package repl implements the line-oriented read-eval-compile loop:
// each accepted line is parsed as one toplevel, checked, and (if it
// monomorphizes cleanly) emitted as a C snippet — the same pipeline
// `evanlang2c compile` drives, one line at a time.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/evanlang2/evanlang2c/internal/compiler"
	"github.com/evanlang2/evanlang2c/internal/config"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

const historyFileName = ".evanlang2c_history"

// REPL holds the state of one interactive session: a driver and a
// monotonically increasing counter used to name each line's throwaway
// module, so successive snippets never collide in error messages.
type REPL struct {
	driver *compiler.Driver
	line   int
}

// New returns a REPL backed by cfg (nil for defaults).
func New(cfg *config.Config) *REPL {
	if cfg == nil {
		cfg = config.Default()
	}
	return &REPL{driver: compiler.New(cfg)}
}

// Start runs the loop until EOF or :quit, writing prompts/results to out.
// Input always comes from the terminal through liner, so this REPL's core
// behavior is exercised through compiler.Driver directly rather than
// through Start.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyPath := filepath.Join(os.TempDir(), historyFileName)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s\n", bold("evanlang2c repl"))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(in string) (c []string) {
		if !strings.HasPrefix(in, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit"} {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt("evanlang2> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\ngoodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q":
			fmt.Fprintln(out, green("goodbye"))
			if f, err := os.Create(historyPath); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
			return
		case ":help":
			printHelp(out)
			continue
		}

		r.evalLine(out, input)
	}
}

// evalLine compiles one line as its own throwaway single-toplevel
// module and prints the C it produces, or the compile error.
func (r *REPL) evalLine(out io.Writer, input string) {
	r.line++
	name := fmt.Sprintf("repl%d.el2", r.line)
	c, err := r.driver.CompileSource(name, []byte(input))
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	fmt.Fprintf(out, "%s\n%s\n", cyan("-- generated C --"), c)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :help   show this message")
	fmt.Fprintln(out, "  :quit   exit the repl")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Enter a single top-level declaration (let/extern/type) to see")
	fmt.Fprintln(out, "the C it compiles to.")
}
