package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one command line split into arguments.
type Executor func(ctx context.Context, args []string) error

// Options configures a REPL.
type Options struct {
	Input  io.Reader
	Output io.Writer
	// Prompt returns the prompt shown before each line.
	Prompt func() string
	// HistoryFile is where history is loaded from and saved to. Empty
	// keeps history in memory.
	HistoryFile string
	Exec        Executor
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      Executor
	completer *Completer
	history   *History
}

// New creates a new REPL instance.
func New(opts Options) *REPL {
	r := &REPL{
		input:     opts.Input,
		output:    opts.Output,
		prompt:    opts.Prompt,
		exec:      opts.Exec,
		completer: NewCompleter(),
		history:   NewHistory(opts.HistoryFile),
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.prompt == nil {
		r.prompt = func() string { return "kvmesh> " }
	}
	return r
}

// History returns the session history.
func (r *REPL) History() *History {
	return r.history
}

// Run reads lines until EOF, exit or ctx ends. History is loaded first and
// saved on return.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: cannot save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt())

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if stop := r.execute(ctx, line); stop {
			return nil
		}
	}
}

// execute runs one line and reports whether the REPL should stop.
func (r *REPL) execute(ctx context.Context, line string) bool {
	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}

	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return true
	case "help":
		r.printHelp()
		return false
	case "history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return false
	}

	if r.exec == nil {
		fmt.Fprintln(r.output, "Error: no executor")
		return false
	}
	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return false
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, "Commands:")
	for _, c := range r.completer.Commands() {
		fmt.Fprintf(r.output, "  %s\n", c)
	}
}

// SplitArgs splits a command line. Double-quoted arguments accept \n, \r,
// \t, \\, \" and \xHH escapes; single-quoted arguments are literal except
// for \'.
func SplitArgs(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
		in   bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}

		case ch == '"' || ch == '\'':
			next, err := readQuoted(line, i, &cur)
			if err != nil {
				return nil, err
			}
			if next < len(line) && line[next] != ' ' && line[next] != '\t' {
				return nil, fmt.Errorf("closing quote must be followed by a space")
			}
			i = next - 1
			in = true

		default:
			cur.WriteByte(ch)
			in = true
		}
	}
	if in {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}

// readQuoted appends the quoted string starting at line[start] to b and
// returns the index after the closing quote.
func readQuoted(line string, start int, b *strings.Builder) (int, error) {
	quote := line[start]
	for i := start + 1; i < len(line); i++ {
		ch := line[i]
		if ch == quote {
			return i + 1, nil
		}
		if ch != '\\' || i+1 >= len(line) {
			b.WriteByte(ch)
			continue
		}

		esc := line[i+1]
		if quote == '\'' {
			if esc == '\'' {
				b.WriteByte('\'')
				i++
			} else {
				b.WriteByte(ch)
			}
			continue
		}

		i++
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x':
			if i+2 < len(line) && isHex(line[i+1]) && isHex(line[i+2]) {
				b.WriteByte(unhex(line[i+1])<<4 | unhex(line[i+2]))
				i += 2
			} else {
				b.WriteByte('x')
			}
		default:
			b.WriteByte(esc)
		}
	}
	return 0, fmt.Errorf("unbalanced quotes")
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
