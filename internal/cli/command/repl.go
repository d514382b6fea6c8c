package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvmesh-go/internal/cli/connection"
	"github.com/yndnr/kvmesh-go/internal/cli/repl"
)

// REPLCommand returns the repl command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	s, err := GetSession(c)
	if err != nil {
		return err
	}

	r := repl.New(repl.Options{
		Input:       c.App.Reader,
		Output:      s.Out,
		Prompt:      func() string { return s.Conn.Addr() + "> " },
		HistoryFile: s.Config.HistoryFile,
		Exec:        s.execLine,
	})
	return r.Run(c.Context)
}

// execLine runs one REPL line. Error replies are printed like any other
// reply; only transport failures are returned.
func (s *Session) execLine(ctx context.Context, args []string) error {
	if strings.EqualFold(args[0], "connect") {
		if len(args) != 2 {
			return errors.New("usage: connect <address>")
		}
		if err := s.Conn.Connect(ctx, s.Config.ResolveServer(args[1])); err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "connected to %s\n", s.Conn.Addr())
		return nil
	}

	v, err := s.Conn.Do(ctx, args...)
	var serverErr *connection.ServerError
	if err != nil && !errors.As(err, &serverErr) {
		return err
	}
	return s.Print(v)
}
