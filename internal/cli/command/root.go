package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvmesh-go/internal/cli/config"
	"github.com/yndnr/kvmesh-go/internal/cli/connection"
	"github.com/yndnr/kvmesh-go/internal/cli/output"
	"github.com/yndnr/kvmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/kvmesh-go/pkg/resp"
)

const sessionKey = "session"

// ErrErrorReply is returned after an error reply has been printed, so the
// process can exit non-zero without printing it twice.
var ErrErrorReply = errors.New("server replied with an error")

// Session is the state shared by the commands of one invocation.
type Session struct {
	Config    *config.CLIConfig
	Conn      *connection.Manager
	Formatter output.Formatter
	Out       io.Writer
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "kvmesh-cli",
		Usage:    "kvmesh command-line client",
		Version:  buildinfo.Get().String(),
		Flags:    globalFlags(),
		Metadata: make(map[string]any),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			RawCommand(),
			REPLCommand(),
			AdminCommand(),
		},
		Before: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			c.App.Metadata[sessionKey] = s
			return nil
		},
		After: func(c *cli.Context) error {
			if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
				s.Conn.Disconnect()
			}
			return nil
		},
		Action: runREPL,
	}
}

// globalFlags returns the global CLI flags. Environment variables are
// applied by config.Merge so that flags, env and the config file share
// one precedence order.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address or name from the config file (env " + config.EnvServer + ")",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml (env " + config.EnvOutput + ")",
		},
		&cli.StringFlag{
			Name:  "timeout",
			Usage: "dial and request timeout, e.g. 2s (env " + config.EnvTimeout + ")",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file path",
			Value:   config.DefaultConfigPath(),
		},
	}
}

func newSession(c *cli.Context) (*Session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	flags := make(map[string]string)
	for _, name := range []string{"server", "output", "timeout"} {
		if c.IsSet(name) {
			flags[name] = c.String(name)
		}
	}
	cfg, err = config.Merge(cfg, config.Environ(), flags)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.DefaultOutput)
	if err != nil {
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		Config:    cfg,
		Conn:      connection.NewManager(cfg.ResolveServer(cfg.DefaultServer), cfg.Timeout),
		Formatter: output.NewFormatter(format),
		Out:       out,
	}, nil
}

// GetSession retrieves the session from context.
func GetSession(c *cli.Context) (*Session, error) {
	if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
		return s, nil
	}
	return nil, errors.New("session not initialized")
}

// Run sends one command and prints its reply. An error reply is printed
// and reported as ErrErrorReply.
func (s *Session) Run(c *cli.Context, args ...string) error {
	v, err := s.Conn.Do(c.Context, args...)
	var serverErr *connection.ServerError
	switch {
	case errors.As(err, &serverErr):
		if ferr := s.Print(v); ferr != nil {
			return ferr
		}
		return ErrErrorReply
	case err != nil:
		return err
	}
	return s.Print(v)
}

// Print writes v with the session formatter.
func (s *Session) Print(v resp.Value) error {
	return s.Formatter.Format(s.Out, v)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
