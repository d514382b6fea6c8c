package command

import (
	"strconv"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			s, err := GetSession(c)
			if err != nil {
				return err
			}
			return s.Run(c, "PING")
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowSubcommandHelp(c)
			}
			s, err := GetSession(c)
			if err != nil {
				return err
			}
			return s.Run(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowSubcommandHelp(c)
			}
			s, err := GetSession(c)
			if err != nil {
				return err
			}
			return s.Run(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set the value of a key",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "nx", Usage: "only set if the key does not exist"},
			&cli.BoolFlag{Name: "xx", Usage: "only set if the key exists"},
			&cli.Int64Flag{Name: "ex", Usage: "expire after `SECONDS`"},
			&cli.Int64Flag{Name: "px", Usage: "expire after `MILLISECONDS`"},
			&cli.BoolFlag{Name: "get", Usage: "send the GET flag"},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.ShowSubcommandHelp(c)
	}
	s, err := GetSession(c)
	if err != nil {
		return err
	}
	return s.Run(c, setArgs(c)...)
}

// setArgs builds the SET request. Conflicting options are passed through
// for the server to reject.
func setArgs(c *cli.Context) []string {
	args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
	if c.Bool("nx") {
		args = append(args, "NX")
	}
	if c.Bool("xx") {
		args = append(args, "XX")
	}
	if c.IsSet("ex") {
		args = append(args, "EX", strconv.FormatInt(c.Int64("ex"), 10))
	}
	if c.IsSet("px") {
		args = append(args, "PX", strconv.FormatInt(c.Int64("px"), 10))
	}
	if c.Bool("get") {
		args = append(args, "GET")
	}
	return args
}

// RawCommand returns the raw command.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send a command as given",
		ArgsUsage: "<command> [args...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.ShowSubcommandHelp(c)
			}
			s, err := GetSession(c)
			if err != nil {
				return err
			}
			return s.Run(c, c.Args().Slice()...)
		},
	}
}
