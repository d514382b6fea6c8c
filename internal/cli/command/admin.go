package command

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvmesh-go/internal/cli/output"
)

// AdminCommand returns the admin subcommand group.
func AdminCommand() *cli.Command {
	addrFlag := &cli.StringFlag{
		Name:    "admin-addr",
		Usage:   "admin HTTP address",
		EnvVars: []string{"KVMESH_ADMIN_ADDR"},
		Value:   "127.0.0.1:5080",
	}
	return &cli.Command{
		Name:  "admin",
		Usage: "Query the admin HTTP endpoint",
		Flags: []cli.Flag{addrFlag},
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Show server health",
				Action: adminGet("/health"),
			},
			{
				Name:   "version",
				Usage:  "Show server build information",
				Action: adminGet("/version"),
			},
		},
	}
}

func adminGet(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := GetSession(c)
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: s.Config.Timeout}
		req, err := http.NewRequestWithContext(c.Context, http.MethodGet,
			"http://"+c.String("admin-addr")+path, nil)
		if err != nil {
			return err
		}

		res, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer res.Body.Close()

		var body map[string]any
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if _, ok := s.Formatter.(*output.TextFormatter); ok {
			printFields(s, body)
		} else if err := s.Formatter.Format(s.Out, body); err != nil {
			return err
		}

		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %s", res.Status)
		}
		return nil
	}
}

// printFields writes a flat JSON object as aligned "key: value" lines.
func printFields(s *Session, body map[string]any) {
	keys := make([]string, 0, len(body))
	width := 0
	for k := range body {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(s.Out, "%s:%s %v\n", k, strings.Repeat(" ", width-len(k)), body[k])
	}
}
