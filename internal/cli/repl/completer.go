package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	commands := []string{
		"ping", "echo", "get", "set",
		"connect", "help", "history", "exit", "quit",
	}
	sort.Strings(commands)
	return &Completer{commands: commands}
}

// Commands returns the known command names in order.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}

// Complete returns completion suggestions for the given prefix. Matching
// ignores case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
