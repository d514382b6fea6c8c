package domain

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// Command is a request as an ordered list of strings: the command name
// followed by its arguments.
type Command []string

// CommandFromValue converts a decoded request. Only a non-empty array of bulk
// strings is a command; anything else is ErrIncorrectRequest.
func CommandFromValue(v resp.Value) (Command, error) {
	if v.Kind != resp.KindArray {
		return nil, ErrIncorrectRequest.WithDetails(fmt.Sprintf("expected array, got %s", v.Kind))
	}
	if len(v.Elems) == 0 {
		return nil, ErrIncorrectRequest.WithDetails("empty command")
	}
	cmd := make(Command, len(v.Elems))
	for i, e := range v.Elems {
		if e.Kind != resp.KindBulkString {
			return nil, ErrIncorrectRequest.WithDetails(fmt.Sprintf("argument %d is %s, expected bulk-string", i, e.Kind))
		}
		cmd[i] = e.Str
	}
	return cmd, nil
}

// Name returns the command name as sent by the client.
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the name.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// Fold normalizes a command name or keyword for case-insensitive matching.
// It lower-cases without Unicode folding, so "ſet" stays distinct from "set".
// A Caser keeps state, so a fresh one is used per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
