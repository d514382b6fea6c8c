package repl

import (
	"reflect"
	"sort"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"p", []string{"ping"}},
		{"E", []string{"echo", "exit"}},
		{"h", []string{"help", "history"}},
		{"ge", []string{"get"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestCompleter_Commands(t *testing.T) {
	c := NewCompleter()
	cmds := c.Commands()
	if !sort.StringsAreSorted(cmds) {
		t.Errorf("Commands() not sorted: %q", cmds)
	}

	cmds[0] = "mutated"
	if c.Commands()[0] == "mutated" {
		t.Error("Commands() exposes internal slice")
	}
}
