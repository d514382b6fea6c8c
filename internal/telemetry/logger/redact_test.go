package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"stored value", slog.String("value", "hunter2"), redactedValue},
		{"value key is case-insensitive", slog.String("Value", "hunter2"), redactedValue},
		{"command args", slog.Any("args", []string{"SET", "k", "v"}), redactedValue},
		{"previous value", slog.String("previous", "old"), redactedValue},
		{"password key", slog.String("db_password", "p"), redactedValue},
		{"auth key", slog.String("Authorization", "Bearer x"), redactedValue},
		{"empty payload kept", slog.String("value", ""), ""},
		{"key is not sensitive", slog.String("key", "user:42"), "user:42"},
		{"command name is not sensitive", slog.String("command", "get"), "get"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.attr)
			if got.Key != tt.attr.Key {
				t.Errorf("Key = %q, want %q", got.Key, tt.attr.Key)
			}
			if got.Value.String() != tt.want {
				t.Errorf("Value = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactSensitive_NonStringUntouched(t *testing.T) {
	a := slog.Int("count", 3)
	if got := redactSensitive(a); !got.Equal(a) {
		t.Errorf("redactSensitive(%v) = %v", a, got)
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := slog.Group("request", slog.String("command", "set"), slog.String("value", "v"))
	got := redactSensitive(a)

	attrs := got.Value.Group()
	if len(attrs) != 2 {
		t.Fatalf("group has %d attrs", len(attrs))
	}
	if attrs[0].Value.String() != "set" {
		t.Errorf("command = %q", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != redactedValue {
		t.Errorf("value = %q, want redacted", attrs[1].Value.String())
	}
}

func TestRedactSensitive_LongStringTruncated(t *testing.T) {
	long := strings.Repeat("x", MaxStringLen+10)
	got := redactSensitive(slog.String("remote", long)).Value.String()
	want := strings.Repeat("x", MaxStringLen) + "...(+10 bytes)"
	if got != want {
		t.Errorf("truncated = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"abcdef", 3, "abc...(+3 bytes)"},
		// "é" is two bytes; the cut moves back rather than splitting it.
		{"aéb", 2, "a...(+3 bytes)"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"value":       true,
		"ARGS":        true,
		"payload":     true,
		"api_secret":  true,
		"credentials": true,
		"key":         false,
		"conn_id":     false,
		"remote":      false,
	} {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestHandler_RedactsEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(Config{Level: "debug", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	slog.New(h).Debug("dispatch", "command", "set", "key", "k", "value", "topsecret")
	out := buf.String()
	if strings.Contains(out, "topsecret") {
		t.Errorf("payload leaked: %s", out)
	}
	if !strings.Contains(out, "key=k") {
		t.Errorf("key missing: %s", out)
	}
}
