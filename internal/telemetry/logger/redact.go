package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys whose values are client payloads. They are never logged
// verbatim, at any level.
var payloadKeys = map[string]struct{}{
	"value":    {},
	"args":     {},
	"payload":  {},
	"previous": {},
}

// Key fragments that suggest a secret.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"credential",
	"auth",
	"bearer",
}

const redactedValue = "***REDACTED***"

// MaxStringLen caps any other string attribute. Longer values are cut and
// suffixed with the number of dropped bytes.
const MaxStringLen = 256

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if IsSensitiveKey(a.Key) {
		if isEmpty(a.Value) {
			return a
		}
		return slog.String(a.Key, redactedValue)
	}

	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); len(s) > MaxStringLen {
			return slog.String(a.Key, Truncate(s, MaxStringLen))
		}
	}
	return a
}

func isEmpty(v slog.Value) bool {
	switch v.Kind() {
	case slog.KindString:
		return v.String() == ""
	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return true
		case []string:
			return len(x) == 0
		}
	}
	return false
}

// Truncate shortens s to at most n bytes plus a marker. It never splits a
// multi-byte rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:cut], len(s)-cut)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// IsSensitiveKey reports whether values under key are redacted.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if _, ok := payloadKeys[keyLower]; ok {
		return true
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
