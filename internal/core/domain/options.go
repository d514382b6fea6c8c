package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Existence is the existence constraint of a SET.
type Existence uint8

const (
	// ExistenceAny always writes.
	ExistenceAny Existence = iota
	// ExistenceNX writes only when the key is absent.
	ExistenceNX
	// ExistenceXX writes only when the key is present.
	ExistenceXX
)

// String returns the keyword for the constraint.
func (e Existence) String() string {
	switch e {
	case ExistenceNX:
		return "NX"
	case ExistenceXX:
		return "XX"
	default:
		return ""
	}
}

// Allows reports whether a write may proceed given whether the key exists.
func (e Existence) Allows(exists bool) bool {
	switch e {
	case ExistenceNX:
		return !exists
	case ExistenceXX:
		return exists
	default:
		return true
	}
}

// ExpiryUnit is the unit an expiry was requested in.
type ExpiryUnit uint8

const (
	ExpiryNone ExpiryUnit = iota
	ExpirySeconds
	ExpiryMilliseconds
)

// SetOptions holds the modifiers of a SET command.
type SetOptions struct {
	Existence Existence

	// ExpiryUnit is ExpiryNone when no EX/PX was given; TTL is then zero.
	ExpiryUnit ExpiryUnit
	TTL        time.Duration

	// ReturnPrevious is the GET flag. It is accepted for compatibility and
	// does not change the reply.
	ReturnPrevious bool
}

// HasExpiry reports whether EX or PX was given.
func (o SetOptions) HasExpiry() bool {
	return o.ExpiryUnit != ExpiryNone
}

// ParseSetOptions parses the arguments that follow SET key value.
// Keywords are case-insensitive and read left to right; any conflict,
// unknown token or missing number fails with ErrSyntax carrying the
// arguments joined by spaces.
func ParseSetOptions(args []string) (SetOptions, error) {
	var opts SetOptions
	fail := func() (SetOptions, error) {
		return SetOptions{}, ErrSyntax.WithDetails(strings.Join(args, " "))
	}

	for i := 0; i < len(args); i++ {
		switch Fold(args[i]) {
		case "nx":
			if opts.Existence == ExistenceXX {
				return fail()
			}
			opts.Existence = ExistenceNX
		case "xx":
			if opts.Existence == ExistenceNX {
				return fail()
			}
			opts.Existence = ExistenceXX
		case "get":
			opts.ReturnPrevious = true
		case "ex", "px":
			unit := ExpirySeconds
			if Fold(args[i]) == "px" {
				unit = ExpiryMilliseconds
			}
			if opts.ExpiryUnit != ExpiryNone && opts.ExpiryUnit != unit {
				return fail()
			}
			if i+1 >= len(args) {
				return fail()
			}
			ttl, ok := parseTTL(args[i+1], unit)
			if !ok {
				return fail()
			}
			opts.ExpiryUnit = unit
			opts.TTL = ttl
			i++
		default:
			return fail()
		}
	}
	return opts, nil
}

func parseTTL(s string, unit ExpiryUnit) (time.Duration, bool) {
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, false
	}
	scale := time.Millisecond
	if unit == ExpirySeconds {
		scale = time.Second
	}
	if n > uint64(math.MaxInt64/int64(scale)) {
		return 0, false
	}
	return time.Duration(n) * scale, true
}

// SetResult reports the outcome of a SET against a store.
type SetResult struct {
	// Written is false when the existence constraint skipped the write.
	Written bool

	// Existed reports whether the key was present in the store before the
	// call, without regard to expiry.
	Existed bool
}
