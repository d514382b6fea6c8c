package service

import (
	"strings"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// Repository defines the storage interface used by command handlers.
type Repository interface {
	// Get returns the live value of key.
	Get(key string) (value string, ok bool, err error)

	// Set writes key subject to opts and reports what happened.
	Set(key, value string, opts domain.SetOptions) (domain.SetResult, error)
}

// Kind identifies a supported command.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPing
	KindEcho
	KindGet
	KindSet
)

// String returns the lower-case command name, or "unknown".
func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindEcho:
		return "echo"
	case KindGet:
		return "get"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Lookup resolves a command name case-insensitively.
func Lookup(name string) Kind {
	switch domain.Fold(name) {
	case "ping":
		return KindPing
	case "echo":
		return KindEcho
	case "get":
		return KindGet
	case "set":
		return KindSet
	default:
		return KindUnknown
	}
}

// Reply texts.
const (
	replyPong = "PONG"
	replyOK   = "OK"
)

// Dispatcher executes commands against a Repository.
type Dispatcher struct {
	repo Repository
}

// NewDispatcher creates a Dispatcher. A nil repo is allowed: commands that
// need storage then fail with ErrStorageNotInitialized. Pass an untyped nil,
// not a nil pointer of a concrete store type.
func NewDispatcher(repo Repository) *Dispatcher {
	return &Dispatcher{repo: repo}
}

// Dispatch executes one command. Every error it returns is a
// *domain.DomainError and leaves the connection usable.
func (d *Dispatcher) Dispatch(cmd domain.Command) (resp.Value, error) {
	if len(cmd) == 0 {
		return resp.Value{}, domain.ErrIncorrectRequest.WithDetails("empty command")
	}

	switch Lookup(cmd.Name()) {
	case KindPing:
		return resp.SimpleString(replyPong), nil
	case KindEcho:
		return d.echo(cmd)
	case KindGet:
		return d.get(cmd)
	case KindSet:
		return d.set(cmd)
	default:
		return resp.Value{}, domain.ErrCommandNotAvailable.WithDetails(cmd.Name())
	}
}

func (d *Dispatcher) echo(cmd domain.Command) (resp.Value, error) {
	args := cmd.Args()
	if len(args) != 1 {
		return resp.Value{}, syntaxError(cmd)
	}
	return resp.BulkString(args[0]), nil
}

func (d *Dispatcher) get(cmd domain.Command) (resp.Value, error) {
	if d.repo == nil {
		return resp.Value{}, domain.ErrStorageNotInitialized
	}
	args := cmd.Args()
	if len(args) != 1 {
		return resp.Value{}, syntaxError(cmd)
	}

	value, found, err := d.repo.Get(args[0])
	if err != nil {
		return resp.Value{}, internalError(cmd, err)
	}
	if !found {
		return resp.Null(), nil
	}
	return resp.BulkString(value), nil
}

func (d *Dispatcher) set(cmd domain.Command) (resp.Value, error) {
	if d.repo == nil {
		return resp.Value{}, domain.ErrStorageNotInitialized
	}
	args := cmd.Args()
	if len(args) < 2 {
		return resp.Value{}, syntaxError(cmd)
	}

	opts, err := domain.ParseSetOptions(args[2:])
	if err != nil {
		return resp.Value{}, err
	}

	res, err := d.repo.Set(args[0], args[1], opts)
	if err != nil {
		return resp.Value{}, internalError(cmd, err)
	}

	// GET is accepted but does not change the acknowledgement.
	switch {
	case res.Written:
		return resp.SimpleString(replyOK), nil
	case res.Existed:
		return resp.SimpleString("Key is present true"), nil
	default:
		return resp.SimpleString("Key is present false"), nil
	}
}

func syntaxError(cmd domain.Command) error {
	return domain.ErrSyntax.WithDetails(strings.Join(cmd, " "))
}

func internalError(cmd domain.Command, cause error) error {
	return domain.ErrInternal.WithDetails(strings.Join(cmd, " ")).WithCause(cause)
}
