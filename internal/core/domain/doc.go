// Package domain defines the command model served by kvmesh.
//
// Domain types are pure values without IO dependencies. This package contains:
//
//   - Command: a request decoded from the wire, name plus arguments
//   - SetOptions: the typed modifiers of SET (NX/XX, EX/PX, GET)
//   - Errors: command-level error codes and their wire representation
//
// Everything here is safe for concurrent use.
package domain
