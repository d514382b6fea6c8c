// Package service implements command execution for kvmesh.
//
// The Dispatcher maps a Command to one of the fixed command kinds
// (PING, ECHO, GET, SET), applies it to a Repository and turns the
// outcome into a reply value or a *domain.DomainError.
//
// The Dispatcher is stateless; it is as safe for concurrent use as the
// Repository behind it. The in-memory store is not, so the server calls
// Dispatch from a single goroutine.
package service
