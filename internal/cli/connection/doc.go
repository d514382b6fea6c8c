// Package connection provides the RESP client used by kvmesh-cli.
//
//   - client.go: one TCP connection speaking the request/reply protocol
//   - manager.go: the current connection of a CLI or REPL session
//
// Error replies are returned as *ServerError so callers can print them
// and keep the connection.
package connection
