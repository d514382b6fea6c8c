// Package repl provides the interactive mode of kvmesh-cli.
//
// Each line is split into arguments (double quotes support backslash
// escapes, single quotes are literal) and handed to an Executor.
// exit, quit, help and history are handled locally.
package repl
