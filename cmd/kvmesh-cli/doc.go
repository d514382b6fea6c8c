// Package main provides the entry point for kvmesh-cli.
//
// kvmesh-cli talks to a kvmesh server over its TCP protocol. It runs one
// command per invocation, or an interactive REPL when no command is given:
//
//	kvmesh-cli --server 127.0.0.1:6379 set --ex 60 greeting hello
//	kvmesh-cli get greeting
//	kvmesh-cli
package main
