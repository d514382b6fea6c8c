// Package command provides the kvmesh-cli command tree.
//
// It uses urfave/cli/v2. Every command runs in single-shot mode; with no
// command the CLI starts the interactive REPL.
//
//   - root.go: App, global flags, session setup
//   - kv.go: ping, echo, get, set and raw
//   - repl.go: interactive mode
//   - admin.go: health and version from the admin HTTP endpoint
package command
