// Package config provides the kvmesh-cli configuration.
//
//   - spec.go: CLIConfig struct (~/.kvmesh/cli.yaml)
//   - loader.go: loading, saving and merging with env and flags
//
// Precedence, highest first: command-line flags, KVMESH_* environment
// variables, the config file, built-in defaults.
package config
