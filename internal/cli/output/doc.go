// Package output renders server replies for kvmesh-cli.
//
//   - reply.go: Reply, the format-neutral view of a protocol value
//   - formatter.go: Formatter interface and factory
//   - text.go: redis-cli style text
//   - json.go, yaml.go: machine-readable output for scripting
package output
