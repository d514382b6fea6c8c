// Command kvmesh-server runs the in-memory key-value server.
//
// Usage:
//
//	kvmesh-server [-config kvmesh.yaml] [-version]
//
// Configuration comes from config.Default(), then the YAML file, then
// KVMESH_ environment variables (KVMESH_SERVER__REDIS__ADDR=:6380).
// Editing log.level in the file takes effect without a restart.
package main
