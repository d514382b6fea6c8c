// Package httpserver provides the admin HTTP endpoint of kvmesh-server.
//
// Routes:
//
//	GET /metrics   Prometheus exposition
//	GET /health    dispatch loop liveness, connection and key counts
//	GET /version   build information
//
// Every route runs behind RequestID, Recover and AccessLog.
package httpserver
