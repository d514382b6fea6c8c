// Package buildinfo exposes build-time version information.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/kvmesh-go/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/yndnr/kvmesh-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// GoVersion falls back to the toolchain recorded in the binary.
package buildinfo
