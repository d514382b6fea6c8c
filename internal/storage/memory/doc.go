// Package memory provides the in-memory key-value store for kvmesh.
//
// The store keeps two maps: key to value, and key to absolute expiry
// instant. A key with an instant is absent from that instant on, whichever
// removal path notices first:
//
//   - Lazy expiry: Get evicts an expired key before answering. Always on.
//   - Active expiry: SweepExpired removes every key whose instant has
//     passed. Runs only while active expiry is enabled.
//
// Thread Safety:
//
// Store is not safe for concurrent use. It is owned by a single goroutine
// (the dispatch loop) and every access goes through that goroutine.
package memory
