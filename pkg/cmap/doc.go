// Package cmap provides a sharded concurrent map.
//
// Each shard has its own RWMutex, so writers on different keys rarely
// contend:
//
//	conns := cmap.New[string, *conn]()
//	conns.Set(id, c)
//	conns.Range(func(id string, c *conn) bool { ...; return true })
//
// All operations are safe for concurrent use. Range and Drain lock one
// shard at a time and therefore do not observe a single snapshot.
package cmap
