// Package redisserver serves the RESP command set over TCP.
//
// The package has three parts:
//
//   - Loop: the single dispatch goroutine. It owns the memory.Store, runs
//     every command and the periodic expiry sweep, so the store needs no lock.
//   - conn: one actor per client socket. It buffers partial frames, decodes
//     pipelined requests, forwards them to the Loop and writes the replies
//     back in request order.
//   - Server: the accept loop and the registry of live connections.
//
// A connection never has more requests in flight than its reply queue can
// hold, so the Loop never blocks on a reply send. Protocol errors close only
// the offending connection, after an error frame; command errors are sent
// as error replies and the connection stays open.
package redisserver
