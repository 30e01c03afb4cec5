// Package cachemir provides an in-memory, single-node key/value cache
// server speaking a Redis-compatible (RESP-like) wire protocol over TCP.
//
// CacheMir stores string values with optional expiration and serves them
// to any number of concurrent connections over a simple request/reply
// protocol: a request is one command name plus its arguments, a reply is
// one RESP value. Clients may send requests either as RESP arrays of
// bulk strings or as a single inline text line (whitespace-separated),
// matching how line-oriented tools like telnet or nc are used against
// Redis-family servers.
//
// # Architecture Overview
//
// CacheMir consists of four components:
//
//   - pkg/protocol: RESP encoder/decoder, plus the inline request form
//   - pkg/cache: the in-memory keyspace, TTL bookkeeping, and glob key matching
//   - internal/command: the command registry, arity checking, and command handlers
//   - internal/server: the TCP accept loop and per-connection session loop
//
// # Quick Start
//
// Server:
//
//	import "github.com/cachemir/cachemir/internal/server"
//	import "github.com/cachemir/cachemir/pkg/cache"
//	import "github.com/cachemir/cachemir/pkg/config"
//
//	cfg := config.LoadServerConfig()
//	srv := server.New(cfg, cache.New())
//	log.Fatal(srv.Start())
//
// A client can then be anything that speaks the protocol, down to a
// raw netcat session:
//
//	$ nc 127.0.0.1 31337
//	SET greeting hello
//	+OK
//	GET greeting
//	$5
//	hello
//
// # Supported Operations
//
//   - GET, SET, MGET, MSET: value access, single-key and batch
//   - DELETE (alias DEL), EXISTS: key removal and presence checks
//   - EXPIRE, PEXPIRE: set a key's time-to-live in seconds or milliseconds
//   - TTL, PTTL: query remaining time-to-live in seconds or milliseconds
//   - KEYS: enumerate keys matching a glob pattern
//   - FLUSH (alias FLUSHDB): remove all keys
//   - PING, INFO, QUIT, SHUTDOWN: connection and server administration
//
// # Expiration
//
// Keys with a TTL expire lazily (checked on access) and are also swept
// periodically in the background, so an idle key still releases its
// memory without ever being read again.
//
// # Concurrency
//
// All keyspace state is guarded by a single lock, so multi-key
// operations like MGET and MSET are atomic: no reader ever observes a
// partial write. Each client connection is served by its own goroutine,
// and requests on a connection are processed strictly in the order they
// arrive.
//
// # Configuration
//
// Server configuration via flags or environment variables:
//
//	./cachemir-server -port 31337 -max-conns 1000
//	# or
//	CACHEMIR_PORT=31337 CACHEMIR_MAX_CONNS=1000 ./cachemir-server
//
// # Package Structure
//
//   - pkg/protocol: RESP wire codec
//   - pkg/cache: in-memory keyspace with TTL and glob matching
//   - internal/command: command registry and handlers
//   - internal/server: TCP server and connection lifecycle
//   - pkg/config: configuration management
//   - internal/testutil: RESP client used by this module's own tests
//   - cmd/server: server executable
//
// For detailed documentation of individual packages, see their
// respective godoc pages.
package cachemir
