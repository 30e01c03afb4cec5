// Package cachemir provides the core components of the CacheMir cache
// server.
//
// This package is a documentation anchor only: it ties together
// pkg/protocol, pkg/cache, pkg/config, internal/command, and
// internal/server into one overview, but defines no exported API of its
// own. See each package's own godoc for specifics.
//
// # Overview
//
// CacheMir is a single-node, in-memory key/value cache reachable over
// TCP via a RESP-like protocol. It holds string values with optional
// expiration and supports single-key, batch, and pattern-based
// operations.
//
// # Key Features
//
//   - RESP-like wire protocol, plus an inline text form for simple clients
//   - String values with per-key expiration (EXPIRE/PEXPIRE, TTL/PTTL)
//   - Atomic multi-key batch access (MGET/MSET)
//   - Glob-based key enumeration (KEYS)
//   - Administrative flush and connection introspection (FLUSH, INFO)
//   - Thread-safe keyspace guarded by a single lock
//
// # Architecture Components
//
// Protocol (pkg/protocol):
//   - RESP value encoding/decoding: simple strings, errors, integers,
//     bulk strings, arrays, and their nil forms
//   - Inline request parsing for whitespace-separated text commands
//
// Cache Engine (pkg/cache):
//   - In-memory keyspace storing string values
//   - Lazy and background (swept) expiration
//   - Glob pattern matching for KEYS
//
// Command Registry (internal/command):
//   - Name-to-handler dispatch with arity validation
//   - One handler per supported command
//
// Server (internal/server):
//   - TCP accept loop, one goroutine per connection
//   - Strict per-connection request ordering
//   - Graceful shutdown via SHUTDOWN command or OS signal
//
// Configuration (pkg/config):
//   - Flags and environment variables, with validation and defaults
//
// # Usage
//
//	import "github.com/cachemir/cachemir/internal/server"
//	import "github.com/cachemir/cachemir/pkg/cache"
//	import "github.com/cachemir/cachemir/pkg/config"
//
//	cfg := config.LoadServerConfig()
//	srv := server.New(cfg, cache.New())
//	log.Fatal(srv.Start())
//
// # Supported Commands
//
//   - GET, SET, MGET, MSET
//   - DELETE (alias DEL), EXISTS
//   - EXPIRE, PEXPIRE, TTL, PTTL
//   - KEYS
//   - FLUSH (alias FLUSHDB)
//   - PING, INFO, QUIT, SHUTDOWN
//
// # Concurrency
//
// The keyspace is guarded by a single sync.RWMutex, so batch operations
// observe and mutate state atomically: no connection ever sees a
// partially applied MSET. Each connection is served by its own
// goroutine; requests within a connection are handled strictly in
// arrival order.
package cachemir
