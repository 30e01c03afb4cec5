// Package command implements the registry that maps RESP requests onto
// keyspace operations: arity/type validation, dispatch, and result shaping.
//
// A Registry is built once (command names are fixed at compile time) and
// shared read-only across every connection; Dispatch takes the keyspace as
// an explicit argument, so no cache state lives in the registry itself
// beyond the descriptor table.
//
// Example usage:
//
//	reg := command.NewRegistry()
//	reply := command.Dispatch(reg, keyspace, req.Items)
//	reply.Encode(conn)
package command

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cachemir/cachemir/pkg/cache"
	"github.com/cachemir/cachemir/pkg/protocol"
)

// Descriptor documents and validates one command's shape before Handler ever
// sees the argument vector.
type Descriptor struct {
	// Handler receives the arguments after the command name (args[0] is the
	// first argument, not the command name itself).
	Handler func(ks *cache.Keyspace, args []protocol.Value) protocol.Value
	Name    string
	MinArgs int // minimum argument count (after the command name)
	MaxArgs int // maximum argument count, or -1 for unbounded (variadic)
}

// Registry holds the fixed set of supported commands, keyed by uppercased
// name. It also tracks the small amount of server-wide state the INFO
// command reports: start time and live connection count. The connection
// server calls IncConnections/DecConnections around each session's
// lifetime.
type Registry struct {
	commands    map[string]Descriptor
	startedAt   time.Time
	connections int64
}

// NewRegistry builds the registry of every command in spec.md's table: GET,
// SET, MGET, MSET, DELETE/DEL, EXISTS, EXPIRE, PEXPIRE, TTL, PTTL, KEYS,
// FLUSH/FLUSHDB, PING, QUIT, SHUTDOWN, plus the supplemental INFO command.
func NewRegistry() *Registry {
	r := &Registry{
		commands:  make(map[string]Descriptor),
		startedAt: time.Now(),
	}

	r.register(Descriptor{Name: "GET", MinArgs: 1, MaxArgs: 1, Handler: cmdGet})
	r.register(Descriptor{Name: "SET", MinArgs: 2, MaxArgs: 2, Handler: cmdSet})
	r.register(Descriptor{Name: "MGET", MinArgs: 1, MaxArgs: -1, Handler: cmdMGet})
	r.register(Descriptor{Name: "MSET", MinArgs: 2, MaxArgs: -1, Handler: cmdMSet})
	r.register(Descriptor{Name: "DELETE", MinArgs: 1, MaxArgs: -1, Handler: cmdDelete})
	r.register(Descriptor{Name: "DEL", MinArgs: 1, MaxArgs: -1, Handler: cmdDelete})
	r.register(Descriptor{Name: "EXISTS", MinArgs: 1, MaxArgs: -1, Handler: cmdExists})
	r.register(Descriptor{Name: "EXPIRE", MinArgs: 2, MaxArgs: 2, Handler: cmdExpireSeconds})
	r.register(Descriptor{Name: "PEXPIRE", MinArgs: 2, MaxArgs: 2, Handler: cmdExpireMillis})
	r.register(Descriptor{Name: "TTL", MinArgs: 1, MaxArgs: 1, Handler: cmdTTLSeconds})
	r.register(Descriptor{Name: "PTTL", MinArgs: 1, MaxArgs: 1, Handler: cmdTTLMillis})
	r.register(Descriptor{Name: "KEYS", MinArgs: 1, MaxArgs: 1, Handler: cmdKeys})
	r.register(Descriptor{Name: "FLUSH", MinArgs: 0, MaxArgs: 0, Handler: cmdFlush})
	r.register(Descriptor{Name: "FLUSHDB", MinArgs: 0, MaxArgs: 0, Handler: cmdFlush})
	r.register(Descriptor{Name: "PING", MinArgs: 0, MaxArgs: 1, Handler: cmdPing})
	r.register(Descriptor{Name: "INFO", MinArgs: 0, MaxArgs: 0, Handler: r.cmdInfo})
	// QUIT and SHUTDOWN carry no keyspace work of their own; the connection
	// server recognizes them by name before/after dispatch to drive session
	// teardown, but they still need descriptors so arity errors and the
	// "unknown command" check behave uniformly.
	r.register(Descriptor{Name: "QUIT", MinArgs: 0, MaxArgs: 0, Handler: cmdOK})
	r.register(Descriptor{Name: "SHUTDOWN", MinArgs: 0, MaxArgs: 0, Handler: cmdOK})

	return r
}

func (r *Registry) register(d Descriptor) {
	r.commands[d.Name] = d
}

// IncConnections records a new live connection. Called by the connection
// server when a session starts.
func (r *Registry) IncConnections() { atomic.AddInt64(&r.connections, 1) }

// DecConnections records a connection's end. Called by the connection
// server when a session's handler returns.
func (r *Registry) DecConnections() { atomic.AddInt64(&r.connections, -1) }

// Lookup returns the descriptor for name (case-insensitive) and whether it
// exists.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.commands[strings.ToUpper(name)]
	return d, ok
}

// Dispatch validates arity and invokes the handler for a parsed request.
// req must be a non-empty array of bulk-string arguments (args[0] is the
// command name); malformed shapes that somehow reach here yield a syntax
// error rather than a panic.
func Dispatch(r *Registry, ks *cache.Keyspace, req []protocol.Value) protocol.Value {
	if len(req) == 0 {
		return protocol.Errf("syntax error")
	}
	if req[0].Kind != protocol.KindBulk {
		return protocol.Errf("syntax error")
	}
	name := string(req[0].Bulk)

	d, ok := r.Lookup(name)
	if !ok {
		return protocol.Errf("unknown command '%s'", name)
	}

	args := req[1:]
	if len(args) < d.MinArgs || (d.MaxArgs >= 0 && len(args) > d.MaxArgs) {
		return protocol.Errf("wrong number of arguments for '%s'", strings.ToLower(name))
	}

	return d.Handler(ks, args)
}

// --- argument helpers ---

func argBytes(v protocol.Value) ([]byte, bool) {
	if v.Kind != protocol.KindBulk || v.IsNil {
		return nil, false
	}
	return v.Bulk, true
}

func argString(v protocol.Value) (string, bool) {
	b, ok := argBytes(v)
	return string(b), ok
}

// argInt parses a required integer argument. spec.md requires the
// byte-exact error string for both non-numeric input and out-of-range
// (non-positive, where that matters) values.
func argInt(v protocol.Value) (int64, bool) {
	s, ok := argString(v)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var errNotInteger = protocol.Errf("value is not an integer or out of range")

// --- handlers ---

func cmdGet(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	key, ok := argString(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	v, found := ks.Get(key)
	if !found {
		return protocol.Nil()
	}
	return protocol.BulkString(v)
}

func cmdSet(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	key, ok := argString(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	val, ok := argBytes(args[1])
	if !ok {
		return protocol.Errf("syntax error")
	}
	ks.Set(key, val, 0)
	return protocol.SimpleString("OK")
}

func cmdMGet(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	keys := make([]string, len(args))
	for i, a := range args {
		k, ok := argString(a)
		if !ok {
			return protocol.Errf("syntax error")
		}
		keys[i] = k
	}
	values := ks.MGet(keys)
	items := make([]protocol.Value, len(values))
	for i, v := range values {
		if v == nil {
			items[i] = protocol.Nil()
		} else {
			items[i] = protocol.BulkString(v)
		}
	}
	return protocol.Array(items)
}

func cmdMSet(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	if len(args)%2 != 0 {
		return protocol.Errf("syntax error")
	}
	pairs := make([]cache.Pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := argString(args[i])
		if !ok {
			return protocol.Errf("syntax error")
		}
		val, ok := argBytes(args[i+1])
		if !ok {
			return protocol.Errf("syntax error")
		}
		pairs = append(pairs, cache.Pair{Key: key, Value: val})
	}
	ks.MSet(pairs)
	return protocol.SimpleString("OK")
}

func cmdDelete(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	keys, ok := argStrings(args)
	if !ok {
		return protocol.Errf("syntax error")
	}
	return protocol.Integer(int64(ks.Delete(keys)))
}

func cmdExists(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	keys, ok := argStrings(args)
	if !ok {
		return protocol.Errf("syntax error")
	}
	return protocol.Integer(int64(ks.Exists(keys)))
}

func argStrings(args []protocol.Value) ([]string, bool) {
	keys := make([]string, len(args))
	for i, a := range args {
		k, ok := argString(a)
		if !ok {
			return nil, false
		}
		keys[i] = k
	}
	return keys, true
}

func cmdExpireSeconds(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	return expireWithUnit(ks, args, time.Second)
}

func cmdExpireMillis(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	return expireWithUnit(ks, args, time.Millisecond)
}

func expireWithUnit(ks *cache.Keyspace, args []protocol.Value, unit time.Duration) protocol.Value {
	key, ok := argString(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	n, ok := argInt(args[1])
	if !ok {
		return errNotInteger
	}
	if n <= 0 {
		return errNotInteger
	}
	applied := ks.Expire(key, time.Duration(n)*unit)
	if applied {
		return protocol.Integer(1)
	}
	return protocol.Integer(0)
}

func cmdTTLSeconds(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	return ttlWithUnit(ks, args, time.Second)
}

func cmdTTLMillis(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	return ttlWithUnit(ks, args, time.Millisecond)
}

func ttlWithUnit(ks *cache.Keyspace, args []protocol.Value, unit time.Duration) protocol.Value {
	key, ok := argString(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	remaining, hasDeadline, live := ks.TTL(key)
	if !live {
		return protocol.Integer(cache.TTLNoKey)
	}
	if !hasDeadline {
		return protocol.Integer(cache.TTLNoExpiry)
	}
	return protocol.Integer(int64(remaining / unit))
}

func cmdKeys(ks *cache.Keyspace, args []protocol.Value) protocol.Value {
	pattern, ok := argString(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	keys := ks.Keys(pattern)
	items := make([]protocol.Value, len(keys))
	for i, k := range keys {
		items[i] = protocol.BulkFromString(k)
	}
	return protocol.Array(items)
}

func cmdFlush(ks *cache.Keyspace, _ []protocol.Value) protocol.Value {
	ks.Flush()
	return protocol.SimpleString("OK")
}

func cmdPing(_ *cache.Keyspace, args []protocol.Value) protocol.Value {
	if len(args) == 0 {
		return protocol.SimpleString("PONG")
	}
	msg, ok := argBytes(args[0])
	if !ok {
		return protocol.Errf("syntax error")
	}
	return protocol.BulkString(msg)
}

func cmdOK(_ *cache.Keyspace, _ []protocol.Value) protocol.Value {
	return protocol.SimpleString("OK")
}

func (r *Registry) cmdInfo(ks *cache.Keyspace, _ []protocol.Value) protocol.Value {
	var b strings.Builder
	b.WriteString("uptime_seconds:")
	b.WriteString(strconv.FormatInt(int64(time.Since(r.startedAt)/time.Second), 10))
	b.WriteString("\r\nconnected_clients:")
	b.WriteString(strconv.FormatInt(atomic.LoadInt64(&r.connections), 10))
	b.WriteString("\r\nkeys:")
	b.WriteString(strconv.Itoa(ks.Len()))
	b.WriteString("\r\n")
	return protocol.BulkFromString(b.String())
}
