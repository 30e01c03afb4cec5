package command

import (
	"strings"
	"testing"
	"time"

	"github.com/cachemir/cachemir/pkg/cache"
	"github.com/cachemir/cachemir/pkg/protocol"
)

func req(args ...string) []protocol.Value {
	items := make([]protocol.Value, len(args))
	for i, a := range args {
		items[i] = protocol.BulkFromString(a)
	}
	return items
}

func dispatch(t *testing.T, r *Registry, ks *cache.Keyspace, args ...string) protocol.Value {
	t.Helper()
	return Dispatch(r, ks, req(args...))
}

func newTestRegistry(t *testing.T) (*Registry, *cache.Keyspace) {
	t.Helper()
	ks := cache.New()
	t.Cleanup(ks.Close)
	return NewRegistry(), ks
}

func TestDispatchUnknownCommand(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := dispatch(t, r, ks, "NOTACOMMAND")
	if !v.IsError() {
		t.Fatalf("expected error reply, got %+v", v)
	}
	if !strings.Contains(v.Str, "unknown command") {
		t.Errorf("unexpected error message: %q", v.Str)
	}
}

func TestDispatchEmptyRequest(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := Dispatch(r, ks, nil)
	if !v.IsError() {
		t.Fatalf("expected error reply, got %+v", v)
	}
}

func TestDispatchWrongArity(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "GET")
	if !v.IsError() || !strings.Contains(v.Str, "wrong number of arguments") {
		t.Errorf("GET with no key: got %+v", v)
	}

	v = dispatch(t, r, ks, "GET", "a", "b")
	if !v.IsError() || !strings.Contains(v.Str, "wrong number of arguments") {
		t.Errorf("GET with too many args: got %+v", v)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "SET", "k", "v")
	if v.Kind != protocol.KindSimpleString || v.Str != "OK" {
		t.Fatalf("SET reply: %+v", v)
	}

	v = dispatch(t, r, ks, "GET", "k")
	if v.Kind != protocol.KindBulk || string(v.Bulk) != "v" {
		t.Fatalf("GET reply: %+v", v)
	}
}

func TestGetMissingReturnsNilBulk(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := dispatch(t, r, ks, "GET", "nope")
	if v.Kind != protocol.KindBulk || !v.IsNil {
		t.Errorf("expected nil bulk, got %+v", v)
	}
}

func TestMGetMSet(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "MSET", "a", "1", "b", "2")
	if v.Kind != protocol.KindSimpleString || v.Str != "OK" {
		t.Fatalf("MSET reply: %+v", v)
	}

	v = dispatch(t, r, ks, "MGET", "a", "b", "missing")
	if v.Kind != protocol.KindArray || len(v.Items) != 3 {
		t.Fatalf("MGET reply: %+v", v)
	}
	if string(v.Items[0].Bulk) != "1" || string(v.Items[1].Bulk) != "2" || !v.Items[2].IsNil {
		t.Errorf("unexpected MGET values: %+v", v.Items)
	}
}

func TestMSetOddArgsIsSyntaxError(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := dispatch(t, r, ks, "MSET", "a", "1", "b")
	if !v.IsError() {
		t.Errorf("expected syntax error, got %+v", v)
	}
}

func TestDeleteAndDelAlias(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")
	dispatch(t, r, ks, "SET", "b", "1")

	v := dispatch(t, r, ks, "DELETE", "a")
	if v.Kind != protocol.KindInteger || v.Int != 1 {
		t.Errorf("DELETE reply: %+v", v)
	}

	v = dispatch(t, r, ks, "DEL", "b", "missing")
	if v.Kind != protocol.KindInteger || v.Int != 1 {
		t.Errorf("DEL reply: %+v", v)
	}
}

func TestExists(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	v := dispatch(t, r, ks, "EXISTS", "a", "a", "missing")
	if v.Kind != protocol.KindInteger || v.Int != 2 {
		t.Errorf("EXISTS reply: %+v", v)
	}
}

func TestExpireAndTTL(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	v := dispatch(t, r, ks, "EXPIRE", "a", "60")
	if v.Kind != protocol.KindInteger || v.Int != 1 {
		t.Fatalf("EXPIRE reply: %+v", v)
	}

	v = dispatch(t, r, ks, "TTL", "a")
	if v.Kind != protocol.KindInteger || v.Int <= 0 || v.Int > 60 {
		t.Errorf("TTL reply: %+v", v)
	}
}

func TestExpireNonPositiveIsError(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	v := dispatch(t, r, ks, "EXPIRE", "a", "0")
	if !v.IsError() {
		t.Errorf("expected error for non-positive EXPIRE, got %+v", v)
	}

	v = dispatch(t, r, ks, "EXPIRE", "a", "notanumber")
	if !v.IsError() {
		t.Errorf("expected error for non-numeric EXPIRE, got %+v", v)
	}
}

func TestPExpireAndPTTL(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	dispatch(t, r, ks, "PEXPIRE", "a", "50")
	v := dispatch(t, r, ks, "PTTL", "a")
	if v.Kind != protocol.KindInteger || v.Int <= 0 || v.Int > 50 {
		t.Errorf("PTTL reply: %+v", v)
	}

	time.Sleep(100 * time.Millisecond)
	v = dispatch(t, r, ks, "TTL", "a")
	if v.Int != int64(cache.TTLNoKey) {
		t.Errorf("expected expired key to report TTLNoKey, got %+v", v)
	}
}

func TestTTLNoExpirySentinel(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	v := dispatch(t, r, ks, "TTL", "a")
	if v.Int != int64(cache.TTLNoExpiry) {
		t.Errorf("expected TTLNoExpiry, got %+v", v)
	}
}

func TestTTLNoKeySentinel(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := dispatch(t, r, ks, "TTL", "missing")
	if v.Int != int64(cache.TTLNoKey) {
		t.Errorf("expected TTLNoKey, got %+v", v)
	}
}

func TestKeysGlob(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "user:1", "a")
	dispatch(t, r, ks, "SET", "user:2", "b")
	dispatch(t, r, ks, "SET", "order:1", "c")

	v := dispatch(t, r, ks, "KEYS", "user:*")
	if v.Kind != protocol.KindArray || len(v.Items) != 2 {
		t.Errorf("KEYS reply: %+v", v)
	}
}

func TestFlushAndFlushdbAliases(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	v := dispatch(t, r, ks, "FLUSH")
	if v.Kind != protocol.KindSimpleString || v.Str != "OK" {
		t.Fatalf("FLUSH reply: %+v", v)
	}
	if ks.Len() != 0 {
		t.Errorf("expected empty keyspace after FLUSH, got %d", ks.Len())
	}

	dispatch(t, r, ks, "SET", "b", "1")
	v = dispatch(t, r, ks, "FLUSHDB")
	if v.Str != "OK" || ks.Len() != 0 {
		t.Errorf("FLUSHDB did not clear keyspace: %+v len=%d", v, ks.Len())
	}
}

func TestPing(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "PING")
	if v.Kind != protocol.KindSimpleString || v.Str != "PONG" {
		t.Errorf("PING reply: %+v", v)
	}

	v = dispatch(t, r, ks, "PING", "hello")
	if v.Kind != protocol.KindBulk || string(v.Bulk) != "hello" {
		t.Errorf("PING echo reply: %+v", v)
	}
}

func TestQuitAndShutdownReplyOK(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "QUIT")
	if v.Str != "OK" {
		t.Errorf("QUIT reply: %+v", v)
	}

	v = dispatch(t, r, ks, "SHUTDOWN")
	if v.Str != "OK" {
		t.Errorf("SHUTDOWN reply: %+v", v)
	}
}

func TestQuitAndShutdownWrongArityIsError(t *testing.T) {
	r, ks := newTestRegistry(t)

	v := dispatch(t, r, ks, "QUIT", "extra-arg")
	if !v.IsError() || !strings.Contains(v.Str, "wrong number of arguments") {
		t.Errorf("QUIT with extra arg: got %+v, want an arity error", v)
	}

	v = dispatch(t, r, ks, "SHUTDOWN", "extra-arg")
	if !v.IsError() || !strings.Contains(v.Str, "wrong number of arguments") {
		t.Errorf("SHUTDOWN with extra arg: got %+v, want an arity error", v)
	}
}

func TestInfoReportsConnectionsAndKeys(t *testing.T) {
	r, ks := newTestRegistry(t)
	dispatch(t, r, ks, "SET", "a", "1")

	r.IncConnections()
	defer r.DecConnections()

	v := dispatch(t, r, ks, "INFO")
	if v.Kind != protocol.KindBulk {
		t.Fatalf("INFO reply: %+v", v)
	}
	info := string(v.Bulk)
	if !strings.Contains(info, "connected_clients:1") {
		t.Errorf("expected connected_clients:1 in INFO, got %q", info)
	}
	if !strings.Contains(info, "keys:1") {
		t.Errorf("expected keys:1 in INFO, got %q", info)
	}
	if !strings.Contains(info, "uptime_seconds:") {
		t.Errorf("expected uptime_seconds in INFO, got %q", info)
	}
}

func TestCommandNamesCaseInsensitive(t *testing.T) {
	r, ks := newTestRegistry(t)
	v := dispatch(t, r, ks, "set", "k", "v")
	if v.Str != "OK" {
		t.Errorf("lowercase command failed: %+v", v)
	}
}
