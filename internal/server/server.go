// Package server implements the CacheMir connection server: the TCP accept
// loop and per-connection session state machine that sit on top of the
// RESP codec and the command registry.
//
// Architecture:
//   - TCP listener, one goroutine per accepted connection
//   - RESP (or inline) decode -> command dispatch -> RESP encode, in strict
//     per-connection order
//   - Shutdown: the SHUTDOWN command (or a caller's Stop) closes the
//     listener; Stop then waits for live sessions to end on their own
//
// Example usage:
//
//	srv := server.New(cfg, cache.New())
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cachemir/cachemir/internal/command"
	"github.com/cachemir/cachemir/pkg/cache"
	"github.com/cachemir/cachemir/pkg/config"
	"github.com/cachemir/cachemir/pkg/protocol"
)

// Server represents a CacheMir connection server instance. It owns the TCP
// listener and the command registry, and tracks live connection goroutines
// so Stop can wait for them to drain.
//
// Example:
//
//	srv := server.New(cfg, cache.New())
//	go func() {
//		if err := srv.Start(); err != nil {
//			log.Printf("server error: %v", err)
//		}
//	}()
//	// later
//	srv.Stop()
type Server struct {
	cfg      *config.ServerConfig
	keyspace *cache.Keyspace
	registry *command.Registry
	listener net.Listener

	mu       sync.Mutex
	wg       sync.WaitGroup
	stopping bool
}

// New creates a Server bound to cfg's host/port, serving ks. The server is
// not listening until Start is called.
func New(cfg *config.ServerConfig, ks *cache.Keyspace) *Server {
	return &Server{
		cfg:      cfg,
		keyspace: ks,
		registry: command.NewRegistry(),
	}
}

// Start binds the TCP listener and accepts connections until Stop is
// called. It blocks; run it in its own goroutine to manage the server
// alongside signal handling.
func (s *Server) Start() error {
	addr := s.cfg.Address()
	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	log.Printf("CacheMir server listening on %s", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isStopping() {
				return nil
			}
			log.Printf("failed to accept connection: %v", err)
			continue
		}

		s.wg.Add(1)
		s.registry.IncConnections()
		go s.handleConnection(conn)
	}
}

func (s *Server) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// Addr returns the listener's bound address, or nil if Start has not yet
// bound it. Useful for tests that bind an ephemeral port (":0") and need
// to learn which port was actually assigned.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener, refuses further connections, and waits for
// every in-flight handler to finish before returning — spec.md's
// requirement that in-flight handlers run to completion on shutdown.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.stopping = true
	listener := s.listener
	s.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	s.wg.Wait()
	return err
}

// handleConnection drives one client session: READING -> DISPATCHING ->
// WRITING, in strict receipt order, until a codec error, a transport error
// (an expired read deadline included), or QUIT ends the session. Server
// shutdown does not interrupt a live session: the session keeps serving
// requests until one of those ends it.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.registry.DecConnections()
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
	}()

	dec := protocol.NewDecoder(conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(time.Duration(s.cfg.ReadTimeout) * time.Second)); err != nil {
			log.Printf("error setting read deadline: %v", err)
			return
		}

		req, err := dec.Decode()
		if err != nil {
			if perr, ok := err.(*protocol.ProtocolError); ok {
				s.writeReply(conn, protocol.Err(perr.Error()))
			}
			return
		}

		closeAfter, shutdown := requestControl(req)
		reply := command.Dispatch(s.registry, s.keyspace, req.Items)

		if err := conn.SetWriteDeadline(time.Now().Add(time.Duration(s.cfg.WriteTimeout) * time.Second)); err != nil {
			log.Printf("error setting write deadline: %v", err)
			return
		}
		if err := s.writeReply(conn, reply); err != nil {
			return
		}

		// A wrong-arity QUIT/SHUTDOWN dispatches to an error reply, not OK;
		// the session and the server must both stay up in that case.
		if reply.IsError() {
			continue
		}

		if shutdown {
			log.Printf("SHUTDOWN received, stopping server")
			go s.Stop()
			return
		}
		if closeAfter {
			return
		}
	}
}

func (s *Server) writeReply(conn net.Conn, v protocol.Value) error {
	if err := v.Encode(conn); err != nil {
		log.Printf("failed to write reply: %v", err)
		return err
	}
	return nil
}

// requestControl inspects a decoded request for the two commands the
// connection server itself must act on after dispatch: QUIT (close this
// session) and SHUTDOWN (close the whole server). The command registry
// still validates and replies to these normally; this only decides what
// happens to the socket afterward.
func requestControl(req protocol.Value) (closeAfter bool, shutdown bool) {
	if req.Kind != protocol.KindArray || len(req.Items) == 0 {
		return false, false
	}
	first := req.Items[0]
	if first.Kind != protocol.KindBulk {
		return false, false
	}
	name := strings.ToUpper(string(first.Bulk))
	return name == "QUIT", name == "SHUTDOWN"
}
