// Package testutil provides a minimal RESP client used only by this
// module's own integration tests to drive a real TCP connection against
// internal/server. It is adapted from the teacher's public client SDK
// (pkg/client in the original cachemir retrieval), stripped of multi-node
// connection pooling and consistent-hash routing: those exist to distribute
// load across a cluster, and this server is explicitly single-node.
//
// This is not a general-purpose client library; it lives under internal/
// and is not meant to be imported outside this module.
package testutil

import (
	"fmt"
	"net"
	"time"

	"github.com/cachemir/cachemir/pkg/protocol"
)

// Client is a single-connection RESP client for tests.
type Client struct {
	conn net.Conn
	dec  *protocol.Decoder
}

// Dial connects to addr with a bounded handshake timeout.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("testutil: dial %s: %w", addr, err)
	}
	return &Client{conn: conn, dec: protocol.NewDecoder(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends a command (name plus arguments) as a RESP array of bulk strings
// and returns the decoded reply.
func (c *Client) Do(args ...string) (protocol.Value, error) {
	items := make([]protocol.Value, len(args))
	for i, a := range args {
		items[i] = protocol.BulkFromString(a)
	}
	req := protocol.Array(items)

	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return protocol.Value{}, err
	}
	if err := req.Encode(c.conn); err != nil {
		return protocol.Value{}, fmt.Errorf("testutil: write request: %w", err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return protocol.Value{}, err
	}
	return c.dec.Decode()
}

// SendRaw writes raw bytes directly to the connection, bypassing the RESP
// encoder. Used by protocol tests that need to exercise malformed frames.
func (c *Client) SendRaw(b []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return err
	}
	_, err := c.conn.Write(b)
	return err
}

// ReadReply decodes one reply from the connection. Used alongside SendRaw.
func (c *Client) ReadReply() (protocol.Value, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return protocol.Value{}, err
	}
	return c.dec.Decode()
}
