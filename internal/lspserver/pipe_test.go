package lspserver

import (
	"io"
	"sync"
	"testing"

	"go.lsp.dev/jsonrpc2"
)

// pipeEnd is one direction of an in-memory connection.
type pipeEnd struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newPipeEnd() *pipeEnd {
	p := &pipeEnd{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *pipeEnd) Read(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.buf) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(data, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

func (p *pipeEnd) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	p.buf = append(p.buf, data...)
	p.cond.Signal()
	return len(data), nil
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.cond.Broadcast()
	return nil
}

// duplex joins a read end and a write end. Closing it closes both, which
// unblocks the peer's reader.
type duplex struct {
	in  *pipeEnd
	out *pipeEnd
}

func (d duplex) Read(p []byte) (int, error)  { return d.in.Read(p) }
func (d duplex) Write(p []byte) (int, error) { return d.out.Write(p) }
func (d duplex) Close() error {
	_ = d.in.Close()
	return d.out.Close()
}

// testPipe creates an in-memory connected pair of jsonrpc2 connections.
// Returns (clientConn, serverConn).
func testPipe(t *testing.T) (jsonrpc2.Conn, jsonrpc2.Conn) {
	t.Helper()

	c2s := newPipeEnd()
	s2c := newPipeEnd()

	clientConn := jsonrpc2.NewConn(jsonrpc2.NewStream(duplex{in: s2c, out: c2s}))
	serverConn := jsonrpc2.NewConn(jsonrpc2.NewStream(duplex{in: c2s, out: s2c}))

	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	return clientConn, serverConn
}
