package printer

import (
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
)

// lpdPort is the well-known line printer daemon port (RFC 1179).
const lpdPort = "515"

// Printer sends command streams to a device over a Transport. It is safe
// for concurrent use; writes are serialized.
type Printer struct {
	t Transport

	sync.Mutex
}

// NewPrinter wraps w in a transport. A network connection to port 515 is
// spoken to as an LPD queue named "lp", any other connection gets the
// bytes as they are.
func NewPrinter(w io.ReadWriter) (*Printer, error) {
	if w == nil {
		return nil, fmt.Errorf("printer connection is nil")
	}

	var transport Transport
	if conn, ok := w.(net.Conn); ok {
		if isLPDAddr(conn.RemoteAddr()) {
			transport = NewLPDTransport(conn, "lp")
		} else {
			transport = &RawTransport{conn: conn}
		}
	} else if rc, ok := w.(io.ReadWriteCloser); ok {
		transport = &RawTransport{conn: rc}
	} else {
		transport = &RawTransport{conn: nopCloser{w}}
	}
	return newPrinter(transport), nil
}

func newPrinter(t Transport) *Printer {
	return &Printer{t: t}
}

func isLPDAddr(addr net.Addr) bool {
	if addr == nil {
		return false
	}
	return strings.HasSuffix(addr.String(), ":"+lpdPort)
}

// Send writes the whole stream, retrying short writes.
func (p *Printer) Send(s Stream) (int, error) {
	p.Lock()
	defer p.Unlock()

	sent := 0
	for sent < len(s) {
		n, err := p.t.Write(s[sent:])
		sent += n
		if err != nil {
			return sent, err
		}
		if n == 0 {
			return sent, io.ErrShortWrite
		}
	}
	return sent, nil
}

// CloseConnection finishes the job and releases the device. For LPD this
// is when the buffered job is submitted.
func (p *Printer) CloseConnection() error {
	p.Lock()
	defer p.Unlock()
	return p.t.Close()
}
