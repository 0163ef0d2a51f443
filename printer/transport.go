package printer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Transport is a byte channel to a printer.
type Transport interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Close() error
}

// -------------------- RAW --------------------

// RawTransport passes bytes through unchanged (JetDirect port 9100, USB,
// serial, spooler).
type RawTransport struct {
	conn io.ReadWriteCloser
}

func (r *RawTransport) Write(b []byte) (int, error) { return r.conn.Write(b) }
func (r *RawTransport) Read(b []byte) (int, error)  { return r.conn.Read(b) }
func (r *RawTransport) Close() error                { return r.conn.Close() }

// -------------------- LPD --------------------

// lpdAckTimeout bounds each wait for a daemon acknowledgement.
const lpdAckTimeout = 5 * time.Second

// LPDTransport buffers written bytes and submits them as one RFC 1179 print
// job on Close.
type LPDTransport struct {
	Logger *slog.Logger

	conn   net.Conn
	queue  string
	jobBuf bytes.Buffer
	closed bool
	mu     sync.Mutex

	// jobID is overridable in tests.
	jobID func() int
}

// NewLPDTransport returns a transport for queue on conn; an empty queue
// means "lp".
func NewLPDTransport(conn net.Conn, queue string) *LPDTransport {
	if queue == "" {
		queue = "lp"
	}
	return &LPDTransport{
		conn:  conn,
		queue: queue,
		jobID: func() int { return int(time.Now().UnixNano() % 1000) },
	}
}

func (l *LPDTransport) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *LPDTransport) Write(data []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	return l.jobBuf.Write(data)
}

func (l *LPDTransport) Read(b []byte) (int, error) {
	return l.conn.Read(b)
}

// Close submits the buffered job, if any, and closes the connection.
func (l *LPDTransport) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	if l.jobBuf.Len() == 0 {
		l.logger().Debug("lpd job empty, closing connection", "queue", l.queue)
		return l.conn.Close()
	}

	if err := l.flushJob(); err != nil {
		_ = l.conn.Close()
		return err
	}
	return l.conn.Close()
}

func (l *LPDTransport) flushJob() error {
	host, _ := os.Hostname()
	if host == "" {
		host = "localhost"
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "escpos"
	}

	jobID := l.jobID() % 1000
	cfName := fmt.Sprintf("cfA%03d%s", jobID, host)
	dfName := fmt.Sprintf("dfA%03d%s", jobID, host)

	// H host, P user, J job name, l print data file raw, U unlink, N name
	control := fmt.Sprintf(
		"H%s\nP%s\nJreceipt-%03d\nl%s\nU%s\nN%s\n",
		host, user, jobID, dfName, dfName, dfName,
	)

	log := l.logger().With("queue", l.queue, "job", jobID)

	if err := requestPrintJob(l.conn, l.queue); err != nil {
		return fmt.Errorf("lpd receive job: %w", err)
	}
	if err := sendSubcommand(l.conn, 0x02, cfName, []byte(control), "control file"); err != nil {
		return fmt.Errorf("lpd control file: %w", err)
	}
	data := l.jobBuf.Bytes()
	if err := sendSubcommand(l.conn, 0x03, dfName, data, "data file"); err != nil {
		return fmt.Errorf("lpd data file: %w", err)
	}

	log.Debug("lpd job submitted", "bytes", len(data))
	l.jobBuf.Reset()
	return nil
}

// -------------------- LPD helpers --------------------

// requestPrintJob sends "\x02<queue>\n".
func requestPrintJob(conn net.Conn, queue string) error {
	if err := writeAll(conn, append([]byte{0x02}, queue+"\n"...)); err != nil {
		return err
	}
	return readAck(conn, "receive job")
}

// sendSubcommand sends "<code><size> <name>\n", the payload and a NUL.
func sendSubcommand(conn net.Conn, code byte, name string, payload []byte, stage string) error {
	header := append([]byte{code}, strconv.Itoa(len(payload))+" "+name+"\n"...)
	if err := writeAll(conn, header); err != nil {
		return err
	}
	if err := readAck(conn, stage+" header"); err != nil {
		return err
	}
	if err := writeAll(conn, payload); err != nil {
		return err
	}
	if err := writeAll(conn, []byte{0x00}); err != nil {
		return err
	}
	return readAck(conn, stage)
}

func readAck(conn net.Conn, stage string) error {
	_ = conn.SetReadDeadline(time.Now().Add(lpdAckTimeout))
	defer conn.SetReadDeadline(time.Time{})

	ack := make([]byte, 1)
	n, err := conn.Read(ack)
	if err != nil {
		return fmt.Errorf("reading ack on %s: %w", stage, err)
	}
	if n != 1 || ack[0] != 0x00 {
		return fmt.Errorf("request not acknowledged on %s (0x%02x)", stage, ack[0])
	}
	return nil
}

func writeAll(conn net.Conn, b []byte) error {
	sent := 0
	for sent < len(b) {
		n, err := conn.Write(b[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

// -------------------- helpers --------------------

type nopCloser struct {
	io.ReadWriter
}

func (n nopCloser) Close() error { return nil }
