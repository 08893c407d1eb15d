package rtsp

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel owns the persistent control connection and performs synchronous
// request/response exchanges on it.
//
// The protocol carries no request identifiers, so interleaved exchanges
// would be unparseable: exactly one exchange may be in flight at a time.
// Concurrent callers of Send are serialized; later callers block until
// the current exchange completes.
type Channel struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	broken bool
}

// Dial opens a control connection to the given server.
func Dial(host string, port int) (*Channel, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing control endpoint %s: %w", addr, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Dial",
		"addr":     addr,
	}).Info("Control connection established")

	return NewChannel(conn), nil
}

// NewChannel wraps an already established connection. Useful for tests
// driving the channel over an in-memory pipe.
func NewChannel(conn net.Conn) *Channel {
	return &Channel{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Send writes the request and blocks until a full response has been
// parsed or an error occurs.
//
// A transport-level failure returns an error matching ErrConnectionLost
// and marks the channel broken; subsequent Send calls fail immediately.
// Codec failures (malformed status line or header, truncated response)
// are returned as-is and leave the channel usable.
func (c *Channel) Send(req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return nil, ErrConnectionLost
	}

	logrus.WithFields(logrus.Fields{
		"function": "Send",
		"method":   req.Method,
		"cseq":     req.Sequence,
	}).Debug("Issuing control request")

	if _, err := c.conn.Write(req.Encode()); err != nil {
		c.broken = true
		return nil, fmt.Errorf("%w: writing %s request: %v", ErrConnectionLost, req.Method, err)
	}

	resp, err := ReadResponse(c.reader)
	if err != nil {
		if isCodecError(err) {
			return nil, err
		}
		c.broken = true
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrConnectionLost, req.Method, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Send",
		"method":   req.Method,
		"cseq":     req.Sequence,
		"status":   resp.StatusCode,
	}).Debug("Control response received")

	return resp, nil
}

// Broken reports whether the channel has seen a transport failure and is
// no longer usable.
func (c *Channel) Broken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

// Close shuts the control connection. Safe to call more than once; the
// close error is swallowed, teardown is best-effort.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.broken = true
	_ = c.conn.Close()
}

// isCodecError reports whether err is a parse-level failure rather than a
// transport one.
func isCodecError(err error) bool {
	return errors.Is(err, ErrMalformedStatusLine) ||
		errors.Is(err, ErrMalformedHeader) ||
		errors.Is(err, ErrUnexpectedEOF)
}
