package rtsp

import (
	"bytes"
	"fmt"
)

// Version is the protocol version token sent on every request line.
const Version = "RTSP/1.0"

// crlf is the canonical line terminator. Responses are parsed leniently
// (a bare LF is accepted) but requests always emit CRLF.
const crlf = "\r\n"

// Header is a single name/value pair. Extra headers keep their insertion
// order on the wire.
type Header struct {
	Name  string
	Value string
}

// Request is one control-channel request. It is immutable once
// constructed; build a fresh Request per exchange.
type Request struct {
	// Method is the request method token (SETUP, PLAY, ...).
	Method string

	// Resource identifies the stream the request applies to.
	Resource string

	// Sequence is the CSeq value. The session assigns these
	// monotonically, one per issued request.
	Sequence uint32

	// SessionID is the server-assigned session identifier, present on
	// every request after setup. Zero means absent.
	SessionID uint64

	// Headers are additional headers, emitted in order after CSeq and
	// Session.
	Headers []Header
}

// Encode serializes the request to wire form: the request line, CSeq
// first, Session when present, extra headers in insertion order, then a
// blank line. Requests carry no body.
func (r *Request) Encode() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s %s %s%s", r.Method, r.Resource, Version, crlf)
	fmt.Fprintf(&buf, "CSeq: %d%s", r.Sequence, crlf)
	if r.SessionID != 0 {
		fmt.Fprintf(&buf, "Session: %d%s", r.SessionID, crlf)
	}
	for _, h := range r.Headers {
		fmt.Fprintf(&buf, "%s: %s%s", h.Name, h.Value, crlf)
	}
	buf.WriteString(crlf)

	return buf.Bytes()
}
