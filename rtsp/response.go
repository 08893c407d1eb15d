package rtsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Response is one parsed control-channel response. It is produced fresh
// per exchange and never mutated afterward.
type Response struct {
	// Version is the protocol version token from the status line.
	Version string

	// StatusCode is the numeric status from the status line.
	StatusCode int

	// Reason is the human-readable reason phrase, server-provided.
	Reason string

	// headers maps lowercased header names to values. Repeated headers
	// keep the last occurrence.
	headers map[string]string
}

// Header returns the value of the named header, matched
// case-insensitively, and whether it was present.
func (r *Response) Header(name string) (string, bool) {
	value, ok := r.headers[strings.ToLower(name)]
	return value, ok
}

// ReadResponse parses one response from r: a status line, then headers
// until a blank line. Header casing is preserved on lookup via Header;
// a repeated header keeps its last value.
//
// Errors: ErrMalformedStatusLine when the status line does not split into
// version, integer code, and reason; ErrMalformedHeader when a header
// line has no colon; ErrUnexpectedEOF when the stream ends before the
// terminating blank line.
func ReadResponse(r *bufio.Reader) (*Response, error) {
	statusLine, err := readLine(r)
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(statusLine, " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStatusLine, statusLine)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric status %q", ErrMalformedStatusLine, parts[1])
	}

	resp := &Response{
		Version:    parts[0],
		StatusCode: code,
		Reason:     parts[2],
		headers:    make(map[string]string),
	}

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return resp, nil
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		resp.headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
}

// readLine reads one line, accepting either CRLF or a bare LF terminator.
// A stream that ends mid-response maps to ErrUnexpectedEOF.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
