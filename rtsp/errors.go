package rtsp

import "errors"

// Sentinel errors for the rtsp package.
// These errors enable reliable error classification using errors.Is().

// Codec errors. A codec failure leaves the channel usable: the transport
// itself is healthy, only the current exchange is lost.
var (
	// ErrMalformedStatusLine indicates a status line that does not split
	// into version, numeric code, and reason.
	ErrMalformedStatusLine = errors.New("malformed status line")

	// ErrMalformedHeader indicates a header line with no colon separator.
	ErrMalformedHeader = errors.New("malformed header line")

	// ErrUnexpectedEOF indicates the stream closed before the blank line
	// terminating the header block.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")
)

// Transport errors.
var (
	// ErrConnectionLost indicates a transport-level read or write
	// failure. The channel is unusable afterward.
	ErrConnectionLost = errors.New("control connection lost")
)
