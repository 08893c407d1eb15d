// Package rtsp implements the control plane of a streaming session: the
// text request/response wire format and the channel that exchanges
// messages over a persistent connection.
//
// Requests are plain ASCII: a request line (`METHOD resource RTSP/1.0`),
// header lines (`Name: value`) with CSeq always first, and a terminating
// blank line. Responses mirror the shape with a status line
// (`RTSP/1.0 code reason`).
//
// The Channel serializes exchanges: the protocol has no request
// identifiers, so only one request may be outstanding at a time.
// Transport failures poison the channel permanently; parse failures fail
// only the current exchange.
package rtsp
