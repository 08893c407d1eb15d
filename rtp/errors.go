package rtp

import "errors"

// Sentinel errors for the rtp package.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrShortPacket indicates a datagram too small to hold the fixed
	// 12-byte header. Reported per datagram; never fatal to the stream.
	ErrShortPacket = errors.New("datagram shorter than RTP header")

	// ErrReceiverActive indicates Start was called while a previous
	// receive loop is still running.
	ErrReceiverActive = errors.New("receiver already active")
)
