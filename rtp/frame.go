package rtp

import (
	"encoding/binary"
	"fmt"
)

// headerSize is the fixed RTP header length in bytes. Datagrams shorter
// than this cannot carry a frame.
const headerSize = 12

// Frame represents a single media frame carried by one RTP datagram.
//
// A Frame is immutable after parsing: the receiver hands ownership to the
// sink on delivery and keeps no reference to it afterward.
type Frame struct {
	// PayloadType identifies the media encoding (7 bits).
	PayloadType uint8

	// Marker is the RTP marker bit, typically set on the last packet of
	// a video frame or a talkspurt boundary.
	Marker bool

	// SequenceNumber increments by one per datagram sent by the source.
	SequenceNumber uint16

	// Timestamp is the media timestamp in source clock units.
	Timestamp uint32

	// Payload holds the encoded media data. May be empty.
	Payload []byte
}

// ParseFrame decodes a received datagram into a Frame.
//
// Layout: byte 0 is reserved and ignored; byte 1 carries the marker bit
// (bit 7) and payload type (bits 0-6); bytes 2-3 are the big-endian
// sequence number; bytes 4-7 the big-endian timestamp; bytes 8-11 the
// source identifier (ignored); everything after byte 11 is payload.
//
// Returns ErrShortPacket if the datagram is smaller than the 12-byte
// header. The payload is copied, so the caller may reuse the datagram
// buffer immediately.
func ParseFrame(datagram []byte) (*Frame, error) {
	if len(datagram) < headerSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrShortPacket, len(datagram), headerSize)
	}

	frame := &Frame{
		PayloadType:    datagram[1] & 0x7F,
		Marker:         datagram[1]&0x80 != 0,
		SequenceNumber: binary.BigEndian.Uint16(datagram[2:4]),
		Timestamp:      binary.BigEndian.Uint32(datagram[4:8]),
		Payload:        make([]byte, len(datagram)-headerSize),
	}
	copy(frame.Payload, datagram[headerSize:])

	return frame, nil
}

// String returns a short human-readable summary, useful in logs.
func (f *Frame) String() string {
	return fmt.Sprintf("frame seq=%d ts=%d pt=%d marker=%t len=%d",
		f.SequenceNumber, f.Timestamp, f.PayloadType, f.Marker, len(f.Payload))
}
