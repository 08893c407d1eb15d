// Package rtp implements the data plane of a streaming session: decoding
// RTP datagrams into frames and receiving them in the background.
//
// The package has two halves:
//
//   - Frame and ParseFrame handle the fixed 12-byte RTP header layout.
//     One datagram always carries exactly one frame; there is no
//     fragmentation, padding, or loss recovery.
//
//   - Receiver runs a single cancellable goroutine that reads datagrams
//     from a packet endpoint, decodes each one, and delivers the result
//     to a FrameSink in arrival order.
//
// A corrupt datagram is reported (via DecodeErrorSink, when the sink
// implements it) and skipped; only cancellation or closure of the
// endpoint stops the stream.
//
// Example:
//
//	conn, _ := net.ListenPacket("udp", ":0")
//	recv := rtp.NewReceiver()
//	if err := recv.Start(conn, sink); err != nil {
//	    log.Fatal(err)
//	}
//	// ... later ...
//	recv.Stop() // blocks until the loop has exited
//	conn.Close()
package rtp
