package rtp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// bufferLength bounds the size of a single datagram. Larger
	// datagrams are truncated by the kernel and will fail to decode.
	bufferLength = 0x10000

	// readTimeout is the bounded wait on each datagram read. Timeouts
	// are liveness checks only: the loop re-checks cancellation and
	// keeps waiting.
	readTimeout = 2 * time.Second
)

// FrameSink consumes decoded frames. OnFrame is invoked once per received
// datagram, in arrival order, from the receiver's goroutine. The sink owns
// the Frame after the call returns.
type FrameSink interface {
	OnFrame(frame *Frame)
}

// DecodeErrorSink may additionally be implemented by a FrameSink to be
// notified of per-datagram decode failures. Decode failures are non-fatal;
// the receive loop continues regardless.
type DecodeErrorSink interface {
	OnDecodeError(err error)
}

// Receiver reads datagrams from a packet endpoint in a single long-lived
// background goroutine, decodes each into a Frame, and delivers it to the
// registered sink.
//
// The receiver never closes the endpoint: endpoint lifecycle belongs to
// whoever opened it. Closing the endpoint while a read is pending is a
// normal way to unblock the loop and is treated as cancellation, not as a
// failure.
type Receiver struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReceiver creates an idle receiver. Start must be called to begin
// reading.
func NewReceiver() *Receiver {
	return &Receiver{}
}

// Start begins receiving datagrams from conn and delivering decoded frames
// to sink. At most one receive loop may run at a time; Start returns
// ErrReceiverActive if one is already running.
func (r *Receiver) Start(conn net.PacketConn, sink FrameSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return ErrReceiverActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	logrus.WithFields(logrus.Fields{
		"function":   "Start",
		"local_addr": conn.LocalAddr().String(),
	}).Info("Starting frame receiver")

	go r.receiveLoop(ctx, conn, sink, done)

	return nil
}

// Stop cancels the receive loop and blocks until it has exited. After Stop
// returns, no further sink invocations will occur. Stopping an idle
// receiver is a no-op.
func (r *Receiver) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if done == nil {
		return
	}

	cancel()
	<-done

	logrus.WithField("function", "Stop").Info("Frame receiver stopped")
}

// Active reports whether a receive loop is currently running.
func (r *Receiver) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// receiveLoop is the receiver's background task. It exits only on
// cancellation or when the endpoint is closed underneath it.
func (r *Receiver) receiveLoop(ctx context.Context, conn net.PacketConn, sink FrameSink, done chan struct{}) {
	defer close(done)

	buffer := make([]byte, bufferLength)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		n, _, err := conn.ReadFrom(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Liveness check only, go re-check cancellation.
				continue
			}
			// A closed endpoint unblocks the pending read; this is a
			// normal exit signal when teardown races the loop.
			if ctx.Err() == nil {
				logrus.WithFields(logrus.Fields{
					"function": "receiveLoop",
					"error":    err.Error(),
				}).Info("Datagram endpoint closed, stopping receive loop")
			}
			return
		}

		frame, err := ParseFrame(buffer[:n])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "receiveLoop",
				"length":   n,
				"error":    err.Error(),
			}).Warn("Discarding undecodable datagram")
			if reporter, ok := sink.(DecodeErrorSink); ok {
				reporter.OnDecodeError(err)
			}
			continue
		}

		sink.OnFrame(frame)
	}
}
