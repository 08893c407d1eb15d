package rtp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures delivered frames and decode errors for
// inspection.
type recordingSink struct {
	mu     sync.Mutex
	frames []*Frame
	errors []error
}

func (s *recordingSink) OnFrame(frame *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingSink) OnDecodeError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

func (s *recordingSink) Frames() []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Frame(nil), s.frames...)
}

func (s *recordingSink) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errors...)
}

// testEndpoints returns a listening endpoint and a connected sender
// socket aimed at it.
func testEndpoints(t *testing.T) (net.PacketConn, net.Conn) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	sender, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sender.Close() })

	return conn, sender
}

// datagram builds a valid 12-byte-header datagram with the given
// sequence number and payload.
func datagram(seq uint16, payload []byte) []byte {
	d := make([]byte, 12+len(payload))
	d[0] = 0x80
	d[2] = byte(seq >> 8)
	d[3] = byte(seq)
	copy(d[12:], payload)
	return d
}

// waitForFrames polls until the sink holds at least n frames or the
// deadline expires.
func waitForFrames(t *testing.T, sink *recordingSink, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.Frames()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(sink.Frames()))
}

func TestReceiverDeliversFramesInOrder(t *testing.T) {
	conn, sender := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))
	defer recv.Stop()

	for seq := uint16(1); seq <= 5; seq++ {
		_, err := sender.Write(datagram(seq, []byte("payload")))
		require.NoError(t, err)
	}

	waitForFrames(t, sink, 5)

	frames := sink.Frames()
	for i, frame := range frames[:5] {
		assert.Equal(t, uint16(i+1), frame.SequenceNumber)
		assert.Equal(t, []byte("payload"), frame.Payload)
	}
}

func TestReceiverSurvivesCorruptDatagram(t *testing.T) {
	conn, sender := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))
	defer recv.Stop()

	_, err := sender.Write([]byte{0x80, 0x00, 0x01})
	require.NoError(t, err)
	_, err = sender.Write(datagram(7, []byte("after")))
	require.NoError(t, err)

	waitForFrames(t, sink, 1)

	frames := sink.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, uint16(7), frames[0].SequenceNumber)

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrShortPacket)
}

func TestReceiverStopBlocksFurtherDelivery(t *testing.T) {
	conn, sender := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))

	_, err := sender.Write(datagram(1, nil))
	require.NoError(t, err)
	waitForFrames(t, sink, 1)

	recv.Stop()
	delivered := len(sink.Frames())

	_, err = sender.Write(datagram(2, nil))
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, delivered, len(sink.Frames()),
		"no frames may arrive after Stop returns")
	assert.False(t, recv.Active())
}

func TestReceiverStopReturnsWithinTimeout(t *testing.T) {
	conn, _ := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))

	// No datagrams at all: Stop must not stall past one read timeout.
	start := time.Now()
	recv.Stop()
	assert.Less(t, time.Since(start), readTimeout+time.Second)
}

func TestReceiverStartWhileActive(t *testing.T) {
	conn, _ := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))
	defer recv.Stop()

	assert.ErrorIs(t, recv.Start(conn, sink), ErrReceiverActive)
}

func TestReceiverStopWhenIdle(t *testing.T) {
	recv := NewReceiver()
	recv.Stop()
	recv.Stop()
	assert.False(t, recv.Active())
}

func TestReceiverTreatsClosedEndpointAsExit(t *testing.T) {
	conn, _ := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))

	// Closing the endpoint unblocks the pending read; the loop must
	// exit cleanly rather than spin or report a stream failure.
	require.NoError(t, conn.Close())

	done := make(chan struct{})
	go func() {
		recv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after endpoint closure")
	}
	assert.Empty(t, sink.Errors())
}

func TestReceiverRestartAfterStop(t *testing.T) {
	conn, sender := testEndpoints(t)
	sink := &recordingSink{}

	recv := NewReceiver()
	require.NoError(t, recv.Start(conn, sink))
	recv.Stop()

	require.NoError(t, recv.Start(conn, sink))
	defer recv.Stop()

	_, err := sender.Write(datagram(9, []byte("again")))
	require.NoError(t, err)
	waitForFrames(t, sink, 1)
}
