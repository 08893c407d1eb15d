// Package streamctl implements a client for session-controlled media
// streaming: a persistent text control connection drives stream setup and
// playback, while media frames arrive concurrently as RTP datagrams on a
// UDP endpoint and are handed to a caller-supplied sink.
//
// Example:
//
//	session, err := streamctl.New("media.example.com", 554)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	session.SetSink(sink) // sink implements rtp.FrameSink
//
//	if err := session.Setup("movie.mjpeg"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Play(); err != nil {
//	    log.Fatal(err)
//	}
//	// frames now flow to sink.OnFrame ...
//	session.Teardown()
package streamctl

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamctl/rtp"
	"github.com/opd-ai/streamctl/rtsp"
)

// State is the lifecycle state of a streaming session.
type State uint8

const (
	// StateIdle means no stream is set up. Initial state, and the state
	// after a successful teardown.
	StateIdle State = iota
	// StateReady means a stream is set up but not playing.
	StateReady
	// StatePlaying means frames are being received.
	StatePlaying
	// StateClosed is terminal; no further operations are legal.
	StateClosed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReady:
		return "Ready"
	case StatePlaying:
		return "Playing"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Session is a streaming session bound to one control connection.
//
// All lifecycle operations are mutually exclusive: a single mutex covers
// Setup, Play, Pause, Teardown, and Close. The frame receiver runs
// concurrently on its own endpoint and needs no part of that lock.
type Session struct {
	mu sync.Mutex

	channel  *rtsp.Channel
	dataConn net.PacketConn
	receiver *rtp.Receiver
	sink     rtp.FrameSink

	state     State
	cseq      uint32
	sessionID uint64
	resource  string
}

// New establishes the control connection to a streaming server. No
// request is sent and no stream is set up at this point.
func New(host string, port int) (*Session, error) {
	channel, err := rtsp.Dial(host, port)
	if err != nil {
		return nil, err
	}
	return NewWithChannel(channel), nil
}

// NewWithChannel builds a session around an existing control channel.
// Tests use this to drive the state machine over an in-memory pipe.
func NewWithChannel(channel *rtsp.Channel) *Session {
	return &Session{
		channel:  channel,
		receiver: rtp.NewReceiver(),
		state:    StateIdle,
	}
}

// SetSink registers the consumer of decoded frames. Must be called
// before Play. Replacing the sink while playing does not affect the
// running receiver.
func (s *Session) SetSink(sink rtp.FrameSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the server-assigned session identifier, or zero when
// no session is active.
func (s *Session) SessionID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Setup requests the server to prepare the named resource for streaming.
// Legal only from Idle. A local datagram endpoint is allocated and its
// port is advertised to the server in the Transport header; the server
// must answer 200 with a positive integer Session header. On any failure
// the endpoint is released again and the session stays Idle.
func (s *Session) Setup(resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: setup from %s", ErrInvalidTransition, s.state)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("allocating datagram endpoint: %w", err)
	}
	localPort := conn.LocalAddr().(*net.UDPAddr).Port

	resp, err := s.exchange(&rtsp.Request{
		Method:   "SETUP",
		Resource: resource,
		Headers: []rtsp.Header{
			{Name: "Transport", Value: fmt.Sprintf("RTP/UDP; client_port= %d", localPort)},
		},
	})
	if err != nil {
		_ = conn.Close()
		return err
	}

	sessionID, err := parseSessionHeader(resp)
	if err != nil {
		_ = conn.Close()
		return err
	}

	s.dataConn = conn
	s.sessionID = sessionID
	s.resource = resource
	s.state = StateReady

	logrus.WithFields(logrus.Fields{
		"function":   "Setup",
		"resource":   resource,
		"session_id": sessionID,
		"local_port": localPort,
	}).Info("Stream set up")

	return nil
}

// Play starts playback. Legal only from Ready. On success the frame
// receiver is started on the endpoint allocated by Setup and frames flow
// to the registered sink until Pause, Teardown, or Close.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("%w: play from %s", ErrInvalidTransition, s.state)
	}
	if s.sink == nil {
		return ErrNoSink
	}

	if _, err := s.exchange(&rtsp.Request{
		Method:    "PLAY",
		Resource:  s.resource,
		SessionID: s.sessionID,
	}); err != nil {
		return err
	}

	if err := s.receiver.Start(s.dataConn, s.sink); err != nil {
		return err
	}
	s.state = StatePlaying

	logrus.WithFields(logrus.Fields{
		"function":   "Play",
		"resource":   s.resource,
		"session_id": s.sessionID,
	}).Info("Playback started")

	return nil
}

// Pause suspends playback. Legal only from Playing. On success the
// receiver is stopped, blocking until no further frames can be
// delivered; on failure the receiver keeps running.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, s.state)
	}

	if _, err := s.exchange(&rtsp.Request{
		Method:    "PAUSE",
		Resource:  s.resource,
		SessionID: s.sessionID,
	}); err != nil {
		return err
	}

	s.receiver.Stop()
	s.state = StateReady

	logrus.WithFields(logrus.Fields{
		"function":   "Pause",
		"session_id": s.sessionID,
	}).Info("Playback paused")

	return nil
}

// Teardown ends the stream. Legal from Ready or Playing. On success any
// active receiver is stopped, the datagram endpoint is closed, the
// session identifier is cleared, and the session returns to Idle; a
// further Setup over the same control connection is permitted. On
// failure state is unchanged.
func (s *Session) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady && s.state != StatePlaying {
		return fmt.Errorf("%w: teardown from %s", ErrInvalidTransition, s.state)
	}

	if _, err := s.exchange(&rtsp.Request{
		Method:    "TEARDOWN",
		Resource:  s.resource,
		SessionID: s.sessionID,
	}); err != nil {
		return err
	}

	s.releaseStream()
	s.state = StateIdle

	logrus.WithField("function", "Teardown").Info("Stream torn down")

	return nil
}

// Close releases everything the session holds: the receiver if active,
// the datagram endpoint if open, and the control connection. It never
// fails, is safe to call from any state and more than once, and leaves
// the session in the terminal Closed state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}

	s.releaseStream()
	s.channel.Close()
	s.state = StateClosed

	logrus.WithField("function", "Close").Info("Session closed")
}

// releaseStream stops the receiver and closes the data endpoint. The
// receiver is stopped first so a pending read is never surprised by a
// concurrent close; an endpoint closed mid-read is still handled as a
// normal exit by the receive loop. Callers hold s.mu.
func (s *Session) releaseStream() {
	s.receiver.Stop()
	if s.dataConn != nil {
		_ = s.dataConn.Close()
		s.dataConn = nil
	}
	s.sessionID = 0
	s.resource = ""
}

// exchange assigns the next sequence number, performs the exchange, and
// rejects any status other than 200. Callers hold s.mu.
func (s *Session) exchange(req *rtsp.Request) (*rtsp.Response, error) {
	s.cseq++
	req.Sequence = s.cseq

	resp, err := s.channel.Send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, &StatusError{Code: resp.StatusCode, Reason: resp.Reason}
	}
	return resp, nil
}

// parseSessionHeader extracts the server-assigned session identifier
// from a setup response. The identifier must be a positive integer.
func parseSessionHeader(resp *rtsp.Response) (uint64, error) {
	value, ok := resp.Header("Session")
	if !ok {
		return 0, ErrBadSessionHeader
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadSessionHeader, value)
	}
	return id, nil
}
