package session

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/diegok/airhockey/internal/protocol"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	channelBufferSize = 64
	connectTimeout    = 5 * time.Second
)

var (
	// ErrNotConnected is returned when sending without an open stream.
	ErrNotConnected = errors.New("session not connected")
	// ErrBusy is returned when opening a session that is already open.
	ErrBusy = errors.New("session already open")
)

// TransportError reports a failed dial, accept, read or write. The session
// is closed by the time the caller sees it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "session " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors walk through the error.
func (e *TransportError) Cause() error { return e.Err }

// State is the connection lifecycle stage
type State int

const (
	Disconnected State = iota
	Connecting
	Waiting
	Active
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	}
	return "unknown"
}

// Role tells which side of the match this process plays.
type Role int

const (
	RoleNone Role = iota
	RoleHost
	RoleGuest
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	}
	return "none"
}

// Dialer opens the stream to a host. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Session is one peer-to-peer connection between a host and a guest. All
// methods are meant to be called from the tick loop; socket IO runs on
// goroutines owned by the session. A closed session can be opened again.
type Session struct {
	Dialer Dialer

	base logrus.FieldLogger
	log  logrus.FieldLogger
	id   uuid.UUID

	mu    sync.Mutex
	state State
	role  Role

	listener net.Listener
	conn     net.Conn
	cancel   context.CancelFunc
	pending  chan net.Conn
	inbox    chan *protocol.Message
	outbox   chan *protocol.Message
	errs     chan error
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a disconnected session.
func New(log logrus.FieldLogger) *Session {
	return &Session{
		Dialer: &net.Dialer{Timeout: connectTimeout},
		base:   log,
		log:    log,
	}
}

// ID identifies the current connection in logs. It changes every time the
// session is opened.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current connection state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Role returns the role of the current connection
func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.log.WithField("state", st).Debug("session state changed")
	}
}

// open prepares a fresh connection attempt. The caller must hold no lock.
func (s *Session) open(ctx context.Context, role Role) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Disconnected {
		return nil, ErrBusy
	}

	s.id = uuid.New()
	s.log = s.base.WithFields(logrus.Fields{"session": s.id.String(), "role": role.String()})
	s.role = role
	s.state = Connecting
	s.pending = make(chan net.Conn, 1)
	s.inbox = make(chan *protocol.Message, channelBufferSize)
	s.outbox = make(chan *protocol.Message, channelBufferSize)
	s.errs = make(chan error, 1)
	s.done = make(chan struct{})

	ctx, s.cancel = context.WithCancel(ctx)
	return ctx, nil
}

// Connect starts dialing a host as guest. It returns right away; Poll
// reports progress. Once the stream is up JOIN_GAME is sent and the session
// waits for the first update from the host.
func (s *Session) Connect(ctx context.Context, addr string) error {
	ctx, err := s.open(ctx, RoleGuest)
	if err != nil {
		return err
	}
	s.log.WithField("addr", addr).Info("connecting to host")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		conn, err := s.Dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			s.fail(&TransportError{Op: "dial", Err: err})
			return
		}
		s.pending <- conn
	}()
	return nil
}

// attach takes ownership of an established stream and starts its reader
// and writer.
func (s *Session) attach(conn net.Conn) {
	s.mu.Lock()
	s.conn = conn
	role := s.role
	s.mu.Unlock()

	s.log.WithField("peer", conn.RemoteAddr().String()).Info("peer connected")
	codec := protocol.NewCodec(conn)
	if role == RoleGuest {
		s.outbox <- protocol.NewJoinGame()
	}

	s.wg.Add(2)
	go s.readLoop(codec)
	go s.writeLoop(codec)
	s.setState(Waiting)
}

func (s *Session) readLoop(codec *protocol.Codec) {
	defer s.wg.Done()
	for {
		msg, err := codec.Decode()
		if err != nil {
			if errors.Is(err, protocol.ErrMalformed) {
				s.log.WithError(err).Warn("discarding malformed frame")
				continue
			}
			s.fail(&TransportError{Op: "read", Err: err})
			return
		}

		select {
		case s.inbox <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Session) writeLoop(codec *protocol.Codec) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.outbox:
			if err := codec.Encode(msg); err != nil {
				if errors.Is(err, protocol.ErrMalformed) {
					s.log.WithError(err).Warn("dropping unencodable message")
					continue
				}
				s.fail(&TransportError{Op: "write", Err: err})
				return
			}
		}
	}
}

// fail records the first transport error. Errors raised while closing are
// ignored.
func (s *Session) fail(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.errs <- err:
	default:
	}
}

// Poll returns the messages received since the last call without waiting.
// A transport error closes the session; messages that arrived before it are
// still returned.
func (s *Session) Poll() ([]*protocol.Message, error) {
	if s.State() == Disconnected {
		return nil, nil
	}

	select {
	case conn := <-s.pending:
		s.attach(conn)
	default:
	}

	msgs := s.drain(nil)
	select {
	case err := <-s.errs:
		msgs = s.drain(msgs)
		s.log.WithError(err).Warn("connection lost")
		s.Close()
		return msgs, err
	default:
	}
	return msgs, nil
}

func (s *Session) drain(msgs []*protocol.Message) []*protocol.Message {
	for {
		select {
		case msg := <-s.inbox:
			s.activateOn(msg)
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// activateOn moves a waiting session to Active on the first message that
// proves the peer is playing: JOIN_GAME on the host, anything on the guest.
func (s *Session) activateOn(msg *protocol.Message) {
	if s.State() != Waiting {
		return
	}
	if s.Role() == RoleHost && msg.Header != protocol.JoinGame {
		return
	}
	s.setState(Active)
	s.log.Info("match connected")
}

// Send queues a message for the peer. It never blocks; when the peer falls
// behind the message is dropped.
func (s *Session) Send(msg *protocol.Message) error {
	st := s.State()
	if st != Waiting && st != Active {
		return ErrNotConnected
	}
	select {
	case s.outbox <- msg:
	default:
		s.log.WithField("header", msg.Header).Debug("send buffer full, dropping message")
	}
	return nil
}

// Close releases the listener, the stream and every goroutine of the
// session and returns it to Disconnected. It is safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.cancel()
	ln, conn := s.listener, s.conn
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	if conn != nil {
		conn.Close()
	}
	s.wg.Wait()

	select {
	case c := <-s.pending:
		c.Close()
	default:
	}

	s.mu.Lock()
	s.listener = nil
	s.conn = nil
	s.state = Disconnected
	s.role = RoleNone
	s.mu.Unlock()
	s.log.Info("session closed")
}
