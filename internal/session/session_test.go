package session

import (
	"context"
	"encoding/gob"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diegok/airhockey/internal/protocol"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const waitTimeout = 3 * time.Second

func newTestSession(t *testing.T) (*Session, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s := New(log)
	t.Cleanup(s.Close)
	return s, hook
}

// pollUntil polls the session until done reports true, collecting every
// message received on the way.
func pollUntil(t *testing.T, s *Session, done func() bool) []*protocol.Message {
	t.Helper()
	var got []*protocol.Message
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		msgs, err := s.Poll()
		got = append(got, msgs...)
		if err != nil {
			t.Fatalf("unexpected transport error: %v", err)
		}
		if done() {
			return got
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out in state %v", s.State())
	return nil
}

// pollMessages polls the session until n messages have arrived.
func pollMessages(t *testing.T, s *Session, n int) []*protocol.Message {
	t.Helper()
	var got []*protocol.Message
	deadline := time.Now().Add(waitTimeout)
	for len(got) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out with %d of %d messages", len(got), n)
		}
		msgs, err := s.Poll()
		if err != nil {
			t.Fatalf("unexpected transport error: %v", err)
		}
		got = append(got, msgs...)
		time.Sleep(2 * time.Millisecond)
	}
	return got
}

func stateIs(s *Session, st State) func() bool {
	return func() bool { return s.State() == st }
}

// pair returns a host and a guest with an active match between them.
func pair(t *testing.T) (host, guest *Session) {
	t.Helper()
	host, _ = newTestSession(t)
	guest, _ = newTestSession(t)

	if err := host.Listen(context.Background(), "127.0.0.1:0"); err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	if err := guest.Connect(context.Background(), host.Addr().String()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	pollUntil(t, guest, stateIs(guest, Waiting))
	msgs := pollUntil(t, host, stateIs(host, Active))
	if len(msgs) == 0 || msgs[0].Header != protocol.JoinGame {
		t.Fatalf("expected JOIN_GAME on the host, got %v", msgs)
	}
	return host, guest
}

func TestSession_NewIsDisconnected(t *testing.T) {
	s, _ := newTestSession(t)

	if s.State() != Disconnected {
		t.Errorf("expected disconnected, got %v", s.State())
	}
	if s.Role() != RoleNone {
		t.Errorf("expected no role, got %v", s.Role())
	}
	if err := s.Send(protocol.NewJoinGame()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	msgs, err := s.Poll()
	if msgs != nil || err != nil {
		t.Errorf("expected empty poll, got %v %v", msgs, err)
	}
	s.Close()
	s.Close()
}

func TestSession_HostGuestHandshake(t *testing.T) {
	host, guest := pair(t)

	if host.Role() != RoleHost || guest.Role() != RoleGuest {
		t.Errorf("expected host/guest roles, got %v/%v", host.Role(), guest.Role())
	}
	if guest.State() != Waiting {
		t.Errorf("expected guest waiting for the first update, got %v", guest.State())
	}

	ball := mgl64.Vec2{123.456, 321.5}
	if err := host.Send(protocol.NewGameUpdate(ball, mgl64.Vec2{180, 125})); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msgs := pollUntil(t, guest, stateIs(guest, Active))
	if len(msgs) != 1 || msgs[0].Header != protocol.GameUpdate {
		t.Fatalf("expected one GAME_UPDATE, got %v", msgs)
	}
	if got := msgs[0].Body.(protocol.GameUpdateBody).Ball.Vec(); got != ball {
		t.Errorf("expected ball %v, got %v", ball, got)
	}

	if err := guest.Send(protocol.NewPlayerMove(mgl64.Vec2{1, 2}, mgl64.Vec2{0.1, 0.2})); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	move := pollMessages(t, host, 1)
	if move[0].Header != protocol.PlayerMove {
		t.Errorf("expected PLAYER_MOVE, got %s", move[0].Header)
	}
}

func TestSession_BusyWhileOpen(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Listen(context.Background(), "127.0.0.1:0"); err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	if err := s.Connect(context.Background(), "127.0.0.1:1"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := s.Listen(context.Background(), "127.0.0.1:0"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestSession_PeerCloseIsTransportError(t *testing.T) {
	host, guest := pair(t)
	host.Send(protocol.NewGoal([2]int{0, 1}))
	pollUntil(t, guest, stateIs(guest, Active))

	host.Close()
	if host.State() != Disconnected {
		t.Fatalf("expected host disconnected, got %v", host.State())
	}

	deadline := time.Now().Add(waitTimeout)
	for {
		_, err := guest.Poll()
		if err != nil {
			var terr *TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TransportError, got %T: %v", err, err)
			}
			if terr.Op != "read" {
				t.Errorf("expected read failure, got %s", terr.Op)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("guest never noticed the host leaving")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if guest.State() != Disconnected {
		t.Errorf("expected guest disconnected, got %v", guest.State())
	}
	if err := guest.Send(protocol.NewJoinGame()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected after drop, got %v", err)
	}
}

func TestSession_MessagesBeforeDropAreDelivered(t *testing.T) {
	host, guest := pair(t)
	host.Send(protocol.NewGoal([2]int{6, 7}))
	host.Send(protocol.NewGameOver(false))

	// Let the writer flush before the stream goes away.
	time.Sleep(50 * time.Millisecond)
	host.Close()

	var got []*protocol.Message
	deadline := time.Now().Add(waitTimeout)
	for guest.State() != Disconnected && time.Now().Before(deadline) {
		msgs, _ := guest.Poll()
		got = append(got, msgs...)
		time.Sleep(2 * time.Millisecond)
	}

	if len(got) != 2 || got[1].Header != protocol.GameOver {
		t.Fatalf("expected GOAL and GAME_OVER before the drop, got %v", got)
	}
}

func TestSession_DialFailure(t *testing.T) {
	s, _ := newTestSession(t)
	s.Dialer = dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	})

	if err := s.Connect(context.Background(), "nowhere:22222"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	deadline := time.Now().Add(waitTimeout)
	for {
		_, err := s.Poll()
		if err != nil {
			var terr *TransportError
			if !errors.As(err, &terr) || terr.Op != "dial" {
				t.Fatalf("expected dial TransportError, got %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dial failure never reported")
		}
		time.Sleep(time.Millisecond)
	}
	if s.State() != Disconnected {
		t.Errorf("expected disconnected, got %v", s.State())
	}
}

func TestSession_MalformedFrameKeepsSession(t *testing.T) {
	host, hook := newTestSession(t)
	if err := host.Listen(context.Background(), "127.0.0.1:0"); err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	conn, err := net.Dial("tcp", host.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Frames laid out the way the codec writes them.
	type rawFrame struct {
		Header string
		Body   []byte
	}
	enc := gob.NewEncoder(conn)
	if err := enc.Encode(&rawFrame{Header: "SERVE"}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(&rawFrame{Header: string(protocol.JoinGame)}); err != nil {
		t.Fatal(err)
	}

	msgs := pollUntil(t, host, stateIs(host, Active))
	if len(msgs) != 1 || msgs[0].Header != protocol.JoinGame {
		t.Fatalf("expected only JOIN_GAME, got %v", msgs)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "discarding malformed frame" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the malformed frame")
	}
}

func TestSession_SecondGuestRejected(t *testing.T) {
	host, _ := pair(t)

	conn, err := net.Dial("tcp", host.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(waitTimeout))
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Error("expected the extra connection to be closed")
	}
	if host.State() != Active {
		t.Errorf("expected host to stay active, got %v", host.State())
	}
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func (f dialFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return f(ctx, network, addr)
}

// trackedConn counts how many connections are still open.
type trackedConn struct {
	net.Conn
	open *int64
	once sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() { atomic.AddInt64(c.open, -1) })
	return c.Conn.Close()
}

func TestSession_ConnectCloseCyclesReleaseEverything(t *testing.T) {
	s, _ := newTestSession(t)
	var open int64
	s.Dialer = dialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			io.Copy(io.Discard, server)
			server.Close()
		}()
		atomic.AddInt64(&open, 1)
		return &trackedConn{Conn: client, open: &open}, nil
	})

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		if err := s.Connect(context.Background(), "peer"); err != nil {
			t.Fatalf("cycle %d: connect failed: %v", i, err)
		}
		if i%2 == 0 {
			pollUntil(t, s, stateIs(s, Waiting))
		}
		ids[s.ID().String()] = true
		s.Close()

		if s.State() != Disconnected {
			t.Fatalf("cycle %d: expected disconnected, got %v", i, s.State())
		}
		if n := atomic.LoadInt64(&open); n != 0 {
			t.Fatalf("cycle %d: %d connections left open", i, n)
		}
	}

	if len(ids) != 100 {
		t.Errorf("expected a fresh id per connection, got %d", len(ids))
	}
}

func TestSession_ListenCloseCycles(t *testing.T) {
	s, _ := newTestSession(t)

	for i := 0; i < 100; i++ {
		if err := s.Listen(context.Background(), "127.0.0.1:0"); err != nil {
			t.Fatalf("cycle %d: listen failed: %v", i, err)
		}
		addr := s.Addr().String()
		s.Close()

		if s.Addr() != nil {
			t.Fatalf("cycle %d: listener kept after close", i)
		}
		if conn, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
			conn.Close()
			t.Fatalf("cycle %d: listener still accepting on %s", i, addr)
		}
	}
}

func TestStateAndRoleStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Disconnected.String(), "disconnected"},
		{Connecting.String(), "connecting"},
		{Waiting.String(), "waiting"},
		{Active.String(), "active"},
		{State(9).String(), "unknown"},
		{RoleNone.String(), "none"},
		{RoleHost.String(), "host"},
		{RoleGuest.String(), "guest"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestTransportError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	var err error = &TransportError{Op: "read", Err: cause}

	if err.Error() != "session read: unexpected EOF" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected the cause to be reachable")
	}
	if errors.Cause(err) != cause {
		t.Error("expected pkg/errors to find the cause")
	}
}
