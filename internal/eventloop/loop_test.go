package eventloop

import (
	"bytes"
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bnema/me2u/internal/adapters/render/console"
	"github.com/bnema/me2u/internal/adapters/transport/tcp"
	"github.com/bnema/me2u/internal/application"
	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/fdpoll"
	"github.com/bnema/me2u/internal/protocol"
	"github.com/bnema/me2u/internal/testutil"
	"github.com/bnema/me2u/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is the far end of a loopback connection, scripted by the test.
type fakeServer struct {
	t      *testing.T
	file   *os.File
	reader *protocol.FrameReader
}

func (s *fakeServer) expect(want string) {
	s.t.Helper()

	frame, err := s.reader.ReadFrame()
	require.NoError(s.t, err)
	require.Equal(s.t, want, string(frame))
}

func (s *fakeServer) send(frame string) {
	s.t.Helper()

	_, err := s.file.Write([]byte(frame + protocol.Terminator))
	require.NoError(s.t, err)
}

type loopFixture struct {
	server  *fakeServer
	stdin   *os.File
	spawner *testutil.PipeSpawner
	windows *window.Manager
	session *application.Session
	loop    *Loop
	out     *bytes.Buffer
	done    chan error
}

func dialLoopback(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	accepted := make(chan *os.File, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		file, err := conn.(*net.TCPConn).File()
		_ = conn.Close()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- file
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	client, err := tcp.Dial(context.Background(), host, port, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server, ok := <-accepted
	require.True(t, ok)
	t.Cleanup(func() { _ = server.Close() })

	return client, server
}

func newLoopFixture(t *testing.T) *loopFixture {
	t.Helper()

	client, serverFile := dialLoopback(t)

	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = stdinR.Close()
		_ = stdinW.Close()
	})

	out := &bytes.Buffer{}
	spawner := testutil.NewPipeSpawner(t)
	windows := window.NewManager(spawner, nil)
	session, err := application.NewSession(application.SessionConfig{
		Username:  "carol",
		Transport: client,
		Windows:   windows,
		Console:   console.New(out),
	})
	require.NoError(t, err)

	loop, err := New(Config{
		Session:      session,
		Windows:      windows,
		Socket:       client,
		Stdin:        stdinR,
		FrameTimeout: time.Second,
	})
	require.NoError(t, err)

	return &loopFixture{
		server:  &fakeServer{t: t, file: serverFile, reader: protocol.NewFrameReader(serverFile, protocol.Terminator, 2*time.Second)},
		stdin:   stdinW,
		spawner: spawner,
		windows: windows,
		session: session,
		loop:    loop,
		out:     out,
		done:    make(chan error, 1),
	}
}

func (f *loopFixture) start(t *testing.T, ctx context.Context) {
	t.Helper()

	require.NoError(t, f.session.Start())
	go func() {
		f.done <- f.loop.Run(ctx)
	}()
}

func (f *loopFixture) handshake() {
	f.server.expect("ME2U")
	f.server.send("U2EM")
	f.server.expect("IAM carol")
	f.server.send("MAI")
	f.server.send("MOTD welcome")
}

func (f *loopFixture) typeLine(t *testing.T, line string) {
	t.Helper()

	_, err := f.stdin.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func (f *loopFixture) child(t *testing.T, peer string) testutil.ChildEnds {
	t.Helper()

	var ends testutil.ChildEnds
	require.Eventually(t, func() bool {
		var ok bool
		ends, ok = f.spawner.Child(peer)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	return ends
}

func (f *loopFixture) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-f.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not stop")
		return nil
	}
}

func readChildFrame(t *testing.T, ends testutil.ChildEnds) string {
	t.Helper()

	frame, err := protocol.NewFrameReader(ends.FromParent, protocol.Terminator, 2*time.Second).ReadFrame()
	require.NoError(t, err)
	return string(frame)
}

func TestLoopFullConversation(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())

	f.handshake()

	f.server.send("FROM dave hello")
	dave := f.child(t, "dave")
	assert.Equal(t, "FROM dave hello", readChildFrame(t, dave))
	f.server.expect("MORF dave")

	f.typeLine(t, "/chat eve hi")
	f.server.expect("TO eve hi")
	f.server.send("EDNE eve")

	_, err := dave.ToParent.Write([]byte("TO dave yo" + protocol.Terminator))
	require.NoError(t, err)
	f.server.expect("TO dave yo")
	f.server.send("OT dave")
	assert.Equal(t, "TO dave yo", readChildFrame(t, dave))

	f.typeLine(t, "/listu")
	f.server.expect("LISTU")
	f.server.send("UTSIL carol dave")

	f.typeLine(t, "/logout")
	f.server.expect("BYE")
	f.server.send("EYB")

	require.NoError(t, f.wait(t))
	assert.Equal(t, domain.StateTerminate, f.session.State())

	out := f.out.String()
	assert.Contains(t, out, "MOTD: welcome")
	assert.Contains(t, out, "Recipient eve does not exist")
	assert.Contains(t, out, "dave")
	assert.Contains(t, out, "Logged out")
	assert.Equal(t, 1, f.windows.Len(), "logout leaves windows open")
}

func TestLoopWindowCloseAndHangUp(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())
	f.handshake()

	f.server.send("FROM alice one")
	alice := f.child(t, "alice")
	readChildFrame(t, alice)
	f.server.expect("MORF alice")

	f.server.send("FROM bob two")
	bob := f.child(t, "bob")
	readChildFrame(t, bob)
	f.server.expect("MORF bob")

	_, err := alice.ToParent.Write([]byte("XTERM_EXIT alice" + protocol.Terminator))
	require.NoError(t, err)
	require.NoError(t, bob.ToParent.Close())

	// A round trip through stdin proves both window events were handled.
	f.typeLine(t, "/listu")
	f.server.expect("LISTU")
	f.server.send("UTSIL carol")

	f.typeLine(t, "/logout")
	f.server.expect("BYE")
	f.server.send("EYB")

	require.NoError(t, f.wait(t))
	assert.Zero(t, f.windows.Len())
	assert.Equal(t, domain.StateTerminate, f.session.State())
}

func TestLoopServerHangUpIsFatal(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())

	f.server.expect("ME2U")
	require.NoError(t, f.server.file.Close())

	err := f.wait(t)
	require.ErrorIs(t, err, domain.ErrTransport)
	require.ErrorIs(t, err, domain.ErrConnectionClosed)
}

func TestLoopUnexpectedVerbIsFatal(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())

	f.server.expect("ME2U")
	f.server.send("MOTD too early")

	err := f.wait(t)
	require.ErrorIs(t, err, domain.ErrProtocolViolation)
	assert.Equal(t, domain.StateConnecting, f.session.State())
}

func TestLoopUnknownVerbIsFatal(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())

	f.server.expect("ME2U")
	f.server.send("HELLO")

	err := f.wait(t)
	require.ErrorIs(t, err, domain.ErrUnknownVerb)
}

func TestLoopStdinClosedIsFatal(t *testing.T) {
	f := newLoopFixture(t)
	f.start(t, context.Background())
	f.handshake()

	require.NoError(t, f.stdin.Close())

	err := f.wait(t)
	require.ErrorIs(t, err, domain.ErrInputClosed)
}

func TestLoopIgnoresStdinBeforeLogin(t *testing.T) {
	f := newLoopFixture(t)
	f.typeLine(t, "/listu")
	f.start(t, context.Background())

	f.server.expect("ME2U")
	f.server.send("U2EM")
	f.server.expect("IAM carol")
	f.server.send("MAI")
	f.server.send("MOTD welcome")

	// The line typed during the handshake is read only after login.
	f.server.expect("LISTU")
	f.server.send("UTSIL carol")

	f.typeLine(t, "/logout")
	f.server.expect("BYE")
	f.server.send("EYB")
	require.NoError(t, f.wait(t))
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	f := newLoopFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.start(t, ctx)

	f.server.expect("ME2U")
	cancel()

	err := f.wait(t)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

// orderSession records which source each message came from, in the order the
// loop handed them over.
type orderSession struct {
	state    domain.ConnectionState
	calls    []string
	onSocket func(*orderSession)
}

func (s *orderSession) State() domain.ConnectionState { return s.state }

func (s *orderSession) HandleIncoming(msg domain.Message) error {
	s.calls = append(s.calls, "socket:"+msg.Verb.String())
	if s.onSocket != nil {
		s.onSocket(s)
	}
	return nil
}

func (s *orderSession) Submit(msg domain.Message) error {
	if msg.Verb == domain.VerbSendMessage {
		s.calls = append(s.calls, "window:"+msg.Peer)
		return nil
	}
	s.calls = append(s.calls, "stdin:"+msg.Verb.String())
	return nil
}

func (s *orderSession) CloseWindow(string) error { return nil }

type readySources struct {
	socket  *os.File
	stdinR  *os.File
	stdinW  *os.File
	wake    *os.File
	windows *window.Manager
	loop    *Loop
}

// newReadySources makes the socket, stdin and the windows of alice and bob
// readable before the loop looks at any of them.
func newReadySources(t *testing.T, session *orderSession) *readySources {
	t.Helper()

	pipe := func() (*os.File, *os.File) {
		r, w, err := os.Pipe()
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = r.Close()
			_ = w.Close()
		})
		return r, w
	}

	socketR, socketW := pipe()
	stdinR, stdinW := pipe()
	wake, _ := pipe()

	spawner := testutil.NewPipeSpawner(t)
	windows := window.NewManager(spawner, nil)
	for _, peer := range []string{"alice", "bob"} {
		_, err := windows.OpenOrGet(peer)
		require.NoError(t, err)
	}

	// Written in reverse priority order so arrival order cannot explain the
	// result.
	for _, peer := range []string{"bob", "alice"} {
		child, ok := spawner.Child(peer)
		require.True(t, ok)
		_, err := child.ToParent.Write([]byte("TO " + peer + " hi" + protocol.Terminator))
		require.NoError(t, err)
	}
	_, err := stdinW.Write([]byte("/listu\n"))
	require.NoError(t, err)
	_, err = socketW.Write([]byte("UOFF bob" + protocol.Terminator))
	require.NoError(t, err)

	loop, err := New(Config{
		Session:      session,
		Windows:      windows,
		Socket:       socketR,
		Stdin:        stdinR,
		FrameTimeout: time.Second,
	})
	require.NoError(t, err)

	return &readySources{socket: socketR, stdinR: stdinR, stdinW: stdinW, wake: wake, windows: windows, loop: loop}
}

func (r *readySources) servicePass(t *testing.T) {
	t.Helper()

	r.loop.rebuildIfDirty(r.wake.Fd())
	ready, err := fdpoll.Wait(r.loop.fds, 0)
	require.NoError(t, err)
	require.NoError(t, r.loop.service(ready))
}

func TestLoopServicesReadySourcesInPriorityOrder(t *testing.T) {
	session := &orderSession{state: domain.StateLoggedIn}
	sources := newReadySources(t, session)

	sources.servicePass(t)

	assert.Equal(t, []string{
		"socket:UserLoggedOff",
		"stdin:ListUsers",
		"window:alice",
		"window:bob",
	}, session.calls)
}

func TestLoopSkipsStdinOnceSocketLeavesLoggedIn(t *testing.T) {
	session := &orderSession{
		state:    domain.StateLoggedIn,
		onSocket: func(s *orderSession) { s.state = domain.StateQuitting },
	}
	sources := newReadySources(t, session)

	sources.servicePass(t)

	assert.Equal(t, []string{
		"socket:UserLoggedOff",
		"window:alice",
		"window:bob",
	}, session.calls)

	pending, err := fdpoll.WaitOne(sources.stdinR.Fd(), 0)
	require.NoError(t, err)
	assert.True(t, pending, "the typed line is left for a later pass")
}
