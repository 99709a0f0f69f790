package relay

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a session.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transport is the network side of a session. WriteFrame is only ever called
// from the session's writer goroutine; Close may be called from anywhere.
type Transport interface {
	WriteFrame(frame []byte) error
	Close() error
}

// Session binds one live transport to one profile id.
type Session struct {
	id        string
	userID    string
	transport Transport

	send  chan []byte
	done  chan struct{}
	state atomic.Int32

	closeOnce sync.Once
	released  atomic.Bool
}

func newSession(userID string, t Transport, buffer int) *Session {
	if buffer < 1 {
		buffer = 1
	}
	s := &Session{
		id:        uuid.NewString(),
		userID:    userID,
		transport: t,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
	}
	s.state.Store(int32(StateConnecting))
	go s.writeLoop()
	return s
}

// ID returns the unique session id.
func (s *Session) ID() string { return s.id }

// UserID returns the profile id the session is bound to.
func (s *Session) UserID() string { return s.userID }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) activate() bool {
	return s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive))
}

// Send queues a frame for delivery without blocking. A full queue is
// reported as ErrSendBufferFull rather than waiting on a slow peer.
func (s *Session) Send(frame []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close moves the session to Closed and closes its transport. Frames still
// queued are discarded. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		err = s.transport.Close()
	})
	return err
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.send:
			if err := s.transport.WriteFrame(frame); err != nil {
				_ = s.Close()
				return
			}
		}
	}
}
