// Package relay forwards chat and signaling frames between live sessions of
// connected profiles.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

const (
	defaultSendBuffer = 16
	presenceTimeout   = 2 * time.Second
	presenceStripes   = 64
)

// Presence is told when a profile gains or loses its live session. Online is
// repeated on keepalive so TTL based stores can refresh.
type Presence interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}

// Relay routes chat and signaling frames between sessions of connected
// profiles.
type Relay struct {
	registry *match.Registry
	graph    *match.Graph

	log                 *zap.Logger
	metrics             *Metrics
	presence            Presence
	sendBuffer          int
	notifyUndeliverable bool

	sessions sync.Map // session id -> *Session

	// Presence writes for one profile are serialized and re-read the live
	// binding, so the last write always matches it.
	presenceMu [presenceStripes]sync.Mutex
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

// WithPresence sets the presence store notified on connect and disconnect.
func WithPresence(p Presence) Option {
	return func(r *Relay) { r.presence = p }
}

// WithSendBuffer sets the per-session outbound queue length.
func WithSendBuffer(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.sendBuffer = n
		}
	}
}

// WithUndeliverableNotice controls whether a chat sender is told that the
// recipient could not be reached. Disabled by default: an undeliverable chat
// is dropped silently.
func WithUndeliverableNotice(on bool) Option {
	return func(r *Relay) { r.notifyUndeliverable = on }
}

// New creates a relay over the given registry and graph.
func New(reg *match.Registry, g *match.Graph, opts ...Option) *Relay {
	r := &Relay{
		registry:   reg,
		graph:      g,
		log:        zap.NewNop(),
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect binds t to the profile named by identity and returns the active
// session. An identity that does not resolve yields ErrUnknownIdentity and
// no session; the caller owns t in that case. A session already bound to
// the same profile is superseded and closed.
func (r *Relay) Connect(identity string, t Transport) (*Session, error) {
	userID := strings.TrimSpace(identity)
	if userID == "" || !r.registry.Has(userID) {
		r.metrics.handshakeRejected()
		r.log.Info("handshake rejected", zap.String("identity", identity))
		return nil, ErrUnknownIdentity
	}

	s := newSession(userID, t, r.sendBuffer)
	prev, err := r.registry.Attach(userID, s)
	if err != nil {
		// Removed between the lookup and the attach.
		s.released.Store(true)
		_ = s.Close()
		r.metrics.handshakeRejected()
		return nil, ErrUnknownIdentity
	}
	s.activate()
	r.sessions.Store(s.id, s)
	r.metrics.sessionOpened()

	if prev != nil {
		if old, ok := prev.(*Session); ok {
			r.log.Info("session superseded",
				zap.String("user_id", userID),
				zap.String("old_session", old.id),
				zap.String("new_session", s.id))
			r.Disconnect(old)
		} else {
			_ = prev.Close()
		}
	}

	r.markOnline(userID)
	r.log.Info("session opened", zap.String("user_id", userID), zap.String("session", s.id))
	return s, nil
}

// Disconnect closes s and unbinds it from its profile if it is still the
// profile's live session. Calling it again is a no-op.
func (r *Relay) Disconnect(s *Session) {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}
	_ = s.Close()
	r.sessions.Delete(s.id)
	r.metrics.sessionClosed()

	if r.registry.Detach(s.userID, s) {
		r.markOffline(s.userID)
	}
	r.log.Info("session closed", zap.String("user_id", s.userID), zap.String("session", s.id))
}

// Session looks up an active session by its id.
func (r *Relay) Session(id string) (*Session, bool) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Touch refreshes presence for the session's profile.
func (r *Relay) Touch(s *Session) {
	if s == nil || s.State() != StateActive {
		return
	}
	r.markOnline(s.userID)
}

// HandleFrame processes one inbound frame from s. Failures are logged and
// counted, never returned; the session stays open.
func (r *Relay) HandleFrame(s *Session, raw []byte) {
	if s == nil || s.State() != StateActive {
		return
	}
	in, err := parseFrame(raw)
	if err != nil {
		r.drop(s, kindUnknown, outcomeProtocol, err)
		return
	}
	if in.Type == signalingType {
		r.relaySignal(s, in)
		return
	}
	r.relayChat(s, in)
}

func (r *Relay) relayChat(s *Session, in inboundFrame) {
	receiver := string(in.ReceiverID)
	if receiver == "" {
		r.drop(s, kindChat, outcomeProtocol, ErrProtocolViolation)
		return
	}
	if !r.registry.Has(s.userID) {
		r.drop(s, kindChat, outcomeUnknownUser, ErrUnknownIdentity)
		return
	}
	if !r.registry.Has(receiver) {
		r.undeliverable(s, receiver)
		return
	}
	if !r.graph.IsConnected(s.userID, receiver) {
		r.metrics.frame(kindChat, outcomeNotConnected)
		r.log.Debug("chat rejected",
			zap.String("sender", s.userID),
			zap.String("receiver", receiver),
			zap.Error(ErrNotConnected))
		_ = s.Send(notConnectedFrame)
		return
	}

	frame, err := json.Marshal(chatFrame{SenderID: s.userID, Message: in.Message})
	if err != nil {
		r.drop(s, kindChat, outcomeProtocol, err)
		return
	}
	if err := r.deliver(receiver, frame); err != nil {
		r.undeliverable(s, receiver)
		return
	}
	r.metrics.frame(kindChat, outcomeForwarded)
}

func (r *Relay) relaySignal(s *Session, in inboundFrame) {
	target := string(in.TargetID)
	if target == "" {
		r.drop(s, kindSignaling, outcomeProtocol, ErrProtocolViolation)
		return
	}
	if !r.registry.Has(s.userID) {
		r.drop(s, kindSignaling, outcomeUnknownUser, ErrUnknownIdentity)
		return
	}
	if !r.registry.Has(target) {
		r.drop(s, kindSignaling, outcomeUnavailable, ErrRecipientUnavailable)
		return
	}
	if !r.graph.IsConnected(s.userID, target) {
		r.drop(s, kindSignaling, outcomeNotConnected, ErrNotConnected)
		return
	}

	frame, err := json.Marshal(signalFrame{SenderID: s.userID, Type: signalingType, Data: in.Data})
	if err != nil {
		r.drop(s, kindSignaling, outcomeProtocol, err)
		return
	}
	if err := r.deliver(target, frame); err != nil {
		r.drop(s, kindSignaling, outcomeUnavailable, err)
		return
	}
	r.metrics.frame(kindSignaling, outcomeForwarded)
}

// deliver hands frame to the recipient's live session without blocking.
func (r *Relay) deliver(userID string, frame []byte) error {
	h, ok := r.registry.Handle(userID)
	if !ok {
		return ErrRecipientUnavailable
	}
	if err := h.Send(frame); err != nil {
		if errors.Is(err, ErrSendBufferFull) || errors.Is(err, ErrSessionClosed) {
			return ErrRecipientUnavailable
		}
		return err
	}
	return nil
}

func (r *Relay) undeliverable(s *Session, receiver string) {
	r.metrics.frame(kindChat, outcomeUnavailable)
	r.log.Debug("chat undeliverable",
		zap.String("sender", s.userID),
		zap.String("receiver", receiver),
		zap.Error(ErrRecipientUnavailable))
	if r.notifyUndeliverable {
		_ = s.Send(unavailableFrame)
	}
}

func (r *Relay) drop(s *Session, kind, outcome string, err error) {
	r.metrics.frame(kind, outcome)
	r.log.Debug("frame dropped",
		zap.String("session", s.id),
		zap.String("user_id", s.userID),
		zap.String("kind", kind),
		zap.Error(err))
}

func (r *Relay) presenceLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &r.presenceMu[h.Sum32()%presenceStripes]
}

// markOnline reports userID online unless its session was already detached.
func (r *Relay) markOnline(userID string) {
	if r.presence == nil {
		return
	}
	mu := r.presenceLock(userID)
	mu.Lock()
	defer mu.Unlock()
	if !r.registry.Online(userID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := r.presence.Online(ctx, userID); err != nil {
		r.log.Warn("presence online", zap.String("user_id", userID), zap.Error(err))
	}
}

// markOffline reports userID offline unless a newer session has bound it.
func (r *Relay) markOffline(userID string) {
	if r.presence == nil {
		return
	}
	mu := r.presenceLock(userID)
	mu.Lock()
	defer mu.Unlock()
	if r.registry.Online(userID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := r.presence.Offline(ctx, userID); err != nil {
		r.log.Warn("presence offline", zap.String("user_id", userID), zap.Error(err))
	}
}
