package relay

import "errors"

var (
	// ErrUnknownIdentity rejects a handshake whose identity does not resolve
	// to a registered profile.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrNotConnected means sender and recipient share no connection.
	ErrNotConnected = errors.New("not connected")
	// ErrRecipientUnavailable means the recipient is unknown, offline or
	// cannot take another frame right now.
	ErrRecipientUnavailable = errors.New("recipient unavailable")
	// ErrProtocolViolation marks a frame that could not be parsed or lacks
	// its addressing fields.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrSessionClosed is returned when sending on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrSendBufferFull is returned when a session's outbound queue is full.
	ErrSendBufferFull = errors.New("send buffer full")
)
