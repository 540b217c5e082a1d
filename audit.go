package goAuthClient

import (
	"io"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"go.uber.org/zap"
)

// Audit event types emitted by the Client.
const (
	AuditLoginSuccess        = "login_success"
	AuditLoginFailure        = "login_failure"
	AuditLogout              = "logout"
	AuditLogoutRemoteFailure = "logout_remote_failure"
	AuditRefreshSuccess      = "refresh_success"
	AuditRefreshFailure      = "refresh_failure"
	AuditBootstrapRestored   = "bootstrap_restored"
	AuditBootstrapCleared    = "bootstrap_cleared"
)

// AuditEvent is one session lifecycle record. Tokens are never included.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// ZapSink writes audit events to a zap logger.
type ZapSink = internalaudit.ZapSink

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZapSink returns a ZapSink writing to logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(logger)
}
