package license

import (
	"context"

	"github.com/sirupsen/logrus"
)

// AuditLogger records entitlement decisions to an external sink.
// Implementations should be non-blocking and best-effort; a dropped audit
// record must never fail the request that produced it.
type AuditLogger interface {
	LogValidation(ctx context.Context, keyPrefix string, decision Decision, clientInfo string)
}

// LogrusAudit writes audit records as structured log lines.
type LogrusAudit struct {
	log *logrus.Logger
}

// NewLogrusAudit builds an audit logger over log.
func NewLogrusAudit(log *logrus.Logger) *LogrusAudit {
	return &LogrusAudit{log: log}
}

// LogValidation implements AuditLogger.
func (a *LogrusAudit) LogValidation(_ context.Context, keyPrefix string, decision Decision, clientInfo string) {
	if a == nil || a.log == nil {
		return
	}
	a.log.WithFields(logrus.Fields{
		"key_prefix": keyPrefix,
		"allowed":    decision.Allowed,
		"reason":     decision.Reason,
		"scope":      decision.Scope,
		"client":     clientInfo,
	}).Info("license validation")
}

// NopAudit discards audit records.
type NopAudit struct{}

// LogValidation implements AuditLogger.
func (NopAudit) LogValidation(context.Context, string, Decision, string) {}
