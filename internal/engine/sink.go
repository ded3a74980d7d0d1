package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/pulseai-labs/anomaly-hub/pkg/logger"
)

// AuditSink persists an emitted DetectionResult. It is a narrow interface
// so the core engine package carries no database dependency — only a
// caller that owns a concrete sink (such as cmd/hub's Postgres client)
// need import one.
type AuditSink interface {
	Save(ctx context.Context, result *DetectionResult) error
}

// DetectWithAudit runs Detect and then, if a sink is configured, persists
// the result. The save runs synchronously before the result is returned; a
// failed save is logged and otherwise ignored, so persistence errors never
// fail a detection cycle.
func DetectWithAudit(ctx context.Context, reg *Registry, sink AuditSink, sample Sample, runDD, runFD bool) *DetectionResult {
	result := Detect(reg, sample, runDD, runFD)
	if sink == nil {
		return result
	}
	if err := sink.Save(ctx, result); err != nil {
		logger.Warn("audit sink save failed", zap.String("agent_id", result.AgentID), zap.Error(err))
	}
	return result
}
