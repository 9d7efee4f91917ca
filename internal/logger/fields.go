package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the backend session id.
	FieldSession = "session_id"
	// FieldStage is the structured log field key for the wizard stage.
	FieldStage = "stage"
	// FieldRequestID is the structured log field key for the per-request correlation id.
	FieldRequestID = "request_id"
)

// SessionFields returns the fields that tie a log entry to a wizard session.
// Blank values are omitted; there is no session id before the first upload.
func SessionFields(sessionID, stage string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if id := strings.TrimSpace(sessionID); id != "" {
		fields = append(fields, zap.String(FieldSession, id))
	}
	if stage = strings.TrimSpace(stage); stage != "" {
		fields = append(fields, zap.String(FieldStage, stage))
	}
	return fields
}

// WithSession attaches the session fields to logger. A nil logger becomes a no-op one.
func WithSession(logger *zap.Logger, sessionID, stage string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := SessionFields(sessionID, stage)
	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}
