package aura

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/logger"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/resume"
)

const uploadField = "file"

type analyzeRequest struct {
	SessionID      string `json:"session_id"`
	JobDescription string `json:"job_description"`
}

// Upload sends the resume and returns the session id the backend assigned to it.
func (c *Client) Upload(ctx context.Context, file *resume.File) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", errors.New("resume file is required")
	}

	fileType := file.ContentType
	if fileType == "" {
		fileType = resume.ContentTypePDF
	}

	payload, err := c.postFile(ctx, opUpload, uploadField, file.Name, fileType, file.Data)
	if err != nil {
		return "", err
	}

	var sessionID string
	if err := decodeField(opUpload, payload, "session_id", &sessionID); err != nil {
		return "", err
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", &ShapeError{Op: opUpload.name, Field: "session_id"}
	}

	c.logger.Debug("resume uploaded",
		zap.String(logger.FieldSession, sessionID),
		zap.String("filename", file.Name),
		zap.Int64("size", file.Size()),
	)

	return sessionID, nil
}

// Analyze scores the uploaded resume of the session against the job description.
func (c *Client) Analyze(ctx context.Context, sessionID, jobDescription string) (*Analysis, error) {
	payload, err := c.postJSON(ctx, opAnalyze, analyzeRequest{
		SessionID:      sessionID,
		JobDescription: jobDescription,
	})
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := decodeField(opAnalyze, payload, "analysis", &analysis); err != nil {
		return nil, err
	}

	c.logger.Debug("resume analyzed",
		zap.String(logger.FieldSession, sessionID),
		zap.Float64("overall_score", analysis.OverallScore),
		zap.Int("skills", len(analysis.Skills)),
	)

	return &analysis, nil
}
