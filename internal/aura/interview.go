package aura

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/logger"
	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/utils"
)

const maxLogLength = 200

type startInterviewRequest struct {
	SessionID string `json:"session_id"`
}

type submitAnswerRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// StartInterview fetches the ordered interview questions generated for the session.
func (c *Client) StartInterview(ctx context.Context, sessionID string) ([]string, error) {
	payload, err := c.postJSON(ctx, opStartInterview, startInterviewRequest{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := decodeField(opStartInterview, payload, "questions", &questions); err != nil {
		return nil, err
	}

	c.logger.Debug("interview questions received",
		zap.String(logger.FieldSession, sessionID),
		zap.Int("count", len(questions)),
	)

	return questions, nil
}

// SubmitAnswer sends the answer to the question at index and returns its evaluation.
// When the backend reports the interview complete, the result carries the final score.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, index int, answer string) (*AnswerResult, error) {
	c.logger.Debug("submitting answer",
		zap.String(logger.FieldSession, sessionID),
		zap.Int("question_index", index),
		zap.Int("answer_length", utf8.RuneCountInString(answer)),
		zap.String("answer_preview", utils.TruncateForLog(answer, maxLogLength)),
	)

	payload, err := c.postJSON(ctx, opSubmitAnswer, submitAnswerRequest{
		SessionID:     sessionID,
		QuestionIndex: index,
		Answer:        answer,
	})
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{}
	if err := decodeField(opSubmitAnswer, payload, "evaluation", &result.Evaluation); err != nil {
		return nil, err
	}
	if err := decodeField(opSubmitAnswer, payload, "is_complete", &result.Complete); err != nil {
		return nil, err
	}

	if result.Complete {
		result.Final = &FinalScore{}
		if err := decodeField(opSubmitAnswer, payload, "final_score", result.Final); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("answer evaluated",
		zap.String(logger.FieldSession, sessionID),
		zap.Int("question_index", index),
		zap.Float64("score", result.Evaluation.Score),
		zap.Bool("complete", result.Complete),
	)

	return result, nil
}
