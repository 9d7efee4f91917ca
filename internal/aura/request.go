package aura

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/internal/logger"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// operation describes one backend endpoint and how its failures read to the user.
type operation struct {
	name     string
	path     string
	fallback string
	failure  func(status int) string
	// detail surfaces the body's "detail" field instead of the generic failure text.
	detail bool
}

func fixed(message string) func(int) string {
	return func(int) string { return message }
}

var (
	opUpload = operation{
		name:     "upload",
		path:     "/upload",
		fallback: "Error uploading resume",
		failure:  fixed("Failed to upload resume"),
	}
	opAnalyze = operation{
		name:     "analyze",
		path:     "/analyze",
		fallback: "Error analyzing resume",
		failure: func(status int) string {
			return fmt.Sprintf("Failed to analyze resume (Status: %d)", status)
		},
		detail: true,
	}
	opStartInterview = operation{
		name:     "start_interview",
		path:     "/start_interview",
		fallback: "Error starting interview",
		failure:  fixed("Failed to start interview"),
	}
	opSubmitAnswer = operation{
		name:     "submit_answer",
		path:     "/submit_answer",
		fallback: "Error submitting answer",
		failure:  fixed("Failed to submit answer"),
	}
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}

func (c *Client) postJSON(ctx context.Context, op operation, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", op.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op.path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	return c.exchange(op, req)
}

// postFile sends a single file as a multipart form field, keeping its own content type.
func (c *Client) postFile(ctx context.Context, op operation, field, filename, fileType string, data []byte) (map[string]any, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", fileType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op.path), &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.exchange(op, req)
}

// exchange performs the request and returns the decoded JSON object of a 2xx response.
func (c *Client) exchange(op operation, req *http.Request) (map[string]any, error) {
	requestID := c.setHeaders(req)
	log := c.logger.With(
		zap.String("op", op.name),
		zap.String(logger.FieldRequestID, requestID),
	)

	resp, err := c.request(req)
	if err != nil {
		return nil, &TransportError{Op: op.name, Message: op.fallback, Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Op: op.name, Message: op.fallback, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Op:         op.name,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    op.failure(resp.StatusCode),
		}
		if op.detail {
			httpErr.Detail = extractDetail(data)
		}

		log.Debug("bad status", zap.String("status", resp.Status), zap.String("detail", httpErr.Detail))
		return nil, httpErr
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ShapeError{Op: op.name, Field: "body", Err: err}
	}
	if payload == nil {
		return nil, &ShapeError{Op: op.name, Field: "body"}
	}

	log.Debug("got response", zap.String("status", resp.Status), zap.Int("bytes", len(data)))
	return payload, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// setHeaders stamps the common headers and returns the generated request id.
func (c *Client) setHeaders(req *http.Request) string {
	requestID := uuid.NewString()

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, requestID)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	return requestID
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

// extractDetail returns the "detail" of an error body, or "" when there is none.
func extractDetail(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	return coerceString(body["detail"])
}
