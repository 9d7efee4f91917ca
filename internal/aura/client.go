package aura

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second
	userAgent      = "aura-cli"
)

// Client talks to the screening backend. It holds no session state; the wizard owns it.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
}

func New(logger *zap.Logger, baseURL, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		token:   strings.TrimSpace(token),
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			// Analysis and answer evaluation run model inference on the backend.
			Timeout: DefaultTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}
