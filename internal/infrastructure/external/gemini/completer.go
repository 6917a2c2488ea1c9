package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/garyjia/hr-assistant/internal/application/port"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when Gemini returns no text
var ErrEmptyResponse = errors.New("no text in Gemini response")

// Config configures the Gemini completer
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	System      string
}

// Completer implements port.Completer using the Gemini API
type Completer struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// NewCompleter creates a Gemini client; it performs no network I/O
func NewCompleter(ctx context.Context, cfg Config, logger *zap.Logger) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Completer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Complete sends prompt as a single user turn and returns the reply text
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}
	if c.cfg.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(c.cfg.System, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), genCfg)
	if err != nil {
		c.logger.Error("Gemini generate content failed",
			zap.String("model", c.cfg.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("Gemini completion received",
		zap.String("model", c.cfg.Model),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Verify interface compliance
var _ port.Completer = (*Completer)(nil)
