// Package extractor turns a free-text utterance into a typed intent by asking a
// language model for a JSON object and validating what comes back.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
)

// DefaultTimeout bounds a single completion when none is configured
const DefaultTimeout = 60 * time.Second

// Extractor builds the extraction prompt and parses the model's reply
type Extractor struct {
	completer port.Completer
	prompts   *PromptConfig
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an Extractor. A zero timeout selects DefaultTimeout.
func New(completer port.Completer, prompts *PromptConfig, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{
		completer: completer,
		prompts:   prompts,
		timeout:   timeout,
		logger:    logger,
	}
}

// BuildPrompt renders the extraction prompt for utterance relative to referenceDate
func (x *Extractor) BuildPrompt(utterance string, referenceDate time.Time) (string, error) {
	return renderTemplate(x.prompts.IntentExtraction.UserTemplate, newPromptData(utterance, referenceDate))
}

// Extract makes exactly one completion call. Every failure is returned as *Error.
func (x *Extractor) Extract(ctx context.Context, utterance string, referenceDate time.Time) (intent.Intent, error) {
	prompt, err := x.BuildPrompt(utterance, referenceDate)
	if err != nil {
		return nil, x.fail(&Error{Kind: KindPrompt, Err: err}, utterance)
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	raw, err := x.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, x.fail(&Error{Kind: KindCompletion, Err: err}, utterance)
	}

	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return nil, x.fail(&Error{Kind: KindNoJSON, Raw: raw, Err: errors.New("reply contains no JSON object")}, utterance)
	}

	var parseErr error
	for _, candidate := range candidates {
		result, err := intent.Parse([]byte(candidate))
		if err == nil {
			x.logger.Debug("Intent extracted",
				zap.String("utterance", utterance),
				zap.String("tag", result.Tag().String()))
			return result, nil
		}
		parseErr = err
		if errors.Is(err, intent.ErrMissingTag) || isFieldError(err) {
			// the JSON decoded fine, a second candidate would not help
			break
		}
	}

	return nil, x.fail(&Error{Kind: parseErrorKind(parseErr), Raw: raw, Err: parseErr}, utterance)
}

func (x *Extractor) fail(err *Error, utterance string) error {
	x.logger.Warn("Intent extraction failed",
		zap.String("kind", string(err.Kind)),
		zap.String("utterance", utterance),
		zap.String("raw", truncate(err.Raw, 500)),
		zap.Error(err.Err))
	return err
}

func parseErrorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, intent.ErrMissingTag):
		return KindMissingTag
	case isFieldError(err):
		return KindInvalidFields
	default:
		return KindMalformed
	}
}

func isFieldError(err error) bool {
	var fe *intent.FieldError
	return errors.As(err, &fe)
}

// jsonCandidates returns the first '{' to last '}' span, then the first
// balanced object when it differs
func jsonCandidates(content string) []string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil
	}
	candidates := []string{content[start : end+1]}

	if balanced := firstBalancedObject(content[start:]); balanced != "" && balanced != candidates[0] {
		candidates = append(candidates, balanced)
	}
	return candidates
}

// firstBalancedObject scans from a leading '{' to its matching '}',
// ignoring braces inside JSON strings
func firstBalancedObject(content string) string {
	depth := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(content); i++ {
		c := content[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' && inString {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[:i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:n], len(s))
}
