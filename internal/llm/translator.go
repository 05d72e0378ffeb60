// Package llm turns natural-language pseudo-code into a Python script using a
// hosted Gemini model.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
	"github.com/Rhishavhere/codeblink/internal/secret"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `You are an expert Python code generator. Convert the following natural language to an executable Python script.

Instructions:
1. Preserve the logical structure.
2. Handle patterns like "input X as Y", "if X is greater than Y", "print X", and loops.
3. Make sure numeric inputs are cast to the correct type (e.g., int()).
4. Return ONLY the raw Python code. Do not include any explanations or markdown formatting like ` + "```python" + `.

Natural Language Code:
---
%s
---

Python Code:`

// BuildPrompt embeds source in the translation prompt.
func BuildPrompt(source string) string {
	return fmt.Sprintf(promptTemplate, source)
}

// StripFences removes a leading ```python (or bare ```) fence and a trailing
// ``` fence, then trims surrounding whitespace.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	for _, open := range []string{"```python", "```py", "```"} {
		if strings.HasPrefix(s, open) {
			s = strings.TrimPrefix(s, open)
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ContentGenerator is the subset of the genai client used here.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Translator converts editor text to Python.
type Translator struct {
	model   string
	timeout time.Duration
	baseURL string
	gen     ContentGenerator
	logger  *logging.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(t *Translator) {
		if model != "" {
			t.model = model
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(t *Translator) {
		t.timeout = d
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(t *Translator) {
		t.baseURL = url
	}
}

// WithGenerator replaces the genai client.
func WithGenerator(gen ContentGenerator) Option {
	return func(t *Translator) {
		t.gen = gen
	}
}

// New creates a Translator. Unless WithGenerator is given, the genai
// client is created lazily on the first Translate call, since the
// credential may not exist yet.
func New(opts ...Option) *Translator {
	t := &Translator{
		model:  DefaultModel,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("llm")
	return t
}

// Model returns the configured model name.
func (t *Translator) Model() string { return t.model }

// Translate converts source to Python using cred.
func (t *Translator) Translate(ctx context.Context, cred secret.Credential, source string) (string, error) {
	const op = "translate"
	if strings.TrimSpace(source) == "" {
		return "", errors.NewBridgeError(op, errors.KindInvalidInput, errors.ErrEmptyEditor)
	}
	if cred.Reveal() == "" {
		return "", errors.NewBridgeError(op, errors.KindCredentialMissing, errors.ErrCredentialMissing)
	}

	gen, err := t.generator(ctx, cred)
	if err != nil {
		return "", errors.NewBridgeError(op, errors.KindExternalService,
			fmt.Errorf("%w: create client: %v", errors.ErrExternalService, err))
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	started := time.Now()
	t.logger.Debug("requesting translation", "model", t.model, "chars", len(source))
	resp, err := gen.GenerateContent(ctx, t.model, genai.Text(BuildPrompt(source)), nil)
	if err != nil {
		t.logger.Warn("translation request failed", "model", t.model, "error", err)
		return "", errors.NewBridgeError(op, errors.KindExternalService,
			fmt.Errorf("%w: %v", errors.ErrExternalService, err))
	}

	text, err := firstText(resp)
	if err != nil {
		t.logger.Warn("translation response unusable", "model", t.model, "error", err)
		return "", errors.NewBridgeError(op, errors.KindExternalService, err)
	}

	code := StripFences(text)
	t.logger.Info("translation complete", "model", t.model,
		"duration", time.Since(started).String(), "bytes", len(code))
	return code, nil
}

func (t *Translator) generator(ctx context.Context, cred secret.Credential) (ContentGenerator, error) {
	if t.gen != nil {
		return t.gen, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:  cred.Reveal(),
		Backend: genai.BackendGeminiAPI,
	}
	if t.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: t.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// firstText returns the text of the first part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", errors.ErrExternalService)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", errors.ErrExternalService, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: response has no candidates", errors.ErrExternalService)
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", fmt.Errorf("%w: candidate has no content", errors.ErrExternalService)
	}
	text := c.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: candidate text is empty", errors.ErrExternalService)
	}
	return text, nil
}
