package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// DefaultClassifierModel is used when no model is configured.
const DefaultClassifierModel = "openai/gpt-oss-120b"

// GroqBaseURL is the OpenAI-compatible chat endpoint the classifier
// talks to by default.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Classifier judges customer messages for intent, sentiment and
// language through an OpenAI-compatible chat completion endpoint.
type Classifier struct {
	client  *openai.Client
	baseURL string
	model   string
	logger  *slog.Logger
}

// ClassifierOption configures the Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierModel overrides the default model.
func WithClassifierModel(model string) ClassifierOption {
	return func(c *Classifier) {
		if model != "" {
			c.model = model
		}
	}
}

// WithClassifierBaseURL overrides the default endpoint.
func WithClassifierBaseURL(url string) ClassifierOption {
	return func(c *Classifier) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithClassifierLogger sets a structured logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a classifier against the Groq endpoint.
func NewClassifier(apiKey string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		baseURL: GroqBaseURL,
		model:   DefaultClassifierModel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.baseURL),
	)
	c.client = &client
	return c
}

// Analyze classifies one raw customer message. Callers fall back to a
// neutral verdict on error; there are no retries within a turn.
func (c *Classifier) Analyze(ctx context.Context, message string) (domain.IntentAnalysis, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Temperature: openai.Float(0.1),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(classifierPrompt(message)),
		},
	})
	if err != nil {
		return domain.IntentAnalysis{}, fmt.Errorf("classifier request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.IntentAnalysis{}, errors.New("classifier returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.logger.Debug("classifier raw response", "content", truncate(raw, 120))

	return ParseIntentAnalysis(raw)
}

func classifierPrompt(message string) string {
	return fmt.Sprintf(`Analyze this customer message and extract key information:

Message: "%s"

Provide analysis in the following format (JSON only, no other text):

{
  "intent": "refund" | "quality_complaint" | "general",
  "sentiment_score": 0-10,
  "language": "en" | "hi"
}

Intent Guidelines:
- "refund": Customer explicitly wants money back or mentions refund/return
- "quality_complaint": Customer reports damage, missing items, wrong or poor-quality goods
- "general": Greetings, questions, or unclear intent

Sentiment Scale:
- 0-3: Angry/Frustrated (harsh words, complaints, demanding tone)
- 4-6: Neutral (factual, calm reporting)
- 7-10: Happy/Satisfied (positive words, grateful tone)

Examples:
"I want my money back" -> {"intent": "refund", "sentiment_score": 3, "language": "en"}
"The box arrived crushed" -> {"intent": "quality_complaint", "sentiment_score": 4, "language": "en"}
"Hello" -> {"intent": "general", "sentiment_score": 6, "language": "en"}
"Order XRD1234 has missing items" -> {"intent": "quality_complaint", "sentiment_score": 4, "language": "en"}

Respond with ONLY the JSON object.`, message)
}
