package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// DefaultVisionModel is used when no model is configured.
const DefaultVisionModel = "allenai/molmo-2-8b:free"

// OpenRouterBaseURL is the multimodal endpoint the verifier talks to
// by default.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Verifier judges product images against a claim context through an
// OpenAI-compatible multimodal chat endpoint.
type Verifier struct {
	client  *openai.Client
	baseURL string
	model   string
	logger  *slog.Logger
}

// VerifierOption configures the Verifier.
type VerifierOption func(*Verifier)

// WithVerifierModel overrides the default model.
func WithVerifierModel(model string) VerifierOption {
	return func(v *Verifier) {
		if model != "" {
			v.model = model
		}
	}
}

// WithVerifierBaseURL overrides the default endpoint.
func WithVerifierBaseURL(url string) VerifierOption {
	return func(v *Verifier) {
		if url != "" {
			v.baseURL = url
		}
	}
}

// WithVerifierLogger sets a structured logger.
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a vision verifier against the OpenRouter endpoint.
func NewVerifier(apiKey string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		baseURL: OpenRouterBaseURL,
		model:   DefaultVisionModel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(v.baseURL),
	)
	v.client = &client
	return v
}

// Verify runs the refund audit on one uploaded image. Callers fall back
// to an "acceptable" verdict on error, which denies the refund.
func (v *Verifier) Verify(ctx context.Context, imagePath, claimContext string) (domain.ImageVerdict, error) {
	dataURL, err := encodeImage(imagePath)
	if err != nil {
		return domain.ImageVerdict{}, fmt.Errorf("read image: %w", err)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(auditPrompt(claimContext)),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	resp, err := v.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       v.model,
		Temperature: openai.Float(0.1),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
	})
	if err != nil {
		return domain.ImageVerdict{}, fmt.Errorf("vision request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.ImageVerdict{}, errors.New("vision model returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	v.logger.Debug("vision raw response", "content", truncate(raw, 120))

	return ParseImageVerdict(raw)
}

// encodeImage reads the uploaded file and packs it into a base64 data
// URL, sniffing the MIME type from the leading bytes.
func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mimeType := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}

func auditPrompt(claimContext string) string {
	return fmt.Sprintf(`You are a strict Refund Auditor.
=== CLAIM CONTEXT ===
%s
=====================

INSTRUCTIONS:
1. IDENTITY CHECK: Is this image related to the claim? (Reject selfies/floors).
2. DEFECT CHECK: Look for the SPECIFIC issue mentioned in context:
   - 'Burnt/Damage': Look for charring or crushed packaging.
   - 'Spilled': Look for liquids outside the container.
   - 'Wrong Item': Compare the image against the Order details in context. If they differ, it is DEFECTIVE.
   - 'Missing Items': Count visible items. If count < expected, it is DEFECTIVE.

VERDICT RULES:
- 'defective': If there is PROOF of damage, spillage, missing items, OR a wrong item sent.
- 'acceptable': If the goods match the order description and look usable (even if messy).
- 'rejected': If the image is unrelated to the claim.

Return ONLY JSON:
{"status":"defective", "description":"Image shows a crushed box; order expected intact packaging."}
{"status":"acceptable", "description":"Goods match the order and appear intact."}`, claimContext)
}
