package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/orderdesk/refundflow/pkg/domain"
)

var fencePattern = regexp.MustCompile("```(?:json)?")

// ParseIntentAnalysis decodes a classifier response. Absent fields keep
// neutral defaults, scores are clamped to 0..10 and unknown intents
// collapse to general.
func ParseIntentAnalysis(raw string) (domain.IntentAnalysis, error) {
	loose, err := extractJSON(raw)
	if err != nil {
		return domain.IntentAnalysis{}, err
	}

	analysis := domain.IntentAnalysis{
		Intent:         domain.IntentGeneral,
		SentimentScore: 5,
		Language:       "en",
	}
	if err := weakDecode(loose, &analysis); err != nil {
		return domain.IntentAnalysis{}, fmt.Errorf("malformed analysis: %w", err)
	}

	if analysis.SentimentScore < 0 {
		analysis.SentimentScore = 0
	}
	if analysis.SentimentScore > 10 {
		analysis.SentimentScore = 10
	}
	switch analysis.Intent {
	case domain.IntentRefund, domain.IntentQualityComplaint, domain.IntentGeneral:
	default:
		analysis.Intent = domain.IntentGeneral
	}
	if analysis.Language == "" {
		analysis.Language = "en"
	}
	return analysis, nil
}

// ParseImageVerdict decodes a vision response verbatim. No status
// normalization happens here: the decision stage treats anything that
// is not exactly "defective" as denial.
func ParseImageVerdict(raw string) (domain.ImageVerdict, error) {
	loose, err := extractJSON(raw)
	if err != nil {
		return domain.ImageVerdict{}, err
	}

	var verdict domain.ImageVerdict
	if err := weakDecode(loose, &verdict); err != nil {
		return domain.ImageVerdict{}, fmt.Errorf("malformed verdict: %w", err)
	}
	return verdict, nil
}

// extractJSON pulls the first JSON object out of a model response,
// tolerating markdown fences and surrounding prose.
func extractJSON(raw string) (map[string]any, error) {
	clean := fencePattern.ReplaceAllString(raw, "")
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response: %q", truncate(raw, 80))
	}

	var loose map[string]any
	if err := json.Unmarshal([]byte(clean[start:end+1]), &loose); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	return loose, nil
}

// weakDecode absorbs the type drift of model-emitted JSON: numbers may
// arrive as floats or strings, and extra keys are ignored.
func weakDecode(input map[string]any, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
