package domain

// Verdict status values returned by the vision verifier. Approval is
// closed-world: only an exact "defective" finding approves a refund.
const (
	VerdictDefective  = "defective"
	VerdictAcceptable = "acceptable"
	VerdictRejected   = "rejected"
)

// ImageVerdict is the structured judgment of the vision verifier.
// It is bound to the state verbatim and computed at most once per claim.
type ImageVerdict struct {
	Status      string `json:"status" mapstructure:"status"`
	Description string `json:"description" mapstructure:"description"`
}

// IntentAnalysis is the structured judgment of the text classifier.
type IntentAnalysis struct {
	Intent         string `json:"intent" mapstructure:"intent"`
	SentimentScore int    `json:"sentiment_score" mapstructure:"sentiment_score"`
	Language       string `json:"language" mapstructure:"language"`
}
