package domain

// Sentiment is the five-grade market sentiment scale.
type Sentiment string

const (
	SentimentStronglyNegative Sentiment = "Strongly Negative"
	SentimentNegative         Sentiment = "Negative"
	SentimentNeutral          Sentiment = "Neutral"
	SentimentPositive         Sentiment = "Positive"
	SentimentStronglyPositive Sentiment = "Strongly Positive"
)

// Valid reports whether the sentiment is one of the five known grades.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentStronglyNegative, SentimentNegative, SentimentNeutral,
		SentimentPositive, SentimentStronglyPositive:
		return true
	}
	return false
}

// Step is a single entry in a model's chain of thought.
type Step struct {
	Description string `json:"description"`
	Output      string `json:"output"`
}

// Report is the structured sentiment analysis produced by the generator.
// Citations hold ordinal digest indices, not URLs; FutureSentiment is empty
// when the articles carry no forward-looking signal.
type Report struct {
	ChainOfThought   []Step    `json:"chain_of_thought"`
	Text             string    `json:"report"`
	CurrentSentiment Sentiment `json:"current_sentiment"`
	FutureSentiment  Sentiment `json:"future_sentiment,omitempty"`
	Citations        []int     `json:"citations"`
}

// Verdict is a critic's answer for one grading dimension (usefulness or
// groundedness). Criticisms is populated only when Passed is false.
type Verdict struct {
	ChainOfThought []Step   `json:"chain_of_thought"`
	Passed         bool     `json:"passed"`
	Criticisms     []string `json:"criticisms,omitempty"`
}
