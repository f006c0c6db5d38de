package engine

import (
	"regexp"
	"strings"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// intentPattern pairs one intent with its compiled pattern. The slice
// order is the tie-break order: when two intents score the same
// confidence, the one declared first keeps the win.
type intentPattern struct {
	intent  domain.Intent
	pattern *regexp.Regexp
}

// Input is lowercased before matching, so the patterns themselves stay
// lowercase.
var intentPatterns = []intentPattern{
	{domain.IntentGreeting, regexp.MustCompile(`\b(hi|hello|hey|greetings|howdy|good (morning|afternoon|evening))\b`)},
	{domain.IntentFarewell, regexp.MustCompile(`\b(bye|goodbye|see you|talk to you later|until next time)\b`)},
	{domain.IntentThanks, regexp.MustCompile(`\b(thanks|thank you|appreciate it|grateful)\b`)},
	{domain.IntentServices, regexp.MustCompile(`\b(services|solutions|offerings|products|what (do|can) you (do|offer)|how can you help)\b`)},
	{domain.IntentPricing, regexp.MustCompile(`\b(pricing|cost|price|how much|packages|plans|subscription)\b`)},
	{domain.IntentContact, regexp.MustCompile(`\b(contact|reach|talk to|connect with|speak to someone|representative)\b`)},
	{domain.IntentBooking, regexp.MustCompile(`\b(book|schedule|appointment|consultation|meeting|call|demo)\b`)},
	{domain.IntentHelp, regexp.MustCompile(`\b(help|assist|support|guidance)\b`)},
	{domain.IntentCompany, regexp.MustCompile(`\b(about|company|team|who are you|zentrium)\b`)},
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {},
	"love": {}, "like": {}, "helpful": {}, "thanks": {}, "thank": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "poor": {}, "terrible": {}, "awful": {}, "hate": {},
	"dislike": {}, "unhelpful": {}, "disappointed": {}, "frustrating": {}, "confusing": {},
}

var nonWord = regexp.MustCompile(`\W+`)

// Classification is the outcome of scanning one message. Matched is
// false when no pattern fired; Intent and Confidence are then zero and
// the caller keeps its previous topic.
type Classification struct {
	Intent     domain.Intent
	Confidence float64
	Matched    bool
}

// Classifier scores free text against the fixed intent pattern table
// and the sentiment lexicons. Stateless and safe for concurrent use.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scans the message against every pattern and keeps the intent
// with the strictly highest confidence. Confidence is the number of
// pattern matches divided by the whitespace word count, so a short
// message that is mostly intent keywords scores higher than a long one
// with a single keyword buried in it.
func (c *Classifier) Classify(message string) Classification {
	lower := strings.ToLower(message)
	words := len(strings.Fields(message))
	if words == 0 {
		return Classification{}
	}

	var out Classification
	for _, p := range intentPatterns {
		matches := p.pattern.FindAllString(lower, -1)
		if len(matches) == 0 {
			continue
		}
		confidence := float64(len(matches)) / float64(words)
		if confidence > out.Confidence {
			out = Classification{Intent: p.intent, Confidence: confidence, Matched: true}
		}
	}
	return out
}

// AnalyzeSentiment counts lexicon hits over the message tokens. It is
// recomputed for every turn; there is no carry-over from prior turns.
func (c *Classifier) AnalyzeSentiment(message string) domain.Sentiment {
	var positive, negative int
	for _, word := range nonWord.Split(strings.ToLower(message), -1) {
		if _, ok := positiveWords[word]; ok {
			positive++
		}
		if _, ok := negativeWords[word]; ok {
			negative++
		}
	}

	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
