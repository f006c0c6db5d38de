package domain

// Intent is a coarse category of conversational purpose assigned to one
// user message. The zero value means no intent has been detected yet.
type Intent int

const (
	IntentNone Intent = iota
	IntentGreeting
	IntentFarewell
	IntentThanks
	IntentServices
	IntentPricing
	IntentContact
	IntentBooking
	IntentHelp
	IntentCompany
)

// String returns the wire/metric label for the intent.
func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentFarewell:
		return "farewell"
	case IntentThanks:
		return "thanks"
	case IntentServices:
		return "services"
	case IntentPricing:
		return "pricing"
	case IntentContact:
		return "contact"
	case IntentBooking:
		return "booking"
	case IntentHelp:
		return "help"
	case IntentCompany:
		return "company"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler so intents serialize as
// their label in JSON responses.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Sentiment is the tone classification of a single message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)
