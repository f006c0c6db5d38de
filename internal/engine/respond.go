package engine

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// Reply is one generated bot response. Replies may carry inline HTML
// (<strong>, <br>, anchors) because the widget renders bot messages
// unescaped. Suggestions fully replace the previous chip set; an empty
// slice clears the chips.
type Reply struct {
	Text        string
	Suggestions []string
}

// WelcomeMessages are seeded, in order, into every brand-new session.
var WelcomeMessages = []string{
	"\U0001F44B Hi there! I'm the Zentrium AI Assistant. How can I help you today?",
	"I can help you with:<br>• Information about our AI solutions<br>• Pricing and packages<br>• Booking a consultation<br>• Technical questions<br>• Connecting with our team",
	"Just type your question below to get started!",
}

var defaultSuggestions = []string{
	"Tell me about your services",
	"What are your pricing options?",
	"I'd like to book a consultation",
}

// ReengagementReply is appended by the idle monitor when a session with
// at least one turn goes quiet while the widget is open.
var ReengagementReply = Reply{
	Text: "Are you still there? I'm here if you have any more questions about Zentrium AI's services.",
	Suggestions: []string{
		"Yes, I'm still here",
		"I need more information",
		"I'll come back later",
	},
}

// exactMatches short-circuits intent handling for a handful of
// canonical questions. Keyed by the full lowercased message.
var exactMatches = map[string]string{
	"what is ai":                        "AI (Artificial Intelligence) refers to computer systems designed to perform tasks that typically require human intelligence. At Zentrium AI, we specialize in practical AI applications that deliver real business value through automation, data analysis, and intelligent decision-making.",
	"how does ai work":                  "AI works by using algorithms and models trained on data to recognize patterns, make predictions, and take actions. Modern AI systems use techniques like machine learning and deep learning to improve their performance over time as they process more data.",
	"what industries do you work with":  "We work with clients across various industries including healthcare, finance, legal, retail, manufacturing, and technology. Our AI solutions are adaptable to different business contexts and requirements.",
	"do you offer custom solutions":     "Yes, we specialize in creating custom AI solutions tailored to your specific business needs. Our team works closely with you to understand your requirements and develop solutions that address your unique challenges.",
	"how long does implementation take": "Implementation typically takes 2-4 weeks depending on the complexity of your requirements. We follow an agile approach to ensure you see progress and can provide feedback throughout the development process.",
}

// Responder turns an intent plus the raw message into a reply. The
// variant chooser is injected so tests can pin the randomness.
type Responder struct {
	kb   *domain.KnowledgeBase
	pick func(n int) int
}

// NewResponder builds a responder over the given knowledge base. A nil
// pick falls back to uniform math/rand selection.
func NewResponder(kb *domain.KnowledgeBase, pick func(n int) int) *Responder {
	if pick == nil {
		pick = rand.Intn
	}
	return &Responder{kb: kb, pick: pick}
}

// Generate produces the reply for one turn. Exact-match questions win
// over everything; otherwise the sticky topic picks the branch; with no
// topic yet, a keyword sniff over the raw message decides, and failing
// that a generic prompt asks the visitor to clarify.
func (r *Responder) Generate(topic domain.Intent, profile domain.UserProfile, message string) Reply {
	lower := strings.ToLower(message)

	if text, ok := exactMatches[lower]; ok {
		return Reply{Text: text, Suggestions: []string{}}
	}

	greeting := ""
	if profile.Name != "" {
		greeting = fmt.Sprintf("Hi %s! ", profile.Name)
	}

	switch topic {
	case domain.IntentGreeting:
		return r.greeting(greeting)
	case domain.IntentFarewell:
		return r.farewell(greeting)
	case domain.IntentThanks:
		return r.thanks(greeting)
	case domain.IntentServices:
		return r.services(greeting, lower)
	case domain.IntentPricing:
		return r.pricing(greeting, lower)
	case domain.IntentContact:
		return r.contact(greeting)
	case domain.IntentBooking:
		return r.booking(greeting)
	case domain.IntentHelp:
		return r.help(greeting)
	case domain.IntentCompany:
		return r.company(greeting)
	}

	// Cold start: no topic established yet. Sniff the message for a
	// coarse bucket before giving up.
	switch {
	case strings.Contains(lower, "service") || strings.Contains(lower, "offer") || strings.Contains(lower, "do you do"):
		return r.services(greeting, lower)
	case strings.Contains(lower, "price") || strings.Contains(lower, "cost") || strings.Contains(lower, "how much"):
		return r.pricing(greeting, lower)
	case strings.Contains(lower, "contact") || strings.Contains(lower, "email") || strings.Contains(lower, "phone"):
		return r.contact(greeting)
	case strings.Contains(lower, "book") || strings.Contains(lower, "appointment") || strings.Contains(lower, "schedule"):
		return r.booking(greeting)
	}
	return r.fallback(greeting)
}

func (r *Responder) greeting(greeting string) Reply {
	variants := []string{
		greeting + "Hello! How can I help you today? I can tell you about our AI services, pricing, or help you book a consultation.",
		greeting + "Hi there! Welcome to Zentrium AI. What brings you here today?",
		greeting + "Greetings! I'm the Zentrium AI Assistant. How may I assist you?",
	}
	return Reply{
		Text:        variants[r.pick(len(variants))],
		Suggestions: append([]string(nil), defaultSuggestions...),
	}
}

func (r *Responder) farewell(greeting string) Reply {
	variants := []string{
		greeting + "Thank you for chatting with me today. If you have any more questions in the future, don't hesitate to reach out!",
		greeting + "Goodbye! It was a pleasure assisting you. Feel free to return if you need further help.",
		greeting + "Have a great day! Remember, we're here to help whenever you need AI solutions for your business.",
	}
	return Reply{Text: variants[r.pick(len(variants))], Suggestions: []string{}}
}

func (r *Responder) thanks(greeting string) Reply {
	variants := []string{
		greeting + "You're welcome! Is there anything else I can help you with today?",
		greeting + "My pleasure! Do you have any other questions about our AI solutions?",
		greeting + "Happy to help! Let me know if you need any more information.",
	}
	return Reply{
		Text:        variants[r.pick(len(variants))],
		Suggestions: []string{"Yes, I have another question", "No, that's all for now"},
	}
}

// sniffService maps topic keywords in the message to a catalog service
// name. First matching group wins; "" means no specific service.
func sniffService(lower string) string {
	switch {
	case strings.Contains(lower, "workflow") || strings.Contains(lower, "automation"):
		return "Workflow Automation"
	case strings.Contains(lower, "document") || strings.Contains(lower, "processing"):
		return "Document Processing"
	case strings.Contains(lower, "agent") || strings.Contains(lower, "assistant"):
		return "Custom AI Agents"
	case strings.Contains(lower, "analytics") || strings.Contains(lower, "prediction"):
		return "Predictive Analytics"
	}
	return ""
}

func (r *Responder) services(greeting, lower string) Reply {
	if name := sniffService(lower); name != "" {
		if svc := r.kb.ServiceByName(name); svc != nil {
			return Reply{
				Text: fmt.Sprintf("%sOur <strong>%s</strong> service provides %s Would you like to know more about our other services or discuss how this could benefit your business?",
					greeting, svc.Name, svc.Description),
				Suggestions: []string{
					"Tell me about your other services",
					"How could this benefit my business?",
					"What's your pricing for this service?",
				},
			}
		}
	}
	return Reply{
		Text: greeting + "We offer a comprehensive range of AI solutions including:<br><br>• <strong>Workflow Automation</strong> - Streamline your business processes<br>• <strong>Document Processing</strong> - Extract insights from unstructured data<br>• <strong>Custom AI Agents</strong> - Tailored AI assistants for your specific needs<br>• <strong>Predictive Analytics</strong> - Make data-driven decisions<br><br>Would you like more details about any specific service?",
		Suggestions: []string{
			"Tell me about Workflow Automation",
			"Tell me about Document Processing",
			"Tell me about Custom AI Agents",
			"Tell me about Predictive Analytics",
		},
	}
}

func (r *Responder) pricing(greeting, lower string) Reply {
	if name := sniffService(lower); name != "" {
		return Reply{
			Text: fmt.Sprintf("%sThe pricing for our %s service depends on your specific requirements and scale. We offer flexible pricing models including project-based, subscription, and pay-as-you-go options. Would you like to book a consultation to discuss your needs and get a personalized quote?",
				greeting, name),
			Suggestions: []string{
				"Yes, I'd like to book a consultation",
				"What factors affect the price?",
				"Tell me about your other services",
			},
		}
	}
	return Reply{
		Text: greeting + "Our pricing is customized based on your specific requirements and project scope. We offer flexible pricing models including:<br><br>• Project-based pricing<br>• Monthly subscriptions<br>• Pay-as-you-go options<br><br>Would you like to book a free consultation to discuss your needs and get a personalized quote?",
		Suggestions: []string{
			"Yes, I'd like to book a consultation",
			"What's included in the monthly subscription?",
			"How does the pay-as-you-go model work?",
		},
	}
}

func (r *Responder) contact(greeting string) Reply {
	return Reply{
		Text: greeting + `You can reach us through multiple channels:<br><br>` +
			`• Email: <a href="mailto:zentriumai@gmail.com">zentriumai@gmail.com</a><br>` +
			`• Phone: <a href="tel:+94742209477">+94 074 220 9477</a><br>` +
			`• Contact Form: Fill out the form in the Contact section<br><br>` +
			`How would you prefer to connect with us?`,
		Suggestions: []string{"I'll send an email", "I'll call you", "I'll use the contact form"},
	}
}

func (r *Responder) booking(greeting string) Reply {
	return Reply{
		Text: greeting + `Great choice! You can book a free 30-minute consultation through our calendar system in the "Book a Call" section. Would you like me to help you navigate there?`,
		Suggestions: []string{
			"Yes, please help me navigate there",
			"What information do I need to provide?",
			"What happens after I book?",
		},
	}
}

func (r *Responder) help(greeting string) Reply {
	return Reply{
		Text: greeting + "I'm here to help! I can provide information about our AI services, pricing, or assist you with booking a consultation. What would you like to know more about?",
		Suggestions: []string{
			"Tell me about your services",
			"What are your pricing options?",
			"How can I contact your team?",
		},
	}
}

func (r *Responder) company(greeting string) Reply {
	return Reply{
		Text: greeting + "Zentrium AI is a leading provider of artificial intelligence solutions for businesses. We specialize in workflow automation, document processing, custom AI agents, and predictive analytics. Our mission is to make AI accessible and practical for businesses of all sizes. Would you like to know more about our team or services?",
		Suggestions: []string{
			"Tell me about your team",
			"What services do you offer?",
			"How did Zentrium AI start?",
		},
	}
}

func (r *Responder) fallback(greeting string) Reply {
	variants := []string{
		greeting + "Thank you for your message. I'm here to help with information about our AI services, pricing, or booking a consultation. Could you please provide more details about what you're looking for?",
		greeting + "I'm not sure I fully understood your question. I can help with information about Zentrium AI's services, pricing, or scheduling a consultation. What would you like to know?",
		greeting + "I'd be happy to assist you. To better help you, could you clarify what information you're looking for about our AI solutions?",
	}
	return Reply{
		Text:        variants[r.pick(len(variants))],
		Suggestions: append([]string(nil), defaultSuggestions...),
	}
}
