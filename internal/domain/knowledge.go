package domain

// Service is one entry in the service catalog.
type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PricingPlan describes one pricing tier.
type PricingPlan struct {
	Plan     string   `json:"plan"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

// FAQ is a canned question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// KnowledgeBase is the static catalog the response generator draws on.
// Loaded once at construction, read-only afterwards, safe to share
// across sessions.
type KnowledgeBase struct {
	Services []Service
	Pricing  []PricingPlan
	FAQs     []FAQ
}

// ServiceByName returns the catalog entry with the given name, or nil.
func (kb *KnowledgeBase) ServiceByName(name string) *Service {
	for i := range kb.Services {
		if kb.Services[i].Name == name {
			return &kb.Services[i]
		}
	}
	return nil
}

// DefaultKnowledgeBase returns the Zentrium AI catalog.
func DefaultKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Services: []Service{
			{Name: "Workflow Automation", Description: "AI-powered automation of business processes to save time and reduce errors."},
			{Name: "Document Processing", Description: "Extract insights from unstructured data using advanced NLP techniques."},
			{Name: "Custom AI Agents", Description: "Tailored AI assistants designed for your specific business needs."},
			{Name: "Predictive Analytics", Description: "Make data-driven decisions with our advanced forecasting models."},
		},
		Pricing: []PricingPlan{
			{Plan: "Starter", Price: "Custom pricing", Features: []string{"Basic automation", "Document processing (up to 100 pages/month)", "Email support"}},
			{Plan: "Professional", Price: "Custom pricing", Features: []string{"Advanced automation", "Document processing (up to 1000 pages/month)", "Custom AI agent", "Priority support"}},
			{Plan: "Enterprise", Price: "Custom pricing", Features: []string{"Full suite of services", "Unlimited document processing", "Multiple custom AI agents", "Dedicated support manager"}},
		},
		FAQs: []FAQ{
			{Question: "How long does implementation take?", Answer: "Implementation typically takes 2-4 weeks depending on the complexity of your requirements."},
			{Question: "Do you offer a trial period?", Answer: "Yes, we offer a 14-day free trial for our Starter and Professional plans."},
			{Question: "What industries do you serve?", Answer: "We work with clients across various industries including healthcare, finance, legal, retail, and manufacturing."},
		},
	}
}
