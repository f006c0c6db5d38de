package domain

// ContactSubmission is one contact-form payload from the widget.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResult reports how a submission was delivered. Exactly one of
// the delivery modes applies: Delivered via a named transport, or a
// MailtoLink for the client to open itself when every relay failed.
type ContactResult struct {
	SubmissionID string `json:"submissionId"`
	Delivered    bool   `json:"delivered"`
	Transport    string `json:"transport,omitempty"`
	MailtoLink   string `json:"mailtoLink,omitempty"`
}
