package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// EmailJSTransport submits through an EmailJS-style template API. It is
// the primary delivery channel.
type EmailJSTransport struct {
	client     *http.Client
	endpoint   string
	serviceID  string
	templateID string
	toEmail    string
	ccEmail    string
}

func NewEmailJSTransport(client *http.Client, endpoint, serviceID, templateID, toEmail, ccEmail string) *EmailJSTransport {
	return &EmailJSTransport{
		client:     client,
		endpoint:   endpoint,
		serviceID:  serviceID,
		templateID: templateID,
		toEmail:    toEmail,
		ccEmail:    ccEmail,
	}
}

func (t *EmailJSTransport) Name() string { return "primary" }

func (t *EmailJSTransport) Send(ctx context.Context, sub *domain.ContactSubmission) error {
	payload := map[string]any{
		"service_id":  t.serviceID,
		"template_id": t.templateID,
		"template_params": map[string]string{
			"user_name":  sub.Name,
			"user_email": sub.Email,
			"user_phone": sub.Phone,
			"subject":    sub.Subject,
			"message":    sub.Message,
			"to_email":   t.toEmail,
			"cc_email":   t.ccEmail,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal emailjs payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doSend(t.client, req, t.Name())
}

// FormSubmitTransport submits through a FormSubmit-style AJAX endpoint.
// Fallback channel; the CC recipient rides along as the _cc field.
type FormSubmitTransport struct {
	client   *http.Client
	endpoint string
	ccEmail  string
}

func NewFormSubmitTransport(client *http.Client, endpoint, ccEmail string) *FormSubmitTransport {
	return &FormSubmitTransport{client: client, endpoint: endpoint, ccEmail: ccEmail}
}

func (t *FormSubmitTransport) Name() string { return "fallback" }

func (t *FormSubmitTransport) Send(ctx context.Context, sub *domain.ContactSubmission) error {
	form := url.Values{
		"name":    {sub.Name},
		"email":   {sub.Email},
		"phone":   {sub.Phone},
		"subject": {sub.Subject},
		"message": {sub.Message},
		"_cc":     {t.ccEmail},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build formsubmit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return doSend(t.client, req, t.Name())
}

func doSend(client *http.Client, req *http.Request, name string) error {
	resp, err := client.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "mail relay " + name, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ErrExternalService{
			Service: "mail relay " + name,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return nil
}
