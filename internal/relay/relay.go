// Package relay delivers contact-form submissions through a chain of
// mail transports, degrading to a prebuilt mailto: link when every
// channel is down. Delivery never hard-fails from the caller's point
// of view; the result says which path worked.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/infra/resilience"
	"github.com/zentrium/assistant-engine-go/internal/port"
)

var tracer = otel.Tracer("relay")

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	defaultPhone   = "Not provided"
	defaultSubject = "Contact Form Submission"
)

// Service runs the transport chain. Each transport gets its own
// circuit breaker so a dead primary cannot poison the fallback, and a
// bulkhead caps how many submissions are in flight at once.
type Service struct {
	transports []port.MailTransport
	breakers   map[string]*gobreaker.CircuitBreaker
	retry      resilience.Config
	bulkhead   *resilience.Bulkhead
	recipients []string
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewService builds the relay over the given transports, tried in
// order. recipients are the mailto: addressees for the last-resort
// path.
func NewService(
	transports []port.MailTransport,
	retry resilience.Config,
	recipients []string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Service {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(transports))
	for _, t := range transports {
		breakers[t.Name()] = resilience.NewCircuitBreaker("mail-relay-" + t.Name())
	}
	return &Service{
		transports: transports,
		breakers:   breakers,
		retry:      retry,
		bulkhead:   resilience.NewBulkhead(retry.MaxConcurrency),
		recipients: recipients,
		metrics:    metrics,
		logger:     logger,
	}
}

// Submit validates and delivers one submission. Invalid input returns
// ErrValidation; everything else resolves to a ContactResult, possibly
// the mailto fallback.
func (s *Service) Submit(ctx context.Context, sub *domain.ContactSubmission) (*domain.ContactResult, error) {
	ctx, span := tracer.Start(ctx, "Relay.Submit")
	defer span.End()

	if err := validate(sub); err != nil {
		return nil, err
	}
	if sub.Phone == "" {
		sub.Phone = defaultPhone
	}
	if sub.Subject == "" {
		sub.Subject = defaultSubject
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("contact_relay", time.Since(start))
	}()

	result := &domain.ContactResult{SubmissionID: uuid.NewString()}

	for _, t := range s.transports {
		err := s.attempt(ctx, t, sub)
		if err == nil {
			s.metrics.IncrRelayAttempt(t.Name(), "delivered")
			s.logger.Info("contact submission delivered",
				zap.String("submission_id", result.SubmissionID),
				zap.String("transport", t.Name()),
			)
			result.Delivered = true
			result.Transport = t.Name()
			return result, nil
		}

		s.metrics.IncrRelayAttempt(t.Name(), "failed")
		s.logger.Warn("mail transport failed, trying next",
			zap.String("submission_id", result.SubmissionID),
			zap.String("transport", t.Name()),
			zap.Error(err),
		)
	}

	// Every channel is down. Hand the client a mailto link so the
	// message still has a way out.
	result.MailtoLink = s.mailtoLink(sub)
	s.logger.Warn("all mail transports failed, returning mailto fallback",
		zap.String("submission_id", result.SubmissionID),
	)
	return result, nil
}

func (s *Service) attempt(ctx context.Context, t port.MailTransport, sub *domain.ContactSubmission) error {
	cb := s.breakers[t.Name()]
	_, err := cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.retry, func() error {
			return t.Send(ctx, sub)
		})
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrCircuitOpen{Service: t.Name()}
	}
	return err
}

func validate(sub *domain.ContactSubmission) error {
	if strings.TrimSpace(sub.Name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if !emailShape.MatchString(strings.TrimSpace(sub.Email)) {
		return &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if strings.TrimSpace(sub.Message) == "" {
		return &domain.ErrValidation{Field: "message", Message: "message is required"}
	}
	return nil
}

func (s *Service) mailtoLink(sub *domain.ContactSubmission) string {
	body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s",
		sub.Name, sub.Email, sub.Phone, sub.Message)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		strings.Join(s.recipients, ","),
		encodeComponent(sub.Subject),
		encodeComponent(body),
	)
}

// encodeComponent percent-encodes for a mailto query. QueryEscape's
// plus-for-space convention breaks mail clients, so spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
