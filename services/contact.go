package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"

	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog/log"
)

// Services a visitor can ask about
var ContactServices = map[string]string{
	"transitions":  "Senior Transitions",
	"notary":       "Notary Services",
	"organization": "Home Organization",
	"not-sure":     "Not Sure Yet",
}

// Inquiry is a contact form submission
type Inquiry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

type ContactService struct {
	mailer   Mailer
	inbox    []string
	notifier Notifier
}

// NewContactService delivers inquiries to inbox by mail and, when notifier is
// non-nil, by text message.
func NewContactService(mailer Mailer, inbox []string, notifier Notifier) *ContactService {
	return &ContactService{mailer: mailer, inbox: inbox, notifier: notifier}
}

func (in *Inquiry) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Service = strings.TrimSpace(in.Service)
	in.Message = strings.TrimSpace(in.Message)

	switch {
	case in.Name == "":
		return errs.NewMissingRequiredFieldError("name")
	case in.Email == "":
		return errs.NewMissingRequiredFieldError("email")
	case in.Message == "":
		return errs.NewMissingRequiredFieldError("message")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil {
		return errs.NewInvalidFieldError("email", "not a valid address")
	}
	in.Email = addr.Address
	if in.Service != "" {
		if _, ok := ContactServices[in.Service]; !ok {
			return errs.NewInvalidFieldError("service", "unknown service")
		}
	}
	return nil
}

// Submit delivers an inquiry. It fails only when no channel delivered it.
func (s *ContactService) Submit(ctx context.Context, in Inquiry) error {
	if err := in.normalize(); err != nil {
		return err
	}
	logger := log.With().Str("service", "contact").Str("from", in.Email).Logger()

	var failures []error
	delivered := 0
	if s.mailer != nil && len(s.inbox) > 0 {
		if err := s.mailer.Send(ctx, "New inquiry from "+in.Name, inquiryHTML(in), s.inbox); err != nil {
			logger.Error().Err(err).Msg("inquiry e-mail failed")
			failures = append(failures, err)
		} else {
			delivered++
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, inquirySMS(in)); err != nil {
			logger.Error().Err(err).Msg("inquiry text failed")
			failures = append(failures, err)
		} else {
			delivered++
		}
	}

	if delivered == 0 {
		if len(failures) == 0 {
			return errs.NewDeliveryError("contact", errors.New("no delivery channel configured"))
		}
		return errs.NewDeliveryError("contact", errors.Join(failures...))
	}
	logger.Info().Int("channels", delivered).Msg("inquiry delivered")
	return nil
}

func serviceLabel(key string) string {
	if label, ok := ContactServices[key]; ok {
		return label
	}
	return "Not specified"
}

func inquiryHTML(in Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(in.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(in.Email))
	if in.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", html.EscapeString(in.Phone))
	}
	fmt.Fprintf(&b, "<p><strong>Service:</strong> %s</p>", html.EscapeString(serviceLabel(in.Service)))
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(in.Message), "\n", "<br>"))
	return b.String()
}

func inquirySMS(in Inquiry) string {
	msg := in.Message
	if r := []rune(msg); len(r) > 120 {
		msg = string(r[:120]) + "…"
	}
	contact := in.Email
	if in.Phone != "" {
		contact = in.Phone
	}
	return fmt.Sprintf("New inquiry: %s (%s) re %s: %s", in.Name, contact, serviceLabel(in.Service), msg)
}
