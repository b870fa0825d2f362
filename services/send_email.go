package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// Mailer sends HTML e-mail
type Mailer interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

type ResendMailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendMailer requires RESEND_API_KEY and RESEND_FROM_EMAIL
func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errs.NewConfigMissingError("RESEND_API_KEY")
	}
	if from == "" {
		return nil, errs.NewConfigMissingError("RESEND_FROM_EMAIL")
	}
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Send sends an email using the Resend API
func (m *ResendMailer) Send(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errs.NewDeliveryError("email", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewDeliveryError("email", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message))
		}
		return errs.NewDeliveryError("email", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes)))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}

// SendMagicLink e-mails an admin sign-in link
func (m *ResendMailer) SendMagicLink(ctx context.Context, email, link string) error {
	body := fmt.Sprintf(`<p>Use the link below to sign in to the admin console. It expires shortly and works once.</p>
<p><a href="%s">Sign in</a></p>
<p>If you did not ask for this, ignore this e-mail.</p>`, html.EscapeString(link))
	return m.Send(ctx, "Your admin sign-in link", body, []string{email})
}
