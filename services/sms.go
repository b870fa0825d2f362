package services

import (
	"context"

	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier texts the business owner
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type TwilioNotifier struct {
	api  messageCreator
	from string
	to   string
}

func NewTwilioNotifier(accountSID, authToken, from, to string) (*TwilioNotifier, error) {
	switch {
	case accountSID == "":
		return nil, errs.NewConfigMissingError("TWILIO_ACCOUNT_SID")
	case authToken == "":
		return nil, errs.NewConfigMissingError("TWILIO_AUTH_TOKEN")
	case from == "" || to == "":
		return nil, errs.NewConfigMissingError("TWILIO_FROM/TWILIO_TO")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{api: client.Api, from: from, to: to}, nil
}

func (n *TwilioNotifier) Notify(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)
	if _, err := n.api.CreateMessage(params); err != nil {
		return errs.NewDeliveryError("sms", err)
	}
	return nil
}
