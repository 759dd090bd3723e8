package twilio

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	pkgerrors "planner-backend/pkg/errors"
)

// SMSSender implements ports.SMSSender using the Twilio messaging API
type SMSSender struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

// NewSMSSender creates a new SMSSender
func NewSMSSender(accountSID, authToken, from string, logger *zap.Logger) (*SMSSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("Twilio credentials are required")
	}
	if from == "" {
		return nil, fmt.Errorf("Twilio sender number is required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{
		client: client,
		from:   from,
		logger: logger,
	}, nil
}

// SendSMS delivers a text message and returns the provider message SID.
// The twilio client does not take a context; the ctx parameter is kept
// for interface symmetry and honoured before the call.
func (s *SMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", pkgerrors.NewTransientError(fmt.Sprintf("failed to send sms: %v", err))
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}

	s.logger.Debug("sms sent",
		zap.String("to", to),
		zap.String("message_sid", sid),
	)

	return sid, nil
}
