package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	pkgerrors "planner-backend/pkg/errors"
)

// EmailSender implements ports.EmailSender using Amazon SES
type EmailSender struct {
	client *sesv2.Client
	from   string
	logger *zap.Logger
}

// NewEmailSender creates a new EmailSender
func NewEmailSender(client *sesv2.Client, from string, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		client: client,
		from:   from,
		logger: logger,
	}
}

// SendEmail delivers an HTML email
func (s *EmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return pkgerrors.NewTransientError(fmt.Sprintf("failed to send email: %v", err))
	}

	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return nil
}
