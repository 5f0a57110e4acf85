package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/elibrary/backend/internal/models"
)

// EmailService is the outbound messaging link. Sends are best-effort:
// callers log failures and never fail the triggering request.
type EmailService interface {
	// NotifyAdminRequest announces a new pending admin-access request to
	// the operators' address.
	NotifyAdminRequest(ctx context.Context, user *models.User) error
	// NotifyAdminDecision tells the requester their admin request was
	// approved or rejected.
	NotifyAdminDecision(ctx context.Context, user *models.User, approved bool) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient    *ses.Client
	fromAddress  string
	adminAddress string
	logger       *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, adminAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:    ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		adminAddress: adminAddress,
		logger:       logger,
	}, nil
}

func (s *AWSSESEmailService) NotifyAdminRequest(ctx context.Context, user *models.User) error {
	if s.adminAddress == "" {
		s.logger.Info("no admin address configured, skipping admin-request notification")
		return nil
	}

	subject := "New admin access request"
	body := fmt.Sprintf(`A new admin access request is waiting for review.

Name:  %s
Email: %s

Approve or reject it from the admin requests page.
`, user.Name, user.Email)

	return s.send(ctx, s.adminAddress, subject, body)
}

func (s *AWSSESEmailService) NotifyAdminDecision(ctx context.Context, user *models.User, approved bool) error {
	var subject, body string
	if approved {
		subject = "Your admin access request was approved"
		body = fmt.Sprintf(`Hello %s,

Your admin access request has been approved. Log in again to start using
your administrator account.
`, user.Name)
	} else {
		subject = "Your admin access request was rejected"
		body = fmt.Sprintf(`Hello %s,

Your admin access request was rejected. You can still log in as a regular
user, or contact support if you believe this was a mistake.
`, user.Name)
	}

	return s.send(ctx, user.Email, subject, body)
}

func (s *AWSSESEmailService) send(ctx context.Context, to, subject, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("subject", subject),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// NoopEmailService is used when outbound email is disabled.
type NoopEmailService struct {
	logger *slog.Logger
}

func NewNoopEmailService(logger *slog.Logger) *NoopEmailService {
	return &NoopEmailService{logger: logger}
}

func (s *NoopEmailService) NotifyAdminRequest(ctx context.Context, user *models.User) error {
	s.logger.Info("email disabled, skipping admin-request notification")
	return nil
}

func (s *NoopEmailService) NotifyAdminDecision(ctx context.Context, user *models.User, approved bool) error {
	s.logger.Info("email disabled, skipping admin-decision notification",
		slog.Bool("approved", approved))
	return nil
}
