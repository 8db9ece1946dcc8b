package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

// sesClient is the subset of *sesv2.Client used here.
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string // Optional; the default credential chain is used when empty
	SecretAccessKey string
	FromEmail       string
	FromName        string
}

// SESSender mails call back requests to the team inbox via AWS SES.
type SESSender struct {
	client    sesClient
	fromEmail string
	fromName  string
	inbox     Inbox
	logger    *slog.Logger
}

// NewSESSender creates a new SES sender from an AWS configuration.
func NewSESSender(ctx context.Context, cfg SESConfig, inbox Inbox, logger *slog.Logger) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg, inbox, logger), nil
}

func newSESSender(client sesClient, cfg SESConfig, inbox Inbox, logger *slog.Logger) *SESSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = DefaultFromEmail
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	if inbox.Name == "" {
		inbox.Name = DefaultInboxName
	}
	return &SESSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		inbox:     inbox,
		logger:    logger,
	}
}

// Send renders the call back request and sends it via SES.
func (s *SESSender) Send(ctx context.Context, msg TemplateMessage) error {
	const op = "email.ses.send"

	email, err := renderCallback(s.inbox, msg.Params)
	if err != nil {
		return renderFailure(err, op)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(email.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(email.TextBody),
						Charset: aws.String("UTF-8"),
					},
					Html: &types.Content{
						Data:    aws.String(email.HTMLBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if email.ReplyTo != "" {
		input.ReplyToAddresses = []string{email.ReplyTo}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		var reason string
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			reason = apiErr.ErrorMessage()
			s.logger.Error("SES send failed",
				"provider", ProviderSES,
				"code", apiErr.ErrorCode(),
				"error", err,
				"to", email.To,
			)
		} else {
			s.logger.Error("SES send failed", "provider", ProviderSES, "error", err, "to", email.To)
		}
		return sendFailure(err, op, reason)
	}

	s.logger.Info("email sent",
		"provider", ProviderSES,
		"to", email.To,
		"message_id", aws.ToString(output.MessageId),
	)
	return nil
}

var _ Sender = (*SESSender)(nil)
