package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer sends emails via Amazon SES
type SESMailer struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewSESMailer creates a new SES mailer
func NewSESMailer(awsRegion, fromEmail, fromName string, debug bool) (*SESMailer, error) {
	// If fromEmail is empty, create a disabled mailer
	if fromEmail == "" {
		log.Println("Mailer disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Mailer will skip sending all emails")
		}
		return &SESMailer{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing mailer with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] From Name: %s", fromName)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Mailer enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &SESMailer{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the mailer is enabled
func (m *SESMailer) IsEnabled() bool {
	return m.enabled
}

// Send sends an email using Amazon SES
func (m *SESMailer) Send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !m.enabled {
		log.Printf("Skipping email send (mailer disabled): to=%s, subject=%s", toEmail, subject)
		return nil
	}

	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	if m.debug {
		log.Printf("[DEBUG] Sending email: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		if m.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		wrapped := fmt.Errorf("failed to send email to %s: %w", toEmail, err)
		if isPermanentSESError(err) {
			return &PermanentSendError{Err: wrapped}
		}
		return wrapped
	}

	if m.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

// isPermanentSESError classifies SES failures. Rejected messages and bad
// requests will fail the same way on every attempt; throttling and sending
// pauses clear on their own.
func isPermanentSESError(err error) bool {
	var messageRejected *types.MessageRejected
	if errors.As(err, &messageRejected) {
		return true
	}
	var notVerified *types.MailFromDomainNotVerifiedException
	if errors.As(err, &notVerified) {
		return true
	}
	var suspended *types.AccountSuspendedException
	if errors.As(err, &suspended) {
		return true
	}
	var badRequest *types.BadRequestException
	if errors.As(err, &badRequest) {
		return true
	}
	return false
}
