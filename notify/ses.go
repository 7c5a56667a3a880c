// ABOUTME: AWS SES transport for fallback notifications
// ABOUTME: Loads the default AWS credential chain and sends a plain-text email
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/harperreed/amplify/models"
)

// sesAPI is the part of *ses.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESNotifier struct {
	client sesAPI
	from   string
	to     string
}

// NewSESNotifier builds a client for region from the default AWS config.
func NewSESNotifier(ctx context.Context, region, from, to string) (*SESNotifier, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("ses notifications need both a sender and a recipient")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{client: ses.NewFromConfig(cfg), from: from, to: to}, nil
}

func (s *SESNotifier) Notify(ctx context.Context, entry *models.FallbackEntry) error {
	entry.Recipient = s.to

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(Subject(entry)),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(Body(entry)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send ses notification: %w", err)
	}
	return nil
}
