// internal/notify/ses.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used here, extracted for mocking.
type SESAPI interface {
	SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
}

type sesMailer struct {
	client SESAPI
}

// NewSESMailer creates an SES-backed Mailer for the given region.
func NewSESMailer(ctx context.Context, region string) (Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &sesMailer{client: ses.NewFromConfig(cfg)}, nil
}

func (m *sesMailer) SendTemplated(ctx context.Context, req SendRequest) error {
	data := make(map[string]interface{}, len(req.TemplateData)+1)
	for k, v := range req.TemplateData {
		data[k] = v
	}
	data["subject"] = req.Subject

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return &ProviderError{Err: fmt.Errorf("marshal template data: %w", err)}
	}

	_, err = m.client.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{req.To},
		},
		Source:       aws.String(fmt.Sprintf("%s <%s>", req.FromName, req.FromEmail)),
		Template:     aws.String(req.TemplateID),
		TemplateData: aws.String(string(dataJSON)),
	})
	if err != nil {
		return &ProviderError{ResponseBody: err.Error(), Err: err}
	}
	return nil
}
