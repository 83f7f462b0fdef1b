// internal/notify/postmark.go
package notify

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkAPI is the subset of the Postmark client used here, extracted for
// mocking in tests.
type PostmarkAPI interface {
	SendTemplatedEmail(ctx context.Context, email postmark.TemplatedEmail) (postmark.EmailResponse, error)
}

type postmarkMailer struct {
	client PostmarkAPI
}

// NewPostmarkMailer creates a Postmark-backed Mailer. The account token may
// be empty; sending only requires the server token.
func NewPostmarkMailer(serverToken, accountToken string) Mailer {
	return &postmarkMailer{client: postmark.NewClient(serverToken, accountToken)}
}

func (m *postmarkMailer) SendTemplated(ctx context.Context, req SendRequest) error {
	model := make(map[string]interface{}, len(req.TemplateData)+1)
	for k, v := range req.TemplateData {
		model[k] = v
	}
	// Postmark templates own their subject line; the configured subject is
	// exposed to the template as a variable.
	model["subject"] = req.Subject

	resp, err := m.client.SendTemplatedEmail(ctx, postmark.TemplatedEmail{
		TemplateAlias: req.TemplateID,
		TemplateModel: model,
		From:          fmt.Sprintf("%s <%s>", req.FromName, req.FromEmail),
		To:            req.To,
		MessageStream: "outbound",
	})
	if err != nil {
		return &ProviderError{Err: err}
	}
	if resp.ErrorCode > 0 {
		return &ProviderError{
			ResponseBody: fmt.Sprintf("postmark error %d: %s", resp.ErrorCode, resp.Message),
			Err:          fmt.Errorf("postmark rejected send with code %d", resp.ErrorCode),
		}
	}
	return nil
}
