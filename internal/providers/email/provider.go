package email

//go:generate mockgen -destination=mock/provider.go -package=mock github.com/smallbiznis/eragon/internal/providers/email Provider

import "context"

type Provider interface {
	Send(ctx context.Context, msg Message) error
	SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error
}

// Message is a single outgoing mail. HTMLBody wins over TextBody when both are set.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) error {
	return nil
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	return nil
}
