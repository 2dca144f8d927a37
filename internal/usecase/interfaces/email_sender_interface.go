package interfaces

import "context"

// IEmailSender delivers a rendered message to a single recipient.
type IEmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
