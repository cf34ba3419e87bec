package mail

import (
	"context"
	"errors"
)

const (
	TemplateUserActivation = "user-activation-mail"
	TemplateForgotPassword = "forgot-password-user-mail"

	DefaultOTPSubject = "Your OTP Code"
)

// ErrSendFailed wraps every delivery failure.
var ErrSendFailed = errors.New("mail send failed")

// TemplateData is the data every OTP template is rendered with.
type TemplateData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Message is one templated email to a single recipient.
type Message struct {
	To       string       `json:"to"`
	Subject  string       `json:"subject"`
	Template string       `json:"template"`
	Data     TemplateData `json:"data"`
}

// Sender delivers a message. Implementations must return only after the
// message was accepted by the transport, so callers can rely on a nil error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
