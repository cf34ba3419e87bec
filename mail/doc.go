// Package mail delivers OTP emails.
//
// The engine only depends on [Sender]. Three implementations ship here:
//
//   - [SMTPSender] renders the embedded HTML templates and sends through gomail.
//   - [KafkaSender] publishes a [NotificationEvent] for a separate notification service.
//   - [LogSender] logs the message, for local development.
//
// Templates are addressed by name: [TemplateUserActivation] for registration
// and [TemplateForgotPassword] for password reset.
package mail
