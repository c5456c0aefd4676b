package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"go-intake-backend/config"
)

// Sender delivers transactional mail
type Sender interface {
	SendCredential(ctx context.Context, data CredentialEmailData) error
}

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// CredentialEmailData is rendered into the credential notice
type CredentialEmailData struct {
	To             string
	Name           string
	TemporaryLogin string
	LoginURL       string
}

func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		send:      smtp.SendMail,
	}
}

var credentialTemplate = template.Must(template.New("credential").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Your intake account</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
    <p>An account has been created for you. Sign in with this email address and the temporary password below.
       You will be asked to choose a new password before continuing.</p>
    <p style="font-size: 18px; font-family: monospace; background: #f4f4f4; padding: 10px;">{{.TemporaryLogin}}</p>
    {{if .LoginURL}}<p><a href="{{.LoginURL}}">{{.LoginURL}}</a></p>{{end}}
    <p style="color: #888; font-size: 12px;">The password works once. If you did not expect this email, ignore it.</p>
</body>
</html>`))

// SendCredential mails a temporary password to a newly issued identity
func (s *EmailService) SendCredential(ctx context.Context, data CredentialEmailData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := credentialTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: Your intake account\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail, data.To, body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{data.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
