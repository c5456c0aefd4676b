package email

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-intake-backend/config"
)

func TestSendCredential_RendersMessage(t *testing.T) {
	svc := NewEmailService(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUsername: "mailer@example.com",
		SMTPPassword: "secret",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	err := svc.SendCredential(context.Background(), CredentialEmailData{
		To:             "karim@example.com",
		Name:           "Karim",
		TemporaryLogin: "Xy7kPq2mWz9aBc3d",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"karim@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "From: mailer@example.com")
	assert.Contains(t, string(gotMsg), "Hello Karim")
	assert.Contains(t, string(gotMsg), "Xy7kPq2mWz9aBc3d")
	assert.True(t, svc.IsConfigured())
}
