package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	mail "gopkg.in/mail.v2"
)

const (
	FromName                    = "Turfbook"
	UserWelcomeTemplate         = "user_welcome.tmpl"
	BookingConfirmationTemplate = "booking_confirmation.tmpl"
	BookingCancelledTemplate    = "booking_cancelled.tmpl"
)

//go:embed "templates"
var FS embed.FS

var ErrNotConfigured = errors.New("mailer: SMTP is not configured")

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}

type SMTPClient struct {
	dialer    *mail.Dialer
	fromEmail string
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (*SMTPClient, error) {
	if host == "" || fromEmail == "" {
		return nil, ErrNotConfigured
	}
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return &SMTPClient{dialer: d, fromEmail: fromEmail}, nil
}

func (c *SMTPClient) Send(templateFile, username, email string, data any) (int, error) {
	subject, body, err := Render(templateFile, data)
	if err != nil {
		return -1, err
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", c.fromEmail, FromName)
	m.SetAddressHeader("To", email, username)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := c.dialer.DialAndSend(m); err != nil {
		return -1, fmt.Errorf("send %s to %s: %w", templateFile, email, err)
	}
	return http.StatusOK, nil
}

// Disabled is used when SMTP settings are absent.
type Disabled struct{}

func (Disabled) Send(string, string, string, any) (int, error) {
	return -1, ErrNotConfigured
}

// Render executes the "subject" and "body" blocks of templateFile.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", fmt.Errorf("parse template %s: %w", templateFile, err)
	}

	var s, b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&s, "subject", data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := tmpl.ExecuteTemplate(&b, "body", data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return s.String(), b.String(), nil
}
