package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var welcomeTmpl = template.Must(template.ParseFS(templatesFS, "templates/enrollment_welcome.html"))

// Dialer é o pedaço do gomail.Dialer usado para envio.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	Dialer Dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		Dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendEnrollmentWelcome(to, name, course string) error {
	body, err := RenderWelcome(WelcomeEmailData{Name: name, Course: course})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Bem-vindo à Ligue, %s! Sua matrícula foi confirmada", name))
	m.SetBody("text/html", body)

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func RenderWelcome(data WelcomeEmailData) (string, error) {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}
