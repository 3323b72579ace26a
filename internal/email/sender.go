// Package email sends transactional mail for account lifecycle events.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/resend/resend-go/v3"
)

// Sender delivers account lifecycle mail. Delivery failures are logged by
// callers but never fail the triggering request.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, fullName string, pendingApproval bool) error
	SendApprovalDecision(ctx context.Context, toEmail, fullName string, approved bool) error
}

const welcomeTmpl = `<html><body>
<h2>Welcome to UniChat, {{.Name}}!</h2>
{{if .Pending}}
<p>Your account was created and is waiting for an administrator to verify it.
You will receive another email once it has been reviewed.</p>
{{else}}
<p>Your account is ready. Log in and start connecting with your course peers,
mentors and alumni.</p>
{{end}}
</body></html>`

const decisionTmpl = `<html><body>
<h2>Hello {{.Name}},</h2>
{{if .Approved}}
<p>Your UniChat account has been approved. You can now log in.</p>
{{else}}
<p>Unfortunately your UniChat registration was not approved. If you believe
this is a mistake, contact the platform administrators.</p>
{{end}}
</body></html>`

var (
	welcome  = template.Must(template.New("welcome").Parse(welcomeTmpl))
	decision = template.Must(template.New("decision").Parse(decisionTmpl))
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, fromEmail string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   fromEmail,
	}
}

var _ Sender = (*ResendSender)(nil)

func (s *ResendSender) SendWelcome(ctx context.Context, toEmail, fullName string, pendingApproval bool) error {
	data := struct {
		Name    string
		Pending bool
	}{fullName, pendingApproval}
	return s.send(toEmail, "Welcome to UniChat", welcome, data)
}

func (s *ResendSender) SendApprovalDecision(ctx context.Context, toEmail, fullName string, approved bool) error {
	subject := "Your UniChat account was approved"
	if !approved {
		subject = "Your UniChat registration was declined"
	}
	data := struct {
		Name     string
		Approved bool
	}{fullName, approved}
	return s.send(toEmail, subject, decision, data)
}

func (s *ResendSender) send(toEmail, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("execute email template: %w", err)
	}
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("UniChat <%s>", s.from),
		To:      []string{toEmail},
		Subject: subject,
		Html:    body.String(),
	})
	return err
}

// LogSender writes mail to the process log instead of sending it. Used when
// no Resend API key is configured.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) SendWelcome(ctx context.Context, toEmail, fullName string, pendingApproval bool) error {
	log.Printf("email (welcome) to=%s name=%q pending=%t", toEmail, fullName, pendingApproval)
	return nil
}

func (LogSender) SendApprovalDecision(ctx context.Context, toEmail, fullName string, approved bool) error {
	log.Printf("email (approval decision) to=%s name=%q approved=%t", toEmail, fullName, approved)
	return nil
}
