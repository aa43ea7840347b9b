package notify

import (
	"log/slog"

	"github.com/wneessen/go-mail"
)

const subjectPrefix = "[Memento] "

// SMTPConfig carries the connection and addressing details for the
// email provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	// RequireTLS refuses to deliver over an unencrypted connection.
	RequireTLS bool
}

// EmailProvider sends one message per event. Each delivery opens its own
// connection, so the provider carries no connection state and copies
// are safe to hand to workers. Delivery failures are logged, never
// propagated; notifications must not fail the batch.
type EmailProvider struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewEmailProvider creates a provider for the given SMTP account.
func NewEmailProvider(cfg SMTPConfig) *EmailProvider {
	return &EmailProvider{cfg: cfg, logger: slog.Default()}
}

// WithLogger redirects delivery failure logging.
func (p *EmailProvider) WithLogger(logger *slog.Logger) *EmailProvider {
	p.logger = logger
	return p
}

// TaskCompleted mails "Task completed".
func (p *EmailProvider) TaskCompleted() {
	p.send(taskCompletedMsg)
}

// TaskFailed mails "Task failed".
func (p *EmailProvider) TaskFailed() {
	p.send(taskFailedMsg)
}

// AllTasksCompleted mails "All tasks completed".
func (p *EmailProvider) AllTasksCompleted() {
	p.send(allTasksCompletedMsg)
}

func (p *EmailProvider) send(msg string) {
	m := mail.NewMsg()
	if err := m.From(p.cfg.From); err != nil {
		p.logger.Warn("Invalid notification sender address.", "from", p.cfg.From, "error", err)
		return
	}
	if err := m.To(p.cfg.To...); err != nil {
		p.logger.Warn("Invalid notification recipient address.", "to", p.cfg.To, "error", err)
		return
	}
	m.Subject(subjectPrefix + msg)
	m.SetBodyString(mail.TypeTextPlain, msg)

	policy := mail.TLSOpportunistic
	if p.cfg.RequireTLS {
		policy = mail.TLSMandatory
	}
	client, err := mail.NewClient(p.cfg.Host,
		mail.WithPort(p.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(p.cfg.Username),
		mail.WithPassword(p.cfg.Password),
		mail.WithTLSPortPolicy(policy),
	)
	if err != nil {
		p.logger.Warn("Failed to build SMTP client.", "host", p.cfg.Host, "error", err)
		return
	}
	if err := client.DialAndSend(m); err != nil {
		p.logger.Warn("Failed to deliver notification email.", "subject", subjectPrefix+msg, "error", err)
	}
}
