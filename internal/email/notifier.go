package email

import (
	"fmt"

	"github.com/clientlinkhq/clientlink/internal/config"
)

// Notifier mails the configured admin address when a client completes an
// authorization. A nil Notifier is a no-op, which is how an unconfigured
// SMTP block behaves.
type Notifier struct {
	sender Sender
	to     string
}

// NewNotifier returns nil when SMTP or the notify address is not
// configured.
func NewNotifier(cfg *config.Config) *Notifier {
	if cfg.SMTP.Host == "" || cfg.Admin.NotifyEmail == "" {
		return nil
	}
	return &Notifier{
		sender: NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password),
		to:     cfg.Admin.NotifyEmail,
	}
}

// AuthorizationCompleted notifies the admin of a completed grant.
func (n *Notifier) AuthorizationCompleted(clientName, platform string, scopes []string) error {
	if n == nil {
		return nil
	}
	subject := fmt.Sprintf("Authorization completed: %s on %s", clientName, platform)
	text := fmt.Sprintf(
		"Client %q completed the %s authorization.\nGranted scopes: %v\n",
		clientName, platform, scopes,
	)
	html := fmt.Sprintf(
		"<p>Client <b>%s</b> completed the <b>%s</b> authorization.</p><p>Granted scopes: %v</p>",
		clientName, platform, scopes,
	)
	return n.sender.Send(n.to, subject, html, text)
}
