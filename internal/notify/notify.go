// Package notify delivers fire-and-forget failure notifications by email.
package notify

import (
	"fmt"
	"net/smtp"
	"os"
)

// Mailer sends failure reports through a local mail submission endpoint.
type Mailer struct {
	// Addr is the SMTP endpoint, e.g. "localhost:25".
	Addr string

	// Hostname identifies this host in the subject and sender; defaults
	// to os.Hostname.
	Hostname string
}

// SendFailure emails message to recipient. The caller should log a
// returned error but never let it mask the failure being reported.
func (m *Mailer) SendFailure(recipient, message string) error {
	hostname := m.Hostname
	if hostname == "" {
		if h, err := os.Hostname(); err == nil {
			hostname = h
		} else {
			hostname = "localhost"
		}
	}
	sender := "root@" + hostname
	body := failureMessage(hostname, sender, recipient, message)
	if err := smtp.SendMail(m.Addr, nil, sender, []string{recipient}, body); err != nil {
		return fmt.Errorf("sending failure email to %s: %w", recipient, err)
	}
	return nil
}

func failureMessage(hostname, sender, recipient, body string) []byte {
	return fmt.Appendf(nil,
		"From: %s\r\nTo: %s\r\nSubject: zbackup failed on %s\r\n\r\n%s\r\n",
		sender, recipient, hostname, body)
}
