package announce

import (
	"fmt"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"

	relerrors "releasekit.dev/releasekit/internal/errors"
)

const (
	// DefaultRecipient is the announcement mailing list
	DefaultRecipient = "discuss+announcements@elastic.co"
	// DefaultSMTPServer is used when SMTP_SERVER is unset
	DefaultSMTPServer = "localhost"
	// DefaultSMTPPort is the plain SMTP port
	DefaultSMTPPort = 25
)

// SendFunc delivers a message, smtp.SendMail by default
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer saves announcements to disk and delivers them over SMTP
type Mailer struct {
	Sender     string
	Recipient  string
	Server     string
	Port       int
	OutputPath string
	FromName   string
	ToName     string

	send SendFunc
}

// WithSendFunc replaces the SMTP transport
func (m *Mailer) WithSendFunc(send SendFunc) *Mailer {
	m.send = send
	return m
}

func (m *Mailer) withDefaults() *Mailer {
	if m.Recipient == "" {
		m.Recipient = DefaultRecipient
	}
	if m.Server == "" {
		m.Server = DefaultSMTPServer
	}
	if m.Port == 0 {
		m.Port = DefaultSMTPPort
	}
	if m.FromName == "" {
		m.FromName = "Elasticsearch Team"
	}
	if m.ToName == "" {
		m.ToName = "Elasticsearch Announcement List"
	}
	if m.send == nil {
		m.send = smtp.SendMail
	}
	return m
}

// SendOptions gates delivery
type SendOptions struct {
	DryRun bool
	// Mail disables delivery even outside a dry run when false
	Mail bool
}

// Deliver reports whether opts allow an actual send
func (o SendOptions) Deliver() bool {
	return o.Mail && !o.DryRun
}

// Send addresses msg, always writes it to OutputPath and delivers it only when
// opts allow. It reports whether the message was delivered.
func (m *Mailer) Send(msg *Message, opts SendOptions) (bool, error) {
	m.withDefaults()

	if opts.Deliver() && m.Sender == "" {
		return false, relerrors.NewConfigurationError("MAIL_SENDER", "set it to an address allowed to post to the announcement list")
	}

	msg.From = fmt.Sprintf("%s <%s>", m.FromName, m.Sender)
	msg.To = fmt.Sprintf("%s <%s>", m.ToName, m.Recipient)
	data := msg.Bytes()

	if m.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(m.OutputPath), 0755); err != nil {
			return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(m.OutputPath), err)
		}
		if err := os.WriteFile(m.OutputPath, data, 0644); err != nil {
			return false, fmt.Errorf("failed to save announcement: %w", err)
		}
	}

	if !opts.Deliver() {
		return false, nil
	}

	addr := net.JoinHostPort(m.Server, strconv.Itoa(m.Port))
	if err := m.send(addr, nil, m.Sender, []string{m.Recipient}, data); err != nil {
		return false, fmt.Errorf("failed to send announcement through %s: %w", addr, err)
	}
	return true, nil
}
