// Package mailer sends transactional email over SMTP. Settings are loaded
// from the configuration store at call time; incomplete settings make every
// send a no-op success, so an unconfigured install still takes registrations.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

// SettingsSource yields the current SMTP settings.
type SettingsSource interface {
	SMTPSettings(ctx context.Context) (*model.SMTPSettings, error)
}

// Dispatcher builds and sends the service's outbound email.
type Dispatcher struct {
	settings   SettingsSource
	codePrefix string
	timeout    time.Duration
}

// NewDispatcher constructs a Dispatcher. timeout bounds each dial-and-send.
func NewDispatcher(settings SettingsSource, codePrefix string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{settings: settings, codePrefix: codePrefix, timeout: timeout}
}

// SendRegistrationReceived emails the applicant that their registration was
// recorded and is pending review.
func (d *Dispatcher) SendRegistrationReceived(ctx context.Context, reg *model.Registration, pass *model.Pass) error {
	s, err := d.settings.SMTPSettings(ctx)
	if err != nil || !s.Complete() {
		return nil
	}
	body, err := render(receivedTmpl, receivedData{
		FullName:        reg.FullName,
		PassTitle:       passTitle(pass),
		AdditionalNames: reg.AdditionalNames,
	})
	if err != nil {
		return err
	}
	return d.send(ctx, s, reg.Email, "Registration Received", body)
}

// SendSeatConfirmed emails the applicant their confirmation code and guest
// list after an admin confirms the registration.
func (d *Dispatcher) SendSeatConfirmed(ctx context.Context, reg *model.Registration, pass *model.Pass) error {
	s, err := d.settings.SMTPSettings(ctx)
	if err != nil || !s.Complete() {
		return nil
	}

	var guests []string
	if len(reg.AdditionalNames) > 0 {
		guests = append([]string{reg.FullName}, reg.AdditionalNames...)
	}
	body, err := render(confirmedTmpl, confirmedData{
		FullName:   reg.FullName,
		PassTitle:  passTitle(pass),
		Attendees:  reg.Attendees(),
		Code:       ConfirmationCode(d.codePrefix, reg.ID),
		GuestNames: guests,
	})
	if err != nil {
		return err
	}
	return d.send(ctx, s, reg.Email, "Registration Confirmed", body)
}

// Test verifies the given settings. With an empty testEmail only the SMTP
// handshake is exercised; otherwise a test message is delivered. Unlike the
// lifecycle sends, failures here are the whole point and are returned.
func (d *Dispatcher) Test(ctx context.Context, s *model.SMTPSettings, testEmail string) error {
	if !s.Complete() {
		return fmt.Errorf("smtp settings incomplete: host, username and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	client, err := d.client(s)
	if err != nil {
		return err
	}

	if testEmail == "" {
		if err := client.DialWithContext(ctx); err != nil {
			return fmt.Errorf("smtp connect: %w", err)
		}
		return client.Close()
	}

	msg, err := d.message(s, testEmail, "SMTP Test Email", testBody)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	return nil
}

// send delivers one HTML message under the dispatcher's timeout.
func (d *Dispatcher) send(ctx context.Context, s *model.SMTPSettings, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	client, err := d.client(s)
	if err != nil {
		return err
	}
	msg, err := d.message(s, to, subject, body)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func (d *Dispatcher) client(s *model.SMTPSettings) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(int(s.Port)),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		// Relay hosts with self-signed certs are common in this deployment.
		mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true, ServerName: s.Host}),
	}
	// Implicit TLS on 465, opportunistic STARTTLS everywhere else.
	if s.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

func (d *Dispatcher) message(s *model.SMTPSettings, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.FromName, s.From()); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.From(), err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func passTitle(pass *model.Pass) string {
	if pass == nil {
		return "Unknown Pass"
	}
	return pass.Title
}
