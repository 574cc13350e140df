package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var receivedTmpl = template.Must(template.New("received").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 40px; border: 1px solid #e5e7eb; border-radius: 16px;">
  <h1 style="font-size: 24px; margin-bottom: 8px;">Registration Received</h1>
  <p style="font-size: 16px; line-height: 1.5;">Hello <strong>{{.FullName}}</strong>,</p>
  <p style="font-size: 16px; line-height: 1.5;">Thank you for registering. This email confirms that we have received your information and your spot is reserved pending review.</p>
  <div style="background-color: #f9fafb; border-radius: 12px; padding: 20px; margin: 30px 0;">
    <p style="font-size: 13px; margin: 0 0 10px 0;"><strong>Ticket:</strong> {{.PassTitle}}</p>
    {{if .AdditionalNames}}
    <p style="font-size: 13px; margin: 0 0 5px 0;"><strong>Additional guests:</strong></p>
    {{range .AdditionalNames}}<p style="font-size: 13px; margin: 2px 0 2px 10px;">&bull; {{.}}</p>{{end}}
    {{end}}
  </div>
  <p style="font-size: 16px; line-height: 1.5;">We look forward to seeing you at the event.</p>
</div>`))

var confirmedTmpl = template.Must(template.New("confirmed").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 40px; border: 1px solid #e5e7eb; border-radius: 16px;">
  <h1 style="font-size: 24px; margin-bottom: 8px;">Registration Confirmed</h1>
  <p style="font-size: 16px; line-height: 1.5;">Hello <strong>{{.FullName}}</strong>,</p>
  <p style="font-size: 16px; line-height: 1.5;">Your registration has been confirmed. Present the unique ID below at entry.</p>
  <div style="background-color: #f9fafb; border-radius: 12px; padding: 20px; margin: 30px 0;">
    <p style="font-size: 13px; margin: 0 0 10px 0;"><strong>Ticket:</strong> {{.PassTitle}}</p>
    <p style="font-size: 13px; margin: 0 0 10px 0;"><strong>Attendees:</strong> {{.Attendees}}</p>
    <p style="font-size: 13px; margin: 0 0 10px 0;"><strong>Unique ID:</strong>
      <span style="font-family: monospace; font-weight: bold; letter-spacing: 1px;">{{.Code}}</span></p>
    {{if .GuestNames}}
    <p style="font-size: 13px; margin: 0 0 5px 0;"><strong>Guest names:</strong></p>
    {{range .GuestNames}}<p style="font-size: 13px; margin: 2px 0 2px 10px;">&bull; {{.}}</p>{{end}}
    {{end}}
  </div>
  <p style="font-size: 16px; line-height: 1.5;">We can't wait to share this day with you!</p>
</div>`))

const testBody = `
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e5e7eb; border-radius: 12px;">
  <h2>SMTP Test</h2>
  <p>This is a test email to confirm your SMTP settings are correct.</p>
  <p style="font-weight: bold;">Configuration verified!</p>
</div>`

type receivedData struct {
	FullName        string
	PassTitle       string
	AdditionalNames []string
}

type confirmedData struct {
	FullName   string
	PassTitle  string
	Attendees  int
	Code       string
	GuestNames []string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
