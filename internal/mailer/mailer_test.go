package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

type staticSettings struct {
	settings *model.SMTPSettings
	err      error
}

func (s staticSettings) SMTPSettings(ctx context.Context) (*model.SMTPSettings, error) {
	return s.settings, s.err
}

func sampleRegistration() *model.Registration {
	return &model.Registration{
		ID:              7,
		FullName:        "Asha Rao",
		Email:           "asha@example.com",
		AdditionalNames: []string{"Ravi Rao"},
	}
}

func TestSendIsNoopWithoutSettings(t *testing.T) {
	tests := []struct {
		name   string
		source SettingsSource
	}{
		{"settings missing", staticSettings{err: errors.New("no row")}},
		{"settings incomplete", staticSettings{settings: &model.SMTPSettings{Host: "smtp.example.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.source, "GAL26", time.Second)
			reg := sampleRegistration()
			pass := &model.Pass{Title: "Duo"}

			assert.NoError(t, d.SendRegistrationReceived(context.Background(), reg, pass))
			assert.NoError(t, d.SendSeatConfirmed(context.Background(), reg, pass))
		})
	}
}

func TestTestRejectsIncompleteSettings(t *testing.T) {
	d := NewDispatcher(staticSettings{}, "GAL26", time.Second)
	err := d.Test(context.Background(), &model.SMTPSettings{Host: "smtp.example.com"}, "")
	assert.ErrorContains(t, err, "incomplete")
}

func TestReceivedTemplate(t *testing.T) {
	body, err := render(receivedTmpl, receivedData{
		FullName:        "Asha Rao",
		PassTitle:       "Duo",
		AdditionalNames: []string{"Ravi Rao"},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Asha Rao")
	assert.Contains(t, body, "Duo")
	assert.Contains(t, body, "Ravi Rao")
	assert.NotContains(t, body, "Unique ID")
}

func TestConfirmedTemplate(t *testing.T) {
	body, err := render(confirmedTmpl, confirmedData{
		FullName:   "Asha Rao",
		PassTitle:  "Duo",
		Attendees:  2,
		Code:       ConfirmationCode("GAL26", 7),
		GuestNames: []string{"Asha Rao", "Ravi Rao"},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "GAL26-0007-E7A")
	assert.Contains(t, body, "Attendees:</strong> 2")
	assert.Contains(t, body, "Ravi Rao")
}

func TestPassTitleFallback(t *testing.T) {
	assert.Equal(t, "Unknown Pass", passTitle(nil))
	assert.Equal(t, "Duo", passTitle(&model.Pass{Title: "Duo"}))
}
