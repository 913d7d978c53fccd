package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualplanner/ritualplanner/internal/config"
	"github.com/ritualplanner/ritualplanner/internal/queue"
)

func newTestMailer(t *testing.T) *Mailer {
	t.Helper()
	m, err := NewMailer(config.Config{SMTPFrom: "no-reply@test"})
	require.NoError(t, err)
	return m
}

func TestMailerRenderOTP(t *testing.T) {
	m := newTestMailer(t)
	subject, body, err := m.Render(queue.EmailRequestedEvent{
		Kind: queue.EmailOTP,
		To:   "a@b.c",
		Data: map[string]string{"Code": "482913", "ExpiryMinutes": "5"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "5")
}

func TestMailerRenderContact(t *testing.T) {
	m := newTestMailer(t)
	_, body, err := m.Render(queue.EmailRequestedEvent{
		Kind: queue.EmailContact,
		To:   "inbox@test",
		Data: map[string]string{"Name": "Asha", "Email": "asha@b.c", "Message": "namaste"},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "namaste")
}

func TestMailerRenderUnknownKind(t *testing.T) {
	m := newTestMailer(t)
	_, _, err := m.Render(queue.EmailRequestedEvent{Kind: "nonsense"})
	assert.Error(t, err)
}

// With no SMTP host configured SendEmail only logs; it must not error.
func TestMailerSendWithoutSMTP(t *testing.T) {
	m := newTestMailer(t)
	err := m.SendEmail(queue.EmailRequestedEvent{
		Kind: queue.EmailWelcome,
		To:   "a@b.c",
		Data: map[string]string{"Name": "Asha", "Email": "a@b.c"},
	})
	assert.NoError(t, err)
}
