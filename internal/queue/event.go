// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers notification email.
package queue

// Email kinds understood by the mailer. Each maps to an HTML template.
const (
	EmailWelcome = "welcome"
	EmailOTP     = "otp"
	EmailInvite  = "invite"
	EmailContact = "contact"
)

// EmailQueueName is the durable queue notification events travel over.
const EmailQueueName = "notification.email"

// EmailRequestedEvent is published whenever the application wants an email
// sent: registration welcome, OTP delivery, co-worker invites and
// contact-form forwarding. Dispatch is fire-and-forget; a failed send never
// rolls back the database write that triggered it.
type EmailRequestedEvent struct {
	Kind        string            `json:"kind"`
	To          string            `json:"to"`
	Data        map[string]string `json:"data"`
	RequestedAt string            `json:"requested_at"`
}
