// Package notify delivers reminder and invitation email for events.
// Push reminders are recorded in the data model but dispatched by the
// client, not by this service.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/daycast/backend/internal/models"
)

// Mailer sends event mail over SMTP.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

func NewMailer(host string, port int, username, password, from, frontendURL string) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(host, port, username, password),
		from:        from,
		frontendURL: frontendURL,
	}
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func (m *Mailer) send(to, subject, text, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)
	return m.dialer.DialAndSend(msg)
}

// SendReminder mails the owner about an upcoming event.
func (m *Mailer) SendReminder(ev *models.Event, to *models.User) error {
	subject := "Reminder: " + ev.Title
	when := ev.Start.Local().Format("Mon, 02 Jan 2006 15:04")
	text := fmt.Sprintf("Don't forget about your event: %s\nTime: %s\nLocation: %s\nDescription: %s\n",
		ev.Title, when, orNotSpecified(ev.Location), orNotSpecified(ev.Description))
	html := fmt.Sprintf(`<h2>Event Reminder: %s</h2>
<p><strong>Time:</strong> %s</p>
<p><strong>Location:</strong> %s</p>
<p><strong>Description:</strong> %s</p>
<p>View event details: <a href="%s/events/%s">Click here</a></p>`,
		ev.Title, when, orNotSpecified(ev.Location), orNotSpecified(ev.Description),
		m.frontendURL, ev.ID.Hex())
	return m.send(to.Email, subject, text, html)
}

// SendInvitation mails an attendee that they were added to an event.
func (m *Mailer) SendInvitation(ev *models.Event, to *models.User) error {
	subject := "Invitation: " + ev.Title
	when := ev.Start.Local().Format("Mon, 02 Jan 2006 15:04")
	text := fmt.Sprintf("You've been invited to: %s\nTime: %s\nLocation: %s\nDescription: %s\n",
		ev.Title, when, orNotSpecified(ev.Location), orNotSpecified(ev.Description))
	html := fmt.Sprintf(`<h2>Event Invitation: %s</h2>
<p><strong>Time:</strong> %s</p>
<p><strong>Location:</strong> %s</p>
<p><strong>Description:</strong> %s</p>
<p>View event details: <a href="%s/events/%s">Click here</a></p>`,
		ev.Title, when, orNotSpecified(ev.Location), orNotSpecified(ev.Description),
		m.frontendURL, ev.ID.Hex())
	return m.send(to.Email, subject, text, html)
}
