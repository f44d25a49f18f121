package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a plaintext email
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers a message. A returned error means the message was not sent.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// Mode reports "sendgrid" or "console"
func (s *Service) Mode() string {
	if s.useSendGrid {
		return "sendgrid"
	}
	return "console"
}

// Delivers reports whether m hands messages to a real mail provider.
// A console-mode Service only logs them.
func Delivers(m Mailer) bool {
	if svc, ok := m.(interface{ Mode() string }); ok {
		return svc.Mode() != "console"
	}
	return true
}

// Send implements Mailer
func (s *Service) Send(ctx context.Context, msg Message) error {
	if s.useSendGrid {
		return s.sendViaSendGrid(ctx, msg)
	}
	return s.logEmailToConsole(msg)
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewV3MailInit(from, msg.Subject, to, mail.NewContent("text/plain", msg.Body))

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", msg.To, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(msg Message) error {
	log.Printf("📧 [EMAIL] %s", msg.Subject)
	log.Printf("   To: %s <%s>", msg.ToName, msg.To)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}

// GodCredentialsMessage builds the super-admin credential recovery email
func GodCredentialsMessage(to, name, password string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "PrintFast Super Admin credentials",
		Body: fmt.Sprintf(`Hi %s,

A credential recovery was requested for the PrintFast Super Admin account.

Email: %s
Password: %s

Sign in and change this password right away.
If you did not request this, review who has access to the login page.
`, name, to, password),
	}
}

// ArtworkDue describes one campaign whose artwork is due soon
type ArtworkDue struct {
	CampaignName string
	Product      string
	DueDate      time.Time
}

// ArtworkReminderMessage builds the reminder sent to a vendor with artwork due soon
func ArtworkReminderMessage(to, vendorName string, due []ArtworkDue) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nArtwork is due soon for the following campaigns:\n\n", vendorName)
	for _, d := range due {
		product := d.Product
		if product == "" {
			product = "next product"
		}
		fmt.Fprintf(&b, "- %s (%s): due %s\n", d.CampaignName, product, d.DueDate.Format("Mon Jan 2, 2006"))
	}
	b.WriteString("\nPlease send the final artwork before the due date so mailings stay on schedule.\n")

	return Message{
		To:      to,
		ToName:  vendorName,
		Subject: "Artwork due soon",
		Body:    b.String(),
	}
}

// Recorder is an in-memory Mailer. Set Err to make every Send fail.
type Recorder struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

// Send implements Mailer
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Sent...)
}
