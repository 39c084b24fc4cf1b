// Package notify emails the owner of a pending request once it has
// been resolved one way or the other.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"gymkeeper-backend/services/pending"
)

var tracer = otel.Tracer("lib/notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

// SendOutcomes mails a summary of resolved pending requests to `to`.
// Nothing is sent for an empty outcome list.
func (n Notifier) SendOutcomes(ctx context.Context, to string, outcomes []pending.Outcome) error {
	_, span := tracer.Start(ctx, "SendOutcomes")
	defer span.End()

	if len(outcomes) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Gymkeeper <%s>", n.config.EmailAddress)
	mail.To = []string{to}
	mail.Subject = "Gym booking updates"
	mail.Text = []byte(formatOutcomes(outcomes))

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}

func formatOutcomes(outcomes []pending.Outcome) string {
	var b strings.Builder
	b.WriteString("Your queued gym bookings were retried:\n\n")
	for _, outcome := range outcomes {
		fmt.Fprintf(&b, "- %s on %s at %s: ",
			outcome.Request.Activity, outcome.Request.Date, outcome.Request.Time)
		if outcome.Booked {
			b.WriteString("booked\n")
		} else {
			fmt.Fprintf(&b, "failed (%s)\n", outcome.Err)
		}
	}
	return b.String()
}
