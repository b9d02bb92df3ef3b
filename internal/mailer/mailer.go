// Package mailer sends the transactional notification that tells an
// opposite party a mediation case was filed against them.
//
// The dispatcher never lets a provider error escape: every failure is
// captured into the returned Result so that case creation can proceed even
// when the mail provider is down.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

const notificationSubject = "Mediation Case Notification - Mediatiff"

// Result reports the outcome of a single delivery attempt. Exactly one
// email is sent per invocation; retry policy, if any, belongs to the caller.
type Result struct {
	Delivered bool
	MessageID string
	Err       error
}

// Mailer notifies an opposite party with a link to their case.
type Mailer interface {
	NotifyOppositeParty(ctx context.Context, to, caseURL string) Result
}

// ResendMailer delivers notifications through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.SugaredLogger
}

// NewResendMailer creates a Resend-backed mailer.
func NewResendMailer(apiKey, from string, logger *zap.SugaredLogger) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// NotifyOppositeParty sends the notification email. Provider errors are
// logged and folded into the Result, never returned as faults.
func (m *ResendMailer) NotifyOppositeParty(ctx context.Context, to, caseURL string) Result {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: notificationSubject,
		Html:    notificationHTML(caseURL),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		m.logger.Warnw("Notification delivery failed", "to", to, "error", err)
		return Result{Delivered: false, Err: err}
	}

	m.logger.Infow("Notification delivered", "to", to, "message_id", sent.Id)
	return Result{Delivered: true, MessageID: sent.Id}
}

func notificationHTML(link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Mediation Notification</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f7f7f7; padding: 20px; color: #333;">
  <div style="max-width: 600px; margin: auto; background: white; border-radius: 8px; padding: 30px;">
    <h1 style="font-size: 20px; color: #2e6da4;">Mediation Case Notification - Mediatiff</h1>
    <p>Dear Sir/Madam,</p>
    <p>
      You have been listed as the opposing party in a mediation case submitted on the
      <strong>Mediatiff</strong> platform.
    </p>
    <p>
      The claimant has chosen to pursue peaceful conflict resolution with support from our
      verified mediators and legal experts. To review the case details and confirm your
      willingness to participate in the mediation process, please click the button below:
    </p>
    <a href="%s" style="display: inline-block; margin-top: 20px; padding: 12px 24px; background-color: #2e6da4; color: white; text-decoration: none; border-radius: 4px;">View Case Details</a>
    <p>
      If you do not recognise this case or have any concerns, feel free to contact our
      support team for clarification.
    </p>
    <p>Kind regards,<br />The Mediatiff Team</p>
    <div style="margin-top: 40px; font-size: 12px; color: #888;">
      This is an automated message. Please do not reply to this email.
    </div>
  </div>
</body>
</html>`, link)
}
