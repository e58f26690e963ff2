package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/models"
)

// NewReminderService returns the Mailgun-backed reminder sender, or a
// logging mock when the Mailgun configuration is incomplete.
func NewReminderService(ingestion IngestionService, mailgunDomain, mailgunAPIKey, senderEmail, senderName string, minDays int) ReminderService {
	if mailgunDomain == "" || mailgunAPIKey == "" || senderEmail == "" {
		logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockReminderService.")
		return &MockReminderService{ingestion: ingestion, minDays: minDays}
	}
	mg := mailgun.NewMailgun(mailgunDomain, mailgunAPIKey)
	logger.L.Info("Mailgun client initialized", "domain", mailgunDomain)
	return &MailgunReminderService{
		ingestion:   ingestion,
		mg:          mg,
		senderEmail: senderEmail,
		senderName:  senderName,
		minDays:     minDays,
	}
}

// overdueInvoices selects the invoices worth chasing: an open balance
// that has been outstanding longer than the configured minimum.
func overdueInvoices(summary *models.ReceivablesSummary, minDays int) []models.ReceivableInvoice {
	var overdue []models.ReceivableInvoice
	for _, inv := range summary.Invoices {
		if inv.OutstandingAmount > 0 && inv.DaysOutstanding > minDays {
			overdue = append(overdue, inv)
		}
	}
	return overdue
}

func reminderBodies(overdue []models.ReceivableInvoice, minDays int) (plain, html string) {
	var pb, hb strings.Builder
	fmt.Fprintf(&pb, "The following %d invoice(s) have been outstanding for more than %d days:\n\n", len(overdue), minDays)
	hb.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	fmt.Fprintf(&hb, "<p>The following %d invoice(s) have been outstanding for more than %d days:</p><ul>", len(overdue), minDays)
	for _, inv := range overdue {
		fmt.Fprintf(&pb, "- %s (%s), issued %s: %.2f outstanding, %d days\n",
			inv.ID, inv.Client, inv.IssueDate, inv.OutstandingAmount, inv.DaysOutstanding)
		fmt.Fprintf(&hb, "<li><b>%s</b> (%s), issued %s: &euro;%.2f outstanding, %d days</li>",
			inv.ID, inv.Client, inv.IssueDate, inv.OutstandingAmount, inv.DaysOutstanding)
	}
	pb.WriteString("\nConsider following up with these clients.\n")
	hb.WriteString("</ul><p>Consider following up with these clients.</p></body></html>")
	return pb.String(), hb.String()
}

type MailgunReminderService struct {
	ingestion   IngestionService
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	minDays     int
}

// SendOverdueReminder emails the user a summary of their overdue
// invoices. Returns the number of invoices included; zero means no
// email was sent.
func (s *MailgunReminderService) SendOverdueReminder(ctx context.Context, userID int64, toEmail string) (int, error) {
	summary, err := s.ingestion.GetReceivables(userID)
	if err != nil {
		return 0, err
	}
	overdue := overdueInvoices(summary, s.minDays)
	if len(overdue) == 0 {
		logger.L.Info("No overdue invoices, skipping reminder", "userID", userID)
		return 0, nil
	}

	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := fmt.Sprintf("%d overdue invoice(s) need attention", len(overdue))
	plainBody, htmlBody := reminderBodies(overdue, s.minDays)

	message := s.mg.NewMessage(from, subject, plainBody, toEmail)
	message.SetHtml(htmlBody)
	sendCtx, cancel := context.WithTimeout(ctx, time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(sendCtx, message)
	if err != nil {
		logger.L.Error("Failed to send reminder email via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return 0, fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("Reminder email sent successfully via Mailgun", "to", toEmail, "id", id, "invoices", len(overdue))
	return len(overdue), nil
}

// MockReminderService logs instead of sending. Used in development and
// whenever Mailgun is not configured.
type MockReminderService struct {
	ingestion IngestionService
	minDays   int
}

func (s *MockReminderService) SendOverdueReminder(ctx context.Context, userID int64, toEmail string) (int, error) {
	summary, err := s.ingestion.GetReceivables(userID)
	if err != nil {
		return 0, err
	}
	overdue := overdueInvoices(summary, s.minDays)
	plainBody, _ := reminderBodies(overdue, s.minDays)
	logger.L.Info("MOCK reminder email", "to", toEmail, "invoices", len(overdue), "body", plainBody)
	return len(overdue), nil
}
