package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
)

const dateLayout = "2006-01-02"

// EmailEnqueuer queues an email for asynchronous delivery.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, in *SendEmailInput) error
}

// ReminderSummary counts what one reminder run did.
type ReminderSummary struct {
	Overdue int
	Sent    int
	Skipped int
	Failed  int
}

// IReminderService sends payment reminders for overdue invoices.
type IReminderService interface {
	ScheduleReminders(ctx context.Context, now time.Time) (*ReminderSummary, error)
}

type reminderService struct {
	invoices    repository.IInvoiceRepository
	profiles    repository.IProfileRepository
	emails      EmailEnqueuer
	minInterval time.Duration
}

// NewReminderService creates a new ReminderService.
func NewReminderService(invoices repository.IInvoiceRepository, profiles repository.IProfileRepository, emails EmailEnqueuer, minInterval time.Duration) IReminderService {
	return &reminderService{invoices: invoices, profiles: profiles, emails: emails, minInterval: minInterval}
}

// ScheduleReminders walks unpaid invoices past their due date. Invoices
// reminded within the minimum interval are skipped; the others get a
// reminder email when a client address is known and have the reminder
// recorded.
func (s *reminderService) ScheduleReminders(ctx context.Context, now time.Time) (*ReminderSummary, error) {
	today := now.UTC().Format(dateLayout)
	overdue, err := s.invoices.FindOverdue(ctx, today)
	if err != nil {
		return nil, err
	}

	summary := &ReminderSummary{Overdue: len(overdue)}
	for i := range overdue {
		inv := &overdue[i]
		if s.remindedRecently(inv, now) {
			summary.Skipped++
			continue
		}

		if inv.ClientEmail != "" {
			if err := s.emails.EnqueueEmail(ctx, s.reminderEmail(ctx, inv)); err != nil {
				log.Printf("Reminders: failed to enqueue reminder for invoice %s: %v", inv.ID, err)
				summary.Failed++
				continue
			}
		} else {
			log.Printf("Reminders: invoice %s has no client email, recording reminder only", inv.ID)
		}

		if err := s.invoices.RecordReminder(ctx, inv.ID, today); err != nil {
			log.Printf("Reminders: failed to record reminder for invoice %s: %v", inv.ID, err)
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	log.Printf("Reminders: %d overdue, %d reminded, %d skipped, %d failed", summary.Overdue, summary.Sent, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *reminderService) remindedRecently(inv *models.Invoice, now time.Time) bool {
	if inv.LastReminderSent == "" {
		return false
	}
	last := inv.LastReminderSent
	if len(last) > len(dateLayout) {
		last = last[:len(dateLayout)]
	}
	sentOn, err := time.Parse(dateLayout, last)
	if err != nil {
		log.Printf("Reminders: invoice %s has unreadable last_reminder_sent %q", inv.ID, inv.LastReminderSent)
		return false
	}
	today, _ := time.Parse(dateLayout, now.UTC().Format(dateLayout))
	return today.Sub(sentOn) < s.minInterval
}

func (s *reminderService) reminderEmail(ctx context.Context, inv *models.Invoice) *SendEmailInput {
	companyName := "PlombiPro"
	if s.profiles != nil && inv.UserID != "" {
		if profile, err := s.profiles.FindByID(ctx, inv.UserID); err == nil && profile.CompanyName != "" {
			companyName = profile.CompanyName
		}
	}
	return &SendEmailInput{
		To:       Recipients{inv.ClientEmail},
		Subject:  fmt.Sprintf("Rappel de paiement - Facture n° %s", inv.Number),
		Template: TemplatePaymentReminder,
		Context: map[string]interface{}{
			"invoice_number": inv.Number,
			"amount":         fmt.Sprintf("%.2f", inv.TotalTTC),
			"company_name":   companyName,
			"due_date":       inv.DueDate,
		},
	}
}
