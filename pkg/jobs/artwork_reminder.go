package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jordanlanch/printfast/pkg/campaigns"
	"github.com/jordanlanch/printfast/pkg/email"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/metrics"
	"github.com/jordanlanch/printfast/pkg/schedule"
)

// DueArtworkFinder lists campaigns with artwork due in [from, to)
type DueArtworkFinder interface {
	DueArtwork(ctx context.Context, from, to time.Time) ([]campaigns.ArtworkDue, error)
}

// ArtworkReminderJob emails each vendor the campaigns whose artwork is due within the window
type ArtworkReminderJob struct {
	finder  DueArtworkFinder
	mailer  email.Mailer
	days    int
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewArtworkReminderJob creates the job. days is the look-ahead window, today included.
func NewArtworkReminderJob(finder DueArtworkFinder, mailer email.Mailer, days int, m *metrics.Metrics, log logger.Logger) *ArtworkReminderJob {
	return &ArtworkReminderJob{
		finder:  finder,
		mailer:  mailer,
		days:    days,
		metrics: m,
		log:     log.With("job", "artwork_reminder"),
		now:     time.Now,
	}
}

// Run sends one reminder per vendor and returns how many were sent. A failed
// send is logged and the remaining vendors are still attempted.
func (j *ArtworkReminderJob) Run(ctx context.Context) (int, error) {
	from := schedule.DateOnly(j.now().UTC())
	to := from.AddDate(0, 0, j.days+1)

	due, err := j.finder.DueArtwork(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		j.log.Info("no artwork due", "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly))
		return 0, nil
	}

	type batch struct {
		name, email string
		items       []email.ArtworkDue
	}
	var order []string
	byVendor := make(map[string]*batch)
	for _, d := range due {
		b, ok := byVendor[d.VendorID]
		if !ok {
			b = &batch{name: d.VendorName, email: d.VendorEmail}
			byVendor[d.VendorID] = b
			order = append(order, d.VendorID)
		}
		b.items = append(b.items, email.ArtworkDue{CampaignName: d.CampaignName, Product: d.Product, DueDate: d.DueDate})
	}

	sent := 0
	var errs []error
	for _, vendorID := range order {
		b := byVendor[vendorID]
		if err := j.mailer.Send(ctx, email.ArtworkReminderMessage(b.email, b.name, b.items)); err != nil {
			j.log.Error("failed to send artwork reminder", "vendor_id", vendorID, "error", err)
			errs = append(errs, fmt.Errorf("vendor %s: %w", vendorID, err))
			continue
		}
		j.metrics.RecordEmailSent("artwork_reminder")
		sent++
	}

	j.log.Info("artwork reminders sent", "vendors", len(order), "sent", sent)
	return sent, errors.Join(errs...)
}
