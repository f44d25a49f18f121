// Package schedule spreads a campaign's total mailing quantity across its weekly drops.
package schedule

import (
	"fmt"
	"time"

	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/shopspring/decimal"
)

const daysPerWeek = 7

// Generate returns exactly totalWeeks entries numbered 1..totalWeeks. Week i
// lands startDate+7(i-1) days and receives floor(q/n) pieces, with the
// remainder handed out one piece at a time to the earliest weeks.
func Generate(totalWeeks, totalQuantity int, startDate time.Time) (models.Weeks, error) {
	if totalWeeks < 1 {
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("totalWeeks must be at least 1, got %d", totalWeeks))
	}
	if totalQuantity < 0 {
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("totalQuantity must not be negative, got %d", totalQuantity))
	}

	start := DateOnly(startDate)
	base := totalQuantity / totalWeeks
	remainder := totalQuantity % totalWeeks

	weeks := make(models.Weeks, 0, totalWeeks)
	for i := 1; i <= totalWeeks; i++ {
		qty := base
		if remainder > 0 {
			qty++
			remainder--
		}
		weeks = append(weeks, models.WeekEntry{
			WeekNumber:      i,
			InHomesWeekOf:   start.AddDate(0, 0, daysPerWeek*(i-1)),
			MailingQuantity: qty,
			TotalPayments:   decimal.Zero,
		})
	}
	return weeks, nil
}

// Regenerate builds a fresh schedule. With preservePayments set, payment totals
// recorded on week numbers that survive the regeneration are carried over;
// otherwise every week starts again at zero.
func Regenerate(previous models.Weeks, totalWeeks, totalQuantity int, startDate time.Time, preservePayments bool) (models.Weeks, error) {
	weeks, err := Generate(totalWeeks, totalQuantity, startDate)
	if err != nil {
		return nil, err
	}
	if !preservePayments {
		return weeks, nil
	}
	for i := range weeks {
		if old, ok := previous.Find(weeks[i].WeekNumber); ok {
			weeks[i].TotalPayments = old.TotalPayments
		}
	}
	return weeks, nil
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return DateOnly(t.UTC()), nil
}
