// Package report renders campaign exports as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	CampaignsSheet = "Campaigns"
	WeeksSheet     = "Weeks"

	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var campaignHeaders = []string{
	"Campaign ID", "Name", "Vendor", "Current Product", "Total Quantity", "Total Weeks",
	"Start Date", "Payment Day", "Next Product", "Artwork Due", "Address", "City", "State",
	"Zip Code", "Postcard URL", "Active", "Created At",
}

var weekHeaders = []string{"Campaign ID", "Campaign", "Week", "In Homes Week Of", "Mailing Quantity", "Total Payments"}

// WriteCampaigns writes a workbook with one row per campaign and one row per scheduled week
func WriteCampaigns(w io.Writer, campaigns []models.Campaign) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CampaignsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(WeeksSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeHeader(f, CampaignsSheet, campaignHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, WeeksSheet, weekHeaders, headerStyle); err != nil {
		return err
	}

	weekRow := 2
	for i, c := range campaigns {
		artworkDue := ""
		if c.NextScheduledArtworkDueDate != nil {
			artworkDue = c.NextScheduledArtworkDueDate.Format("2006-01-02")
		}
		row := []any{
			c.ID, c.Name, c.VendorName, c.CurrentProduct, c.TotalMailingQuantity, c.TotalWeeks,
			c.StartDate.Format("2006-01-02"), c.PaymentDay, c.NextScheduledProduct, artworkDue,
			c.Address, c.City, c.State, c.ZipCode, c.PostcardImageURL, c.IsActive,
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, CampaignsSheet, i+2, row); err != nil {
			return err
		}

		for _, week := range c.Weeks {
			payments, _ := week.TotalPayments.Float64()
			row := []any{
				c.ID, c.Name, week.WeekNumber, week.InHomesWeekOf.Format("2006-01-02"),
				week.MailingQuantity, payments,
			}
			if err := writeRow(f, WeeksSheet, weekRow, row); err != nil {
				return err
			}
			weekRow++
		}
	}

	if err := f.SetColWidth(CampaignsSheet, "A", "Q", 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(WeeksSheet, "A", "F", 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
