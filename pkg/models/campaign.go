package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PaymentDays are the accepted values for Campaign.PaymentDay
var PaymentDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// NormalizePaymentDay title-cases a weekday name ("monday", "MONDAY" -> "Monday")
// and reports whether it is one of PaymentDays.
func NormalizePaymentDay(day string) (string, bool) {
	normalized := cases.Title(language.English).String(strings.TrimSpace(day))
	for _, d := range PaymentDays {
		if d == normalized {
			return d, true
		}
	}
	return "", false
}

// WeekEntry is one scheduled weekly mail drop within a campaign
type WeekEntry struct {
	WeekNumber      int             `json:"weekNumber"`
	InHomesWeekOf   time.Time       `json:"inHomesWeekOf"`
	MailingQuantity int             `json:"mailingQuantity"`
	TotalPayments   decimal.Decimal `json:"totalPayments"`
}

// MarshalJSON writes TotalPayments as a JSON number instead of decimal's quoted string
func (w WeekEntry) MarshalJSON() ([]byte, error) {
	type entry WeekEntry
	return json.Marshal(struct {
		entry
		TotalPayments json.Number `json:"totalPayments"`
	}{entry(w), json.Number(w.TotalPayments.String())})
}

// Weeks is the embedded week schedule of a campaign, persisted as a JSON document column
type Weeks []WeekEntry

// Value implements driver.Valuer
func (w Weeks) Value() (driver.Value, error) {
	if w == nil {
		w = Weeks{}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (w *Weeks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = Weeks{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("weeks: unsupported column type %T", src)
	}
	return json.Unmarshal(raw, w)
}

// Find returns the entry with the given week number
func (w Weeks) Find(weekNumber int) (*WeekEntry, bool) {
	for i := range w {
		if w[i].WeekNumber == weekNumber {
			return &w[i], true
		}
	}
	return nil, false
}

// TotalQuantity sums MailingQuantity across all weeks
func (w Weeks) TotalQuantity() int {
	total := 0
	for _, e := range w {
		total += e.MailingQuantity
	}
	return total
}

// Campaign is a print-mail campaign row
type Campaign struct {
	ID                          string     `db:"id"`
	VendorID                    string     `db:"vendor_id"`
	VendorName                  string     `db:"vendor_name"`
	Name                        string     `db:"name"`
	CurrentProduct              string     `db:"current_product"`
	TotalMailingQuantity        int        `db:"total_mailing_quantity"`
	TotalWeeks                  int        `db:"total_weeks"`
	StartDate                   time.Time  `db:"start_date"`
	PaymentDay                  string     `db:"payment_day"`
	NextScheduledProduct        string     `db:"next_scheduled_product"`
	NextScheduledArtworkDueDate *time.Time `db:"next_scheduled_artwork_due_date"`
	Address                     string     `db:"address"`
	City                        string     `db:"city"`
	State                       string     `db:"state"`
	ZipCode                     string     `db:"zip_code"`
	Latitude                    float64    `db:"latitude"`
	Longitude                   float64    `db:"longitude"`
	PostcardImageURL            string     `db:"postcard_image_url"`
	Weeks                       Weeks      `db:"weeks"`
	IsActive                    bool       `db:"is_active"`
	CreatedBy                   string     `db:"created_by"`
	CreatedAt                   time.Time  `db:"created_at"`
	UpdatedAt                   time.Time  `db:"updated_at"`
}

// VendorRef is the embedded vendor summary on a campaign detail
type VendorRef struct {
	VendorID string `json:"vendorId"`
	Name     string `json:"name"`
}

// CampaignResponse is the campaign detail payload
type CampaignResponse struct {
	CampaignID                  string      `json:"campaignId"`
	Vendor                      VendorRef   `json:"vendor"`
	Name                        string      `json:"name"`
	CurrentProduct              string      `json:"currentProduct"`
	TotalMailingQuantity        int         `json:"totalMailingQuantity"`
	TotalWeeks                  int         `json:"totalWeeks"`
	StartDate                   time.Time   `json:"startDate"`
	PaymentDay                  string      `json:"paymentDay"`
	NextScheduledProduct        string      `json:"nextScheduledProduct"`
	NextScheduledArtworkDueDate *time.Time  `json:"nextScheduledArtworkDueDate"`
	Address                     string      `json:"address"`
	City                        string      `json:"city"`
	State                       string      `json:"state"`
	ZipCode                     string      `json:"zipCode"`
	Latitude                    float64     `json:"latitude"`
	Longitude                   float64     `json:"longitude"`
	PostcardImageURL            string      `json:"postcardImageUrl"`
	Weeks                       []WeekEntry `json:"weeks"`
	IsActive                    bool        `json:"isActive"`
	CreatedBy                   string      `json:"createdBy"`
	CreatedAt                   time.Time   `json:"createdAt"`
	UpdatedAt                   time.Time   `json:"updatedAt"`
}

// CampaignListItem is the campaign summary used in list responses
type CampaignListItem struct {
	CampaignID           string    `json:"campaignId"`
	VendorName           string    `json:"vendorName"`
	VendorID             string    `json:"vendorId"`
	Name                 string    `json:"name"`
	CurrentProduct       string    `json:"currentProduct"`
	TotalMailingQuantity int       `json:"totalMailingQuantity"`
	TotalWeeks           int       `json:"totalWeeks"`
	StartDate            time.Time `json:"startDate"`
	IsActive             bool      `json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
}

// ToResponse converts a campaign row to its detail payload
func (c *Campaign) ToResponse() CampaignResponse {
	weeks := []WeekEntry(c.Weeks)
	if weeks == nil {
		weeks = []WeekEntry{}
	}
	return CampaignResponse{
		CampaignID:                  c.ID,
		Vendor:                      VendorRef{VendorID: c.VendorID, Name: c.VendorName},
		Name:                        c.Name,
		CurrentProduct:              c.CurrentProduct,
		TotalMailingQuantity:        c.TotalMailingQuantity,
		TotalWeeks:                  c.TotalWeeks,
		StartDate:                   c.StartDate,
		PaymentDay:                  c.PaymentDay,
		NextScheduledProduct:        c.NextScheduledProduct,
		NextScheduledArtworkDueDate: c.NextScheduledArtworkDueDate,
		Address:                     c.Address,
		City:                        c.City,
		State:                       c.State,
		ZipCode:                     c.ZipCode,
		Latitude:                    c.Latitude,
		Longitude:                   c.Longitude,
		PostcardImageURL:            c.PostcardImageURL,
		Weeks:                       weeks,
		IsActive:                    c.IsActive,
		CreatedBy:                   c.CreatedBy,
		CreatedAt:                   c.CreatedAt,
		UpdatedAt:                   c.UpdatedAt,
	}
}

// ToListItem converts a campaign row to its list summary
func (c *Campaign) ToListItem() CampaignListItem {
	return CampaignListItem{
		CampaignID:           c.ID,
		VendorName:           c.VendorName,
		VendorID:             c.VendorID,
		Name:                 c.Name,
		CurrentProduct:       c.CurrentProduct,
		TotalMailingQuantity: c.TotalMailingQuantity,
		TotalWeeks:           c.TotalWeeks,
		StartDate:            c.StartDate,
		IsActive:             c.IsActive,
		CreatedAt:            c.CreatedAt,
	}
}

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Vendor                      string   `json:"vendor" validate:"required"`
	Name                        string   `json:"name" validate:"required,max=200"`
	CurrentProduct              string   `json:"currentProduct" validate:"required,max=100"`
	TotalMailingQuantity        int      `json:"totalMailingQuantity" validate:"min=1"`
	TotalWeeks                  int      `json:"totalWeeks" validate:"min=1,max=52"`
	StartDate                   string   `json:"startDate" validate:"required,isodate"`
	PaymentDay                  string   `json:"paymentDay" validate:"required,paymentday"`
	NextScheduledProduct        string   `json:"nextScheduledProduct" validate:"max=100"`
	NextScheduledArtworkDueDate *string  `json:"nextScheduledArtworkDueDate" validate:"omitempty,isodate"`
	Address                     string   `json:"address" validate:"required,max=300"`
	City                        string   `json:"city" validate:"required,max=100"`
	State                       string   `json:"state" validate:"required,max=50"`
	ZipCode                     string   `json:"zipCode" validate:"required,max=10"`
	Latitude                    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude                   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// UpdateCampaignRequest represents a partial campaign patch
type UpdateCampaignRequest struct {
	Name                        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	CurrentProduct              *string  `json:"currentProduct" validate:"omitempty,min=1,max=100"`
	TotalMailingQuantity        *int     `json:"totalMailingQuantity" validate:"omitempty,min=1"`
	TotalWeeks                  *int     `json:"totalWeeks" validate:"omitempty,min=1,max=52"`
	StartDate                   *string  `json:"startDate" validate:"omitempty,isodate"`
	PaymentDay                  *string  `json:"paymentDay" validate:"omitempty,paymentday"`
	NextScheduledProduct        *string  `json:"nextScheduledProduct" validate:"omitempty,max=100"`
	NextScheduledArtworkDueDate *string  `json:"nextScheduledArtworkDueDate" validate:"omitempty,isodate"`
	Address                     *string  `json:"address" validate:"omitempty,min=1,max=300"`
	City                        *string  `json:"city" validate:"omitempty,min=1,max=100"`
	State                       *string  `json:"state" validate:"omitempty,min=1,max=50"`
	ZipCode                     *string  `json:"zipCode" validate:"omitempty,min=1,max=10"`
	Latitude                    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude                   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// UpdateWeekRequest patches a single week entry
type UpdateWeekRequest struct {
	MailingQuantity *int             `json:"mailingQuantity" validate:"omitempty,min=0"`
	TotalPayments   *decimal.Decimal `json:"totalPayments"`
	InHomesWeekOf   *string          `json:"inHomesWeekOf" validate:"omitempty,isodate"`
}

// CampaignListQuery holds list filters for campaigns
type CampaignListQuery struct {
	ListQuery
	Vendor   string `query:"vendor"`
	IsActive *bool  `query:"-"`
}
