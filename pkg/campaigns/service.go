// Package campaigns implements the campaign lifecycle: creation with a
// generated week schedule, partial updates that regenerate the schedule when
// its inputs change, per-week edits and soft activation toggles.
package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/metrics"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/schedule"
	"github.com/jordanlanch/printfast/pkg/storage"
)

const selectCampaign = `SELECT c.id, c.vendor_id, COALESCE(v.name, 'Unknown') AS vendor_name, c.name,
	c.current_product, c.total_mailing_quantity, c.total_weeks, c.start_date, c.payment_day,
	c.next_scheduled_product, c.next_scheduled_artwork_due_date, c.address, c.city, c.state,
	c.zip_code, c.latitude, c.longitude, c.postcard_image_url, c.weeks, c.is_active,
	c.created_by, c.created_at, c.updated_at
	FROM campaigns c LEFT JOIN vendors v ON v.id = c.vendor_id`

var sortColumns = map[string]string{
	"createdAt":            "c.created_at",
	"updatedAt":            "c.updated_at",
	"name":                 "c.name",
	"currentProduct":       "c.current_product",
	"totalMailingQuantity": "c.total_mailing_quantity",
	"totalWeeks":           "c.total_weeks",
	"startDate":            "c.start_date",
	"isActive":             "c.is_active",
	"vendorName":           "v.name",
}

// Options tunes campaign behaviour
type Options struct {
	// PreserveWeekPayments carries week payment totals across schedule regeneration
	PreserveWeekPayments bool
}

// Service handles campaign business logic
type Service struct {
	db       *database.Client
	uploader *storage.Uploader
	opts     Options
	metrics  *metrics.Metrics
	log      logger.Logger
}

// NewService creates a new campaign service
func NewService(db *database.Client, uploader *storage.Uploader, opts Options, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		db:       db,
		uploader: uploader,
		opts:     opts,
		metrics:  m,
		log:      log.With("component", "campaigns"),
	}
}

// Create validates the vendor, generates the week schedule and stores the campaign
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req models.CreateCampaignRequest) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpCreateCampaign); err != nil {
		return nil, err
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	paymentDay, ok := models.NormalizePaymentDay(req.PaymentDay)
	if !ok {
		return nil, domain.NewValidationError("paymentDay must be a day of the week")
	}
	var artworkDue *time.Time
	if req.NextScheduledArtworkDueDate != nil && *req.NextScheduledArtworkDueDate != "" {
		d, err := parseDate("nextScheduledArtworkDueDate", *req.NextScheduledArtworkDueDate)
		if err != nil {
			return nil, err
		}
		artworkDue = &d
	}

	var vendorName string
	err = s.db.DB.GetContext(ctx, &vendorName, s.db.DB.Rebind(`SELECT name FROM vendors WHERE id = ?`), req.Vendor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Vendor")
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	weeks, err := schedule.Generate(req.TotalWeeks, req.TotalMailingQuantity, start)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &models.Campaign{
		ID:                          uuid.NewString(),
		VendorID:                    req.Vendor,
		VendorName:                  vendorName,
		Name:                        strings.TrimSpace(req.Name),
		CurrentProduct:              strings.TrimSpace(req.CurrentProduct),
		TotalMailingQuantity:        req.TotalMailingQuantity,
		TotalWeeks:                  req.TotalWeeks,
		StartDate:                   start,
		PaymentDay:                  paymentDay,
		NextScheduledProduct:        strings.TrimSpace(req.NextScheduledProduct),
		NextScheduledArtworkDueDate: artworkDue,
		Address:                     strings.TrimSpace(req.Address),
		City:                        strings.TrimSpace(req.City),
		State:                       strings.TrimSpace(req.State),
		ZipCode:                     strings.TrimSpace(req.ZipCode),
		Weeks:                       weeks,
		IsActive:                    true,
		CreatedBy:                   actor.UserID,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	if req.Latitude != nil {
		c.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		c.Longitude = *req.Longitude
	}

	_, err = sqlx.NamedExecContext(ctx, s.db.DB, `INSERT INTO campaigns (id, vendor_id, name, current_product,
		total_mailing_quantity, total_weeks, start_date, payment_day, next_scheduled_product,
		next_scheduled_artwork_due_date, address, city, state, zip_code, latitude, longitude,
		postcard_image_url, weeks, is_active, created_by, created_at, updated_at)
		VALUES (:id, :vendor_id, :name, :current_product, :total_mailing_quantity, :total_weeks,
		:start_date, :payment_day, :next_scheduled_product, :next_scheduled_artwork_due_date, :address,
		:city, :state, :zip_code, :latitude, :longitude, :postcard_image_url, :weeks, :is_active,
		:created_by, :created_at, :updated_at)`, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.metrics.RecordCampaignCreated()
	s.metrics.RecordScheduleGenerated()
	s.log.WithContext(ctx).Info("campaign created", "campaign_id", c.ID, "vendor_id", c.VendorID, "weeks", c.TotalWeeks)
	return c, nil
}

// List returns a page of campaign summaries
func (s *Service) List(ctx context.Context, actor *auth.Actor, q models.CampaignListQuery) (models.ListResult[models.CampaignListItem], error) {
	var empty models.ListResult[models.CampaignListItem]
	if err := auth.Require(actor, authz.OpReadCampaigns); err != nil {
		return empty, err
	}
	q.Normalize()
	clause, args := filters(q)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	countQuery := `SELECT COUNT(*) FROM campaigns c LEFT JOIN vendors v ON v.id = c.vendor_id` + clause
	if err := s.db.DB.GetContext(ctx, &total, s.db.DB.Rebind(countQuery), args...); err != nil {
		return empty, fmt.Errorf("failed to count campaigns: %w", err)
	}

	query := selectCampaign + clause +
		` ORDER BY ` + database.OrderBy(q.Sort, q.Order, sortColumns, "createdAt") + ` LIMIT ? OFFSET ?`
	var rows []models.Campaign
	if err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(query), append(args, q.Limit, q.Offset())...); err != nil {
		return empty, fmt.Errorf("failed to list campaigns: %w", err)
	}

	items := make([]models.CampaignListItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToListItem())
	}
	return models.NewListResult(items, total, q.ListQuery), nil
}

// Export returns every campaign matching the list filters, unpaginated
func (s *Service) Export(ctx context.Context, actor *auth.Actor, q models.CampaignListQuery) ([]models.Campaign, error) {
	if err := auth.Require(actor, authz.OpExportCampaigns); err != nil {
		return nil, err
	}
	q.Normalize()
	clause, args := filters(q)

	query := selectCampaign + clause + ` ORDER BY ` + database.OrderBy(q.Sort, q.Order, sortColumns, "createdAt")
	var rows []models.Campaign
	if err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to export campaigns: %w", err)
	}
	return rows, nil
}

// Get returns a single campaign with its vendor name
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpReadCampaigns); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update applies a partial patch. When the effective quantity, week count or
// start date changes, the whole week schedule is regenerated.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id string, req models.UpdateCampaignRequest) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpUpdateCampaign); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.CurrentProduct != nil {
		c.CurrentProduct = strings.TrimSpace(*req.CurrentProduct)
	}
	if req.PaymentDay != nil {
		day, ok := models.NormalizePaymentDay(*req.PaymentDay)
		if !ok {
			return nil, domain.NewValidationError("paymentDay must be a day of the week")
		}
		c.PaymentDay = day
	}
	if req.NextScheduledProduct != nil {
		c.NextScheduledProduct = strings.TrimSpace(*req.NextScheduledProduct)
	}
	if req.NextScheduledArtworkDueDate != nil {
		if *req.NextScheduledArtworkDueDate == "" {
			c.NextScheduledArtworkDueDate = nil
		} else {
			d, err := parseDate("nextScheduledArtworkDueDate", *req.NextScheduledArtworkDueDate)
			if err != nil {
				return nil, err
			}
			c.NextScheduledArtworkDueDate = &d
		}
	}
	if req.Address != nil {
		c.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		c.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		c.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		c.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Latitude != nil {
		c.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		c.Longitude = *req.Longitude
	}

	totalWeeks, totalQuantity, start := c.TotalWeeks, c.TotalMailingQuantity, schedule.DateOnly(c.StartDate)
	if req.TotalWeeks != nil {
		totalWeeks = *req.TotalWeeks
	}
	if req.TotalMailingQuantity != nil {
		totalQuantity = *req.TotalMailingQuantity
	}
	if req.StartDate != nil {
		if start, err = parseDate("startDate", *req.StartDate); err != nil {
			return nil, err
		}
	}

	regenerated := totalWeeks != c.TotalWeeks ||
		totalQuantity != c.TotalMailingQuantity ||
		!start.Equal(schedule.DateOnly(c.StartDate))
	if regenerated {
		weeks, err := schedule.Regenerate(c.Weeks, totalWeeks, totalQuantity, start, s.opts.PreserveWeekPayments)
		if err != nil {
			return nil, err
		}
		c.TotalWeeks, c.TotalMailingQuantity, c.StartDate, c.Weeks = totalWeeks, totalQuantity, start, weeks
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	if regenerated {
		s.metrics.RecordScheduleGenerated()
	}
	s.log.WithContext(ctx).Info("campaign updated", "campaign_id", c.ID, "regenerated", regenerated)
	return c, nil
}

// UpdateWeek patches one week entry in place. The campaign totals are not
// recomputed, so the weekly quantities may stop summing to the total.
func (s *Service) UpdateWeek(ctx context.Context, actor *auth.Actor, id string, weekNumber int, req models.UpdateWeekRequest) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpUpdateWeek); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	week, ok := c.Weeks.Find(weekNumber)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("Week %d not found in campaign", weekNumber))
	}

	if req.MailingQuantity != nil {
		if *req.MailingQuantity < 0 {
			return nil, domain.NewValidationError("mailingQuantity must not be negative")
		}
		week.MailingQuantity = *req.MailingQuantity
	}
	if req.TotalPayments != nil {
		if req.TotalPayments.IsNegative() {
			return nil, domain.NewValidationError("totalPayments must not be negative")
		}
		week.TotalPayments = *req.TotalPayments
	}
	if req.InHomesWeekOf != nil && *req.InHomesWeekOf != "" {
		d, err := parseDate("inHomesWeekOf", *req.InHomesWeekOf)
		if err != nil {
			return nil, err
		}
		week.InHomesWeekOf = d
	}
	c.UpdatedAt = time.Now().UTC()

	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE campaigns SET weeks = ?, updated_at = ? WHERE id = ?`),
		c.Weeks, c.UpdatedAt, c.ID); err != nil {
		return nil, fmt.Errorf("failed to update campaign week: %w", err)
	}

	s.log.WithContext(ctx).Info("campaign week updated", "campaign_id", c.ID, "week", weekNumber)
	return c, nil
}

// UploadPostcard stores a PDF postcard and points the campaign at it
func (s *Service) UploadPostcard(ctx context.Context, actor *auth.Actor, id, fileName string, r io.Reader) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpUploadPostcard); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	file, err := s.uploader.Upload(ctx, "postcards", fileName, r, storage.PostcardPolicy)
	if err != nil {
		return nil, err
	}

	c.PostcardImageURL = file.URL
	c.UpdatedAt = time.Now().UTC()
	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE campaigns SET postcard_image_url = ?, updated_at = ? WHERE id = ?`),
		c.PostcardImageURL, c.UpdatedAt, c.ID); err != nil {
		return nil, fmt.Errorf("failed to update postcard: %w", err)
	}

	s.metrics.RecordUpload("postcards")
	s.log.WithContext(ctx).Info("campaign postcard uploaded", "campaign_id", c.ID, "file_id", file.FileID)
	return c, nil
}

// Deactivate soft-deletes a campaign. Deactivating an inactive campaign is a no-op.
func (s *Service) Deactivate(ctx context.Context, actor *auth.Actor, id string) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpDeactivateCampaign); err != nil {
		return nil, err
	}
	return s.setActive(ctx, id, false)
}

// Activate restores a campaign. Activating an active campaign is a no-op.
func (s *Service) Activate(ctx context.Context, actor *auth.Actor, id string) (*models.Campaign, error) {
	if err := auth.Require(actor, authz.OpActivateCampaign); err != nil {
		return nil, err
	}
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) (*models.Campaign, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsActive == active {
		return c, nil
	}

	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE campaigns SET is_active = ?, updated_at = ? WHERE id = ?`),
		c.IsActive, c.UpdatedAt, c.ID); err != nil {
		return nil, fmt.Errorf("failed to update campaign status: %w", err)
	}

	s.log.WithContext(ctx).Info("campaign status changed", "campaign_id", c.ID, "is_active", active)
	return c, nil
}

// ArtworkDue is an active campaign whose next artwork is due, with its vendor contact
type ArtworkDue struct {
	CampaignID   string    `db:"campaign_id"`
	CampaignName string    `db:"campaign_name"`
	Product      string    `db:"next_scheduled_product"`
	DueDate      time.Time `db:"due_date"`
	VendorID     string    `db:"vendor_id"`
	VendorName   string    `db:"vendor_name"`
	VendorEmail  string    `db:"vendor_email"`
}

// DueArtwork lists active campaigns of active vendors with artwork due in [from, to).
// It backs the reminder job and is not gated by the policy table.
func (s *Service) DueArtwork(ctx context.Context, from, to time.Time) ([]ArtworkDue, error) {
	var rows []ArtworkDue
	err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(`SELECT c.id AS campaign_id, c.name AS campaign_name,
		c.next_scheduled_product, c.next_scheduled_artwork_due_date AS due_date,
		v.id AS vendor_id, v.name AS vendor_name, v.email AS vendor_email
		FROM campaigns c JOIN vendors v ON v.id = c.vendor_id
		WHERE c.is_active = ? AND v.is_active = ?
		AND c.next_scheduled_artwork_due_date >= ? AND c.next_scheduled_artwork_due_date < ?
		ORDER BY v.id, c.next_scheduled_artwork_due_date`), true, true, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query artwork due: %w", err)
	}
	return rows, nil
}

func (s *Service) save(ctx context.Context, c *models.Campaign) error {
	_, err := sqlx.NamedExecContext(ctx, s.db.DB, `UPDATE campaigns SET
		name = :name, current_product = :current_product, total_mailing_quantity = :total_mailing_quantity,
		total_weeks = :total_weeks, start_date = :start_date, payment_day = :payment_day,
		next_scheduled_product = :next_scheduled_product,
		next_scheduled_artwork_due_date = :next_scheduled_artwork_due_date,
		address = :address, city = :city, state = :state, zip_code = :zip_code,
		latitude = :latitude, longitude = :longitude, weeks = :weeks, updated_at = :updated_at
		WHERE id = :id`, c)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	if err := s.db.DB.GetContext(ctx, &c, s.db.DB.Rebind(selectCampaign+` WHERE c.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Campaign")
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func filters(q models.CampaignListQuery) (string, []any) {
	var where []string
	var args []any
	if q.IsActive != nil {
		where = append(where, "c.is_active = ?")
		args = append(args, *q.IsActive)
	}
	if q.Vendor != "" {
		where = append(where, "c.vendor_id = ?")
		args = append(args, q.Vendor)
	}
	if strings.TrimSpace(q.Search) != "" {
		p := database.ContainsPattern(q.Search)
		where = append(where, `(LOWER(c.name) LIKE ? ESCAPE '\' OR LOWER(c.current_product) LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func parseDate(field, value string) (time.Time, error) {
	d, err := schedule.ParseDate(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field + " must be a date (YYYY-MM-DD)")
	}
	return d, nil
}
