package vendors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/phone"
)

const (
	vendorColumns = `id, name, email, phone, address, city, state, zip_code, contact_person, is_active, created_by, created_at, updated_at`

	msgDuplicateEmail = "Vendor with this email already exists"
)

var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"name":          "name",
	"email":         "email",
	"city":          "city",
	"state":         "state",
	"contactPerson": "contact_person",
}

// Service handles vendor business logic
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new vendor service
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log.With("component", "vendors")}
}

// Create registers a vendor
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req models.CreateVendorRequest) (*models.Vendor, error) {
	if err := auth.Require(actor, authz.OpCreateVendor); err != nil {
		return nil, err
	}

	normalizedPhone, err := phone.Normalize(req.Phone, "")
	if err != nil {
		return nil, domain.NewValidationError("phone must be a valid phone number")
	}

	now := time.Now().UTC()
	v := &models.Vendor{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Email:         auth.NormalizeEmail(req.Email),
		Phone:         normalizedPhone,
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		State:         strings.TrimSpace(req.State),
		ZipCode:       strings.TrimSpace(req.ZipCode),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		IsActive:      true,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = sqlx.NamedExecContext(ctx, s.db.DB, `INSERT INTO vendors (`+vendorColumns+`)
		VALUES (:id, :name, :email, :phone, :address, :city, :state, :zip_code, :contact_person, :is_active, :created_by, :created_at, :updated_at)`, v)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.NewConflictError(msgDuplicateEmail)
		}
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}

	s.log.WithContext(ctx).Info("vendor created", "vendor_id", v.ID, "created_by", actor.UserID)
	return v, nil
}

// List returns a page of vendors. Search matches name, email and contact person.
func (s *Service) List(ctx context.Context, actor *auth.Actor, q models.VendorListQuery) (models.ListResult[models.VendorResponse], error) {
	var empty models.ListResult[models.VendorResponse]
	if err := auth.Require(actor, authz.OpReadVendors); err != nil {
		return empty, err
	}
	q.Normalize()

	var where []string
	var args []any
	if q.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *q.IsActive)
	}
	if strings.TrimSpace(q.Search) != "" {
		p := database.ContainsPattern(q.Search)
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(contact_person) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := s.db.DB.GetContext(ctx, &total, s.db.DB.Rebind(`SELECT COUNT(*) FROM vendors`+clause), args...); err != nil {
		return empty, fmt.Errorf("failed to count vendors: %w", err)
	}

	query := `SELECT ` + vendorColumns + ` FROM vendors` + clause +
		` ORDER BY ` + database.OrderBy(q.Sort, q.Order, sortColumns, "createdAt") + ` LIMIT ? OFFSET ?`
	var rows []models.Vendor
	if err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(query), append(args, q.Limit, q.Offset())...); err != nil {
		return empty, fmt.Errorf("failed to list vendors: %w", err)
	}

	items := make([]models.VendorResponse, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToResponse())
	}
	return models.NewListResult(items, total, q.ListQuery), nil
}

// AllActive returns every active vendor ordered by name, for select inputs
func (s *Service) AllActive(ctx context.Context, actor *auth.Actor) ([]models.VendorResponse, error) {
	if err := auth.Require(actor, authz.OpReadVendors); err != nil {
		return nil, err
	}

	var rows []models.Vendor
	err := s.db.DB.SelectContext(ctx, &rows,
		s.db.DB.Rebind(`SELECT `+vendorColumns+` FROM vendors WHERE is_active = ? ORDER BY name ASC`), true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active vendors: %w", err)
	}

	items := make([]models.VendorResponse, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToResponse())
	}
	return items, nil
}

// Get returns a single vendor
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*models.Vendor, error) {
	if err := auth.Require(actor, authz.OpReadVendors); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update applies a partial patch to a vendor
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id string, req models.UpdateVendorRequest) (*models.Vendor, error) {
	if err := auth.Require(actor, authz.OpUpdateVendor); err != nil {
		return nil, err
	}
	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		v.Email = auth.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		normalized, err := phone.Normalize(*req.Phone, "")
		if err != nil {
			return nil, domain.NewValidationError("phone must be a valid phone number")
		}
		v.Phone = normalized
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		v.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		v.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		v.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.ContactPerson != nil {
		v.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	v.UpdatedAt = time.Now().UTC()

	_, err = sqlx.NamedExecContext(ctx, s.db.DB, `UPDATE vendors SET
		name = :name, email = :email, phone = :phone, address = :address, city = :city,
		state = :state, zip_code = :zip_code, contact_person = :contact_person, updated_at = :updated_at
		WHERE id = :id`, v)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.NewConflictError(msgDuplicateEmail)
		}
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}

	s.log.WithContext(ctx).Info("vendor updated", "vendor_id", v.ID)
	return v, nil
}

// Deactivate hides a vendor. Deactivating an inactive vendor is a no-op.
func (s *Service) Deactivate(ctx context.Context, actor *auth.Actor, id string) (*models.Vendor, error) {
	if err := auth.Require(actor, authz.OpDeactivateVendor); err != nil {
		return nil, err
	}
	return s.setActive(ctx, id, false)
}

// Activate restores a vendor. Activating an active vendor is a no-op.
func (s *Service) Activate(ctx context.Context, actor *auth.Actor, id string) (*models.Vendor, error) {
	if err := auth.Require(actor, authz.OpActivateVendor); err != nil {
		return nil, err
	}
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) (*models.Vendor, error) {
	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.IsActive == active {
		return v, nil
	}

	v.IsActive = active
	v.UpdatedAt = time.Now().UTC()
	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE vendors SET is_active = ?, updated_at = ? WHERE id = ?`),
		v.IsActive, v.UpdatedAt, v.ID); err != nil {
		return nil, fmt.Errorf("failed to update vendor status: %w", err)
	}

	s.log.WithContext(ctx).Info("vendor status changed", "vendor_id", v.ID, "is_active", active)
	return v, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Vendor, error) {
	var v models.Vendor
	err := s.db.DB.GetContext(ctx, &v, s.db.DB.Rebind(`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Vendor")
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &v, nil
}
