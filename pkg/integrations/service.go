// Package integrations stores per-vendor connections to field-service
// platforms. Credentials are sealed before they reach the database and are
// never returned to callers.
package integrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/secrets"
)

const integrationColumns = `id, vendor_id, provider, status, environment, credentials, connected_at,
	is_active, created_by, created_at, updated_at`

var providerNames = map[models.IntegrationProvider]string{
	models.ProviderServiceTitan: "Service Titan",
	models.ProviderJobber:       "Jobber",
	models.ProviderServiceWare:  "Service Ware",
}

// Service manages vendor integrations
type Service struct {
	db     *database.Client
	sealer *secrets.Sealer
	log    logger.Logger
}

// NewService creates a new integration service
func NewService(db *database.Client, sealer *secrets.Sealer, log logger.Logger) *Service {
	return &Service{db: db, sealer: sealer, log: log.With("component", "integrations")}
}

// ListByVendor returns the active integrations of a vendor
func (s *Service) ListByVendor(ctx context.Context, actor *auth.Actor, vendorID string) ([]models.Integration, error) {
	if err := auth.Require(actor, authz.OpManageIntegrations); err != nil {
		return nil, err
	}
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	var rows []models.Integration
	err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(`SELECT `+integrationColumns+`
		FROM integrations WHERE vendor_id = ? AND is_active = ? ORDER BY created_at ASC`), vendorID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return rows, nil
}

// ConnectServiceTitan stores ServiceTitan client credentials for a vendor
func (s *Service) ConnectServiceTitan(ctx context.Context, actor *auth.Actor, req models.ConnectServiceTitanRequest) (*models.Integration, error) {
	if err := auth.Require(actor, authz.OpManageIntegrations); err != nil {
		return nil, err
	}
	creds := models.IntegrationCredentials{
		TenantID:     req.TenantID,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	}
	return s.connect(ctx, actor, req.VendorID, models.ProviderServiceTitan, req.Environment, creds)
}

// ConnectJobber stores the Jobber authorization code as the vendor's access token
func (s *Service) ConnectJobber(ctx context.Context, actor *auth.Actor, req models.ConnectJobberRequest) (*models.Integration, error) {
	if err := auth.Require(actor, authz.OpManageIntegrations); err != nil {
		return nil, err
	}
	// TODO: exchange the code for access and refresh tokens once Jobber OAuth app credentials are configured.
	creds := models.IntegrationCredentials{AccessToken: req.Code}
	return s.connect(ctx, actor, req.VendorID, models.ProviderJobber, "", creds)
}

// Disconnect clears the credentials of an active integration
func (s *Service) Disconnect(ctx context.Context, actor *auth.Actor, req models.DisconnectIntegrationRequest) (*models.Integration, error) {
	if err := auth.Require(actor, authz.OpManageIntegrations); err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, s.db.DB, req.VendorID, req.Provider)
	if err != nil {
		return nil, err
	}
	if existing == nil || !existing.IsActive {
		return nil, domain.NewNotFoundError("Integration")
	}

	existing.Status = models.StatusDisconnected
	existing.Credentials = ""
	existing.Environment = ""
	existing.ConnectedAt = nil
	existing.UpdatedAt = time.Now().UTC()
	if err := s.update(ctx, s.db.DB, existing); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("integration disconnected", "vendor_id", req.VendorID, "provider", req.Provider)
	return existing, nil
}

// Credentials opens the sealed credential blob of an integration
func (s *Service) Credentials(i *models.Integration) (models.IntegrationCredentials, error) {
	var creds models.IntegrationCredentials
	if i.Credentials == "" {
		return creds, nil
	}
	if err := s.sealer.OpenJSON(i.Credentials, &creds); err != nil {
		return creds, fmt.Errorf("failed to open integration credentials: %w", err)
	}
	return creds, nil
}

func (s *Service) connect(ctx context.Context, actor *auth.Actor, vendorID string, provider models.IntegrationProvider, environment string, creds models.IntegrationCredentials) (*models.Integration, error) {
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	sealed, err := s.sealer.SealJSON(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to seal integration credentials: %w", err)
	}

	var result *models.Integration
	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.find(ctx, tx, vendorID, provider)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsActive && existing.Status == models.StatusConnected {
			return domain.NewConflictError(fmt.Sprintf("%s integration already connected for this vendor", providerNames[provider]))
		}

		now := time.Now().UTC()
		if existing != nil {
			existing.Status = models.StatusConnected
			existing.Environment = environment
			existing.Credentials = sealed
			existing.ConnectedAt = &now
			existing.IsActive = true
			existing.UpdatedAt = now
			result = existing
			return s.update(ctx, tx, existing)
		}

		result = &models.Integration{
			ID:          uuid.NewString(),
			VendorID:    vendorID,
			Provider:    provider,
			Status:      models.StatusConnected,
			Environment: environment,
			Credentials: sealed,
			ConnectedAt: &now,
			IsActive:    true,
			CreatedBy:   actor.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO integrations (`+integrationColumns+`)
			VALUES (:id, :vendor_id, :provider, :status, :environment, :credentials, :connected_at,
			:is_active, :created_by, :created_at, :updated_at)`, result)
		if err != nil {
			return fmt.Errorf("failed to create integration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("integration connected", "vendor_id", vendorID, "provider", provider)
	return result, nil
}

func (s *Service) requireVendor(ctx context.Context, vendorID string) error {
	var n int
	if err := s.db.DB.GetContext(ctx, &n, s.db.DB.Rebind(`SELECT COUNT(*) FROM vendors WHERE id = ?`), vendorID); err != nil {
		return fmt.Errorf("failed to get vendor: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("Vendor")
	}
	return nil
}

func (s *Service) find(ctx context.Context, q sqlx.ExtContext, vendorID string, provider models.IntegrationProvider) (*models.Integration, error) {
	var i models.Integration
	err := sqlx.GetContext(ctx, q, &i, q.Rebind(`SELECT `+integrationColumns+`
		FROM integrations WHERE vendor_id = ? AND provider = ?`), vendorID, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &i, nil
}

func (s *Service) update(ctx context.Context, q sqlx.ExtContext, i *models.Integration) error {
	_, err := sqlx.NamedExecContext(ctx, q, `UPDATE integrations SET status = :status,
		environment = :environment, credentials = :credentials, connected_at = :connected_at,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`, i)
	if err != nil {
		return fmt.Errorf("failed to update integration: %w", err)
	}
	return nil
}
