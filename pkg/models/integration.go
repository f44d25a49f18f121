package models

import "time"

// IntegrationProvider identifies a third-party field-service platform
type IntegrationProvider string

const (
	ProviderServiceTitan IntegrationProvider = "service_titan"
	ProviderJobber       IntegrationProvider = "jobber"
	ProviderServiceWare  IntegrationProvider = "service_ware"
)

// IntegrationStatus is the connection state of an integration
type IntegrationStatus string

const (
	StatusConnected    IntegrationStatus = "connected"
	StatusDisconnected IntegrationStatus = "disconnected"
	StatusPending      IntegrationStatus = "pending"
)

// IntegrationCredentials is the opaque credential blob stored per vendor and provider
type IntegrationCredentials struct {
	TenantID     string `json:"tenantId,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Integration is an integration row. Credentials holds the sealed blob.
type Integration struct {
	ID          string              `db:"id"`
	VendorID    string              `db:"vendor_id"`
	Provider    IntegrationProvider `db:"provider"`
	Status      IntegrationStatus   `db:"status"`
	Environment string              `db:"environment"`
	Credentials string              `db:"credentials"`
	ConnectedAt *time.Time          `db:"connected_at"`
	IsActive    bool                `db:"is_active"`
	CreatedBy   string              `db:"created_by"`
	CreatedAt   time.Time           `db:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"`
}

// IntegrationResponse represents an integration in responses. Credentials are never returned.
type IntegrationResponse struct {
	IntegrationID string              `json:"integrationId"`
	VendorID      string              `json:"vendorId"`
	Provider      IntegrationProvider `json:"provider"`
	Status        IntegrationStatus   `json:"status"`
	Environment   string              `json:"environment,omitempty"`
	ConnectedAt   *time.Time          `json:"connectedAt"`
	IsActive      bool                `json:"isActive"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ToResponse converts an integration row to its payload
func (i *Integration) ToResponse() IntegrationResponse {
	return IntegrationResponse{
		IntegrationID: i.ID,
		VendorID:      i.VendorID,
		Provider:      i.Provider,
		Status:        i.Status,
		Environment:   i.Environment,
		ConnectedAt:   i.ConnectedAt,
		IsActive:      i.IsActive,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// ConnectServiceTitanRequest carries ServiceTitan client credentials
type ConnectServiceTitanRequest struct {
	VendorID     string `json:"vendorId" validate:"required"`
	TenantID     string `json:"tenantId" validate:"required"`
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
	Environment  string `json:"environment" validate:"required,oneof=production integration"`
}

// ConnectJobberRequest carries the Jobber OAuth authorization code
type ConnectJobberRequest struct {
	VendorID string `json:"vendorId" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

// DisconnectIntegrationRequest identifies the integration to disconnect
type DisconnectIntegrationRequest struct {
	VendorID string              `json:"vendorId" validate:"required"`
	Provider IntegrationProvider `json:"provider" validate:"required,oneof=service_titan jobber service_ware"`
}
