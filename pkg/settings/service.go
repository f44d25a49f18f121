// Package settings exposes the read-only system overview shown to god users.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
)

// Features are the runtime feature flags
type Features struct {
	AllowAdminSignup        bool `json:"allowAdminSignup"`
	AllowSendGodCredentials bool `json:"allowSendGodCredentials"`
	PreserveWeekPayments    bool `json:"preserveWeekPayments"`
	ArtworkReminders        bool `json:"artworkReminders"`
}

// Runtime describes the wiring the server was started with
type Runtime struct {
	Environment    string   `json:"environment"`
	StorageBackend string   `json:"storageBackend"`
	EmailMode      string   `json:"emailMode"`
	AuthTransports []string `json:"authTransports"`
}

// Counts are entity totals
type Counts struct {
	Users                 int `json:"users"`
	ActiveUsers           int `json:"activeUsers"`
	Vendors               int `json:"vendors"`
	ActiveVendors         int `json:"activeVendors"`
	Campaigns             int `json:"campaigns"`
	ActiveCampaigns       int `json:"activeCampaigns"`
	ConnectedIntegrations int `json:"connectedIntegrations"`
}

// Settings is the payload of GET /settings
type Settings struct {
	Features Features `json:"features"`
	Runtime  Runtime  `json:"runtime"`
	Counts   Counts   `json:"counts"`
}

// Service assembles the settings overview
type Service struct {
	db       *database.Client
	features Features
	runtime  Runtime
}

// NewService creates a settings service for the given static configuration
func NewService(db *database.Client, features Features, runtime Runtime) *Service {
	return &Service{db: db, features: features, runtime: runtime}
}

// Get returns flags, runtime wiring and live entity counts
func (s *Service) Get(ctx context.Context, actor *auth.Actor) (*Settings, error) {
	if err := auth.Require(actor, authz.OpViewSettings); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var counts Counts
	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&counts.Users, `SELECT COUNT(*) FROM users`, nil},
		{&counts.ActiveUsers, `SELECT COUNT(*) FROM users WHERE is_active = ?`, []any{true}},
		{&counts.Vendors, `SELECT COUNT(*) FROM vendors`, nil},
		{&counts.ActiveVendors, `SELECT COUNT(*) FROM vendors WHERE is_active = ?`, []any{true}},
		{&counts.Campaigns, `SELECT COUNT(*) FROM campaigns`, nil},
		{&counts.ActiveCampaigns, `SELECT COUNT(*) FROM campaigns WHERE is_active = ?`, []any{true}},
		{&counts.ConnectedIntegrations, `SELECT COUNT(*) FROM integrations WHERE status = ? AND is_active = ?`, []any{"connected", true}},
	}
	for _, q := range queries {
		if err := s.db.DB.GetContext(ctx, q.dest, s.db.DB.Rebind(q.query), q.args...); err != nil {
			return nil, fmt.Errorf("failed to count entities: %w", err)
		}
	}

	transports := append([]string{}, s.runtime.AuthTransports...)
	runtime := s.runtime
	runtime.AuthTransports = transports
	return &Settings{Features: s.features, Runtime: runtime, Counts: counts}, nil
}
