// Package authz holds the single role/operation permission table consulted by
// every service before it touches storage.
package authz

// Role is an immutable attribute of a user account.
type Role string

const (
	RoleGod    Role = "god_user"
	RoleAdmin  Role = "admin_user"
	RoleVendor Role = "vendor_user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGod, RoleAdmin, RoleVendor:
		return true
	}
	return false
}

// Operation names a gated action.
type Operation string

const (
	OpCreateCampaign     Operation = "create-campaign"
	OpUpdateCampaign     Operation = "update-campaign"
	OpUpdateWeek         Operation = "update-week"
	OpUploadPostcard     Operation = "upload-postcard"
	OpDeactivateCampaign Operation = "deactivate-campaign"
	OpActivateCampaign   Operation = "activate-campaign"

	OpCreateVendor     Operation = "create-vendor"
	OpUpdateVendor     Operation = "update-vendor"
	OpDeactivateVendor Operation = "deactivate-vendor"
	OpActivateVendor   Operation = "activate-vendor"

	OpCreateUser         Operation = "create-user"
	OpManageIntegrations Operation = "manage-integrations"
	OpViewSettings       Operation = "view-settings"

	OpReadCampaigns    Operation = "read-campaigns"
	OpReadVendors      Operation = "read-vendors"
	OpManageOwnProfile Operation = "manage-own-profile"
	OpManageUsers      Operation = "manage-users"
	OpUploadFile       Operation = "upload-file"
	OpExportCampaigns  Operation = "export-campaigns"
)

var (
	everyone   = []Role{RoleGod, RoleAdmin, RoleVendor}
	godOrAdmin = []Role{RoleGod, RoleAdmin}
	godOnly    = []Role{RoleGod}
)

var table = map[Operation][]Role{
	OpCreateCampaign:     godOrAdmin,
	OpUpdateCampaign:     godOrAdmin,
	OpUpdateWeek:         godOrAdmin,
	OpUploadPostcard:     godOrAdmin,
	OpDeactivateCampaign: godOrAdmin,
	OpActivateCampaign:   godOrAdmin,

	OpCreateVendor:     godOrAdmin,
	OpUpdateVendor:     godOrAdmin,
	OpDeactivateVendor: godOrAdmin,
	OpActivateVendor:   godOrAdmin,

	OpCreateUser:         godOrAdmin,
	OpManageIntegrations: godOrAdmin,
	OpViewSettings:       godOnly,

	OpReadCampaigns:    everyone,
	OpReadVendors:      everyone,
	OpManageOwnProfile: everyone,
	OpManageUsers:      godOrAdmin,
	OpUploadFile:       everyone,
	OpExportCampaigns:  godOrAdmin,
}

// IsAllowed reports whether role may perform op. Unknown roles and
// operations are denied.
func IsAllowed(role Role, op Operation) bool {
	for _, r := range table[op] {
		if r == role {
			return true
		}
	}
	return false
}

// CanCreateUser refines create-user by the role of the account being created:
// god may create any role, admin may only create vendor users.
func CanCreateUser(actor, target Role) bool {
	if !IsAllowed(actor, OpCreateUser) || !target.Valid() {
		return false
	}
	if actor == RoleGod {
		return true
	}
	return target == RoleVendor
}

// CanManageUser reports whether actor may edit or toggle an account with the
// target role. Only god may touch god accounts.
func CanManageUser(actor, target Role) bool {
	if !IsAllowed(actor, OpManageUsers) {
		return false
	}
	return target != RoleGod || actor == RoleGod
}

// Operations lists every gated operation, in table order.
func Operations() []Operation {
	return []Operation{
		OpCreateCampaign, OpUpdateCampaign, OpUpdateWeek, OpUploadPostcard,
		OpDeactivateCampaign, OpActivateCampaign,
		OpCreateVendor, OpUpdateVendor, OpDeactivateVendor, OpActivateVendor,
		OpCreateUser, OpManageIntegrations, OpViewSettings,
		OpReadCampaigns, OpReadVendors, OpManageOwnProfile,
		OpManageUsers, OpUploadFile, OpExportCampaigns,
	}
}
