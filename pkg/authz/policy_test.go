package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowed_Table(t *testing.T) {
	type row struct {
		god, admin, vendor bool
	}
	expected := map[Operation]row{
		OpCreateCampaign:     {true, true, false},
		OpUpdateCampaign:     {true, true, false},
		OpUpdateWeek:         {true, true, false},
		OpUploadPostcard:     {true, true, false},
		OpDeactivateCampaign: {true, true, false},
		OpActivateCampaign:   {true, true, false},
		OpCreateVendor:       {true, true, false},
		OpUpdateVendor:       {true, true, false},
		OpDeactivateVendor:   {true, true, false},
		OpActivateVendor:     {true, true, false},
		OpCreateUser:         {true, true, false},
		OpManageIntegrations: {true, true, false},
		OpViewSettings:       {true, false, false},
		OpReadCampaigns:      {true, true, true},
		OpReadVendors:        {true, true, true},
		OpManageOwnProfile:   {true, true, true},
		OpManageUsers:        {true, true, false},
		OpUploadFile:         {true, true, true},
		OpExportCampaigns:    {true, true, false},
	}

	assert.Len(t, Operations(), len(expected))

	for _, op := range Operations() {
		want, ok := expected[op]
		if !assert.True(t, ok, "operation %s missing from expectations", op) {
			continue
		}
		t.Run(string(op), func(t *testing.T) {
			assert.Equal(t, want.god, IsAllowed(RoleGod, op), "god")
			assert.Equal(t, want.admin, IsAllowed(RoleAdmin, op), "admin")
			assert.Equal(t, want.vendor, IsAllowed(RoleVendor, op), "vendor")
		})
	}
}

func TestIsAllowed_UnknownInputsDenied(t *testing.T) {
	assert.False(t, IsAllowed(Role("root"), OpReadCampaigns))
	assert.False(t, IsAllowed(RoleGod, Operation("delete-everything")))
	assert.False(t, IsAllowed("", OpCreateCampaign))
}

func TestCanCreateUser(t *testing.T) {
	tests := []struct {
		actor, target Role
		want          bool
	}{
		{RoleGod, RoleGod, true},
		{RoleGod, RoleAdmin, true},
		{RoleGod, RoleVendor, true},
		{RoleAdmin, RoleGod, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleVendor, true},
		{RoleVendor, RoleVendor, false},
		{RoleGod, Role("superuser"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actor)+"->"+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, CanCreateUser(tt.actor, tt.target))
		})
	}
}

func TestCanManageUser(t *testing.T) {
	assert.True(t, CanManageUser(RoleGod, RoleGod))
	assert.True(t, CanManageUser(RoleAdmin, RoleAdmin))
	assert.True(t, CanManageUser(RoleAdmin, RoleVendor))
	assert.False(t, CanManageUser(RoleAdmin, RoleGod))
	assert.False(t, CanManageUser(RoleVendor, RoleVendor))
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleGod.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleVendor.Valid())
	assert.False(t, Role("god").Valid())
}
