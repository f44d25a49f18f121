package integrations

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/database/dbtest"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/secrets"
	"github.com/jordanlanch/printfast/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func setup(t *testing.T) (*Service, *database.Client, *auth.Actor, *models.Vendor) {
	t.Helper()
	db := dbtest.Open(t)
	sealer, err := secrets.NewSealer("integration-test-key")
	require.NoError(t, err)
	admin := testdata.InsertUser(t, db, authz.RoleAdmin)
	vendor := testdata.InsertVendor(t, db, admin.ID)
	return NewService(db, sealer, logger.Nop()), db, testdata.Actor(admin), vendor
}

func titanRequest(vendorID string) models.ConnectServiceTitanRequest {
	return models.ConnectServiceTitanRequest{
		VendorID:     vendorID,
		TenantID:     "tenant-42",
		ClientID:     "client-id",
		ClientSecret: "s3cret-value",
		Environment:  "integration",
	}
}

func TestConnectServiceTitan(t *testing.T) {
	svc, db, admin, vendor := setup(t)
	ctx := context.Background()

	i, err := svc.ConnectServiceTitan(ctx, admin, titanRequest(vendor.ID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConnected, i.Status)
	assert.Equal(t, "integration", i.Environment)
	require.NotNil(t, i.ConnectedAt)
	assert.Equal(t, admin.UserID, i.CreatedBy)

	var stored string
	require.NoError(t, db.DB.Get(&stored, db.DB.Rebind(`SELECT credentials FROM integrations WHERE id = ?`), i.ID))
	assert.NotContains(t, stored, "s3cret-value")

	creds, err := svc.Credentials(i)
	require.NoError(t, err)
	assert.Equal(t, "tenant-42", creds.TenantID)
	assert.Equal(t, "s3cret-value", creds.ClientSecret)

	_, err = svc.ConnectServiceTitan(ctx, admin, titanRequest(vendor.ID))
	require.True(t, domain.IsConflict(err))
	assert.True(t, strings.HasPrefix(err.(*domain.DomainError).Message, "Service Titan integration already connected"))
}

func TestConnect_ReusesDisconnectedRecord(t *testing.T) {
	svc, _, admin, vendor := setup(t)
	ctx := context.Background()

	first, err := svc.ConnectJobber(ctx, admin, models.ConnectJobberRequest{VendorID: vendor.ID, Code: "code-1"})
	require.NoError(t, err)

	off, err := svc.Disconnect(ctx, admin, models.DisconnectIntegrationRequest{VendorID: vendor.ID, Provider: models.ProviderJobber})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisconnected, off.Status)
	assert.Nil(t, off.ConnectedAt)
	assert.Empty(t, off.Credentials)

	again, err := svc.ConnectJobber(ctx, admin, models.ConnectJobberRequest{VendorID: vendor.ID, Code: "code-2"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, models.StatusConnected, again.Status)

	creds, err := svc.Credentials(again)
	require.NoError(t, err)
	assert.Equal(t, "code-2", creds.AccessToken)

	list, err := svc.ListByVendor(ctx, admin, vendor.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDisconnect_Missing(t *testing.T) {
	svc, _, admin, vendor := setup(t)

	_, err := svc.Disconnect(context.Background(), admin, models.DisconnectIntegrationRequest{
		VendorID: vendor.ID,
		Provider: models.ProviderServiceWare,
	})
	require.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Integration not found", err.(*domain.DomainError).Message)
}

func TestListByVendor(t *testing.T) {
	svc, db, admin, vendor := setup(t)
	ctx := context.Background()

	_, err := svc.ConnectServiceTitan(ctx, admin, titanRequest(vendor.ID))
	require.NoError(t, err)
	_, err = svc.ConnectJobber(ctx, admin, models.ConnectJobberRequest{VendorID: vendor.ID, Code: "abc"})
	require.NoError(t, err)

	list, err := svc.ListByVendor(ctx, admin, vendor.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListByVendor(ctx, admin, "missing")
	assert.True(t, domain.IsNotFound(err))

	vendorUser := testdata.Actor(testdata.InsertUser(t, db, authz.RoleVendor))
	_, err = svc.ListByVendor(ctx, vendorUser, vendor.ID)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.ConnectServiceTitan(ctx, vendorUser, titanRequest(vendor.ID))
	assert.True(t, domain.IsForbidden(err))
}

func TestConnect_UnknownVendor(t *testing.T) {
	svc, _, admin, _ := setup(t)

	_, err := svc.ConnectServiceTitan(context.Background(), admin, titanRequest("missing"))
	assert.True(t, domain.IsNotFound(err))
}
