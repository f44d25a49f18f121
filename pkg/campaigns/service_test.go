package campaigns

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/database/dbtest"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/metrics"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/storage"
	"github.com/jordanlanch/printfast/pkg/testdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	svc     *Service
	db      *database.Client
	admin   *auth.Actor
	vendor  *models.Vendor
	metrics *metrics.Metrics
}

func setup(t *testing.T, opts Options) fixture {
	t.Helper()
	db := dbtest.Open(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	admin := testdata.InsertUser(t, db, authz.RoleAdmin)
	return fixture{
		svc:     NewService(db, storage.NewUploader(store), opts, m, logger.Nop()),
		db:      db,
		admin:   testdata.Actor(admin),
		vendor:  testdata.InsertVendor(t, db, admin.ID),
		metrics: m,
	}
}

func request(vendorID string) models.CreateCampaignRequest {
	req := testdata.CampaignRequest(testdata.Faker(7), vendorID)
	req.TotalWeeks = 4
	req.TotalMailingQuantity = 10
	req.StartDate = "2024-01-01"
	req.PaymentDay = "friday"
	return req
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func day(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func quantities(w models.Weeks) []int {
	out := make([]int, 0, len(w))
	for _, e := range w {
		out = append(out, e.MailingQuantity)
	}
	return out
}

func TestCreate_GeneratesSchedule(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	assert.Equal(t, "Friday", c.PaymentDay)
	assert.Equal(t, f.vendor.Name, c.VendorName)
	assert.True(t, c.IsActive)
	assert.Equal(t, f.admin.UserID, c.CreatedBy)
	require.Len(t, c.Weeks, 4)
	assert.Equal(t, []int{3, 3, 2, 2}, quantities(c.Weeks))
	for i, w := range c.Weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		assert.True(t, day("2024-01-01").AddDate(0, 0, 7*i).Equal(w.InHomesWeekOf))
		assert.True(t, w.TotalPayments.IsZero())
	}

	stored, err := f.svc.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Weeks.TotalQuantity(), stored.Weeks.TotalQuantity())
	assert.Equal(t, f.vendor.Name, stored.VendorName)
	assert.True(t, day("2024-01-01").Equal(stored.StartDate.UTC()))

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CampaignsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WeekSchedulesGenerated))
}

func TestCreate_Rejections(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, request("missing-vendor"))
	require.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Vendor not found", err.(*domain.DomainError).Message)

	bad := request(f.vendor.ID)
	bad.PaymentDay = "Someday"
	_, err = f.svc.Create(ctx, f.admin, bad)
	assert.True(t, domain.IsValidation(err))

	bad = request(f.vendor.ID)
	bad.StartDate = "01/02/2024"
	_, err = f.svc.Create(ctx, f.admin, bad)
	assert.True(t, domain.IsValidation(err))

	vendorUser := testdata.Actor(testdata.InsertUser(t, f.db, authz.RoleVendor))
	_, err = f.svc.Create(ctx, vendorUser, request(f.vendor.ID))
	assert.True(t, domain.IsForbidden(err))

	_, err = f.svc.Create(ctx, nil, request(f.vendor.ID))
	assert.True(t, domain.IsUnauthenticated(err))

	var n int
	require.NoError(t, f.db.DB.Get(&n, `SELECT COUNT(*) FROM campaigns`))
	assert.Zero(t, n)
}

func TestUpdate_RegeneratesOnScheduleChange(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	paid := decimal.RequireFromString("125.50")
	_, err = f.svc.UpdateWeek(ctx, f.admin, c.ID, 1, models.UpdateWeekRequest{TotalPayments: &paid})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.admin, c.ID, models.UpdateCampaignRequest{TotalWeeks: intPtr(6)})
	require.NoError(t, err)

	require.Len(t, updated.Weeks, 6)
	assert.Equal(t, 6, updated.TotalWeeks)
	assert.Equal(t, 10, updated.Weeks.TotalQuantity())
	assert.Equal(t, []int{2, 2, 2, 2, 1, 1}, quantities(updated.Weeks))
	for _, w := range updated.Weeks {
		assert.True(t, w.TotalPayments.IsZero(), "week %d payments", w.WeekNumber)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.WeekSchedulesGenerated))

	moved, err := f.svc.Update(ctx, f.admin, c.ID, models.UpdateCampaignRequest{StartDate: strPtr("2024-02-05")})
	require.NoError(t, err)
	assert.True(t, day("2024-02-05").Equal(moved.Weeks[0].InHomesWeekOf))
	assert.True(t, day("2024-03-11").Equal(moved.Weeks[5].InHomesWeekOf))
}

func TestUpdate_PreservesPaymentsWhenConfigured(t *testing.T) {
	f := setup(t, Options{PreserveWeekPayments: true})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	paid := decimal.RequireFromString("80")
	_, err = f.svc.UpdateWeek(ctx, f.admin, c.ID, 4, models.UpdateWeekRequest{TotalPayments: &paid})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.admin, c.ID, models.UpdateCampaignRequest{TotalMailingQuantity: intPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Weeks.TotalQuantity())
	w4, ok := updated.Weeks.Find(4)
	require.True(t, ok)
	assert.True(t, paid.Equal(w4.TotalPayments))
}

func TestUpdate_NoScheduleChangeKeepsWeeks(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	qty := 7
	_, err = f.svc.UpdateWeek(ctx, f.admin, c.ID, 2, models.UpdateWeekRequest{MailingQuantity: &qty})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.admin, c.ID, models.UpdateCampaignRequest{
		Name:       strPtr("  Renamed Drop "),
		TotalWeeks: intPtr(4),
		StartDate:  strPtr("2024-01-01"),
		PaymentDay: strPtr("MONDAY"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Drop", updated.Name)
	assert.Equal(t, "Monday", updated.PaymentDay)
	assert.Equal(t, []int{3, 7, 2, 2}, quantities(updated.Weeks))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WeekSchedulesGenerated))
}

func TestUpdateWeek(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	qty := 50
	paid := decimal.RequireFromString("19.99")
	updated, err := f.svc.UpdateWeek(ctx, f.admin, c.ID, 3, models.UpdateWeekRequest{
		MailingQuantity: &qty,
		TotalPayments:   &paid,
		InHomesWeekOf:   strPtr("2024-01-20"),
	})
	require.NoError(t, err)
	w, _ := updated.Weeks.Find(3)
	assert.Equal(t, 50, w.MailingQuantity)
	assert.True(t, paid.Equal(w.TotalPayments))
	assert.True(t, day("2024-01-20").Equal(w.InHomesWeekOf))
	assert.Equal(t, 10, updated.TotalMailingQuantity)

	stored, err := f.svc.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	w, _ = stored.Weeks.Find(3)
	assert.Equal(t, 50, w.MailingQuantity)

	_, err = f.svc.UpdateWeek(ctx, f.admin, c.ID, 9, models.UpdateWeekRequest{MailingQuantity: &qty})
	require.True(t, domain.IsValidation(err))
	assert.Equal(t, "Week 9 not found in campaign", err.(*domain.DomainError).Message)

	negative := decimal.NewFromInt(-1)
	_, err = f.svc.UpdateWeek(ctx, f.admin, c.ID, 1, models.UpdateWeekRequest{TotalPayments: &negative})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UpdateWeek(ctx, f.admin, "missing", 1, models.UpdateWeekRequest{})
	assert.True(t, domain.IsNotFound(err))
}

func TestList(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	other := testdata.InsertVendor(t, f.db, f.admin.UserID)

	names := []string{"Spring Mailer", "Summer Blast", "Autumn Drop"}
	var ids []string
	for i, name := range names {
		req := request(f.vendor.ID)
		if i == 2 {
			req.Vendor = other.ID
		}
		req.Name = name
		req.CurrentProduct = "Jumbo Postcard"
		c, err := f.svc.Create(ctx, f.admin, req)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err := f.svc.Deactivate(ctx, f.admin, ids[1])
	require.NoError(t, err)

	vendorUser := testdata.Actor(testdata.InsertUser(t, f.db, authz.RoleVendor))
	all, err := f.svc.List(ctx, vendorUser, models.CampaignListQuery{ListQuery: models.ListQuery{Sort: "name", Order: "asc"}})
	require.NoError(t, err)
	require.Equal(t, 3, all.TotalItems)
	assert.Equal(t, "Autumn Drop", all.Items[0].Name)
	assert.Equal(t, other.Name, all.Items[0].VendorName)

	active := true
	res, err := f.svc.List(ctx, f.admin, models.CampaignListQuery{IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalItems)

	res, err = f.svc.List(ctx, f.admin, models.CampaignListQuery{Vendor: other.ID})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalItems)
	assert.Equal(t, ids[2], res.Items[0].CampaignID)

	res, err = f.svc.List(ctx, f.admin, models.CampaignListQuery{ListQuery: models.ListQuery{Search: "SUMMER"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalItems)

	res, err = f.svc.List(ctx, f.admin, models.CampaignListQuery{ListQuery: models.ListQuery{Search: "jumbo", Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalItems)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Items, 2)

	_, err = f.svc.List(ctx, nil, models.CampaignListQuery{})
	assert.True(t, domain.IsUnauthenticated(err))
}

func TestList_UnknownVendorName(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	_, err = f.db.DB.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = f.db.DB.Exec(f.db.DB.Rebind(`UPDATE campaigns SET vendor_id = ? WHERE id = ?`), "gone", c.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got.VendorName)
}

func TestExport(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
		require.NoError(t, err)
	}

	rows, err := f.svc.Export(ctx, f.admin, models.CampaignListQuery{ListQuery: models.ListQuery{Limit: 1}})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	vendorUser := testdata.Actor(testdata.InsertUser(t, f.db, authz.RoleVendor))
	_, err = f.svc.Export(ctx, vendorUser, models.CampaignListQuery{})
	assert.True(t, domain.IsForbidden(err))
}

func TestActivationToggles(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	again, err := f.svc.Activate(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.True(t, again.IsActive)

	off, err := f.svc.Deactivate(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	off, err = f.svc.Deactivate(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	stored, err := f.svc.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	on, err := f.svc.Activate(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.True(t, on.IsActive)

	_, err = f.svc.Deactivate(ctx, f.admin, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestUploadPostcard(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)

	updated, err := f.svc.UploadPostcard(ctx, f.admin, c.ID, "spring.pdf", bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.PostcardImageURL, "http://localhost:8080/uploads/postcards/"))
	assert.True(t, strings.HasSuffix(updated.PostcardImageURL, ".pdf"))

	stored, err := f.svc.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.PostcardImageURL, stored.PostcardImageURL)

	_, err = f.svc.UploadPostcard(ctx, f.admin, c.ID, "image.png", strings.NewReader("not a pdf at all"))
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UploadPostcard(ctx, f.admin, "missing", "spring.pdf", bytes.NewReader(pdfBytes))
	assert.True(t, domain.IsNotFound(err))
}

func TestDueArtwork(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()

	dueDates := []string{"2024-03-01", "2024-03-03", "2024-03-10"}
	var ids []string
	for _, d := range dueDates {
		req := request(f.vendor.ID)
		req.NextScheduledArtworkDueDate = strPtr(d)
		c, err := f.svc.Create(ctx, f.admin, req)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err := f.svc.Create(ctx, f.admin, request(f.vendor.ID))
	require.NoError(t, err)
	_, err = f.svc.Deactivate(ctx, f.admin, ids[1])
	require.NoError(t, err)

	due, err := f.svc.DueArtwork(ctx, day("2024-03-01"), day("2024-03-05"))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ids[0], due[0].CampaignID)
	assert.Equal(t, f.vendor.Email, due[0].VendorEmail)
	assert.True(t, day("2024-03-01").Equal(due[0].DueDate.UTC()))
}
