// Package testdata generates realistic fake records for tests and demo seeding.
package testdata

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/models"
)

// Password is the plaintext password of every user created by InsertUser
const Password = "Fixture!Pass1"

var products = []string{"6x9 Postcard", "6x11 Postcard", "Jumbo Postcard", "Door Hanger", "Tri-fold Brochure"}

// Faker returns a deterministic faker for seed, or a random one for seed 0
func Faker(seed int64) *gofakeit.Faker {
	return gofakeit.New(seed)
}

// Phone returns a US number in the fictional 555-01XX range, valid for libphonenumber
func Phone(f *gofakeit.Faker) string {
	return fmt.Sprintf("(201) 555-%04d", f.Number(100, 199))
}

// VendorRequest builds a valid vendor create request
func VendorRequest(f *gofakeit.Faker) models.CreateVendorRequest {
	addr := f.Address()
	company := truncate(f.Company(), 100)
	return models.CreateVendorRequest{
		Name:          company,
		Email:         strings.ToLower(fmt.Sprintf("%s.%s@%s", f.FirstName(), uuid.NewString()[:8], f.DomainName())),
		Phone:         Phone(f),
		Address:       truncate(addr.Street, 200),
		City:          truncate(addr.City, 100),
		State:         truncate(f.StateAbr(), 50),
		ZipCode:       truncate(addr.Zip, 10),
		ContactPerson: truncate(f.Name(), 100),
	}
}

// CampaignRequest builds a valid campaign create request for vendorID
func CampaignRequest(f *gofakeit.Faker, vendorID string) models.CreateCampaignRequest {
	addr := f.Address()
	start := time.Date(2024, time.Month(f.Number(1, 12)), f.Number(1, 28), 0, 0, 0, 0, time.UTC)
	lat, lon := addr.Latitude, addr.Longitude
	return models.CreateCampaignRequest{
		Vendor:               vendorID,
		Name:                 truncate(fmt.Sprintf("%s %s", f.BuzzWord(), f.RandomString([]string{"Mailer", "Drop", "Blast", "Campaign"})), 200),
		CurrentProduct:       f.RandomString(products),
		TotalMailingQuantity: f.Number(500, 20000),
		TotalWeeks:           f.Number(1, 12),
		StartDate:            start.Format("2006-01-02"),
		PaymentDay:           f.RandomString(models.PaymentDays),
		NextScheduledProduct: f.RandomString(products),
		Address:              truncate(addr.Street, 300),
		City:                 truncate(addr.City, 100),
		State:                f.StateAbr(),
		ZipCode:              truncate(addr.Zip, 10),
		Latitude:             &lat,
		Longitude:            &lon,
	}
}

// CreateUserRequest builds a valid admin provisioning request
func CreateUserRequest(f *gofakeit.Faker, role authz.Role) models.CreateUserRequest {
	return models.CreateUserRequest{
		Email:     strings.ToLower(fmt.Sprintf("%s.%s@example.com", f.FirstName(), uuid.NewString()[:8])),
		FirstName: truncate(f.FirstName(), 50),
		LastName:  truncate(f.LastName(), 50),
		Role:      role,
	}
}

// InsertUser writes an active user with Password straight to the database
func InsertUser(t testing.TB, db *database.Client, role authz.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(Password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f := gofakeit.New(0)
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(fmt.Sprintf("%s.%s@example.com", f.FirstName(), uuid.NewString()[:8])),
		PasswordHash: hash,
		FirstName:    f.FirstName(),
		LastName:     f.LastName(),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = sqlx.NamedExecContext(context.Background(), db.DB, `INSERT INTO users
		(id, email, password_hash, first_name, last_name, role, is_active, created_by, last_login_at, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :is_active, :created_by, :last_login_at, :created_at, :updated_at)`, u)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return u
}

// InsertVendor writes an active vendor straight to the database
func InsertVendor(t testing.TB, db *database.Client, createdBy string) *models.Vendor {
	t.Helper()

	req := VendorRequest(gofakeit.New(0))
	now := time.Now().UTC()
	v := &models.Vendor{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         "+12015550123",
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		ContactPerson: req.ContactPerson,
		IsActive:      true,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := sqlx.NamedExecContext(context.Background(), db.DB, `INSERT INTO vendors
		(id, name, email, phone, address, city, state, zip_code, contact_person, is_active, created_by, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :address, :city, :state, :zip_code, :contact_person, :is_active, :created_by, :created_at, :updated_at)`, v)
	if err != nil {
		t.Fatalf("insert vendor: %v", err)
	}
	return v
}

// Actor returns the actor for u
func Actor(u *models.User) *auth.Actor {
	return auth.ActorFromUser(u)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
