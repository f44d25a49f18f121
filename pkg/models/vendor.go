package models

import "time"

// Vendor is a client organization row
type Vendor struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Address       string    `db:"address"`
	City          string    `db:"city"`
	State         string    `db:"state"`
	ZipCode       string    `db:"zip_code"`
	ContactPerson string    `db:"contact_person"`
	IsActive      bool      `db:"is_active"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// VendorResponse represents a vendor in responses
type VendorResponse struct {
	VendorID      string    `json:"vendorId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zipCode"`
	ContactPerson string    `json:"contactPerson"`
	IsActive      bool      `json:"isActive"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToResponse converts a vendor row to its payload
func (v *Vendor) ToResponse() VendorResponse {
	return VendorResponse{
		VendorID:      v.ID,
		Name:          v.Name,
		Email:         v.Email,
		Phone:         v.Phone,
		Address:       v.Address,
		City:          v.City,
		State:         v.State,
		ZipCode:       v.ZipCode,
		ContactPerson: v.ContactPerson,
		IsActive:      v.IsActive,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// CreateVendorRequest represents a request to create a vendor
type CreateVendorRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=20,phone"`
	Address       string `json:"address" validate:"required,max=200"`
	City          string `json:"city" validate:"required,max=100"`
	State         string `json:"state" validate:"required,max=50"`
	ZipCode       string `json:"zipCode" validate:"required,max=10"`
	ContactPerson string `json:"contactPerson" validate:"required,max=100"`
}

// UpdateVendorRequest represents a partial vendor patch
type UpdateVendorRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=20,phone"`
	Address       *string `json:"address" validate:"omitempty,min=1,max=200"`
	City          *string `json:"city" validate:"omitempty,min=1,max=100"`
	State         *string `json:"state" validate:"omitempty,min=1,max=50"`
	ZipCode       *string `json:"zipCode" validate:"omitempty,min=1,max=10"`
	ContactPerson *string `json:"contactPerson" validate:"omitempty,min=1,max=100"`
}

// VendorListQuery holds list filters for vendors
type VendorListQuery struct {
	ListQuery
	IsActive *bool `query:"-"`
}
