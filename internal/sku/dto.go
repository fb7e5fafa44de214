package sku

import "strings"

// CreateRequest is the body of POST /api/skus and PUT /api/skus/{id}.
type CreateRequest struct {
	NDC          string  `json:"ndc" validate:"required,max=32"`
	Name         string  `json:"name" validate:"required,max=255"`
	Manufacturer string  `json:"manufacturer" validate:"required,max=255"`
	DosageForm   string  `json:"dosage_form" validate:"required,max=64"`
	Strength     string  `json:"strength" validate:"required,max=64"`
	PackageSize  string  `json:"package_size" validate:"required,max=128"`
	Status       Status  `json:"status" validate:"omitempty,oneof=DRAFT PENDING_REVIEW APPROVED REJECTED DELETED"`
	GTIN         *string `json:"gtin" validate:"omitnil,max=14"`
	ImageURL     *string `json:"image_url" validate:"omitnil,max=1024"`
	CreatedBy    *string `json:"created_by" validate:"omitnil,max=255"`
	ReviewedBy   *string `json:"reviewed_by" validate:"omitnil,max=255"`
}

func (r *CreateRequest) normalize() {
	r.NDC = strings.TrimSpace(r.NDC)
	r.Name = strings.TrimSpace(r.Name)
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.DosageForm = strings.TrimSpace(r.DosageForm)
	r.Strength = strings.TrimSpace(r.Strength)
	r.PackageSize = strings.TrimSpace(r.PackageSize)
	r.Status = Status(strings.TrimSpace(string(r.Status)))
	if r.Status == "" {
		r.Status = StatusDraft
	}
	r.GTIN = trimOptional(r.GTIN)
	r.ImageURL = trimOptional(r.ImageURL)
	r.CreatedBy = trimOptional(r.CreatedBy)
	r.ReviewedBy = trimOptional(r.ReviewedBy)
}

func (r CreateRequest) toSKU() SKU {
	return SKU{
		NDC:          r.NDC,
		Name:         r.Name,
		Manufacturer: r.Manufacturer,
		DosageForm:   r.DosageForm,
		Strength:     r.Strength,
		PackageSize:  r.PackageSize,
		GTIN:         r.GTIN,
		ImageURL:     r.ImageURL,
		Status:       r.Status,
		CreatedBy:    r.CreatedBy,
		ReviewedBy:   r.ReviewedBy,
	}
}

// PatchRequest is the body of PATCH /api/skus/{id}. Absent fields are left
// alone; null clears gtin, image_url and reviewed_by.
type PatchRequest struct {
	NDC          *string        `json:"ndc" validate:"omitnil,min=1,max=32"`
	Name         *string        `json:"name" validate:"omitnil,min=1,max=255"`
	Manufacturer *string        `json:"manufacturer" validate:"omitnil,min=1,max=255"`
	DosageForm   *string        `json:"dosage_form" validate:"omitnil,min=1,max=64"`
	Strength     *string        `json:"strength" validate:"omitnil,min=1,max=64"`
	PackageSize  *string        `json:"package_size" validate:"omitnil,min=1,max=128"`
	Status       *Status        `json:"status" validate:"omitnil,oneof=DRAFT PENDING_REVIEW APPROVED REJECTED DELETED"`
	GTIN         NullableString `json:"gtin" validate:"omitempty,max=14"`
	ImageURL     NullableString `json:"image_url" validate:"omitempty,max=1024"`
	ReviewedBy   NullableString `json:"reviewed_by" validate:"omitempty,max=255"`
}

func (r *PatchRequest) normalize() {
	r.NDC = trimOptional(r.NDC)
	r.Name = trimOptional(r.Name)
	r.Manufacturer = trimOptional(r.Manufacturer)
	r.DosageForm = trimOptional(r.DosageForm)
	r.Strength = trimOptional(r.Strength)
	r.PackageSize = trimOptional(r.PackageSize)
	r.GTIN.Value = trimOptional(r.GTIN.Value)
	r.ImageURL.Value = trimOptional(r.ImageURL.Value)
	r.ReviewedBy.Value = trimOptional(r.ReviewedBy.Value)
	if r.Status != nil {
		st := Status(strings.TrimSpace(string(*r.Status)))
		r.Status = &st
	}
}

func (r PatchRequest) toPatch() Patch {
	return Patch{
		NDC:          r.NDC,
		Name:         r.Name,
		Manufacturer: r.Manufacturer,
		DosageForm:   r.DosageForm,
		Strength:     r.Strength,
		PackageSize:  r.PackageSize,
		GTIN:         r.GTIN,
		ImageURL:     r.ImageURL,
		Status:       r.Status,
		ReviewedBy:   r.ReviewedBy,
	}
}

// SearchRequest carries the query string of GET /api/skus.
type SearchRequest struct {
	NDC          string `json:"ndc" validate:"max=32"`
	Name         string `json:"name" validate:"max=255"`
	Manufacturer string `json:"manufacturer" validate:"max=255"`
	Status       Status `json:"status" validate:"omitempty,oneof=DRAFT PENDING_REVIEW APPROVED REJECTED DELETED"`
	Page         int    `json:"page" validate:"gte=0"`
	PageSize     int    `json:"pageSize" validate:"gte=1,lte=100"`
}

// DefaultPageSize applies when the caller does not pick one.
const DefaultPageSize = 10

func (r SearchRequest) toFilter() Filter {
	return Filter{
		NDC:          r.NDC,
		Name:         r.Name,
		Manufacturer: r.Manufacturer,
		Status:       r.Status,
		Page:         r.Page,
		PageSize:     r.PageSize,
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
