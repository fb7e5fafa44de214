// Package sku manages drug SKU records keyed by National Drug Code.
package sku

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Status is the review state of a SKU record.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusDeleted       Status = "DELETED"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusDeleted}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Repaired maps a legacy status onto the enumerated set.
func (s Status) Repaired() Status {
	if s.Valid() {
		return s
	}
	if strings.EqualFold(string(s), "ACTIVE") {
		return StatusApproved
	}
	return StatusDraft
}

// SKU is a single drug product record.
type SKU struct {
	ID           int64     `json:"id"`
	NDC          string    `json:"ndc"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer"`
	DosageForm   string    `json:"dosage_form"`
	Strength     string    `json:"strength"`
	PackageSize  string    `json:"package_size"`
	GTIN         *string   `json:"gtin"`
	ImageURL     *string   `json:"image_url"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	CreatedBy    *string   `json:"created_by"`
	ReviewedBy   *string   `json:"reviewed_by"`
}

// holdsNDC reports whether the record takes part in ndc uniqueness.
func (s SKU) holdsNDC() bool {
	return s.Status != StatusDeleted
}

// NullableString distinguishes an absent JSON member from an explicit null.
// Set is true whenever the member was present; Value is nil for null.
type NullableString struct {
	Set   bool
	Value *string
}

// NullableOf returns a present, non-null value.
func NullableOf(v string) NullableString {
	return NullableString{Set: true, Value: &v}
}

// Null returns a present null that clears the column.
func Null() NullableString {
	return NullableString{Set: true}
}

// UnmarshalJSON is only invoked for members present in the document.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON writes the value or null.
func (n NullableString) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

// Patch lists the fields a partial update may change. Nil means unchanged.
// The nullable columns are cleared by a present null.
type Patch struct {
	NDC          *string
	Name         *string
	Manufacturer *string
	DosageForm   *string
	Strength     *string
	PackageSize  *string
	GTIN         NullableString
	ImageURL     NullableString
	Status       *Status
	ReviewedBy   NullableString
}

// Apply returns s with the provided fields overwritten.
func (p Patch) Apply(s SKU) SKU {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.NDC, p.NDC)
	set(&s.Name, p.Name)
	set(&s.Manufacturer, p.Manufacturer)
	set(&s.DosageForm, p.DosageForm)
	set(&s.Strength, p.Strength)
	set(&s.PackageSize, p.PackageSize)
	setNullable := func(dst **string, src NullableString) {
		if src.Set {
			*dst = src.Value
		}
	}
	setNullable(&s.GTIN, p.GTIN)
	setNullable(&s.ImageURL, p.ImageURL)
	setNullable(&s.ReviewedBy, p.ReviewedBy)
	if p.Status != nil {
		s.Status = *p.Status
	}
	return s
}

// replaceWith copies every caller-controlled field of next onto s.
func (s SKU) replaceWith(next SKU) SKU {
	s.NDC = next.NDC
	s.Name = next.Name
	s.Manufacturer = next.Manufacturer
	s.DosageForm = next.DosageForm
	s.Strength = next.Strength
	s.PackageSize = next.PackageSize
	s.GTIN = next.GTIN
	s.ImageURL = next.ImageURL
	s.Status = next.Status
	s.ReviewedBy = next.ReviewedBy
	return s
}

// Filter narrows a listing. Empty strings match everything. A PageSize of
// zero or less returns every match.
type Filter struct {
	NDC          string
	Name         string
	Manufacturer string
	Status       Status
	Page         int
	PageSize     int
}

// Offset is the number of rows skipped for the requested page. It saturates
// at math.MaxInt so pages past the end stay empty instead of wrapping.
func (f Filter) Offset() int {
	if f.PageSize <= 0 || f.Page <= 0 {
		return 0
	}
	if f.Page > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return f.Page * f.PageSize
}

// Page is one page of search results plus the size of the whole match set.
type Page struct {
	Items []SKU `json:"items"`
	Total int   `json:"total"`
}

// DuplicateGroup gathers records sharing an exact name.
type DuplicateGroup struct {
	NDC     string `json:"ndc"`
	Name    string `json:"name"`
	Records []SKU  `json:"records"`
}

// groupDuplicates folds rows ordered by name then id into groups. Names seen
// only once are dropped.
func groupDuplicates(rows []SKU) []DuplicateGroup {
	groups := make([]DuplicateGroup, 0)
	for _, row := range rows {
		n := len(groups)
		if n > 0 && groups[n-1].Name == row.Name {
			groups[n-1].Records = append(groups[n-1].Records, row)
			continue
		}
		groups = append(groups, DuplicateGroup{NDC: row.NDC, Name: row.Name, Records: []SKU{row}})
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g.Records) > 1 {
			out = append(out, g)
		}
	}
	return out
}
