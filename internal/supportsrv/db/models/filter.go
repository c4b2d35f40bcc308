package models

import (
	"math"
	"time"

	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/common/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CaseFilter selects a page of cases. Nil criteria impose no constraint;
// every non-nil criterion must hold for a case to match.
type CaseFilter struct {
	Page         int
	Size         int
	Status       *CaseStatus
	DatabaseName *string
	SchemaName   *string
	ExecutedBy   *string
	Priority     *CasePriority
	ID           *uuid.UUID
	StartDate    *time.Time // inclusive lower bound on created_at
	EndDate      *time.Time // inclusive upper bound on created_at
}

// Offset is the number of rows skipped before the requested page. It
// saturates at math.MaxInt64 for pages too far out to address.
func (f *CaseFilter) Offset() int64 {
	if f.Page < 1 || f.Size < 1 {
		return 0
	}
	skipped := int64(f.Page - 1)
	if skipped > math.MaxInt64/int64(f.Size) {
		return math.MaxInt64
	}
	return skipped * int64(f.Size)
}

// ValidatePage reports page and size values that cannot be queried.
func (f *CaseFilter) ValidatePage() apperrors.ValidationErrors {
	var ves apperrors.ValidationErrors
	if f.Page < 1 {
		ves = append(ves, apperrors.ValidationError{
			Field:  "page",
			Value:  f.Page,
			ErrStr: "El número de página debe ser positivo",
			Type:   "greater_than",
		})
	}
	if f.Size < 1 || f.Size > MaxPageSize {
		ves = append(ves, apperrors.ValidationError{
			Field:  "size",
			Value:  f.Size,
			ErrStr: "El tamaño de página debe estar entre 1 y 100",
			Type:   "less_than_equal",
		})
	}
	return ves
}

// Matches reports whether c satisfies every criterion of the filter.
// Page and size are ignored.
func (f *CaseFilter) Matches(c *SupportCase) bool {
	switch {
	case f.Status != nil && c.Status != *f.Status:
		return false
	case f.DatabaseName != nil && c.DatabaseName != *f.DatabaseName:
		return false
	case f.SchemaName != nil && c.SchemaName != *f.SchemaName:
		return false
	case f.ExecutedBy != nil && c.ExecutedBy != *f.ExecutedBy:
		return false
	case f.Priority != nil && c.Priority != *f.Priority:
		return false
	case f.ID != nil && c.ID != *f.ID:
		return false
	case f.StartDate != nil && c.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && c.CreatedAt.After(*f.EndDate):
		return false
	}
	return true
}

// CasePage is one page of a filtered case listing.
type CasePage struct {
	Items      []*SupportCase
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// TotalPages returns ceil(total/size), or 0 when there is nothing to page.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
