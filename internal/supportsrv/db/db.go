// Package db defines the storage interface of the support case service.
// The PostgreSQL implementation lives in the postgresql package.
package db

import (
	"context"

	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

// CaseManager stores and retrieves support cases. Failures are dberror
// values: not found, validation (raised before any storage access) or
// infrastructure.
type CaseManager interface {
	// CreateCase inserts a fully populated case.
	CreateCase(ctx context.Context, c *models.SupportCase) apperrors.Error
	// GetCase looks a case up by its textual id. A malformed id is reported
	// as not found without touching storage.
	GetCase(ctx context.Context, id string) (*models.SupportCase, apperrors.Error)
	// ListCases returns one page of cases matching every criterion of the
	// filter, newest first.
	ListCases(ctx context.Context, f *models.CaseFilter) (*models.CasePage, apperrors.Error)
}
