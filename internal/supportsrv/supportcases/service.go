// Package supportcases holds the business rules for support cases: creation
// preconditions, identity, timestamps and initial status, and the success
// envelopes returned to clients.
package supportcases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

// CreateCaseInput carries the client supplied fields of a new case. Status,
// id and timestamps are always assigned by the service.
type CreateCaseInput struct {
	Title        string
	Description  string
	DatabaseName string
	SchemaName   string
	SQLQuery     string
	ExecutedBy   string
	Priority     models.CasePriority
}

type Service struct {
	cases db.CaseManager
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces UUIDv7 generation.
func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(cases db.CaseManager, opts ...Option) *Service {
	s := &Service{
		cases: cases,
		now:   time.Now,
		newID: uuid.NewRandom,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCase validates and stores a new case. Text fields are stored exactly
// as given; a field that is blank once trimmed counts as missing. The stored
// case is pending, carries a fresh id, and has created_at equal to
// updated_at. Timestamps are truncated to microseconds, the resolution
// PostgreSQL stores.
func (s *Service) CreateCase(ctx context.Context, in CreateCaseInput) (*CaseResponse, apperrors.Error) {
	for _, v := range []string{in.Title, in.Description, in.DatabaseName, in.SchemaName, in.SQLQuery, in.ExecutedBy, string(in.Priority)} {
		if strings.TrimSpace(v) == "" {
			return nil, ErrMissingRequiredField
		}
	}
	c := &models.SupportCase{
		Title:        in.Title,
		Description:  in.Description,
		DatabaseName: in.DatabaseName,
		SchemaName:   in.SchemaName,
		SQLQuery:     in.SQLQuery,
		ExecutedBy:   in.ExecutedBy,
		Priority:     models.CasePriority(strings.TrimSpace(string(in.Priority))),
		Status:       models.StatusPending,
	}
	if !c.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	id, err := s.newID()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to generate case id")
		return nil, ErrCreateCase.Err(err)
	}
	c.ID = id
	c.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	c.UpdatedAt = c.CreatedAt

	if err := s.cases.CreateCase(ctx, c); err != nil {
		return nil, storageError(ErrCreateCase, err)
	}
	log.Ctx(ctx).Info().Str("case_id", c.ID.String()).Str("priority", string(c.Priority)).Msg("support case created")

	return &CaseResponse{
		Success: true,
		Message: "Caso de soporte creado exitosamente",
		Case:    c,
	}, nil
}

func (s *Service) GetCase(ctx context.Context, id string) (*CaseResponse, apperrors.Error) {
	c, err := s.cases.GetCase(ctx, id)
	if err != nil {
		return nil, storageError(ErrGetCase, err)
	}
	return &CaseResponse{
		Success: true,
		Message: "Caso encontrado exitosamente",
		Case:    c,
	}, nil
}

func (s *Service) ListCases(ctx context.Context, f *models.CaseFilter) (*PaginatedResponse, apperrors.Error) {
	page, err := s.cases.ListCases(ctx, f)
	if err != nil {
		return nil, storageError(ErrListCases, err)
	}
	return newPaginatedResponse(fmt.Sprintf("Se obtuvieron %d casos", len(page.Items)), page), nil
}
