// Package postgresql implements db.CaseManager on top of a dbmanager.Gateway.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dberror"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dbmanager"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

// CaseStore is the PostgreSQL CaseManager.
type CaseStore struct {
	gw dbmanager.Gateway
}

var _ db.CaseManager = (*CaseStore)(nil)

func NewCaseStore(gw dbmanager.Gateway) *CaseStore {
	return &CaseStore{gw: gw}
}

func (s *CaseStore) CreateCase(ctx context.Context, c *models.SupportCase) apperrors.Error {
	if c == nil {
		return dberror.ErrInvalidInput.Msg("support case is required")
	}
	if !c.Status.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid status " + string(c.Status))
	}
	if !c.Priority.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid priority " + string(c.Priority))
	}

	err := s.gw.InTx(ctx, func(ctx context.Context, tx dbmanager.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, insertCaseSQL, insertArgs(c)...).Scan(&id); err != nil {
			return insertError(ctx, c, err)
		}
		if id != c.ID {
			return dberror.ErrRowMapping.Msg("inserted id does not match case id")
		}
		return nil
	})
	return toAppError(err)
}

func insertError(ctx context.Context, c *models.SupportCase, err error) apperrors.Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return dberror.ErrAlreadyExists.Msg("support case already exists")
		case "22001":
			return dberror.ErrInvalidInput.Msg("support case field exceeds column length")
		case "23514":
			log.Ctx(ctx).Error().Str("constraint", pgErr.ConstraintName).Msg("support case violates check constraint")
			return dberror.ErrInvalidInput.Msg("support case violates constraint " + pgErr.ConstraintName)
		}
	}
	log.Ctx(ctx).Error().Err(err).Str("case_id", c.ID.String()).Msg("failed to insert support case")
	return dberror.ErrDatabase.MsgErr("failed to insert support case", err)
}

func (s *CaseStore) GetCase(ctx context.Context, id string) (*models.SupportCase, apperrors.Error) {
	if id == "" {
		return nil, dberror.ErrInvalidCaseID.Msg("El ID del caso es requerido")
	}
	caseID, err := uuid.Parse(id)
	if err != nil {
		return nil, dberror.ErrInvalidCaseID
	}

	var c *models.SupportCase
	txErr := s.gw.InTx(ctx, func(ctx context.Context, tx dbmanager.Tx) error {
		var err error
		c, err = scanCase(tx.QueryRowContext(ctx, selectCaseSQL, caseID))
		if errors.Is(err, sql.ErrNoRows) {
			return dberror.ErrNotFound.Msg(fmt.Sprintf("No se encontró ningún caso con ID %s", id))
		}
		return err
	})
	if txErr != nil {
		return nil, toAppError(txErr)
	}
	return c, nil
}

// ListCases runs the count and the page query in one transaction. The page
// query is skipped when the requested page lies past the last row.
func (s *CaseStore) ListCases(ctx context.Context, f *models.CaseFilter) (*models.CasePage, apperrors.Error) {
	if f == nil {
		return nil, dberror.ErrInvalidInput.Msg("filter is required")
	}
	if ves := f.ValidatePage(); len(ves) > 0 {
		return nil, dberror.ErrInvalidPagination.Err(ves)
	}

	q := buildCaseQuery(f)
	page := &models.CasePage{
		Items: []*models.SupportCase{},
		Page:  f.Page,
		Size:  f.Size,
	}
	err := s.gw.InTx(ctx, func(ctx context.Context, tx dbmanager.Tx) error {
		if err := tx.QueryRowContext(ctx, q.countSQL(), q.args...).Scan(&page.Total); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to count support cases")
			return dberror.ErrDatabase.MsgErr("failed to count support cases", err)
		}
		if f.Offset() >= page.Total {
			return nil
		}

		rows, err := tx.QueryContext(ctx, q.pageSQL(), q.pageArgs(f)...)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to list support cases")
			return dberror.ErrDatabase.MsgErr("failed to list support cases", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCase(rows)
			if err != nil {
				return err
			}
			page.Items = append(page.Items, c)
		}
		if err := rows.Err(); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to iterate support cases")
			return dberror.ErrDatabase.MsgErr("failed to list support cases", err)
		}
		return nil
	})
	if err != nil {
		return nil, toAppError(err)
	}
	page.TotalPages = models.TotalPages(page.Total, page.Size)
	return page, nil
}

const liveColumnsSQL = "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1"

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCase maps one row in caseColumns order. sql.ErrNoRows is returned
// unchanged; any other failure, including a NULL in a required column or a
// value outside the status and priority enumerations, is a mapping error.
func scanCase(r rowScanner) (*models.SupportCase, error) {
	var c models.SupportCase
	if err := r.Scan(scanTargets(&c)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, dberror.ErrRowMapping.Err(err)
	}
	if !c.Status.IsValid() {
		return nil, dberror.ErrRowMapping.Msg("unknown status " + string(c.Status))
	}
	if !c.Priority.IsValid() {
		return nil, dberror.ErrRowMapping.Msg("unknown priority " + string(c.Priority))
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// VerifyColumnContract compares the live support_cases columns with
// caseColumns and fails if either side has a column the other lacks.
func (s *CaseStore) VerifyColumnContract(ctx context.Context) apperrors.Error {
	live := map[string]bool{}
	err := s.gw.InTx(ctx, func(ctx context.Context, tx dbmanager.Tx) error {
		rows, err := tx.QueryContext(ctx, liveColumnsSQL, caseTable)
		if err != nil {
			return dberror.ErrDatabase.MsgErr("failed to read support_cases columns", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return dberror.ErrDatabase.MsgErr("failed to read support_cases columns", err)
			}
			live[name] = true
		}
		if err := rows.Err(); err != nil {
			return dberror.ErrDatabase.MsgErr("failed to read support_cases columns", err)
		}
		return nil
	})
	if err != nil {
		return toAppError(err)
	}
	if len(live) == 0 {
		return dberror.ErrColumnContract.Msg("table support_cases not found")
	}

	var missing, extra []string
	for _, name := range caseColumnNames {
		if !live[name] {
			missing = append(missing, name)
		}
		delete(live, name)
	}
	for name := range live {
		extra = append(extra, name)
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	msg := "support_cases column drift"
	if len(missing) > 0 {
		msg += "; missing: " + strings.Join(missing, ", ")
	}
	if len(extra) > 0 {
		msg += "; unmapped: " + strings.Join(extra, ", ")
	}
	log.Ctx(ctx).Error().Strs("missing", missing).Strs("unmapped", extra).Msg("column contract violated")
	return dberror.ErrColumnContract.Msg(msg)
}

func toAppError(err error) apperrors.Error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(apperrors.Error); ok {
		return appErr
	}
	return dberror.ErrDatabase.Err(err)
}
