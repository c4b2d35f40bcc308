// Package test provides in-memory fakes and request helpers shared by the
// service and API tests.
package test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dberror"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

// CaseStore is an in-memory db.CaseManager with the same filtering, ordering
// and validation rules as the PostgreSQL store.
type CaseStore struct {
	mu    sync.Mutex
	cases map[uuid.UUID]models.SupportCase
	calls int
	err   apperrors.Error
}

var _ db.CaseManager = (*CaseStore)(nil)

func NewCaseStore() *CaseStore {
	return &CaseStore{cases: map[uuid.UUID]models.SupportCase{}}
}

// FailWith makes every storage access return err until cleared with nil.
func (s *CaseStore) FailWith(err apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of operations that reached storage.
func (s *CaseStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Len returns the number of stored cases.
func (s *CaseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cases)
}

// Put stores c directly, bypassing validation.
func (s *CaseStore) Put(c *models.SupportCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = clone(c)
}

func (s *CaseStore) CreateCase(ctx context.Context, c *models.SupportCase) apperrors.Error {
	if c == nil {
		return dberror.ErrInvalidInput.Msg("support case is required")
	}
	if !c.Status.IsValid() || !c.Priority.IsValid() {
		return dberror.ErrInvalidInput.Msg("invalid status or priority")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if _, ok := s.cases[c.ID]; ok {
		return dberror.ErrAlreadyExists.Msg("support case already exists")
	}
	s.cases[c.ID] = clone(c)
	return nil
}

func (s *CaseStore) GetCase(ctx context.Context, id string) (*models.SupportCase, apperrors.Error) {
	caseID, err := uuid.Parse(id)
	if err != nil {
		return nil, dberror.ErrInvalidCaseID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.cases[caseID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg(fmt.Sprintf("No se encontró ningún caso con ID %s", id))
	}
	out := clone(&c)
	return &out, nil
}

func (s *CaseStore) ListCases(ctx context.Context, f *models.CaseFilter) (*models.CasePage, apperrors.Error) {
	if f == nil {
		return nil, dberror.ErrInvalidInput.Msg("filter is required")
	}
	if ves := f.ValidatePage(); len(ves) > 0 {
		return nil, dberror.ErrInvalidPagination.Err(ves)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	var matched []*models.SupportCase
	for _, c := range s.cases {
		if f.Matches(&c) {
			cp := clone(&c)
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return uuid.Compare(a.ID, b.ID) > 0
	})

	page := &models.CasePage{
		Items:      []*models.SupportCase{},
		Total:      int64(len(matched)),
		Page:       f.Page,
		Size:       f.Size,
		TotalPages: models.TotalPages(int64(len(matched)), f.Size),
	}
	if off, n := f.Offset(), int64(len(matched)); off < n {
		end := min(off+int64(f.Size), n)
		page.Items = append(page.Items, matched[off:end]...)
	}
	return page, nil
}

func clone(c *models.SupportCase) models.SupportCase {
	out := *c
	if c.ExecutionResult != nil {
		r := *c.ExecutionResult
		out.ExecutionResult = &r
	}
	return out
}
