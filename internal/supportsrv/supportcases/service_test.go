package supportcases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/supporttracker/internal/common/apperrors"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dberror"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
	"github.com/tansive/supporttracker/internal/supportsrv/test"
)

func validInput() CreateCaseInput {
	return CreateCaseInput{
		Title:        "Fix duplicated invoices",
		Description:  "Remove duplicated rows created by the nightly import",
		DatabaseName: "billing",
		SchemaName:   "public",
		SQLQuery:     "DELETE FROM invoices WHERE id IN (SELECT id FROM dup_invoices)",
		ExecutedBy:   "jdoe",
		Priority:     models.PriorityHigh,
	}
}

func TestCreateCase(t *testing.T) {
	store := test.NewCaseStore()
	now := time.Date(2025, 5, 10, 12, 30, 0, 123456789, time.FixedZone("CLT", -4*3600))
	svc := NewService(store, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	in := validInput()
	in.Title = "  " + in.Title + "  "
	in.SQLQuery = "\tSELECT 1;\n"
	rsp, err := svc.CreateCase(ctx, in)
	require.Nil(t, err)
	require.NotNil(t, rsp.Case)

	assert.True(t, rsp.Success)
	assert.Equal(t, "Caso de soporte creado exitosamente", rsp.Message)
	c := rsp.Case
	assert.Equal(t, "  Fix duplicated invoices  ", c.Title)
	assert.Equal(t, "\tSELECT 1;\n", c.SQLQuery)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.PriorityHigh, c.Priority)
	assert.EqualValues(t, 7, c.ID.Version())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.Equal(t, now.UTC().Truncate(time.Microsecond), c.CreatedAt)
	assert.Nil(t, c.ExecutionResult)

	got, err := svc.GetCase(ctx, c.ID.String())
	require.Nil(t, err)
	assert.Equal(t, "Caso encontrado exitosamente", got.Message)
	assert.Equal(t, c.ID, got.Case.ID)
	assert.Equal(t, *c, *got.Case)
}

func TestCreateCaseUniqueIDs(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store)
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		rsp, err := svc.CreateCase(context.Background(), validInput())
		require.Nil(t, err)
		assert.False(t, seen[rsp.Case.ID], "duplicate id %s", rsp.Case.ID)
		seen[rsp.Case.ID] = true
	}
	assert.Equal(t, 50, store.Len())
}

func TestCreateCaseMissingFields(t *testing.T) {
	blank := map[string]func(*CreateCaseInput){
		"title":         func(in *CreateCaseInput) { in.Title = "" },
		"description":   func(in *CreateCaseInput) { in.Description = "   " },
		"database_name": func(in *CreateCaseInput) { in.DatabaseName = "\t" },
		"schema_name":   func(in *CreateCaseInput) { in.SchemaName = "" },
		"sql_query":     func(in *CreateCaseInput) { in.SQLQuery = " \n " },
		"executed_by":   func(in *CreateCaseInput) { in.ExecutedBy = "" },
		"priority":      func(in *CreateCaseInput) { in.Priority = " " },
	}
	for name, mutate := range blank {
		t.Run(name, func(t *testing.T) {
			store := test.NewCaseStore()
			svc := NewService(store)
			in := validInput()
			mutate(&in)
			rsp, err := svc.CreateCase(context.Background(), in)
			assert.Nil(t, rsp)
			require.NotNil(t, err)
			assert.ErrorIs(t, err, ErrMissingRequiredField)
			assert.Equal(t, "Todos los campos son obligatorios", err.Error())
			assert.Equal(t, apperrors.KindValidation, err.Kind())
			assert.Equal(t, 0, store.Calls())
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestCreateCaseInvalidPriority(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store)
	in := validInput()
	in.Priority = "urgente"
	_, err := svc.CreateCase(context.Background(), in)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	assert.Equal(t, 0, store.Calls())
}

func TestCreateCaseStorageFailure(t *testing.T) {
	store := test.NewCaseStore()
	store.FailWith(dberror.ErrDatabase.MsgErr("insert failed", errors.New("connection refused")))
	svc := NewService(store)

	_, err := svc.CreateCase(context.Background(), validInput())
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrCreateCase)
	assert.ErrorIs(t, err, dberror.ErrDatabase)
	assert.Equal(t, "Error al crear el caso de soporte", err.Error())
	assert.Equal(t, apperrors.KindInfrastructure, err.Kind())
	assert.Contains(t, err.ErrorAll(), "connection refused")
}

func TestCreateCaseIDGeneratorFailure(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store, WithIDGenerator(func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("entropy exhausted")
	}))
	_, err := svc.CreateCase(context.Background(), validInput())
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrCreateCase)
	assert.Equal(t, 0, store.Calls())
}

func TestGetCase(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.GetCase(ctx, "not-a-uuid")
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindNotFound, err.Kind())
	assert.Equal(t, 0, store.Calls())

	missing := uuid.New().String()
	_, err = svc.GetCase(ctx, missing)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindNotFound, err.Kind())
	assert.Contains(t, err.Error(), missing)

	store.FailWith(dberror.ErrConnection)
	_, err = svc.GetCase(ctx, missing)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrGetCase)
	assert.Equal(t, "Error al buscar el caso", err.Error())
}

func TestListCases(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		status := models.StatusPending
		if i%5 == 0 {
			status = models.StatusCompleted
		}
		store.Put(test.NewCase(base.Add(time.Duration(i)*time.Hour), status, models.PriorityMedium))
	}

	rsp, err := svc.ListCases(ctx, &models.CaseFilter{Page: 3, Size: 10})
	require.Nil(t, err)
	assert.True(t, rsp.Success)
	assert.Equal(t, "Se obtuvieron 5 casos", rsp.Message)
	assert.Len(t, rsp.Items, 5)
	assert.EqualValues(t, 25, rsp.Total)
	assert.Equal(t, 3, rsp.TotalPages)

	first, err := svc.ListCases(ctx, &models.CaseFilter{Page: 1, Size: 10})
	require.Nil(t, err)
	for i := 1; i < len(first.Items); i++ {
		assert.False(t, first.Items[i].CreatedAt.After(first.Items[i-1].CreatedAt))
	}

	completed := models.StatusCompleted
	medium := models.PriorityMedium
	start := base.Add(10 * time.Hour)
	rsp, err = svc.ListCases(ctx, &models.CaseFilter{Page: 1, Size: 10, Status: &completed, Priority: &medium, StartDate: &start})
	require.Nil(t, err)
	assert.EqualValues(t, 3, rsp.Total)
	for _, c := range rsp.Items {
		assert.Equal(t, models.StatusCompleted, c.Status)
		assert.False(t, c.CreatedAt.Before(start))
	}

	beyond, err := svc.ListCases(ctx, &models.CaseFilter{Page: 9, Size: 10})
	require.Nil(t, err)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 25, beyond.Total)
	assert.Equal(t, "Se obtuvieron 0 casos", beyond.Message)
}

func TestListCasesErrors(t *testing.T) {
	store := test.NewCaseStore()
	svc := NewService(store)

	_, err := svc.ListCases(context.Background(), &models.CaseFilter{Page: 0, Size: 10})
	require.NotNil(t, err)
	assert.Equal(t, apperrors.KindValidation, err.Kind())
	assert.Len(t, apperrors.FieldErrors(err), 1)
	assert.Equal(t, 0, store.Calls())

	store.FailWith(dberror.ErrTransaction)
	_, err = svc.ListCases(context.Background(), &models.CaseFilter{Page: 1, Size: 10})
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrListCases)
	assert.Equal(t, "Error al obtener casos", err.Error())
}
