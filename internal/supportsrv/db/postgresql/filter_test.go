package postgresql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

func TestBuildCaseQueryNoFilters(t *testing.T) {
	f := &models.CaseFilter{Page: 3, Size: 25}
	q := buildCaseQuery(f)
	assert.Equal(t, "SELECT COUNT(*) FROM support_cases", q.countSQL())
	assert.Equal(t, "SELECT "+caseSelectList+" FROM support_cases ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2", q.pageSQL())
	assert.Equal(t, []any{25, int64(50)}, q.pageArgs(f))
}

func TestBuildCaseQueryAllFilters(t *testing.T) {
	status := models.StatusCompleted
	priority := models.PriorityLow
	dbName, schema, by := "billing", "public", "jdoe"
	id := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)

	f := &models.CaseFilter{
		Page: 1, Size: 10,
		Status: &status, DatabaseName: &dbName, SchemaName: &schema, ExecutedBy: &by,
		Priority: &priority, ID: &id, StartDate: &start, EndDate: &end,
	}
	q := buildCaseQuery(f)
	where := " WHERE status = $1 AND database_name = $2 AND schema_name = $3 AND executed_by = $4" +
		" AND priority = $5 AND id = $6 AND created_at >= $7 AND created_at <= $8"
	assert.Equal(t, "SELECT COUNT(*) FROM support_cases"+where, q.countSQL())
	assert.Equal(t, "SELECT "+caseSelectList+" FROM support_cases"+where+" ORDER BY created_at DESC, id DESC LIMIT $9 OFFSET $10", q.pageSQL())
	assert.Equal(t, []any{"completado", "billing", "public", "jdoe", "baja", id, start, end}, q.args)
	assert.Equal(t, []any{"completado", "billing", "public", "jdoe", "baja", id, start, end, 10, int64(0)}, q.pageArgs(f))
}

func TestBuildCaseQueryIsOrderIndependent(t *testing.T) {
	status := models.StatusOnHold
	by := "ops"
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	setters := []func(f *models.CaseFilter){
		func(f *models.CaseFilter) { f.Status = &status },
		func(f *models.CaseFilter) { f.ExecutedBy = &by },
		func(f *models.CaseFilter) { f.StartDate = &start },
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}

	var first caseQuery
	for i, order := range orders {
		f := &models.CaseFilter{Page: 1, Size: 10}
		for _, idx := range order {
			setters[idx](f)
		}
		q := buildCaseQuery(f)
		if i == 0 {
			first = q
			continue
		}
		assert.Equal(t, first.countSQL(), q.countSQL())
		assert.Equal(t, first.args, q.args)
	}
}

// Every non-nil criterion contributes exactly one bound predicate.
func TestBuildCaseQueryOnePredicatePerCriterion(t *testing.T) {
	dbName := "crm"
	priority := models.PriorityMedium
	end := time.Now().UTC()
	tests := []struct {
		filter models.CaseFilter
		where  string
	}{
		{models.CaseFilter{DatabaseName: &dbName}, " WHERE database_name = $1"},
		{models.CaseFilter{Priority: &priority}, " WHERE priority = $1"},
		{models.CaseFilter{EndDate: &end}, " WHERE created_at <= $1"},
		{models.CaseFilter{DatabaseName: &dbName, EndDate: &end}, " WHERE database_name = $1 AND created_at <= $2"},
	}
	for _, tt := range tests {
		q := buildCaseQuery(&tt.filter)
		assert.Equal(t, tt.where, q.where)
		assert.Len(t, q.args, len(casePredicates(&tt.filter)))
	}
}

func TestBuildCaseQueryBindsValues(t *testing.T) {
	hostile := "x'; DROP TABLE support_cases; --"
	q := buildCaseQuery(&models.CaseFilter{SchemaName: &hostile})
	assert.NotContains(t, q.countSQL(), "DROP")
	assert.Equal(t, []any{hostile}, q.args)
}
