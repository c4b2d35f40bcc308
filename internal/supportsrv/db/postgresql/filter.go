package postgresql

import (
	"fmt"
	"strings"

	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

type predicate struct {
	column string
	op     string
	arg    any
}

// casePredicates returns the predicates of f in a fixed order, so that two
// filters with the same criteria always produce the same SQL text.
func casePredicates(f *models.CaseFilter) []predicate {
	var preds []predicate
	if f.Status != nil {
		preds = append(preds, predicate{"status", "=", string(*f.Status)})
	}
	if f.DatabaseName != nil {
		preds = append(preds, predicate{"database_name", "=", *f.DatabaseName})
	}
	if f.SchemaName != nil {
		preds = append(preds, predicate{"schema_name", "=", *f.SchemaName})
	}
	if f.ExecutedBy != nil {
		preds = append(preds, predicate{"executed_by", "=", *f.ExecutedBy})
	}
	if f.Priority != nil {
		preds = append(preds, predicate{"priority", "=", string(*f.Priority)})
	}
	if f.ID != nil {
		preds = append(preds, predicate{"id", "=", *f.ID})
	}
	if f.StartDate != nil {
		preds = append(preds, predicate{"created_at", ">=", *f.StartDate})
	}
	if f.EndDate != nil {
		preds = append(preds, predicate{"created_at", "<=", *f.EndDate})
	}
	return preds
}

// caseQuery is the WHERE clause shared by the count and page queries.
// Values are always bound, never interpolated.
type caseQuery struct {
	where string
	args  []any
}

func buildCaseQuery(f *models.CaseFilter) caseQuery {
	preds := casePredicates(f)
	if len(preds) == 0 {
		return caseQuery{}
	}
	conds := make([]string, len(preds))
	args := make([]any, len(preds))
	for i, p := range preds {
		conds[i] = fmt.Sprintf("%s %s $%d", p.column, p.op, i+1)
		args[i] = p.arg
	}
	return caseQuery{
		where: " WHERE " + strings.Join(conds, " AND "),
		args:  args,
	}
}

func (q caseQuery) countSQL() string {
	return "SELECT COUNT(*) FROM " + caseTable + q.where
}

// pageSQL orders by created_at and breaks ties on id so pages are stable.
func (q caseQuery) pageSQL() string {
	n := len(q.args)
	return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		caseSelectList, caseTable, q.where, n+1, n+2)
}

func (q caseQuery) pageArgs(f *models.CaseFilter) []any {
	args := make([]any, 0, len(q.args)+2)
	args = append(args, q.args...)
	return append(args, f.Size, f.Offset())
}
