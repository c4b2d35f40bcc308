package postgresql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

const caseTable = "support_cases"

// caseColumn binds one support_cases column to its SupportCase field. The
// insert column list, the select list and the scan targets are all derived
// from caseColumns, so the write and read paths cannot disagree on order.
type caseColumn struct {
	name  string
	value func(c *models.SupportCase) any
	ref   func(c *models.SupportCase) any
}

var caseColumns = []caseColumn{
	{"id", func(c *models.SupportCase) any { return c.ID }, func(c *models.SupportCase) any { return &c.ID }},
	{"title", func(c *models.SupportCase) any { return c.Title }, func(c *models.SupportCase) any { return &c.Title }},
	{"description", func(c *models.SupportCase) any { return c.Description }, func(c *models.SupportCase) any { return &c.Description }},
	{"database_name", func(c *models.SupportCase) any { return c.DatabaseName }, func(c *models.SupportCase) any { return &c.DatabaseName }},
	{"schema_name", func(c *models.SupportCase) any { return c.SchemaName }, func(c *models.SupportCase) any { return &c.SchemaName }},
	{"sql_query", func(c *models.SupportCase) any { return c.SQLQuery }, func(c *models.SupportCase) any { return &c.SQLQuery }},
	{"executed_by", func(c *models.SupportCase) any { return c.ExecutedBy }, func(c *models.SupportCase) any { return &c.ExecutedBy }},
	{"status", func(c *models.SupportCase) any { return string(c.Status) }, func(c *models.SupportCase) any { return &c.Status }},
	{"priority", func(c *models.SupportCase) any { return string(c.Priority) }, func(c *models.SupportCase) any { return &c.Priority }},
	{"created_at", func(c *models.SupportCase) any { return c.CreatedAt }, func(c *models.SupportCase) any { return &c.CreatedAt }},
	{"updated_at", func(c *models.SupportCase) any { return c.UpdatedAt }, func(c *models.SupportCase) any { return &c.UpdatedAt }},
	{"execution_result", func(c *models.SupportCase) any { return c.ExecutionResult }, func(c *models.SupportCase) any { return &c.ExecutionResult }},
}

var (
	caseColumnNames []string
	caseSelectList  string
	insertCaseSQL   string
	selectCaseSQL   string
)

func init() {
	if err := checkCaseColumns(); err != nil {
		panic(err)
	}
	placeholders := make([]string, len(caseColumns))
	for i, col := range caseColumns {
		caseColumnNames = append(caseColumnNames, col.name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	caseSelectList = strings.Join(caseColumnNames, ", ")
	insertCaseSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		caseTable, caseSelectList, strings.Join(placeholders, ", "))
	selectCaseSQL = fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", caseSelectList, caseTable)
}

// checkCaseColumns verifies that caseColumns covers every db-tagged field of
// SupportCase exactly once and that each scan target is that field.
func checkCaseColumns() error {
	var c models.SupportCase
	v := reflect.ValueOf(&c).Elem()
	t := v.Type()

	fields := map[string]reflect.Value{}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		fields[tag] = v.Field(i)
	}

	seen := map[string]bool{}
	for _, col := range caseColumns {
		if seen[col.name] {
			return fmt.Errorf("column %q mapped twice", col.name)
		}
		seen[col.name] = true
		field, ok := fields[col.name]
		if !ok {
			return fmt.Errorf("column %q has no SupportCase field", col.name)
		}
		ref := reflect.ValueOf(col.ref(&c))
		if ref.Kind() != reflect.Pointer || ref.Pointer() != field.Addr().Pointer() {
			return fmt.Errorf("column %q scans into the wrong field", col.name)
		}
	}
	for name := range fields {
		if !seen[name] {
			return fmt.Errorf("SupportCase field %q has no column", name)
		}
	}
	return nil
}

func insertArgs(c *models.SupportCase) []any {
	args := make([]any, len(caseColumns))
	for i, col := range caseColumns {
		args[i] = col.value(c)
	}
	return args
}

func scanTargets(c *models.SupportCase) []any {
	dest := make([]any, len(caseColumns))
	for i, col := range caseColumns {
		dest[i] = col.ref(c)
	}
	return dest
}
