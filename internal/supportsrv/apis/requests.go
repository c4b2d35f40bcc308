package apis

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/tansive/supporttracker/internal/common/httpx"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
	"github.com/tansive/supporttracker/internal/supportsrv/supportcases"
)

// Accepted forms of start_date and end_date. Values without an offset are UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type listCasesQuery struct {
	Page         int     `json:"page" validate:"gt=0"`
	Size         int     `json:"size" validate:"gt=0,lte=100"`
	Status       *string `json:"status" validate:"omitempty,casestatus"`
	DatabaseName *string `json:"database_name"`
	SchemaName   *string `json:"schema_name"`
	ExecutedBy   *string `json:"executed_by"`
	Priority     *string `json:"priority" validate:"omitempty,casepriority"`
	ID           *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
}

// parseListQuery decodes the list query string. Empty parameters are treated
// as absent. Parse failures and constraint violations are returned together.
func parseListQuery(trans ut.Translator, values url.Values) (*models.CaseFilter, []httpx.FieldError) {
	q := &listCasesQuery{
		Page: models.DefaultPage,
		Size: models.DefaultPageSize,
	}
	var fields []httpx.FieldError
	fail := func(name, errType string) {
		fields = append(fields, httpx.FieldError{Field: name, Message: message(trans, errType), ErrorType: errType})
	}

	if v := param(values, "page"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			fail("page", ErrTypeIntParsing)
		} else {
			q.Page = n
		}
	}
	if v := param(values, "size"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			fail("size", ErrTypeIntParsing)
		} else {
			q.Size = n
		}
	}
	q.Status = param(values, "status")
	q.DatabaseName = param(values, "database_name")
	q.SchemaName = param(values, "schema_name")
	q.ExecutedBy = param(values, "executed_by")
	q.Priority = param(values, "priority")
	if v := param(values, "id"); v != nil {
		id, err := uuid.Parse(*v)
		if err != nil {
			fail("id", ErrTypeUUIDParsing)
		} else {
			q.ID = &id
		}
	}
	for name, dst := range map[string]**time.Time{"start_date": &q.StartDate, "end_date": &q.EndDate} {
		v := param(values, name)
		if v == nil {
			continue
		}
		t, ok := parseDate(*v)
		if !ok {
			fail(name, ErrTypeDatetimeParsing)
			continue
		}
		*dst = &t
	}

	fields = append(fields, validateStruct(trans, q)...)
	if len(fields) > 0 {
		sortFieldErrors(fields)
		return nil, fields
	}
	return q.filter(), nil
}

func (q *listCasesQuery) filter() *models.CaseFilter {
	f := &models.CaseFilter{
		Page:         q.Page,
		Size:         q.Size,
		DatabaseName: q.DatabaseName,
		SchemaName:   q.SchemaName,
		ExecutedBy:   q.ExecutedBy,
		ID:           q.ID,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
	}
	if q.Status != nil {
		s := models.CaseStatus(*q.Status)
		f.Status = &s
	}
	if q.Priority != nil {
		p := models.CasePriority(*q.Priority)
		f.Priority = &p
	}
	return f
}

func param(values url.Values, name string) *string {
	v := strings.TrimSpace(values.Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var queryFieldOrder = map[string]int{
	"page": 0, "size": 1, "status": 2, "database_name": 3, "schema_name": 4,
	"start_date": 5, "end_date": 6, "executed_by": 7, "priority": 8, "id": 9,
}

// sortFieldErrors orders errors by query parameter so responses are stable.
func sortFieldErrors(fields []httpx.FieldError) {
	sort.SliceStable(fields, func(i, j int) bool {
		return queryFieldOrder[fields[i].Field] < queryFieldOrder[fields[j].Field]
	})
}

type createCaseRequest struct {
	Title        string `json:"title" validate:"required,max=100"`
	Description  string `json:"description" validate:"required,max=500"`
	DatabaseName string `json:"database_name" validate:"required,max=50"`
	SchemaName   string `json:"schema_name" validate:"required,max=50"`
	SQLQuery     string `json:"sql_query" validate:"required"`
	ExecutedBy   string `json:"executed_by" validate:"required,max=50"`
	Priority     string `json:"priority" validate:"required,casepriority"`
}

func (req *createCaseRequest) input() supportcases.CreateCaseInput {
	return supportcases.CreateCaseInput{
		Title:        req.Title,
		Description:  req.Description,
		DatabaseName: req.DatabaseName,
		SchemaName:   req.SchemaName,
		SQLQuery:     req.SQLQuery,
		ExecutedBy:   req.ExecutedBy,
		Priority:     models.CasePriority(req.Priority),
	}
}
