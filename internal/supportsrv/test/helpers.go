package test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tansive/supporttracker/internal/common/uuid"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
	"github.com/tidwall/sjson"
)

// ExecuteTestRequest runs req against h and returns the recorded response.
func ExecuteTestRequest(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// NewJSONRequest builds a request with a JSON body and content type.
func NewJSONRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateCaseBody returns a valid create request body with the given
// field overrides applied. A nil override removes the field.
func CreateCaseBody(t *testing.T, overrides map[string]any) string {
	t.Helper()
	body := `{
		"title": "Fix duplicated invoices",
		"description": "Remove duplicated rows created by the nightly import",
		"database_name": "billing",
		"schema_name": "public",
		"sql_query": "DELETE FROM invoices WHERE id IN (SELECT id FROM dup_invoices)",
		"executed_by": "jdoe",
		"priority": "alta"
	}`
	var err error
	for path, v := range overrides {
		if v == nil {
			body, err = sjson.Delete(body, path)
		} else {
			body, err = sjson.Set(body, path, v)
		}
		require.NoError(t, err)
	}
	return body
}

// NewCase returns a stored case created at the given time.
func NewCase(createdAt time.Time, status models.CaseStatus, priority models.CasePriority) *models.SupportCase {
	return &models.SupportCase{
		ID:           uuid.New(),
		Title:        "Rebuild index",
		Description:  "Reindex after bloat alert",
		DatabaseName: "crm",
		SchemaName:   "sales",
		SQLQuery:     "REINDEX TABLE sales.orders",
		ExecutedBy:   "ops",
		Status:       status,
		Priority:     priority,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    createdAt.UTC(),
	}
}
