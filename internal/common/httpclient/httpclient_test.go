package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestClientRequests(t *testing.T) {
	var lastQuery, lastLang, lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		lastLang = r.Header.Get("Accept-Language")
		b, _ := io.ReadAll(r.Body)
		lastBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == CasesPath+"/":
			w.Header().Set("Location", CasesPath+"/case/abc")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"case":{"id":"abc"}}`))
		case r.URL.Path == CasesPath+"/case/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"message":"No se encontró","error_code":"NOT_FOUND"}`))
		case r.URL.Path == CasesPath+"/":
			w.Write([]byte(`{"success":true,"items":[],"total":0}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ClientOptions{Language: "en"})
	ctx := context.Background()

	body, location, err := c.CreateCase(ctx, []byte(`{"title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, CasesPath+"/case/abc", location)
	assert.Equal(t, "abc", gjson.GetBytes(body, "case.id").String())
	assert.Equal(t, `{"title":"x"}`, lastBody)
	assert.Equal(t, "en", lastLang)

	_, err = c.ListCases(ctx, map[string]string{"page": "2", "status": "", "priority": "alta"})
	require.NoError(t, err)
	assert.Equal(t, "page=2&priority=alta", lastQuery)

	_, err = c.GetCase(ctx, "missing")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
	assert.Equal(t, "No se encontró", httpErr.Message)

	err = c.Ready(ctx)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "upstream down", httpErr.Message)
}

func TestParseError(t *testing.T) {
	e := parseError(http.StatusUnprocessableEntity, []byte(`{
		"success": false,
		"message": "Error de validación en los parámetros",
		"error_code": "VALIDATION_ERROR",
		"errors": [{"field": "page", "message": "Debe ser mayor que 0", "error_type": "greater_than"}]
	}`))
	assert.Equal(t, "VALIDATION_ERROR", e.Code)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "greater_than", e.Fields[0].ErrorType)
	assert.Equal(t, "Error de validación en los parámetros\n  page: Debe ser mayor que 0", e.Error())

	e = parseError(http.StatusInternalServerError, nil)
	assert.Equal(t, "Internal Server Error", e.Message)
}
