package cli

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/supporttracker/internal/common/httpclient"
	"github.com/tansive/supporttracker/internal/supportsrv/config"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dbmanager"
	"github.com/tansive/supporttracker/internal/supportsrv/server"
	"github.com/tansive/supporttracker/internal/supportsrv/test"
	"github.com/tidwall/gjson"
)

func newCaseServer(t *testing.T) (*httptest.Server, *test.CaseStore) {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	pool, err := dbmanager.NewPool(sqlDB, nil)
	require.NoError(t, err)

	store := test.NewCaseStore()
	cfg := &config.ConfigParam{Server: config.ServerConfig{RequestTimeout: "5s"}}
	s, err := server.CreateNewServer(cfg, pool, store)
	require.NoError(t, err)
	require.NoError(t, s.MountHandlers())

	srv := httptest.NewServer(s.Router)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestCasesCommands(t *testing.T) {
	srv, store := newCaseServer(t)

	casefile := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(casefile, []byte(test.CreateCaseBody(t, map[string]any{"priority": "baja"})), 0o600))

	out, err := execute(t, "cases", "create", "--server", srv.URL, "-f", casefile, "--title", "Purge stale sessions", "--json")
	require.NoError(t, err, out)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "Purge stale sessions", gjson.Get(out, "case.title").String())
	assert.Equal(t, "baja", gjson.Get(out, "case.priority").String())
	id := gjson.Get(out, "case.id").String()

	out, err = execute(t, "cases", "get", id, "--server", srv.URL, "--json")
	require.NoError(t, err)
	assert.Equal(t, id, gjson.Get(out, "case.id").String())

	out, err = execute(t, "cases", "list", "--server", srv.URL, "--priority", "baja", "--json")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gjson.Get(out, "total").Int())

	_, err = execute(t, "cases", "list", "--server", srv.URL, "--page", "0", "--lang", "en")
	var httpErr *httpclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	require.Len(t, httpErr.Fields, 1)
	assert.Equal(t, "Must be greater than 0", httpErr.Fields[0].Message)

	_, err = execute(t, "cases", "create", "--server", srv.URL, "--title", "only a title")
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	assert.Equal(t, 1, store.Len())
}
