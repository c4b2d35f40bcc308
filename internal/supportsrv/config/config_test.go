package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
format_version = "0.1.0"

[server]
port = "8080"
request_timeout = "10s"

[db]
host = "db.internal"
port = 5433
dbname = "support"
user = "support"
password = "secret"
sslmode = "disable"
max_open_conns = 20

[log]
level = "debug"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "supporttracker.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, 20, c.DB.MaxOpenConns)
	assert.Equal(t, "debug", c.Log.Level)
	// defaults survive when the file does not set a key
	assert.Equal(t, 1, c.DB.MaxIdleConns)
	assert.Equal(t, []string{"*"}, c.Server.AllowedOrigins)
	assert.Equal(t, "host='db.internal' port='5433' user='support' password='secret' dbname='support' sslmode='disable'", c.DSN())

	d, err := c.Server.GetRequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SUPPORT_DB_PORT", "6543")
	t.Setenv("SUPPORT_DB_PASSWORD", "from-env")
	t.Setenv("SUPPORT_SERVER_HANDLE_CORS", "false")
	t.Setenv("SUPPORT_SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SUPPORT_UNKNOWN", "ignored")

	c, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, 6543, c.DB.Port)
	assert.Equal(t, "from-env", c.DB.Password)
	assert.False(t, c.Server.HandleCORS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.AllowedOrigins)
	assert.Equal(t, "db.internal", c.DB.Host)
}

func TestLoadConfigDotEnv(t *testing.T) {
	path := writeConfig(t, testConfig)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("SUPPORT_LOG_LEVEL=warn\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("SUPPORT_LOG_LEVEL") })

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "format_version = ["))
	assert.Error(t, err)

	t.Setenv("SUPPORT_DB_PORT", "not-a-number")
	_, err = LoadConfig(writeConfig(t, testConfig))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *ConfigParam {
		c := defaults()
		c.DB.DBName = "support"
		c.DB.User = "support"
		return c
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(c *ConfigParam)
	}{
		{"format version", func(c *ConfigParam) { c.FormatVersion = "9" }},
		{"missing port", func(c *ConfigParam) { c.Server.Port = "" }},
		{"bad port", func(c *ConfigParam) { c.Server.Port = "http" }},
		{"bad timeout", func(c *ConfigParam) { c.Server.RequestTimeout = "soon" }},
		{"missing db host", func(c *ConfigParam) { c.DB.Host = "" }},
		{"missing dbname", func(c *ConfigParam) { c.DB.DBName = "" }},
		{"zero pool", func(c *ConfigParam) { c.DB.MaxOpenConns = 0 }},
		{"idle above open", func(c *ConfigParam) { c.DB.MaxIdleConns = 11 }},
		{"bad statement timeout", func(c *ConfigParam) { c.DB.StatementTimeout = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, ValidateConfig(c))
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = ParseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("")
	assert.Error(t, err)
	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	t.Setenv("PGPASSWORD", "")
	t.Setenv("PGPASSFILE", filepath.Join(t.TempDir(), "missing"))

	sample, err := LoadConfig(filepath.Join("..", "..", "..", "supporttracker.conf"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		dbname   string
	}{
		{"empty password", "", "supportdb"},
		{"plain", "secret", "supportdb"},
		{"spaces and quotes", `p@ss w'rd \ x`, "support db"},
		{"looks like a key", "dbname=other", "supportdb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *sample
			c.DB.Password = tt.password
			c.DB.DBName = tt.dbname

			pc, err := pgconn.ParseConfig(c.DSN())
			require.NoError(t, err, c.DSN())
			assert.Equal(t, "localhost", pc.Host)
			assert.Equal(t, uint16(5432), pc.Port)
			assert.Equal(t, "support", pc.User)
			assert.Equal(t, tt.password, pc.Password)
			assert.Equal(t, tt.dbname, pc.Database)
		})
	}
}
